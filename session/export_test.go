package session

// RefreshWaiters returns how many callers are waiting on the outstanding
// refresh for userID, or 0 when none is in flight.
func (m *Manager) RefreshWaiters(userID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if call, ok := m.inflight[userID]; ok {
		return call.waiters
	}
	return 0
}
