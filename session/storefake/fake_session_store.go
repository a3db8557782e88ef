package storefake

import (
	"context"
	"sync"

	"github.com/fitd-tech/moodring-vibe/session"
)

var _ session.Store = (*FakeSessionStore)(nil)

// FakeSessionStore keeps the blob in memory. Setting GetErr, SetErr or
// DeleteErr makes the matching call fail.
type FakeSessionStore struct {
	lock sync.RWMutex
	blob []byte

	GetErr    error
	SetErr    error
	DeleteErr error

	sets    int
	deletes int
}

func NewFakeSessionStore() *FakeSessionStore {
	return &FakeSessionStore{}
}

func (s *FakeSessionStore) Get(_ context.Context) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	if s.blob == nil {
		return nil, nil
	}
	return append([]byte(nil), s.blob...), nil
}

func (s *FakeSessionStore) Set(_ context.Context, blob []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sets++
	if s.SetErr != nil {
		return s.SetErr
	}
	s.blob = append([]byte(nil), blob...)
	return nil
}

func (s *FakeSessionStore) Delete(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.deletes++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.blob = nil
	return nil
}

// Put seeds the store directly.
func (s *FakeSessionStore) Put(blob []byte) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.blob = append([]byte(nil), blob...)
}

// Blob returns the stored bytes without counting as a Get.
func (s *FakeSessionStore) Blob() []byte {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]byte(nil), s.blob...)
}

func (s *FakeSessionStore) Sets() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.sets
}

func (s *FakeSessionStore) Deletes() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.deletes
}
