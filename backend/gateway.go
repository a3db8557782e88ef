package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fitd-tech/moodring-vibe/internal/errors"
	"github.com/fitd-tech/moodring-vibe/internal/httpjson"
	"github.com/fitd-tech/moodring-vibe/internal/utils"
	"github.com/fitd-tech/moodring-vibe/session"
)

const (
	RouteAuthSpotify = "/auth/spotify"
	RouteAuthRefresh = "/auth/refresh/%d"
)

var _ session.Gateway = (*Gateway)(nil)

// Gateway calls the backend's auth endpoints. It never persists or mutates
// a session; that is the session manager's job.
type Gateway struct {
	baseURL string
	client  *http.Client
}

type exchangeRequest struct {
	Code         string `json:"code"`
	CodeVerifier string `json:"code_verifier"`
}

// New returns a Gateway for the backend at baseURL. timeout bounds each call.
func New(baseURL string, timeout time.Duration) *Gateway {
	return NewWithClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithClient(baseURL string, client *http.Client) *Gateway {
	return &Gateway{baseURL: baseURL, client: client}
}

// ExchangeCode trades a Spotify authorization code and its PKCE verifier for a session.
func (g *Gateway) ExchangeCode(ctx context.Context, code, codeVerifier string) (*session.Session, error) {
	body := exchangeRequest{Code: code, CodeVerifier: codeVerifier}
	return g.post(ctx, StageExchange, g.baseURL+RouteAuthSpotify, body)
}

// Refresh asks the backend to refresh the user's delegated token.
func (g *Gateway) Refresh(ctx context.Context, userID int64) (*session.Session, error) {
	return g.post(ctx, StageRefresh, g.baseURL+fmt.Sprintf(RouteAuthRefresh, userID), nil)
}

func (g *Gateway) post(ctx context.Context, stage Stage, url string, body any) (*session.Session, error) {
	var s session.Session
	if err := httpjson.Do(ctx, g.client, http.MethodPost, url, body, &s); err != nil {
		return nil, toAuthFailure(stage, err)
	}
	return &s, nil
}

func toAuthFailure(stage Stage, err error) *AuthFailure {
	var statusErr *httpjson.StatusError
	if errors.As(err, &statusErr) {
		return &AuthFailure{Stage: stage, Status: utils.Ptr(statusErr.Status), Body: statusErr.Body}
	}
	return &AuthFailure{Stage: stage, Body: err.Error()}
}
