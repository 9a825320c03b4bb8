// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"

	"github.com/desertthunder/igsync/internal/services"
)

// MockOAuthClient is a configurable test double for [services.OAuthClient].
// Unset functions return empty successful responses.
type MockOAuthClient struct {
	AuthURLFunc      func(state string) string
	ExchangeCodeFunc func(ctx context.Context, code string) (*services.TokenResponse, error)
	UpgradeTokenFunc func(ctx context.Context, shortLivedToken string) (*services.TokenResponse, error)
	RefreshFunc      func(ctx context.Context, accessToken string) (*services.TokenResponse, error)

	RefreshCalls int
}

func (m *MockOAuthClient) AuthURL(state string) string {
	if m.AuthURLFunc != nil {
		return m.AuthURLFunc(state)
	}
	return "https://auth.example.com/?state=" + state
}

func (m *MockOAuthClient) ExchangeCode(ctx context.Context, code string) (*services.TokenResponse, error) {
	if m.ExchangeCodeFunc != nil {
		return m.ExchangeCodeFunc(ctx, code)
	}
	return &services.TokenResponse{AccessToken: "short"}, nil
}

func (m *MockOAuthClient) UpgradeToken(ctx context.Context, shortLivedToken string) (*services.TokenResponse, error) {
	if m.UpgradeTokenFunc != nil {
		return m.UpgradeTokenFunc(ctx, shortLivedToken)
	}
	return &services.TokenResponse{AccessToken: "long", ExpiresIn: 5184000}, nil
}

func (m *MockOAuthClient) Refresh(ctx context.Context, accessToken string) (*services.TokenResponse, error) {
	m.RefreshCalls++
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, accessToken)
	}
	return &services.TokenResponse{AccessToken: "refreshed", ExpiresIn: 5184000}, nil
}

// MockProfileClient is a test double for [services.ProfileClient].
type MockProfileClient struct {
	BusinessAccountIDFunc func(ctx context.Context, accessToken string) (string, error)
	FetchProfileFunc      func(ctx context.Context, accessToken, businessAccountID string) (*services.Profile, error)
}

func (m *MockProfileClient) BusinessAccountID(ctx context.Context, accessToken string) (string, error) {
	if m.BusinessAccountIDFunc != nil {
		return m.BusinessAccountIDFunc(ctx, accessToken)
	}
	return "b1", nil
}

func (m *MockProfileClient) FetchProfile(ctx context.Context, accessToken, businessAccountID string) (*services.Profile, error) {
	if m.FetchProfileFunc != nil {
		return m.FetchProfileFunc(ctx, accessToken, businessAccountID)
	}
	return &services.Profile{ID: "ig1", Username: "alice"}, nil
}

// MockMediaClient is a test double for [services.MediaClient].
type MockMediaClient struct {
	FetchMediaFunc func(ctx context.Context, accessToken, businessAccountID string, limit int) ([]services.Media, bool, error)
}

func (m *MockMediaClient) FetchMedia(ctx context.Context, accessToken, businessAccountID string, limit int) ([]services.Media, bool, error) {
	if m.FetchMediaFunc != nil {
		return m.FetchMediaFunc(ctx, accessToken, businessAccountID, limit)
	}
	return nil, false, nil
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
