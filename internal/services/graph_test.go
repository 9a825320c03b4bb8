package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/igsync/internal/shared"
)

func testConfig(serverURL string) shared.InstagramConfig {
	return shared.InstagramConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/api/instagram/callback",
		AuthURL:      serverURL + "/dialog/oauth",
		TokenURL:     serverURL + "/oauth/access_token",
		GraphURL:     serverURL,
		RefreshURL:   serverURL,
	}
}

func TestNewGraphService(t *testing.T) {
	t.Run("Missing Credentials", func(t *testing.T) {
		_, err := NewGraphService(shared.InstagramConfig{}, nil)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("AuthURL Contains State", func(t *testing.T) {
		service, err := NewGraphService(testConfig("http://example.test"), nil)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := service.AuthURL("state-123")
		if !strings.Contains(authURL, "state=state-123") {
			t.Errorf("auth URL should carry the state token: %s", authURL)
		}
		if !strings.Contains(authURL, "client_id=client-id") {
			t.Errorf("auth URL should carry the client id: %s", authURL)
		}
	})
}

func TestGraphServiceTokens(t *testing.T) {
	t.Run("ExchangeCode", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/oauth/access_token" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"short-token","token_type":"bearer","expires_in":3600}`)
		}))
		defer ts.Close()

		service, err := NewGraphService(testConfig(ts.URL), nil)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		token, err := service.ExchangeCode(context.Background(), "auth-code")
		if err != nil {
			t.Fatalf("exchange failed: %v", err)
		}
		if token.AccessToken != "short-token" {
			t.Errorf("expected short-token, got %s", token.AccessToken)
		}
	})

	t.Run("ExchangeCode Failure", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		}))
		defer ts.Close()

		service, _ := NewGraphService(testConfig(ts.URL), nil)
		_, err := service.ExchangeCode(context.Background(), "bad-code")
		if !errors.Is(err, shared.ErrTokenExchange) {
			t.Errorf("expected ErrTokenExchange, got %v", err)
		}
	})

	t.Run("UpgradeToken", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()
			if query.Get("grant_type") != "fb_exchange_token" {
				t.Errorf("expected fb_exchange_token grant, got %s", query.Get("grant_type"))
			}
			if query.Get("fb_exchange_token") != "short-token" {
				t.Errorf("expected short-token, got %s", query.Get("fb_exchange_token"))
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"long-token","token_type":"bearer","expires_in":5184000}`)
		}))
		defer ts.Close()

		service, _ := NewGraphService(testConfig(ts.URL), nil)
		token, err := service.UpgradeToken(context.Background(), "short-token")
		if err != nil {
			t.Fatalf("upgrade failed: %v", err)
		}
		if token.AccessToken != "long-token" {
			t.Errorf("expected long-token, got %s", token.AccessToken)
		}
		if token.ExpiresIn != 5184000 {
			t.Errorf("expected 5184000s expiry, got %d", token.ExpiresIn)
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/refresh_access_token" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("grant_type") != "ig_refresh_token" {
				t.Errorf("expected ig_refresh_token grant, got %s", r.URL.Query().Get("grant_type"))
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"refreshed-token","token_type":"bearer","expires_in":5184000}`)
		}))
		defer ts.Close()

		service, _ := NewGraphService(testConfig(ts.URL), nil)
		token, err := service.Refresh(context.Background(), "long-token")
		if err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
		if token.AccessToken != "refreshed-token" {
			t.Errorf("expected refreshed-token, got %s", token.AccessToken)
		}
	})

	t.Run("Refresh Failure", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"expired"}`, http.StatusBadRequest)
		}))
		defer ts.Close()

		service, _ := NewGraphService(testConfig(ts.URL), nil)
		_, err := service.Refresh(context.Background(), "dead-token")
		if !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("expected ErrRefreshFailed, got %v", err)
		}
	})
}

func TestGraphServiceReads(t *testing.T) {
	t.Run("BusinessAccountID", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/accounts" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":[{"id":"page1"},{"id":"page2","instagram_business_account":{"id":"biz-42"}}]}`)
		}))
		defer ts.Close()

		service, _ := NewGraphService(testConfig(ts.URL), nil)
		id, err := service.BusinessAccountID(context.Background(), "token")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if id != "biz-42" {
			t.Errorf("expected biz-42, got %s", id)
		}
	})

	t.Run("BusinessAccountID None Linked", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":[{"id":"page1"}]}`)
		}))
		defer ts.Close()

		service, _ := NewGraphService(testConfig(ts.URL), nil)
		_, err := service.BusinessAccountID(context.Background(), "token")
		if !errors.Is(err, shared.ErrNoBusinessAccount) {
			t.Errorf("expected ErrNoBusinessAccount, got %v", err)
		}
	})

	t.Run("FetchProfile", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/biz-42" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if !strings.Contains(r.URL.Query().Get("fields"), "followers_count") {
				t.Errorf("expected profile fields in query, got %s", r.URL.Query().Get("fields"))
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"ig1","username":"alice","name":"Alice","followers_count":10,"follows_count":5,"media_count":3}`)
		}))
		defer ts.Close()

		service, _ := NewGraphService(testConfig(ts.URL), nil)
		profile, err := service.FetchProfile(context.Background(), "token", "biz-42")
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if profile.Username != "alice" {
			t.Errorf("expected alice, got %s", profile.Username)
		}
		if profile.FollowersCount != 10 {
			t.Errorf("expected 10 followers, got %d", profile.FollowersCount)
		}
	})

	t.Run("FetchMedia HasMore", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := r.URL.Query().Get("limit")
			if limit != "2" {
				t.Errorf("expected limit 2, got %s", limit)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":[{"id":"m1","media_type":"IMAGE"},{"id":"m2","media_type":"VIDEO"}]}`)
		}))
		defer ts.Close()

		service, _ := NewGraphService(testConfig(ts.URL), nil)
		items, hasMore, err := service.FetchMedia(context.Background(), "token", "biz-42", 2)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if !hasMore {
			t.Error("expected hasMore when the page is full")
		}
	})

	t.Run("FetchMedia Partial Page", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":[{"id":"m1","media_type":"IMAGE"}]}`)
		}))
		defer ts.Close()

		service, _ := NewGraphService(testConfig(ts.URL), nil)
		items, hasMore, err := service.FetchMedia(context.Background(), "token", "biz-42", 5)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
		if hasMore {
			t.Error("expected hasMore=false for a partial page")
		}
	})

	t.Run("FetchMedia Clamps Limit", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "100" {
				t.Errorf("expected limit clamped to 100, got %s", got)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":[]}`)
		}))
		defer ts.Close()

		service, _ := NewGraphService(testConfig(ts.URL), nil)
		if _, _, err := service.FetchMedia(context.Background(), "token", "biz-42", 500); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
	})

	t.Run("Retries On Server Error", func(t *testing.T) {
		attempts := 0
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"ig1","username":"alice"}`)
		}))
		defer ts.Close()

		service, _ := NewGraphService(testConfig(ts.URL), nil)
		profile, err := service.FetchProfile(context.Background(), "token", "biz-42")
		if err != nil {
			t.Fatalf("expected retry to succeed: %v", err)
		}
		if profile.Username != "alice" {
			t.Errorf("expected alice, got %s", profile.Username)
		}
		if attempts != 2 {
			t.Errorf("expected 2 attempts, got %d", attempts)
		}
	})

	t.Run("No Retry On Client Error", func(t *testing.T) {
		attempts := 0
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			http.Error(w, `{"error":"bad token"}`, http.StatusUnauthorized)
		}))
		defer ts.Close()

		service, _ := NewGraphService(testConfig(ts.URL), nil)
		_, err := service.FetchProfile(context.Background(), "token", "biz-42")
		if !errors.Is(err, shared.ErrProfileFetch) {
			t.Errorf("expected ErrProfileFetch, got %v", err)
		}
		if attempts != 1 {
			t.Errorf("expected a single attempt for a 4xx, got %d", attempts)
		}
	})
}
