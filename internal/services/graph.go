// Graph API implementation of [OAuthClient], [ProfileClient] and [MediaClient]
//
// Endpoint shapes based on https://developers.facebook.com/docs/instagram-api
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/igsync/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultAuthURL    = "https://www.facebook.com/v18.0/dialog/oauth"
	defaultTokenURL   = "https://graph.facebook.com/v18.0/oauth/access_token"
	defaultGraphURL   = "https://graph.facebook.com/v18.0"
	defaultRefreshURL = "https://graph.instagram.com"

	profileFields = "id,username,name,profile_picture_url,biography,website,followers_count,follows_count,media_count,account_type"
	mediaFields   = "id,media_type,media_url,thumbnail_url,permalink,caption,timestamp,like_count,comments_count"

	// DefaultMediaLimit bounds media reads when the caller passes no limit;
	// MaxMediaLimit caps what a caller may request.
	DefaultMediaLimit = 25
	MaxMediaLimit     = 100

	requestTimeout = 15 * time.Second
	// getRetries applies only to idempotent GET reads. Token-exchange calls
	// consume a one-time code and are never retried.
	getRetries = 2
)

// GraphService talks to the Facebook and Instagram Graph APIs.
type GraphService struct {
	config     *oauth2.Config
	graphURL   string
	refreshURL string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewGraphService creates a Graph API client from the given app registration.
func NewGraphService(cfg shared.InstagramConfig, logger *log.Logger) (*GraphService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret", shared.ErrMissingCredentials)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = defaultAuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	graphURL := cfg.GraphURL
	if graphURL == "" {
		graphURL = defaultGraphURL
	}
	refreshURL := cfg.RefreshURL
	if refreshURL == "" {
		refreshURL = defaultRefreshURL
	}

	scope := cfg.Scope
	if scope == "" {
		scope = "instagram_basic,pages_show_list"
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       []string{scope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}

	return &GraphService{
		config:     config,
		graphURL:   graphURL,
		refreshURL: refreshURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
		logger:     logger,
	}, nil
}

// AuthURL returns the authorization URL for the given CSRF state token.
func (g *GraphService) AuthURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for a short-lived token.
func (g *GraphService) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		g.logger.Error("code exchange failed", "err", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
	}

	resp := &TokenResponse{AccessToken: token.AccessToken, TokenType: token.TokenType}
	if !token.Expiry.IsZero() {
		resp.ExpiresIn = int64(time.Until(token.Expiry).Seconds())
	}
	return resp, nil
}

// UpgradeToken exchanges a short-lived token for a long-lived one via the
// fb_exchange_token grant.
func (g *GraphService) UpgradeToken(ctx context.Context, shortLivedToken string) (*TokenResponse, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", g.config.ClientID)
	params.Set("client_secret", g.config.ClientSecret)
	params.Set("fb_exchange_token", shortLivedToken)

	var token TokenResponse
	if err := g.get(ctx, g.graphURL+"/oauth/access_token?"+params.Encode(), &token); err != nil {
		g.logger.Error("long-lived token exchange failed", "err", err)
		return nil, fmt.Errorf("%w: long-lived exchange: %v", shared.ErrTokenExchange, err)
	}
	return &token, nil
}

// Refresh extends a long-lived token via the ig_refresh_token grant.
func (g *GraphService) Refresh(ctx context.Context, accessToken string) (*TokenResponse, error) {
	params := url.Values{}
	params.Set("grant_type", "ig_refresh_token")
	params.Set("access_token", accessToken)

	var token TokenResponse
	if err := g.get(ctx, g.refreshURL+"/refresh_access_token?"+params.Encode(), &token); err != nil {
		g.logger.Error("token refresh failed", "err", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	return &token, nil
}

// BusinessAccountID finds the Instagram business account linked to one of
// the token owner's managed pages.
func (g *GraphService) BusinessAccountID(ctx context.Context, accessToken string) (string, error) {
	params := url.Values{}
	params.Set("fields", "instagram_business_account")
	params.Set("access_token", accessToken)

	var payload struct {
		Data []struct {
			ID                       string `json:"id"`
			InstagramBusinessAccount *struct {
				ID string `json:"id"`
			} `json:"instagram_business_account"`
		} `json:"data"`
	}

	if err := g.get(ctx, g.graphURL+"/me/accounts?"+params.Encode(), &payload); err != nil {
		g.logger.Error("failed to list managed pages", "err", err)
		return "", fmt.Errorf("%w: list pages: %v", shared.ErrProfileFetch, err)
	}

	for _, page := range payload.Data {
		if page.InstagramBusinessAccount != nil && page.InstagramBusinessAccount.ID != "" {
			return page.InstagramBusinessAccount.ID, nil
		}
	}

	return "", shared.ErrNoBusinessAccount
}

// FetchProfile reads the business account profile.
func (g *GraphService) FetchProfile(ctx context.Context, accessToken, businessAccountID string) (*Profile, error) {
	params := url.Values{}
	params.Set("fields", profileFields)
	params.Set("access_token", accessToken)

	var profile Profile
	if err := g.get(ctx, g.graphURL+"/"+businessAccountID+"?"+params.Encode(), &profile); err != nil {
		g.logger.Error("profile fetch failed", "account", businessAccountID, "err", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrProfileFetch, err)
	}
	return &profile, nil
}

// FetchMedia reads up to limit media items for the business account.
func (g *GraphService) FetchMedia(ctx context.Context, accessToken, businessAccountID string, limit int) ([]Media, bool, error) {
	if limit <= 0 {
		limit = DefaultMediaLimit
	}
	if limit > MaxMediaLimit {
		limit = MaxMediaLimit
	}

	params := url.Values{}
	params.Set("fields", mediaFields)
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("access_token", accessToken)

	var payload struct {
		Data []Media `json:"data"`
	}

	if err := g.get(ctx, g.graphURL+"/"+businessAccountID+"/media?"+params.Encode(), &payload); err != nil {
		g.logger.Error("media fetch failed", "account", businessAccountID, "err", err)
		return nil, false, fmt.Errorf("%w: %v", shared.ErrMediaFetch, err)
	}

	// hasMore is inferred from count equality; the Graph cursor is not
	// modeled here.
	return payload.Data, len(payload.Data) == limit, nil
}

// get performs a rate-limited GET with bounded retries on transport errors
// and 5xx responses, decoding the JSON body into result.
func (g *GraphService) get(ctx context.Context, fullURL string, result any) error {
	var lastErr error

	for attempt := 0; attempt <= getRetries; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("graph API error: status %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return fmt.Errorf("graph API error: status %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(result)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return lastErr
}
