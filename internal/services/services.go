package services

import "context"

// TokenResponse is the Graph API token payload shared by the code exchange,
// long-lived upgrade and refresh endpoints.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresIn is seconds until expiry. The Graph API sometimes omits it;
	// callers apply the 60-day default lifetime rather than treating the
	// token as already expired.
	ExpiresIn int64 `json:"expires_in"`
}

// Profile represents an Instagram business account profile.
type Profile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profile_picture_url"`
	Biography         string `json:"biography"`
	Website           string `json:"website"`
	FollowersCount    int    `json:"followers_count"`
	FollowsCount      int    `json:"follows_count"`
	MediaCount        int    `json:"media_count"`
	AccountType       string `json:"account_type"`
}

// Media represents a single media item as returned by the Graph API.
type Media struct {
	ID            string `json:"id"`
	MediaType     string `json:"media_type"`
	MediaURL      string `json:"media_url"`
	ThumbnailURL  string `json:"thumbnail_url"`
	Permalink     string `json:"permalink"`
	Caption       string `json:"caption"`
	Timestamp     string `json:"timestamp"`
	LikeCount     int    `json:"like_count"`
	CommentsCount int    `json:"comments_count"`
}

// OAuthClient drives the token side of a linking attempt. All four
// operations are side-effect free beyond the external call itself.
type OAuthClient interface {
	// AuthURL builds the provider authorization URL with the configured
	// client id and scope, echoing state back unmodified.
	AuthURL(state string) string

	// ExchangeCode exchanges a single-use authorization code for a
	// short-lived token. The code must not be retried on failure.
	ExchangeCode(ctx context.Context, code string) (*TokenResponse, error)

	// UpgradeToken exchanges a short-lived token for a long-lived one.
	UpgradeToken(ctx context.Context, shortLivedToken string) (*TokenResponse, error)

	// Refresh extends a long-lived token before it expires. A failure means
	// the user must re-authenticate, not that the caller should retry.
	Refresh(ctx context.Context, accessToken string) (*TokenResponse, error)
}

// ProfileClient reads the linked account's identity from the Graph API.
type ProfileClient interface {
	// BusinessAccountID scans the token owner's managed pages for one
	// exposing a linked Instagram business account and returns the first
	// match.
	BusinessAccountID(ctx context.Context, accessToken string) (string, error)

	// FetchProfile reads the business account's profile attributes.
	FetchProfile(ctx context.Context, accessToken, businessAccountID string) (*Profile, error)
}

// MediaClient reads the linked account's media list.
//
// hasMore is approximated as "returned count equals the requested limit";
// the interface isolates that so cursor-based paging can replace it without
// touching callers.
type MediaClient interface {
	FetchMedia(ctx context.Context, accessToken, businessAccountID string, limit int) (items []Media, hasMore bool, err error)
}
