// package tasks implements the account linking and data synchronization
// engine.
//
// The core abstraction is AccountEngine, which orchestrates the OAuth
// linking sequence, keeps long-lived tokens fresh, and syncs remote profile
// and media data into the local store. Operations emit progress updates via
// channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/igsync/internal/models"
	"github.com/desertthunder/igsync/internal/services"
	"github.com/desertthunder/igsync/internal/shared"
)

const (
	// DefaultTokenLifetime applies when the Graph API omits expires_in on a
	// long-lived token (60 days).
	DefaultTokenLifetime = 5184000 * time.Second

	// RefreshHorizon is how close to expiry a token may get before Sync
	// refreshes it lazily.
	RefreshHorizon = 7 * 24 * time.Hour
)

// AccountStore is the persistence contract for linked accounts.
// This abstraction decouples the engine from the concrete sqlite layer.
type AccountStore interface {
	FindByUserID(userID string) (*models.Account, error)
	FindActiveByUserID(userID string) (*models.Account, error)
	ExistsActiveByUserID(userID string) (bool, error)
	Save(account *models.Account) error
	Delete(id string) error
}

// MediaStore is the persistence contract for synchronized media.
type MediaStore interface {
	Upsert(media *models.Media) error
	ListByAccount(accountID string) ([]*models.Media, error)
	CountByAccount(accountID string) (int, error)
	DeleteByAccount(accountID string) error
}

// LinkIntent is the result of initiating a link: the URL to send the user
// to and the state token the callback must echo.
type LinkIntent struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

// LinkResult summarizes a completed link or token refresh.
type LinkResult struct {
	UserID            string    `json:"user_id"`
	InstagramUserID   string    `json:"instagram_user_id"`
	Username          string    `json:"username"`
	Name              string    `json:"name"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	TokenExpiresAt    time.Time `json:"token_expires_at"`
	Message           string    `json:"message"`
	Success           bool      `json:"success"`
}

// Paging carries the media pagination hint.
type Paging struct {
	HasMore bool `json:"has_more"`
}

// SyncResult is the combined outcome of a profile + media sync.
type SyncResult struct {
	Profile *services.Profile `json:"profile"`
	Media   []services.Media  `json:"media"`
	Paging  Paging            `json:"paging"`
}

// AccountEngine orchestrates linking, token lifecycle and data sync.
type AccountEngine struct {
	oauth    services.OAuthClient
	profiles services.ProfileClient
	media    services.MediaClient
	states   *services.StateStore

	accounts  AccountStore
	mediaRepo MediaStore

	logger *log.Logger
	now    func() time.Time
}

// NewAccountEngine creates an AccountEngine with the provided clients and stores.
func NewAccountEngine(
	oauth services.OAuthClient,
	profiles services.ProfileClient,
	media services.MediaClient,
	states *services.StateStore,
	accounts AccountStore,
	mediaRepo MediaStore,
	logger *log.Logger,
) *AccountEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &AccountEngine{
		oauth:     oauth,
		profiles:  profiles,
		media:     media,
		states:    states,
		accounts:  accounts,
		mediaRepo: mediaRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// InitiateLink issues a CSRF state token for userID and returns the
// authorization URL to redirect the user to.
func (e *AccountEngine) InitiateLink(userID string) (*LinkIntent, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId", shared.ErrMissingArgument)
	}

	state := e.states.Issue(userID)
	e.logger.Info("generated authorization url", "user", userID)

	return &LinkIntent{
		AuthorizationURL: e.oauth.AuthURL(state),
		State:            state,
	}, nil
}

// CompleteLink handles the OAuth callback: it consumes the state, drives
// both token exchanges, resolves the business account, fetches the profile
// and commits the account record.
//
// The save in the final step is the only durable mutation; a failure
// anywhere before it leaves no trace.
func (e *AccountEngine) CompleteLink(ctx context.Context, code, state string, progress chan<- ProgressUpdate) (*LinkResult, error) {
	sendProgress(progress, phaseUpdate(ValidateState, 1, 6, "Validating callback state..."))
	userID, err := e.states.Consume(state)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, phaseUpdate(ExchangeCode, 2, 6, "Exchanging authorization code..."))
	shortLived, err := e.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, phaseUpdate(UpgradeToken, 3, 6, "Upgrading to long-lived token..."))
	longLived, err := e.oauth.UpgradeToken(ctx, shortLived.AccessToken)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, phaseUpdate(ResolveAccount, 4, 6, "Resolving business account..."))
	businessID, err := e.profiles.BusinessAccountID(ctx, longLived.AccessToken)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, phaseUpdate(FetchProfile, 5, 6, "Fetching profile..."))
	profile, err := e.profiles.FetchProfile(ctx, longLived.AccessToken, businessID)
	if err != nil {
		return nil, err
	}

	expiresAt := e.tokenExpiry(longLived.ExpiresIn)

	account, err := e.accounts.FindByUserID(userID)
	if err != nil {
		if !errors.Is(err, shared.ErrAccountNotFound) {
			return nil, err
		}
		account = &models.Account{UserID: userID}
	}

	applyProfile(account, profile)
	account.BusinessAccountID = businessID
	account.AccessToken = longLived.AccessToken
	account.TokenType = longLived.TokenType
	account.TokenExpiresAt = expiresAt
	account.Active = true

	sendProgress(progress, phaseUpdate(SaveAccount, 6, 6, "Saving account..."))
	if err := e.accounts.Save(account); err != nil {
		return nil, err
	}

	e.logger.Info("linked instagram account", "user", userID, "username", profile.Username)

	return &LinkResult{
		UserID:            userID,
		InstagramUserID:   profile.ID,
		Username:          profile.Username,
		Name:              profile.Name,
		ProfilePictureURL: profile.ProfilePictureURL,
		TokenExpiresAt:    expiresAt,
		Message:           "Instagram account linked successfully",
		Success:           true,
	}, nil
}

// EnsureFresh refreshes the account's token when it expires within
// [RefreshHorizon], persisting the new token and expiry. Accounts with more
// runway are returned unchanged.
func (e *AccountEngine) EnsureFresh(ctx context.Context, account *models.Account) (*models.Account, error) {
	if !account.TokenExpiresWithin(e.now(), RefreshHorizon) {
		return account, nil
	}

	e.logger.Info("token expiring soon, refreshing", "user", account.UserID)
	return account, e.refreshAccountToken(ctx, account)
}

// Sync fetches the current remote profile and media and upserts them into
// local storage, refreshing the token first when needed.
func (e *AccountEngine) Sync(ctx context.Context, userID string, mediaLimit int, progress chan<- ProgressUpdate) (*SyncResult, error) {
	account, err := e.accounts.FindActiveByUserID(userID)
	if err != nil {
		return nil, err
	}

	if account.TokenExpiresWithin(e.now(), RefreshHorizon) {
		sendProgress(progress, phaseUpdate(RefreshToken, 1, 4, "Refreshing access token..."))
		if err := e.refreshAccountToken(ctx, account); err != nil {
			return nil, err
		}
	}

	if mediaLimit <= 0 {
		mediaLimit = services.DefaultMediaLimit
	}
	if mediaLimit > services.MaxMediaLimit {
		mediaLimit = services.MaxMediaLimit
	}

	sendProgress(progress, phaseUpdate(FetchProfile, 2, 4, "Fetching profile..."))
	profile, err := e.profiles.FetchProfile(ctx, account.AccessToken, account.BusinessAccountID)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, phaseUpdate(FetchMedia, 3, 4, "Fetching media..."))
	items, hasMore, err := e.media.FetchMedia(ctx, account.AccessToken, account.BusinessAccountID, mediaLimit)
	if err != nil {
		return nil, err
	}

	applyProfile(account, profile)
	if err := e.accounts.Save(account); err != nil {
		return nil, err
	}

	sendProgress(progress, phaseUpdate(PersistMedia, 4, 4, "Persisting %d media items...", len(items)))
	if err := e.persistMedia(account, items); err != nil {
		return nil, err
	}

	e.logger.Info("synced instagram data", "user", userID, "media", len(items))

	return &SyncResult{
		Profile: profile,
		Media:   items,
		Paging:  Paging{HasMore: hasMore},
	}, nil
}

// RefreshToken refreshes the active account's token unconditionally.
func (e *AccountEngine) RefreshToken(ctx context.Context, userID string) (*LinkResult, error) {
	account, err := e.accounts.FindActiveByUserID(userID)
	if err != nil {
		return nil, err
	}

	if err := e.refreshAccountToken(ctx, account); err != nil {
		return nil, err
	}

	return &LinkResult{
		UserID:            account.UserID,
		InstagramUserID:   account.InstagramUserID,
		Username:          account.Username,
		Name:              account.Name,
		ProfilePictureURL: account.ProfilePictureURL,
		TokenExpiresAt:    account.TokenExpiresAt,
		Message:           "Token refreshed successfully",
		Success:           true,
	}, nil
}

// Unlink removes the link for userID. With deleteData the account row and
// all of its media are hard-deleted; otherwise the row stays with the token
// cleared and active set to false.
func (e *AccountEngine) Unlink(ctx context.Context, userID string, deleteData bool) error {
	account, err := e.accounts.FindByUserID(userID)
	if err != nil {
		return err
	}

	if deleteData {
		if err := e.mediaRepo.DeleteByAccount(account.ID); err != nil {
			return err
		}
		if err := e.accounts.Delete(account.ID); err != nil {
			return err
		}
		e.logger.Info("deleted linked account and media", "user", userID)
		return nil
	}

	account.Active = false
	account.AccessToken = ""
	if err := e.accounts.Save(account); err != nil {
		return err
	}

	e.logger.Info("deactivated linked account", "user", userID)
	return nil
}

// IsLinked reports whether userID has an active linked account.
func (e *AccountEngine) IsLinked(userID string) (bool, error) {
	return e.accounts.ExistsActiveByUserID(userID)
}

// Account returns the active linked account for userID.
func (e *AccountEngine) Account(userID string) (*models.Account, error) {
	return e.accounts.FindActiveByUserID(userID)
}

// StoredMedia returns the linked account and every media row already
// persisted for it, newest first. Reads only the local store.
func (e *AccountEngine) StoredMedia(userID string) (*models.Account, []*models.Media, error) {
	account, err := e.accounts.FindByUserID(userID)
	if err != nil {
		return nil, nil, err
	}
	items, err := e.mediaRepo.ListByAccount(account.ID)
	if err != nil {
		return nil, nil, err
	}
	return account, items, nil
}

// refreshAccountToken performs the refresh call and persists the new token
// and expiry on the account.
func (e *AccountEngine) refreshAccountToken(ctx context.Context, account *models.Account) error {
	refreshed, err := e.oauth.Refresh(ctx, account.AccessToken)
	if err != nil {
		e.logger.Error("refresh failed", "user", account.UserID, "err", err)
		return err
	}

	account.AccessToken = refreshed.AccessToken
	account.TokenExpiresAt = e.tokenExpiry(refreshed.ExpiresIn)

	if err := e.accounts.Save(account); err != nil {
		return err
	}

	e.logger.Info("token refreshed", "user", account.UserID, "expires", account.TokenExpiresAt)
	return nil
}

// persistMedia upserts each fetched item by its remote id. A timestamp that
// fails to parse is logged and the item stored without a capture time; it
// never aborts the batch.
func (e *AccountEngine) persistMedia(account *models.Account, items []services.Media) error {
	for _, item := range items {
		media := &models.Media{
			AccountID:    account.ID,
			MediaID:      item.ID,
			MediaType:    item.MediaType,
			MediaURL:     item.MediaURL,
			ThumbnailURL: item.ThumbnailURL,
			Permalink:    item.Permalink,
			Caption:      item.Caption,
			LikeCount:    item.LikeCount,
			CommentCount: item.CommentsCount,
		}

		if item.Timestamp != "" {
			if ts, err := parseMediaTimestamp(item.Timestamp); err == nil {
				media.CapturedAt = &ts
			} else {
				e.logger.Warn("failed to parse media timestamp", "media", item.ID, "value", item.Timestamp)
			}
		}

		if err := e.mediaRepo.Upsert(media); err != nil {
			return err
		}
	}

	return nil
}

// tokenExpiry converts an expires_in value into an absolute expiry, falling
// back to the 60-day default when the API omitted it.
func (e *AccountEngine) tokenExpiry(expiresIn int64) time.Time {
	if expiresIn <= 0 {
		return e.now().Add(DefaultTokenLifetime)
	}
	return e.now().Add(time.Duration(expiresIn) * time.Second)
}

// parseMediaTimestamp handles both RFC 3339 and the Graph API's
// colon-less zone offset format.
func parseMediaTimestamp(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05-0700", value)
}

func applyProfile(account *models.Account, profile *services.Profile) {
	account.InstagramUserID = profile.ID
	account.Username = profile.Username
	account.Name = profile.Name
	account.ProfilePictureURL = profile.ProfilePictureURL
	account.Biography = profile.Biography
	account.Website = profile.Website
	account.FollowersCount = profile.FollowersCount
	account.FollowingCount = profile.FollowsCount
	account.MediaCount = profile.MediaCount
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
