package models

import (
	"time"

	"github.com/desertthunder/igsync/internal/shared"
)

// Model defines the base interface for all persistent models.
type Model interface {
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Save(model T) error       // Save inserts or updates a model in the database
	Get(id string) (T, error) // Get retrieves a model by its ID
	Delete(id string) error   // Delete removes a model from the database by its ID
}

// Account represents a linked Instagram business account for a host-app user.
//
// At most one active account exists per UserID; InstagramUserID uniquely
// identifies the remote identity across all local users.
type Account struct {
	ID                string
	UserID            string
	InstagramUserID   string
	BusinessAccountID string

	Username          string
	Name              string
	ProfilePictureURL string
	Biography         string
	Website           string
	FollowersCount    int
	FollowingCount    int
	MediaCount        int

	AccessToken    string
	TokenType      string
	TokenExpiresAt time.Time

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks required account fields.
func (a *Account) Validate() error {
	if a.UserID == "" {
		return shared.ErrInvalidInput
	}
	return nil
}

// TokenExpiresWithin reports whether the stored token expires before now+d.
//
// A zero TokenExpiresAt means the expiry is unknown and is treated as
// expiring, so stale links get refreshed rather than silently reused.
func (a *Account) TokenExpiresWithin(now time.Time, d time.Duration) bool {
	return a.TokenExpiresAt.Before(now.Add(d))
}

// Media represents a single synchronized Instagram media item.
//
// MediaID is the remote identifier and is globally unique regardless of the
// owning account; syncs upsert by that key.
type Media struct {
	ID        string
	AccountID string
	MediaID   string

	MediaType    string
	MediaURL     string
	ThumbnailURL string
	Permalink    string
	Caption      string

	// CapturedAt is nil when the remote timestamp was absent or unparseable.
	CapturedAt   *time.Time
	LikeCount    int
	CommentCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks required media fields.
func (m *Media) Validate() error {
	if m.MediaID == "" || m.AccountID == "" {
		return shared.ErrInvalidInput
	}
	return nil
}
