package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/igsync/internal/models"
	"github.com/desertthunder/igsync/internal/shared"
)

const accountColumns = `id, user_id, instagram_user_id, business_account_id, username, name,
	profile_picture_url, biography, website, followers_count, following_count, media_count,
	access_token, token_type, token_expires_at, is_active, created_at, updated_at`

// AccountRepository persists [models.Account] rows.
//
// user_id and instagram_user_id carry unique constraints, so a second
// insert for the same key fails at the store rather than silently forking
// the link.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new [AccountRepository] with the given database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Save inserts the account when it has no ID yet, otherwise updates the
// existing row. Every mutation of a linked account flows through here.
func (r *AccountRepository) Save(account *models.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	account.UpdatedAt = now

	if account.ID == "" {
		account.ID = shared.GenerateID()
		account.CreatedAt = now

		query := `
			INSERT INTO instagram_accounts (` + accountColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := r.db.Exec(query,
			account.ID, account.UserID, nullIfEmpty(account.InstagramUserID), account.BusinessAccountID,
			account.Username, account.Name, account.ProfilePictureURL, account.Biography, account.Website,
			account.FollowersCount, account.FollowingCount, account.MediaCount,
			nullIfEmpty(account.AccessToken), account.TokenType, nullableTime(expiryPtr(account.TokenExpiresAt)),
			account.Active, account.CreatedAt, account.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert account: %w", err)
		}
		return nil
	}

	query := `
		UPDATE instagram_accounts
		SET user_id = ?, instagram_user_id = ?, business_account_id = ?, username = ?, name = ?,
			profile_picture_url = ?, biography = ?, website = ?, followers_count = ?,
			following_count = ?, media_count = ?, access_token = ?, token_type = ?,
			token_expires_at = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		account.UserID, nullIfEmpty(account.InstagramUserID), account.BusinessAccountID,
		account.Username, account.Name, account.ProfilePictureURL, account.Biography, account.Website,
		account.FollowersCount, account.FollowingCount, account.MediaCount,
		nullIfEmpty(account.AccessToken), account.TokenType, nullableTime(expiryPtr(account.TokenExpiresAt)),
		account.Active, account.UpdatedAt, account.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: id %s", shared.ErrAccountNotFound, account.ID)
	}

	return nil
}

// FindByUserID retrieves the account for a host-app user regardless of
// active flag. Returns [shared.ErrAccountNotFound] when absent.
func (r *AccountRepository) FindByUserID(userID string) (*models.Account, error) {
	return r.findOne("user_id = ?", userID)
}

// FindByRemoteID retrieves the account owning the given Instagram user id.
func (r *AccountRepository) FindByRemoteID(instagramUserID string) (*models.Account, error) {
	return r.findOne("instagram_user_id = ?", instagramUserID)
}

// FindActiveByUserID retrieves the active account for a host-app user.
func (r *AccountRepository) FindActiveByUserID(userID string) (*models.Account, error) {
	return r.findOne("user_id = ? AND is_active = 1", userID)
}

// ExistsActiveByUserID reports whether an active link exists for the user.
func (r *AccountRepository) ExistsActiveByUserID(userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM instagram_accounts WHERE user_id = ? AND is_active = 1)",
		userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query account: %w", err)
	}
	return exists, nil
}

// Get retrieves an account by its row ID.
func (r *AccountRepository) Get(id string) (*models.Account, error) {
	return r.findOne("id = ?", id)
}

// Delete hard-deletes an account row. Media rows cascade at the schema
// level, but callers delete media explicitly first so the removal order is
// visible in one place.
func (r *AccountRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM instagram_accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: id %s", shared.ErrAccountNotFound, id)
	}
	return nil
}

func (r *AccountRepository) findOne(where string, args ...any) (*models.Account, error) {
	query := "SELECT " + accountColumns + " FROM instagram_accounts WHERE " + where

	var (
		account     models.Account
		instagramID sql.NullString
		accessToken sql.NullString
		tokenType   sql.NullString
		expiresAt   sql.NullTime
	)

	err := r.db.QueryRow(query, args...).Scan(
		&account.ID, &account.UserID, &instagramID, &account.BusinessAccountID,
		&account.Username, &account.Name, &account.ProfilePictureURL, &account.Biography, &account.Website,
		&account.FollowersCount, &account.FollowingCount, &account.MediaCount,
		&accessToken, &tokenType, &expiresAt,
		&account.Active, &account.CreatedAt, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	account.InstagramUserID = instagramID.String
	account.AccessToken = accessToken.String
	account.TokenType = tokenType.String
	if expiresAt.Valid {
		account.TokenExpiresAt = expiresAt.Time
	}

	return &account, nil
}

// nullIfEmpty keeps the instagram_user_id unique index from tripping on
// multiple empty strings before the first profile fetch.
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func expiryPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
