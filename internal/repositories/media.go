package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/igsync/internal/models"
	"github.com/desertthunder/igsync/internal/shared"
)

const mediaColumns = `id, account_id, media_id, media_type, media_url, thumbnail_url,
	permalink, caption, captured_at, like_count, comment_count, created_at, updated_at`

// MediaRepository persists [models.Media] rows keyed by the remote media id.
type MediaRepository struct {
	db *sql.DB
}

// NewMediaRepository creates a new [MediaRepository] with the given database connection.
func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Upsert inserts the media item or, when a row for the same remote media_id
// already exists, updates it in place. The unique constraint on media_id
// backs this up, so concurrent syncs cannot create two rows for the same
// remote item.
func (r *MediaRepository) Upsert(media *models.Media) error {
	now := time.Now()
	media.UpdatedAt = now

	if media.ID == "" {
		media.ID = shared.GenerateID()
		media.CreatedAt = now
	}

	if err := media.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO instagram_media (` + mediaColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(media_id) DO UPDATE SET
			account_id = excluded.account_id,
			media_type = excluded.media_type,
			media_url = excluded.media_url,
			thumbnail_url = excluded.thumbnail_url,
			permalink = excluded.permalink,
			caption = excluded.caption,
			captured_at = excluded.captured_at,
			like_count = excluded.like_count,
			comment_count = excluded.comment_count,
			updated_at = excluded.updated_at
	`
	_, err := r.db.Exec(query,
		media.ID, media.AccountID, media.MediaID, media.MediaType, media.MediaURL,
		media.ThumbnailURL, media.Permalink, media.Caption, nullableTime(media.CapturedAt),
		media.LikeCount, media.CommentCount, media.CreatedAt, media.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert media: %w", err)
	}

	return nil
}

// FindByMediaID retrieves a media item by its remote identifier.
func (r *MediaRepository) FindByMediaID(mediaID string) (*models.Media, error) {
	query := "SELECT " + mediaColumns + " FROM instagram_media WHERE media_id = ?"

	media, err := scanMedia(r.db.QueryRow(query, mediaID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("media not found: %s", mediaID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	return media, nil
}

// ListByAccount retrieves all media owned by an account, newest first.
func (r *MediaRepository) ListByAccount(accountID string) ([]*models.Media, error) {
	query := "SELECT " + mediaColumns + ` FROM instagram_media
		WHERE account_id = ?
		ORDER BY captured_at DESC, created_at DESC`

	rows, err := r.db.Query(query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	defer rows.Close()

	var items []*models.Media
	for rows.Next() {
		media, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		items = append(items, media)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// CountByAccount returns the number of stored media rows for an account.
func (r *MediaRepository) CountByAccount(accountID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM instagram_media WHERE account_id = ?", accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count media: %w", err)
	}
	return count, nil
}

// DeleteByAccount removes all media owned by an account.
func (r *MediaRepository) DeleteByAccount(accountID string) error {
	if _, err := r.db.Exec("DELETE FROM instagram_media WHERE account_id = ?", accountID); err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedia(row rowScanner) (*models.Media, error) {
	var (
		media      models.Media
		capturedAt sql.NullTime
	)

	err := row.Scan(
		&media.ID, &media.AccountID, &media.MediaID, &media.MediaType, &media.MediaURL,
		&media.ThumbnailURL, &media.Permalink, &media.Caption, &capturedAt,
		&media.LikeCount, &media.CommentCount, &media.CreatedAt, &media.UpdatedAt)
	if err != nil {
		return nil, err
	}

	media.CapturedAt = timePtr(capturedAt)
	return &media, nil
}
