package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/qoolink/server/types"
)

// LinkRepository handles persistence for links.
type LinkRepository struct {
	db *sql.DB
}

func NewLinkRepository(db *sql.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create inserts the link. Slug uniqueness is global; of two concurrent
// creators for the same slug exactly one insert succeeds and the other
// observes ErrDuplicate.
func (r *LinkRepository) Create(ctx context.Context, link types.Link) (types.Link, error) {
	link.ID = uuid.NewString()
	link.CreatedAt = time.Now()

	const query = `
		INSERT INTO links (id, slug, url, title, publish, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		link.ID,
		link.Slug,
		link.URL,
		link.Title,
		link.Publish,
		link.UserID,
		link.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Link{}, ErrDuplicate
		}
		return types.Link{}, err
	}
	return link, nil
}

func (r *LinkRepository) ListByOwner(ctx context.Context, userID string) ([]types.Link, error) {
	const query = `
		SELECT id, slug, url, title, publish, user_id, clicks, created_at
		FROM links
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []types.Link
	for rows.Next() {
		var link types.Link
		if err := rows.Scan(
			&link.ID,
			&link.Slug,
			&link.URL,
			&link.Title,
			&link.Publish,
			&link.UserID,
			&link.Clicks,
			&link.CreatedAt,
		); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// FindURLBySlug reads only the destination column. This is the public
// redirect hot path; the slug unique index keeps it a single indexed read.
func (r *LinkRepository) FindURLBySlug(ctx context.Context, slug string) (string, error) {
	const query = `SELECT url FROM links WHERE slug = $1`
	var destination string
	if err := r.db.QueryRowContext(ctx, query, slug).Scan(&destination); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return destination, nil
}

// IncrementClicks bumps the visit counter for a slug. Used by the click
// worker; a miss is not an error, the link may have been removed since the
// event was published.
func (r *LinkRepository) IncrementClicks(ctx context.Context, slug string) error {
	const query = `UPDATE links SET clicks = clicks + 1 WHERE slug = $1`
	_, err := r.db.ExecContext(ctx, query, slug)
	return err
}
