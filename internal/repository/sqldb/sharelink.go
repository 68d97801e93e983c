package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

var _ repository.ShareLinkRepository = (*DB)(nil)

const shareLinkColumns = `id, hash, user_id, created_at`

// CreateShareLink inserts a share link. Both hash and user_id are unique, so
// a second link for the same user or a colliding hash yields
// apperror.ErrConflict. The caller tells the two apart by re-reading.
func (db *DB) CreateShareLink(ctx context.Context, link *model.ShareLink) error {
	link.ID = xid.New().String()
	link.CreatedAt = now()

	_, err := db.exec(ctx,
		`INSERT INTO share_links (`+shareLinkColumns+`) VALUES (?, ?, ?, ?)`,
		link.ID, link.Hash, link.UserID, link.CreatedAt,
	)
	if err != nil {
		if db.dialect.isUniqueViolation(err) {
			return apperror.Conflict("share link", "user_id or hash")
		}
		return fmt.Errorf("sqldb: inserting share link: %w", err)
	}
	return nil
}

// GetShareLinkByUser returns the user's active link, or apperror.ErrNotFound.
func (db *DB) GetShareLinkByUser(ctx context.Context, userID string) (*model.ShareLink, error) {
	link, err := scanShareLink(db.queryRow(ctx,
		`SELECT `+shareLinkColumns+` FROM share_links WHERE user_id = ?`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage("share link not found")
		}
		return nil, fmt.Errorf("sqldb: getting share link for user %s: %w", userID, err)
	}
	return link, nil
}

// GetShareLinkByHash returns the link published under hash, or
// apperror.ErrNotFound. Revoked and never-issued hashes look the same.
func (db *DB) GetShareLinkByHash(ctx context.Context, hash string) (*model.ShareLink, error) {
	link, err := scanShareLink(db.queryRow(ctx,
		`SELECT `+shareLinkColumns+` FROM share_links WHERE hash = ?`, hash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage("share link not found")
		}
		return nil, fmt.Errorf("sqldb: getting share link by hash: %w", err)
	}
	return link, nil
}

// DeleteShareLinkByUser removes the user's link if there is one.
func (db *DB) DeleteShareLinkByUser(ctx context.Context, userID string) error {
	if _, err := db.exec(ctx, `DELETE FROM share_links WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("sqldb: deleting share link for user %s: %w", userID, err)
	}
	return nil
}

func scanShareLink(row *sql.Row) (*model.ShareLink, error) {
	var l model.ShareLink
	if err := row.Scan(&l.ID, &l.Hash, &l.UserID, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}
