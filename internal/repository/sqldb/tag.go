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

var _ repository.TagRepository = (*DB)(nil)

// CreateTag inserts a tag. A title that already exists yields
// apperror.ErrConflict, which callers treat as "someone else created it,
// read it back".
func (db *DB) CreateTag(ctx context.Context, tag *model.Tag) error {
	tag.ID = xid.New().String()
	tag.CreatedAt = now()

	_, err := db.exec(ctx,
		`INSERT INTO tags (id, title, created_at) VALUES (?, ?, ?)`,
		tag.ID, tag.Title, tag.CreatedAt,
	)
	if err != nil {
		if db.dialect.isUniqueViolation(err) {
			return apperror.Conflict("tag", "title")
		}
		return fmt.Errorf("sqldb: inserting tag %q: %w", tag.Title, err)
	}
	return nil
}

// GetTagByTitle looks a tag up by exact, case-sensitive title.
func (db *DB) GetTagByTitle(ctx context.Context, title string) (*model.Tag, error) {
	var t model.Tag
	err := db.queryRow(ctx,
		`SELECT id, title, created_at FROM tags WHERE title = ?`, title,
	).Scan(&t.ID, &t.Title, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage(fmt.Sprintf("tag %q not found", title))
		}
		return nil, fmt.Errorf("sqldb: getting tag %q: %w", title, err)
	}
	return &t, nil
}
