package sqldb

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

var _ repository.ContentRepository = (*DB)(nil)

// CreateContent inserts a content row and one content_tags row per tag.
//
// TRANSACTION:
// Both inserts commit together or not at all, so a content item never
// exists with half of its tags. `defer tx.Rollback()` is a no-op once
// Commit has succeeded.
func (db *DB) CreateContent(ctx context.Context, content *model.Content) error {
	content.ID = xid.New().String()
	content.CreatedAt = now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqldb: beginning content transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, db.dialect.rebind(
		`INSERT INTO contents (id, link, type, title, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		content.ID,
		content.Link,
		string(content.Type),
		content.Title,
		content.UserID,
		content.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqldb: inserting content: %w", err)
	}

	for position, tagID := range content.TagIDs {
		_, err = tx.ExecContext(ctx, db.dialect.rebind(
			`INSERT INTO content_tags (content_id, tag_id, position) VALUES (?, ?, ?)`),
			content.ID, tagID, position,
		)
		if err != nil {
			return fmt.Errorf("sqldb: linking tag %s to content: %w", tagID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqldb: committing content: %w", err)
	}
	return nil
}

// ListContentByUser returns the user's content, newest first, with the
// owner's first name and the tags (in the order they were given) resolved.
//
// TWO QUERIES, NO N+1:
// The first query joins contents to users for the owner; the second fetches
// every tag link for the same user in one go. Rows from the first query are
// fully drained before the second runs, which matters for SQLite where the
// pool holds a single connection.
func (db *DB) ListContentByUser(ctx context.Context, userID string) ([]model.ContentView, error) {
	rows, err := db.query(ctx,
		`SELECT c.id, c.link, c.type, c.title, c.created_at, u.id, u.first_name
		 FROM contents c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.user_id = ?
		 ORDER BY c.created_at DESC, c.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing content for user %s: %w", userID, err)
	}
	defer rows.Close()

	views := make([]model.ContentView, 0)
	index := make(map[string]int)

	for rows.Next() {
		var (
			v           model.ContentView
			contentType string
		)
		if err := rows.Scan(
			&v.ID, &v.Link, &contentType, &v.Title, &v.CreatedAt,
			&v.Owner.ID, &v.Owner.FirstName,
		); err != nil {
			return nil, fmt.Errorf("sqldb: scanning content row: %w", err)
		}
		v.Type = model.ContentType(contentType)
		v.Tags = []model.Tag{}
		index[v.ID] = len(views)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating content: %w", err)
	}
	rows.Close()

	if len(views) == 0 {
		return views, nil
	}

	tagRows, err := db.query(ctx,
		`SELECT ct.content_id, t.id, t.title
		 FROM content_tags ct
		 JOIN tags t ON t.id = ct.tag_id
		 JOIN contents c ON c.id = ct.content_id
		 WHERE c.user_id = ?
		 ORDER BY ct.content_id, ct.position`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing tags for user %s: %w", userID, err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var (
			contentID string
			tag       model.Tag
		)
		if err := tagRows.Scan(&contentID, &tag.ID, &tag.Title); err != nil {
			return nil, fmt.Errorf("sqldb: scanning tag row: %w", err)
		}
		// A row inserted between the two queries has no view yet; skip it.
		if i, ok := index[contentID]; ok {
			views[i].Tags = append(views[i].Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating tags: %w", err)
	}

	return views, nil
}

// DeleteContent removes the content row matching both id and owner, along
// with its tag links. It returns the number of content rows removed; a
// foreign or unknown id removes nothing and is not an error.
func (db *DB) DeleteContent(ctx context.Context, userID, contentID string) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqldb: beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, db.dialect.rebind(
		`DELETE FROM content_tags
		 WHERE content_id IN (SELECT id FROM contents WHERE id = ? AND user_id = ?)`),
		contentID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqldb: deleting tag links for content %s: %w", contentID, err)
	}

	result, err := tx.ExecContext(ctx, db.dialect.rebind(
		`DELETE FROM contents WHERE id = ? AND user_id = ?`),
		contentID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqldb: deleting content %s: %w", contentID, err)
	}

	// RowsAffected() tells us whether the WHERE clause matched anything.
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqldb: checking rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqldb: committing delete: %w", err)
	}
	return removed, nil
}
