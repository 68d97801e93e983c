// Package repository declares the storage interfaces the service layer
// depends on. Implementations live in sub-packages (see repository/sqldb).
//
// Error contract shared by every implementation:
//   - a missing row is reported as apperror.ErrNotFound
//   - a unique-constraint collision is reported as apperror.ErrConflict
//   - anything else is a wrapped driver error
package repository

import (
	"context"

	"github.com/sakif/second-brain/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type TagRepository interface {
	// CreateTag inserts a tag. A title that already exists yields ErrConflict.
	CreateTag(ctx context.Context, tag *model.Tag) error
	GetTagByTitle(ctx context.Context, title string) (*model.Tag, error)
}

type ContentRepository interface {
	// CreateContent inserts the content row and its tag links atomically.
	CreateContent(ctx context.Context, content *model.Content) error
	// ListContentByUser returns the user's content, newest first, with
	// owner and tags resolved.
	ListContentByUser(ctx context.Context, userID string) ([]model.ContentView, error)
	// DeleteContent removes content matching both id and owner and reports
	// how many rows went away. Zero is not an error.
	DeleteContent(ctx context.Context, userID, contentID string) (int64, error)
}

type ShareLinkRepository interface {
	// CreateShareLink inserts a link. A second link for the same user, or a
	// hash collision, yields ErrConflict.
	CreateShareLink(ctx context.Context, link *model.ShareLink) error
	GetShareLinkByUser(ctx context.Context, userID string) (*model.ShareLink, error)
	GetShareLinkByHash(ctx context.Context, hash string) (*model.ShareLink, error)
	DeleteShareLinkByUser(ctx context.Context, userID string) error
}

// Store is everything the application persists, plus a liveness probe.
type Store interface {
	UserRepository
	TagRepository
	ContentRepository
	ShareLinkRepository
	Ping(ctx context.Context) error
}
