package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

const (
	// HashLength is the length of a share hash.
	HashLength = 10

	hashAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	maxHashAttempts  = 5
	sharePathPrefix  = "/share/"
	shareNotFoundMsg = "share link not found"
)

// ShareResult describes an active share link.
type ShareResult struct {
	Hash string
	// Path is the client-side route that displays the shared brain.
	Path string
	// Created is true when this call issued the hash, false when it
	// returned one that was already active.
	Created bool
}

// ShareService publishes and revokes read-only views of a user's content.
//
// Per user the state is either "no link" or "link active with hash H".
// Enable moves to active (idempotently), Disable moves back.
type ShareService struct {
	links   repository.ShareLinkRepository
	users   repository.UserRepository
	content repository.ContentRepository
	logger  *slog.Logger

	// newHash is swapped in tests to force collisions.
	newHash func() (string, error)
}

// NewShareService creates a ShareService that draws hashes from nanoid.
func NewShareService(
	links repository.ShareLinkRepository,
	users repository.UserRepository,
	content repository.ContentRepository,
	logger *slog.Logger,
) *ShareService {
	return &ShareService{
		links:   links,
		users:   users,
		content: content,
		logger:  logger,
		newHash: func() (string, error) {
			return gonanoid.Generate(hashAlphabet, HashLength)
		},
	}
}

// Enable returns the user's active share link, issuing one if needed.
//
// RACES:
// share_links has unique indexes on both user_id and hash, so a failed
// insert means one of two things. Either a concurrent Enable for the same
// user won, in which case re-reading by user finds its hash and we return
// that, or the random hash collided with another user's, in which case the
// re-read finds nothing and we draw again.
func (s *ShareService) Enable(ctx context.Context, userID string) (*ShareResult, error) {
	existing, err := s.links.GetShareLinkByUser(ctx, userID)
	if err == nil {
		return shareResult(existing.Hash, false), nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/share: looking up link for user %s: %w", userID, err)
	}

	for attempt := 0; attempt < maxHashAttempts; attempt++ {
		hash, err := s.newHash()
		if err != nil {
			return nil, fmt.Errorf("service/share: generating hash: %w", err)
		}

		link := &model.ShareLink{Hash: hash, UserID: userID}
		err = s.links.CreateShareLink(ctx, link)
		if err == nil {
			s.logger.Info("share link enabled", slog.String("userID", userID))
			return shareResult(hash, true), nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return nil, fmt.Errorf("service/share: creating link for user %s: %w", userID, err)
		}

		winner, err := s.links.GetShareLinkByUser(ctx, userID)
		if err == nil {
			return shareResult(winner.Hash, false), nil
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/share: re-reading link for user %s: %w", userID, err)
		}
		s.logger.Warn("share hash collision, retrying", slog.Int("attempt", attempt+1))
	}

	return nil, fmt.Errorf("service/share: no free hash after %d attempts", maxHashAttempts)
}

// Disable revokes the user's share link. Having none is not an error.
func (s *ShareService) Disable(ctx context.Context, userID string) error {
	if err := s.links.DeleteShareLinkByUser(ctx, userID); err != nil {
		return fmt.Errorf("service/share: deleting link for user %s: %w", userID, err)
	}
	s.logger.Info("share link disabled", slog.String("userID", userID))
	return nil
}

// Resolve returns the owner's first name and content for an active hash.
//
// Revoked and never-issued hashes both yield apperror.ErrNotFound. A link
// whose owner no longer exists is an internal error, not a 404.
func (s *ShareService) Resolve(ctx context.Context, hash string) (*model.SharedBrain, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil, apperror.NotFoundMessage(shareNotFoundMsg)
	}

	link, err := s.links.GetShareLinkByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundMessage(shareNotFoundMsg)
		}
		return nil, fmt.Errorf("service/share: looking up hash: %w", err)
	}

	owner, err := s.users.GetUserByID(ctx, link.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("share link owner missing",
				slog.String("linkID", link.ID),
				slog.String("userID", link.UserID),
			)
			return nil, fmt.Errorf("service/share: owner %s of link %s does not exist", link.UserID, link.ID)
		}
		return nil, fmt.Errorf("service/share: fetching owner %s: %w", link.UserID, err)
	}

	views, err := s.content.ListContentByUser(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("service/share: listing content for %s: %w", owner.ID, err)
	}

	return &model.SharedBrain{FirstName: owner.FirstName, Content: views}, nil
}

func shareResult(hash string, created bool) *ShareResult {
	return &ShareResult{Hash: hash, Path: sharePathPrefix + hash, Created: created}
}
