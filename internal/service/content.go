// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept plain Go values, never *http.Request, and return
// apperror values, never status codes. The handler package owns the mapping
// from one to the other.
//
// DEPENDENCY INJECTION:
// Each service takes repository interfaces, not *sqldb.DB. Tests pass the
// in-memory fakes from fakes_test.go; the server passes the SQL store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
	"github.com/sakif/second-brain/internal/validation"
)

// maxTagAttempts bounds the find-or-create loop for a single tag title.
// Each extra pass means another request created the same title between our
// read and our insert.
const maxTagAttempts = 3

// AddContentInput carries a new content item. Tags are titles; they are
// resolved to shared Tag rows, creating any that do not exist yet.
type AddContentInput struct {
	Link  string            `json:"link"  validate:"required,max=2048"`
	Type  model.ContentType `json:"type"  validate:"required,oneof=image video article audio"`
	Title string            `json:"title" validate:"required,max=256"`
	Tags  []string          `json:"tags"  validate:"max=32,dive,min=1,max=64"`
}

// ContentService manages a user's saved links.
type ContentService struct {
	content  repository.ContentRepository
	tags     repository.TagRepository
	users    repository.UserRepository
	validate *validation.Validator
	logger   *slog.Logger
}

// NewContentService creates a ContentService.
func NewContentService(
	content repository.ContentRepository,
	tags repository.TagRepository,
	users repository.UserRepository,
	validate *validation.Validator,
	logger *slog.Logger,
) *ContentService {
	return &ContentService{
		content:  content,
		tags:     tags,
		users:    users,
		validate: validate,
		logger:   logger,
	}
}

// AddContent validates and stores a content item owned by userID and
// returns it with owner and tags resolved.
//
// Tag titles are trimmed and de-duplicated (first occurrence wins, order
// kept) before lookup. A title that is empty after trimming is rejected.
func (s *ContentService) AddContent(ctx context.Context, userID string, in AddContentInput) (*model.ContentView, error) {
	in.Link = strings.TrimSpace(in.Link)
	in.Title = strings.TrimSpace(in.Title)
	trimmed := make([]string, len(in.Tags))
	for i, t := range in.Tags {
		trimmed[i] = strings.TrimSpace(t)
	}
	in.Tags = trimmed

	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	owner, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/content: fetching owner %s: %w", userID, err)
	}

	titles := dedupe(in.Tags)
	tags := make([]model.Tag, 0, len(titles))
	tagIDs := make([]string, 0, len(titles))
	for _, title := range titles {
		tag, err := s.findOrCreateTag(ctx, title)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
		tagIDs = append(tagIDs, tag.ID)
	}

	content := &model.Content{
		Link:   in.Link,
		Type:   in.Type,
		Title:  in.Title,
		UserID: userID,
		TagIDs: tagIDs,
	}
	if err := s.content.CreateContent(ctx, content); err != nil {
		s.logger.Error("failed to create content",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/content: creating content: %w", err)
	}

	s.logger.Info("content added",
		slog.String("id", content.ID),
		slog.String("userID", userID),
		slog.String("type", string(content.Type)),
		slog.Int("tags", len(tags)),
	)

	return &model.ContentView{
		ID:        content.ID,
		Link:      content.Link,
		Type:      content.Type,
		Title:     content.Title,
		Tags:      tags,
		Owner:     model.Owner{ID: owner.ID, FirstName: owner.FirstName},
		CreatedAt: content.CreatedAt,
	}, nil
}

// ListContent returns every item the user owns, newest first.
func (s *ContentService) ListContent(ctx context.Context, userID string) ([]model.ContentView, error) {
	views, err := s.content.ListContentByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list content",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/content: listing content: %w", err)
	}
	return views, nil
}

// DeleteContent removes the item if, and only if, userID owns it.
//
// Deleting an id that does not exist or belongs to someone else succeeds
// without changing anything, so the caller learns nothing about other
// users' content and retries are harmless.
func (s *ContentService) DeleteContent(ctx context.Context, userID, contentID string) error {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return apperror.ValidationFailed("contentId", "contentId is required")
	}

	removed, err := s.content.DeleteContent(ctx, userID, contentID)
	if err != nil {
		return fmt.Errorf("service/content: deleting content %s: %w", contentID, err)
	}

	s.logger.Info("content delete",
		slog.String("id", contentID),
		slog.String("userID", userID),
		slog.Int64("removed", removed),
	)
	return nil
}

// findOrCreateTag returns the tag titled title, creating it if needed.
//
// Two requests may try to create the same new title at once. The unique
// index on tags.title lets exactly one insert win; the loser sees
// ErrConflict and reads the winner's row on its next pass.
func (s *ContentService) findOrCreateTag(ctx context.Context, title string) (*model.Tag, error) {
	for attempt := 0; attempt < maxTagAttempts; attempt++ {
		tag, err := s.tags.GetTagByTitle(ctx, title)
		if err == nil {
			return tag, nil
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/content: looking up tag %q: %w", title, err)
		}

		tag = &model.Tag{Title: title}
		err = s.tags.CreateTag(ctx, tag)
		if err == nil {
			return tag, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return nil, fmt.Errorf("service/content: creating tag %q: %w", title, err)
		}
	}
	return nil, fmt.Errorf("service/content: tag %q still conflicting after %d attempts", title, maxTagAttempts)
}

// dedupe drops repeated titles, keeping the first occurrence of each.
func dedupe(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
