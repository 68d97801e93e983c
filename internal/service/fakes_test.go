package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
	"github.com/sakif/second-brain/internal/validation"
)

// =========================================================================
// IN-MEMORY STORE
// =========================================================================
//
// fakeStore implements repository.Store with maps, and honours the same
// error contract as the SQL store: missing rows are apperror.ErrNotFound,
// unique collisions are apperror.ErrConflict.
//
// The before* hooks run once, just ahead of the next insert, so a test can
// slip a competing row in between a service's read and its write.

var _ repository.Store = (*fakeStore)(nil)

type fakeStore struct {
	mu       sync.Mutex
	nextID   int
	users    map[string]*model.User
	tags     map[string]*model.Tag // keyed by title
	contents []*model.Content      // insertion order
	links    map[string]*model.ShareLink

	// storeErr, when set, is returned by every call.
	storeErr error

	beforeCreateTag       func(title string)
	beforeCreateShareLink func(link *model.ShareLink)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]*model.User),
		tags:  make(map[string]*model.Tag),
		links: make(map[string]*model.ShareLink),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) Ping(context.Context) error { return f.storeErr }

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", "email")
		}
	}
	user.ID = f.id("user")
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	for _, u := range f.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFoundMessage("user not found")
}

func (f *fakeStore) CreateTag(_ context.Context, tag *model.Tag) error {
	if hook := f.beforeCreateTag; hook != nil {
		f.beforeCreateTag = nil
		hook(tag.Title)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	if _, ok := f.tags[tag.Title]; ok {
		return apperror.Conflict("tag", "title")
	}
	tag.ID = f.id("tag")
	stored := *tag
	f.tags[tag.Title] = &stored
	return nil
}

func (f *fakeStore) GetTagByTitle(_ context.Context, title string) (*model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	t, ok := f.tags[title]
	if !ok {
		return nil, apperror.NotFoundMessage("tag not found")
	}
	result := *t
	return &result, nil
}

func (f *fakeStore) CreateContent(_ context.Context, content *model.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	content.ID = f.id("content")
	stored := *content
	stored.TagIDs = append([]string(nil), content.TagIDs...)
	f.contents = append(f.contents, &stored)
	return nil
}

func (f *fakeStore) ListContentByUser(_ context.Context, userID string) ([]model.ContentView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return nil, f.storeErr
	}

	tagsByID := make(map[string]model.Tag, len(f.tags))
	for _, t := range f.tags {
		tagsByID[t.ID] = *t
	}

	views := make([]model.ContentView, 0)
	for i := len(f.contents) - 1; i >= 0; i-- {
		c := f.contents[i]
		if c.UserID != userID {
			continue
		}
		v := model.ContentView{
			ID:        c.ID,
			Link:      c.Link,
			Type:      c.Type,
			Title:     c.Title,
			Tags:      []model.Tag{},
			CreatedAt: c.CreatedAt,
		}
		if u, ok := f.users[c.UserID]; ok {
			v.Owner = model.Owner{ID: u.ID, FirstName: u.FirstName}
		}
		for _, id := range c.TagIDs {
			v.Tags = append(v.Tags, tagsByID[id])
		}
		views = append(views, v)
	}
	return views, nil
}

func (f *fakeStore) DeleteContent(_ context.Context, userID, contentID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return 0, f.storeErr
	}
	for i, c := range f.contents {
		if c.ID == contentID && c.UserID == userID {
			f.contents = append(f.contents[:i], f.contents[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) CreateShareLink(_ context.Context, link *model.ShareLink) error {
	if hook := f.beforeCreateShareLink; hook != nil {
		f.beforeCreateShareLink = nil
		hook(link)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	if _, ok := f.links[link.UserID]; ok {
		return apperror.Conflict("share link", "user_id or hash")
	}
	for _, l := range f.links {
		if l.Hash == link.Hash {
			return apperror.Conflict("share link", "user_id or hash")
		}
	}
	link.ID = f.id("link")
	stored := *link
	f.links[link.UserID] = &stored
	return nil
}

func (f *fakeStore) GetShareLinkByUser(_ context.Context, userID string) (*model.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	l, ok := f.links[userID]
	if !ok {
		return nil, apperror.NotFoundMessage("share link not found")
	}
	result := *l
	return &result, nil
}

func (f *fakeStore) GetShareLinkByHash(_ context.Context, hash string) (*model.ShareLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	for _, l := range f.links {
		if l.Hash == hash {
			result := *l
			return &result, nil
		}
	}
	return nil, apperror.NotFoundMessage("share link not found")
}

func (f *fakeStore) DeleteShareLinkByUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	delete(f.links, userID)
	return nil
}

// putTag inserts a tag directly, bypassing hooks. Used from inside hooks.
func (f *fakeStore) putTag(title string) *model.Tag {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &model.Tag{ID: f.id("tag"), Title: title}
	f.tags[title] = t
	return t
}

// putShareLink inserts a link directly, bypassing hooks.
func (f *fakeStore) putShareLink(userID, hash string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links[userID] = &model.ShareLink{ID: f.id("link"), Hash: hash, UserID: userID}
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServices struct {
	store    *fakeStore
	accounts *AccountService
	content  *ContentService
	share    *ShareService
	tokens   *auth.TokenService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	store := newFakeStore()
	tokens, err := auth.NewTokenService("service-test-secret-0123456789", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	validate := validation.New()
	logger := discardLogger()

	return &testServices{
		store:    store,
		accounts: NewAccountService(store, tokens, auth.NewPasswordServiceForTest(), validate, logger),
		content:  NewContentService(store, store, store, validate, logger),
		share:    NewShareService(store, store, store, logger),
		tokens:   tokens,
	}
}

// signup registers a user with valid defaults and returns it.
func (ts *testServices) signup(t *testing.T, email, firstName string) *model.User {
	t.Helper()
	user, err := ts.accounts.Register(context.Background(), SignupInput{
		Email:     email,
		Password:  "password123",
		FirstName: firstName,
		LastName:  "Doe",
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	return user
}
