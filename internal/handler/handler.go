// Package handler contains the HTTP handlers for the second-brain API.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming HTTP request (path params, JSON body, auth context)
//  2. Call the service layer
//  3. Write the HTTP response (status code, headers, JSON body)
//
// Handlers hold no business rules. They depend on the small interfaces
// below rather than on concrete services, so tests can drive them with
// stubs.
package handler

import (
	"context"

	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/service"
)

// AccountService is what AccountHandler needs from the account service.
type AccountService interface {
	Register(ctx context.Context, in service.SignupInput) (*model.User, error)
	Authenticate(ctx context.Context, in service.SigninInput) (string, error)
	GetProfile(ctx context.Context, userID string) (*model.Owner, error)
}

// ContentService is what ContentHandler needs from the content service.
type ContentService interface {
	AddContent(ctx context.Context, userID string, in service.AddContentInput) (*model.ContentView, error)
	ListContent(ctx context.Context, userID string) ([]model.ContentView, error)
	DeleteContent(ctx context.Context, userID, contentID string) error
}

// ShareService is what ShareHandler needs from the share service.
type ShareService interface {
	Enable(ctx context.Context, userID string) (*service.ShareResult, error)
	Disable(ctx context.Context, userID string) error
	Resolve(ctx context.Context, hash string) (*model.SharedBrain, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// compile-time checks that the real services satisfy the handler contracts
var (
	_ AccountService = (*service.AccountService)(nil)
	_ ContentService = (*service.ContentService)(nil)
	_ ShareService   = (*service.ShareService)(nil)
)
