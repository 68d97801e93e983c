package handler_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/handler"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/service"
)

// Stub services return whatever the test configures and record the
// arguments they were called with.

type stubAccounts struct {
	gotSignup service.SignupInput
	gotSignin service.SigninInput
	user      *model.User
	token     string
	profile   *model.Owner
	err       error
}

func (s *stubAccounts) Register(_ context.Context, in service.SignupInput) (*model.User, error) {
	s.gotSignup = in
	return s.user, s.err
}

func (s *stubAccounts) Authenticate(_ context.Context, in service.SigninInput) (string, error) {
	s.gotSignin = in
	return s.token, s.err
}

func (s *stubAccounts) GetProfile(_ context.Context, _ string) (*model.Owner, error) {
	return s.profile, s.err
}

type stubContent struct {
	gotUserID    string
	gotInput     service.AddContentInput
	gotContentID string
	view         *model.ContentView
	views        []model.ContentView
	err          error
}

func (s *stubContent) AddContent(_ context.Context, userID string, in service.AddContentInput) (*model.ContentView, error) {
	s.gotUserID, s.gotInput = userID, in
	return s.view, s.err
}

func (s *stubContent) ListContent(_ context.Context, userID string) ([]model.ContentView, error) {
	s.gotUserID = userID
	return s.views, s.err
}

func (s *stubContent) DeleteContent(_ context.Context, userID, contentID string) error {
	s.gotUserID, s.gotContentID = userID, contentID
	return s.err
}

type stubShare struct {
	enabled  bool
	disabled bool
	gotHash  string
	result   *service.ShareResult
	brain    *model.SharedBrain
	err      error
}

func (s *stubShare) Enable(context.Context, string) (*service.ShareResult, error) {
	s.enabled = true
	return s.result, s.err
}

func (s *stubShare) Disable(context.Context, string) error {
	s.disabled = true
	return s.err
}

func (s *stubShare) Resolve(_ context.Context, hash string) (*model.SharedBrain, error) {
	s.gotHash = hash
	return s.brain, s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func responder(mode handler.StatusMode) *handler.Responder {
	return handler.NewResponder(mode, testLogger())
}

// jsonRequest builds a request with a JSON body, optionally authenticated
// as userID.
func jsonRequest(method, target, body, userID string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	return req
}
