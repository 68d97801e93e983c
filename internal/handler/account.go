package handler

import (
	"net/http"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/service"
)

// AccountHandler serves signup, signin and the caller's profile.
type AccountHandler struct {
	accounts AccountService
	respond  *Responder
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts AccountService, respond *Responder) *AccountHandler {
	return &AccountHandler{accounts: accounts, respond: respond}
}

// SigninResponse carries the issued token.
type SigninResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// ProfileResponse wraps the caller's public profile.
type ProfileResponse struct {
	Profile *model.Owner `json:"profile"`
}

// HandleSignup registers a new account.
//
// HTTP: POST /api/v1/signup
// REQUEST BODY: {"email":"...","password":"...","firstName":"...","lastName":"..."}
func (h *AccountHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.respond.writeError(w, r, err)
		return
	}

	if _, err := h.accounts.Register(r.Context(), in); err != nil {
		h.respond.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "signed up"})
}

// HandleSignin exchanges credentials for a bearer token.
//
// HTTP: POST /api/v1/signin
// REQUEST BODY: {"email":"...","password":"..."}
// RESPONSE: {"message":"signed in","token":"eyJ..."}
//
// The token goes in the body, not a cookie: clients store it and send it
// back in the Authorization header.
func (h *AccountHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var in service.SigninInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.respond.writeError(w, r, err)
		return
	}

	token, err := h.accounts.Authenticate(r.Context(), in)
	if err != nil {
		h.respond.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SigninResponse{Message: "signed in", Token: token})
}

// HandleProfile returns the authenticated user's id and first name.
//
// HTTP: GET /api/v1/profile (requires auth)
func (h *AccountHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.respond.writeError(w, r, apperror.Unauthenticated("valid authentication required"))
		return
	}

	profile, err := h.accounts.GetProfile(r.Context(), userID)
	if err != nil {
		h.respond.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Profile: profile})
}
