package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/model"
)

// ShareHandler toggles the caller's public share link and serves shared
// collections to anonymous visitors.
type ShareHandler struct {
	share   ShareService
	respond *Responder
}

// NewShareHandler creates a ShareHandler.
func NewShareHandler(share ShareService, respond *Responder) *ShareHandler {
	return &ShareHandler{share: share, respond: respond}
}

type shareRequest struct {
	// Share is a pointer so a missing field is an error rather than a
	// silent revoke.
	Share *bool `json:"share"`
}

// ShareResponse is returned when a link is active. Message holds the
// client route for the link, "/share/<hash>".
type ShareResponse struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
}

// HandleToggle enables or revokes the caller's share link.
//
// HTTP: POST /api/v1/brain/share (requires auth)
// REQUEST BODY: {"share": true} or {"share": false}
//
// Enabling twice returns the same hash both times.
func (h *ShareHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.respond.writeError(w, r, apperror.Unauthenticated("valid authentication required"))
		return
	}

	var req shareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respond.writeError(w, r, err)
		return
	}
	if req.Share == nil {
		h.respond.writeError(w, r, apperror.ValidationFailed("share", "share must be true or false"))
		return
	}

	if !*req.Share {
		if err := h.share.Disable(r.Context(), userID); err != nil {
			h.respond.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: "share link removed"})
		return
	}

	result, err := h.share.Enable(r.Context(), userID)
	if err != nil {
		h.respond.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ShareResponse{Hash: result.Hash, Message: result.Path})
}

// HandleResolve returns a shared collection. No authentication.
//
// HTTP: GET|POST /api/v1/brain/{shareHash}
//
// An unknown or revoked hash is 411 in legacy mode, 404 in standard mode.
func (h *ShareHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "shareHash")

	brain, err := h.share.Resolve(r.Context(), hash)
	if err != nil {
		h.respond.writeError(w, r, err, legacyOverride{sentinel: apperror.ErrNotFound, status: http.StatusLengthRequired})
		return
	}
	if brain.Content == nil {
		brain.Content = []model.ContentView{}
	}

	writeJSON(w, http.StatusOK, brain)
}
