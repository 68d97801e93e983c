package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/service"
)

// ContentHandler serves the authenticated user's content collection.
type ContentHandler struct {
	content ContentService
	respond *Responder
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(content ContentService, respond *Responder) *ContentHandler {
	return &ContentHandler{content: content, respond: respond}
}

// AddContentResponse returns the stored item.
type AddContentResponse struct {
	Message string             `json:"message"`
	Content *model.ContentView `json:"content"`
}

// ContentListResponse wraps a content list. Content is never null.
type ContentListResponse struct {
	Content []model.ContentView `json:"content"`
}

type deleteContentRequest struct {
	ContentID string `json:"contentId"`
}

// HandleAdd stores a new content item.
//
// HTTP: POST /api/v1/content (requires auth)
// REQUEST BODY: {"link":"https://...","type":"article","title":"...","tags":["go"]}
func (h *ContentHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var in service.AddContentInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.respond.writeError(w, r, err)
		return
	}

	view, err := h.content.AddContent(r.Context(), userID, in)
	if err != nil {
		h.respond.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AddContentResponse{Message: "content added", Content: view})
}

// HandleList returns the caller's content, newest first.
//
// HTTP: GET /api/v1/content (requires auth)
func (h *ContentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	views, err := h.content.ListContent(r.Context(), userID)
	if err != nil {
		h.respond.writeError(w, r, err)
		return
	}
	if views == nil {
		views = []model.ContentView{}
	}

	writeJSON(w, http.StatusOK, ContentListResponse{Content: views})
}

// HandleDelete removes one of the caller's items.
//
// HTTP: DELETE /api/v1/content            body {"contentId":"..."}
//
//	DELETE /api/v1/content/{contentId}
//
// Deleting something that is gone or not yours still returns 200.
func (h *ContentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	contentID := chi.URLParam(r, "contentId")
	if contentID == "" {
		var req deleteContentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.respond.writeError(w, r, err)
			return
		}
		contentID = req.ContentID
	}

	if err := h.content.DeleteContent(r.Context(), userID, contentID); err != nil {
		h.respond.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "content deleted"})
}

func (h *ContentHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.respond.writeError(w, r, apperror.Unauthenticated("valid authentication required"))
	}
	return userID, ok
}
