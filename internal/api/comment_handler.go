package api

import (
	"net/http"

	"github.com/taskraft/taskraft-api/internal/api/shared"
	"github.com/taskraft/taskraft-api/internal/service"
)

// CommentHandler handles task comment HTTP requests.
type CommentHandler struct {
	comments *service.CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// PostComment handles POST /api/tasks/{taskID}/comments requests.
func (h *CommentHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(w, r, "taskID")
	if !ok {
		return
	}

	var req PostCommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Comment must be 1 to 100 characters")
		return
	}

	comment, err := h.comments.PostComment(r.Context(), identity.UserID, taskID, req.Contents)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, commentToResponse(comment))
}

// ListComments handles GET /api/tasks/{taskID}/comments requests.
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(w, r, "taskID")
	if !ok {
		return
	}

	details, err := h.comments.ListComments(r.Context(), identity.UserID, taskID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	responses := make([]CommentResponse, 0, len(details))
	for _, d := range details {
		responses = append(responses, commentDetailToResponse(d))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
