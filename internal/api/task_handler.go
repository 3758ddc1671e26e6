package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/api/shared"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/service"
)

// TaskHandler handles task HTTP requests, including AI draft generation.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// CreateTask handles POST /api/groups/{groupID}/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	groupID, ok := parseUUIDParam(w, r, "groupID")
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.tasks.CreateTask(
		r.Context(),
		identity.UserID,
		groupID,
		req.Title,
		req.Description,
		req.Deadline,
		domain.Priority(req.Priority),
		domain.Status(req.Status),
		req.AssigneeID,
	)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// ListTasks handles GET /api/groups/{groupID}/tasks requests. The optional
// status, priority and assignee_id query parameters narrow the result.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	groupID, ok := parseUUIDParam(w, r, "groupID")
	if !ok {
		return
	}

	filter, ok := parseTaskFilter(w, r)
	if !ok {
		return
	}

	details, err := h.tasks.ListTasks(r.Context(), identity.UserID, groupID, filter)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	responses := make([]TaskResponse, 0, len(details))
	for _, d := range details {
		responses = append(responses, taskDetailToResponse(d))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetTask handles GET /api/tasks/{taskID} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(w, r, "taskID")
	if !ok {
		return
	}

	detail, err := h.tasks.GetTask(r.Context(), identity.UserID, taskID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskDetailToResponse(detail))
}

// UpdateTask handles PATCH /api/tasks/{taskID} requests. Absent fields keep
// their stored values.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(w, r, "taskID")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		AssigneeID:  req.AssigneeID,
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		patch.Priority = &priority
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		patch.Status = &status
	}

	task, err := h.tasks.UpdateTask(r.Context(), identity.UserID, taskID, patch)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{taskID} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(w, r, "taskID")
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), identity.UserID, taskID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SuggestTasks handles POST /api/groups/{groupID}/tasks/suggestions
// requests. Drafts are generated from the minutes text but not persisted.
func (h *TaskHandler) SuggestTasks(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	groupID, ok := parseUUIDParam(w, r, "groupID")
	if !ok {
		return
	}

	var req SuggestTasksRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Meeting minutes text is required")
		return
	}

	drafts, err := h.tasks.SuggestTasks(r.Context(), identity.UserID, groupID, req.MinutesText)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	responses := make([]TaskDraftPayload, 0, len(drafts))
	for _, d := range drafts {
		responses = append(responses, TaskDraftPayload{
			Title:       d.Title,
			Description: d.Description,
			Deadline:    d.Deadline,
			Priority:    string(d.Priority),
			Status:      string(d.Status),
			AssigneeID:  d.AssigneeID,
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// SaveDrafts handles POST /api/groups/{groupID}/tasks/bulk requests. All
// drafts commit together or not at all.
func (h *TaskHandler) SaveDrafts(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	groupID, ok := parseUUIDParam(w, r, "groupID")
	if !ok {
		return
	}

	var req SaveDraftsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	drafts := make([]*domain.TaskDraft, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		drafts = append(drafts, &domain.TaskDraft{
			Title:       t.Title,
			Description: t.Description,
			Deadline:    t.Deadline,
			Priority:    domain.Priority(t.Priority),
			Status:      domain.Status(t.Status),
			AssigneeID:  t.AssigneeID,
		})
	}

	tasks, err := h.tasks.SaveDrafts(r.Context(), identity.UserID, groupID, drafts)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, taskToResponse(t))
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, responses)
}

// parseTaskFilter reads the list filter from query parameters. Writes a 400
// response and returns false on malformed values.
func parseTaskFilter(w http.ResponseWriter, r *http.Request) (domain.TaskFilter, bool) {
	var filter domain.TaskFilter
	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		status := domain.Status(raw)
		if !status.IsValid() {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid status filter")
			return filter, false
		}
		filter.Status = &status
	}
	if raw := query.Get("priority"); raw != "" {
		priority := domain.Priority(raw)
		if !priority.IsValid() {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid priority filter")
			return filter, false
		}
		filter.Priority = &priority
	}
	if raw := query.Get("assignee_id"); raw != "" {
		assigneeID, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid assignee_id filter")
			return filter, false
		}
		filter.AssigneeID = &assigneeID
	}

	return filter, true
}
