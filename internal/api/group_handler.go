package api

import (
	"net/http"

	"github.com/taskraft/taskraft-api/internal/api/shared"
	"github.com/taskraft/taskraft-api/internal/service"
)

// GroupHandler handles group lifecycle and membership HTTP requests.
type GroupHandler struct {
	groups *service.GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// CreateGroup handles POST /api/groups requests.
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req CreateGroupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Group name is required")
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), identity.UserID, req.Name)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, groupToResponse(group))
}

// ListGroups handles GET /api/groups requests.
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	groups, err := h.groups.ListGroups(r.Context(), identity.UserID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	responses := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		responses = append(responses, groupToResponse(g))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetGroup handles GET /api/groups/{groupID} requests.
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	groupID, ok := parseUUIDParam(w, r, "groupID")
	if !ok {
		return
	}

	group, err := h.groups.GetGroup(r.Context(), identity.UserID, groupID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, groupToResponse(group))
}

// DeleteGroup handles DELETE /api/groups/{groupID} requests.
func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	groupID, ok := parseUUIDParam(w, r, "groupID")
	if !ok {
		return
	}

	if err := h.groups.DeleteGroup(r.Context(), identity.UserID, groupID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMembers handles GET /api/groups/{groupID}/members requests.
func (h *GroupHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	groupID, ok := parseUUIDParam(w, r, "groupID")
	if !ok {
		return
	}

	members, err := h.groups.ListMembers(r.Context(), identity.UserID, groupID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	responses := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, memberToResponse(m))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// RemoveMember handles DELETE /api/groups/{groupID}/members/{userID} requests.
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	groupID, ok := parseUUIDParam(w, r, "groupID")
	if !ok {
		return
	}
	targetID, ok := parseUUIDParam(w, r, "userID")
	if !ok {
		return
	}

	if err := h.groups.RemoveMember(r.Context(), identity.UserID, groupID, targetID); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
