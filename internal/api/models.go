package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
)

// Common request/response structures

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserResponse represents the authenticated user's own profile.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateGroupRequest defines the payload for creating a group.
type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// GroupResponse represents a group.
type GroupResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberResponse represents a group member with their profile projection.
type MemberResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

// IssueInvitationRequest defines the payload for inviting someone to a group.
type IssueInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// InvitationResponse represents an issued invitation. The token is returned
// only at creation time so the inviter can share the link out of band.
type InvitationResponse struct {
	ID        uuid.UUID `json:"id"`
	GroupID   uuid.UUID `json:"group_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token,omitempty"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
}

// RedeemInvitationResponse acknowledges a redemption that did not mint a
// membership for the caller.
type RedeemInvitationResponse struct {
	Accepted bool `json:"accepted"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,min=1,max=100"`
	Description string     `json:"description" validate:"required,min=1"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    string     `json:"priority"    validate:"required,oneof=high middle low"`
	Status      string     `json:"status"      validate:"required,oneof=not-started-yet in-progress done"`
	AssigneeID  uuid.UUID  `json:"assignee_id" validate:"required"`
}

// UpdateTaskRequest defines the payload for a partial task update. Absent
// fields keep their stored values.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"       validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,min=1"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    *string    `json:"priority,omitempty"    validate:"omitempty,oneof=high middle low"`
	Status      *string    `json:"status,omitempty"      validate:"omitempty,oneof=not-started-yet in-progress done"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
}

// TaskResponse represents a task with its assignee projection when the
// lookup included one.
type TaskResponse struct {
	ID          uuid.UUID          `json:"id"`
	GroupID     uuid.UUID          `json:"group_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Deadline    *time.Time         `json:"deadline,omitempty"`
	Priority    string             `json:"priority"`
	Status      string             `json:"status"`
	AssigneeID  uuid.UUID          `json:"assignee_id"`
	Assignee    *AssigneeResponse  `json:"assignee,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// AssigneeResponse is the profile projection embedded in task responses.
type AssigneeResponse struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// SuggestTasksRequest defines the payload for generating task drafts from
// meeting minutes.
type SuggestTasksRequest struct {
	MinutesText string `json:"minutes_text" validate:"required,min=1"`
}

// TaskDraftPayload is a draft in the suggest response and the bulk-save
// request.
type TaskDraftPayload struct {
	Title       string     `json:"title"       validate:"required,min=1,max=100"`
	Description string     `json:"description" validate:"required,min=1"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    string     `json:"priority,omitempty"    validate:"omitempty,oneof=high middle low"`
	Status      string     `json:"status,omitempty"      validate:"omitempty,oneof=not-started-yet in-progress done"`
	AssigneeID  uuid.UUID  `json:"assignee_id,omitempty"`
}

// SaveDraftsRequest defines the payload for persisting reviewed drafts.
type SaveDraftsRequest struct {
	Tasks []TaskDraftPayload `json:"tasks" validate:"required,min=1,dive"`
}

// PostCommentRequest defines the payload for commenting on a task.
type PostCommentRequest struct {
	Contents string `json:"contents" validate:"required,min=1,max=100"`
}

// CommentResponse represents a comment with its author projection when the
// lookup included one.
type CommentResponse struct {
	ID        uuid.UUID         `json:"id"`
	TaskID    uuid.UUID         `json:"task_id"`
	AuthorID  uuid.UUID         `json:"author_id"`
	Author    *AssigneeResponse `json:"author,omitempty"`
	Contents  string            `json:"contents"`
	CreatedAt time.Time         `json:"created_at"`
}

// DTO conversion helpers

func groupToResponse(g *domain.Group) GroupResponse {
	return GroupResponse{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt}
}

func memberToResponse(m *domain.Member) MemberResponse {
	return MemberResponse{
		UserID:      m.UserID,
		DisplayName: m.User.DisplayName,
		AvatarURL:   m.User.AvatarURL,
		Role:        string(m.Role),
		JoinedAt:    m.CreatedAt,
	}
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		GroupID:     t.GroupID,
		Title:       t.Title,
		Description: t.Description,
		Deadline:    t.Deadline,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
	}
}

func taskDetailToResponse(d *domain.TaskDetail) TaskResponse {
	resp := taskToResponse(&d.Task)
	resp.Assignee = &AssigneeResponse{
		DisplayName: d.Assignee.DisplayName,
		AvatarURL:   d.Assignee.AvatarURL,
	}
	return resp
}

func commentToResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		AuthorID:  c.AuthorID,
		Contents:  c.Contents,
		CreatedAt: c.CreatedAt,
	}
}

func commentDetailToResponse(d *domain.CommentDetail) CommentResponse {
	resp := commentToResponse(&d.Comment)
	resp.Author = &AssigneeResponse{
		DisplayName: d.Author.DisplayName,
		AvatarURL:   d.Author.AvatarURL,
	}
	return resp
}

func invitationToResponse(inv *domain.Invitation, includeToken bool) InvitationResponse {
	resp := InvitationResponse{
		ID:        inv.ID,
		GroupID:   inv.GroupID,
		Email:     inv.Email,
		Accepted:  inv.Accepted,
		CreatedAt: inv.CreatedAt,
	}
	if includeToken {
		resp.Token = inv.Token
	}
	return resp
}
