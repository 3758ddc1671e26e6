package domain

import (
	"time"

	"github.com/google/uuid"
)

// CommentMaxLen bounds comment contents.
const CommentMaxLen = 100

// Comment is an append-only remark on a task. Comments are never edited;
// they disappear only when their task does.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Contents  string    `json:"contents"`
	CreatedAt time.Time `json:"created_at"`
}

// NewComment creates a new Comment on the given task.
func NewComment(taskID, authorID uuid.UUID, contents string) (*Comment, error) {
	comment := &Comment{
		ID:        uuid.New(),
		TaskID:    taskID,
		AuthorID:  authorID,
		Contents:  contents,
		CreatedAt: time.Now().UTC(),
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the Comment has valid data.
func (c *Comment) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if c.TaskID == uuid.Nil {
		return NewValidationError("task_id", "cannot be empty", ErrInvalidID)
	}
	if c.AuthorID == uuid.Nil {
		return NewValidationError("author_id", "cannot be empty", ErrInvalidID)
	}
	if len(c.Contents) < 1 || len(c.Contents) > CommentMaxLen {
		return NewValidationError("contents", "must be between 1 and 100 characters", nil)
	}
	return nil
}

// CommentDetail is a comment joined with the resolved author projection.
type CommentDetail struct {
	Comment
	Author MemberProjection `json:"author"`
}
