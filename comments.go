package threadlink

import (
	"context"
	"time"
)

// CommentMapping is a persistent record associating one mirrored chat message
// with the issue comment it produced. A mapping exists exactly as long as the
// remote comment does: it is created after a successful comment creation and
// deleted after a successful comment deletion. There is no update path.
type CommentMapping struct {
	MessageID   string    `json:"message_id"`
	ThreadID    string    `json:"thread_id"`
	UserID      string    `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	IssueNumber int       `json:"issue_number"`
	CommentID   int64     `json:"comment_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// CommentMapStore is a persistent store for CommentMappings, keyed by the
// source message ID.
type CommentMapStore interface {
	// ByMessageID returns the mapping for the given message, or ErrNotFound.
	ByMessageID(ctx context.Context, messageID string) (*CommentMapping, error)

	// Add records a new mapping. Re-adding the same message ID overwrites in
	// place (upsert key), keeping replayed events idempotent.
	Add(ctx context.Context, m *CommentMapping) error

	// Delete removes the mapping for the given message ID, if any.
	Delete(ctx context.Context, messageID string) error
}
