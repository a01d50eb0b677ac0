package threadlink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// MessageEvent is a message-created event from the chat platform.
type MessageEvent struct {
	MessageID   string `json:"message_id"`
	ThreadID    string `json:"thread_id"`
	InThread    bool   `json:"in_thread"`
	AuthorID    string `json:"author_id"`
	AuthorName  string `json:"author_name"`
	AuthorIsBot bool   `json:"author_is_bot"`
	Content     string `json:"content"`
}

// MessageDeleteEvent is a message-deleted event from the chat platform.
type MessageDeleteEvent struct {
	MessageID string `json:"message_id"`
}

// OnMessageCreated mirrors a chat message into the linked issue as a comment.
// Mirroring is a best-effort side channel: the message has already been
// delivered by the host platform, so every failure here is logged and
// swallowed rather than surfaced.
func (s *Service) OnMessageCreated(ctx context.Context, ev MessageEvent) {
	if err := s.mirrorCreate(ctx, ev); err != nil {
		s.logger().Error("mirroring message", "message_id", ev.MessageID, "thread_id", ev.ThreadID, "err", err)
	}
}

func (s *Service) mirrorCreate(ctx context.Context, ev MessageEvent) error {
	if ev.AuthorIsBot || (s.BotUserID != "" && ev.AuthorID == s.BotUserID) {
		return nil
	}
	if !ev.InThread {
		return nil
	}
	if strings.TrimSpace(ev.Content) == "" {
		return nil
	}

	link, err := s.Links.ByThreadID(ctx, ev.ThreadID)
	if errors.Is(err, ErrNotFound) {
		return nil // mirroring is opportunistic, not mandatory
	}
	if err != nil {
		return errors.Wrap(err, "getting thread link")
	}
	if link.IssueNumber == 0 {
		return nil
	}

	issue, err := s.Issues.GetIssue(ctx, link.IssueNumber)
	if err != nil {
		return &RemoteCallError{Tracker: "issue", Op: "get", Err: err}
	}
	if issue.State == IssueStateClosed {
		return nil // closed issues receive no new mirrored comments
	}

	body := fmt.Sprintf("**%s**: %s", ev.AuthorName, ev.Content)
	commentID, err := s.Issues.AddComment(ctx, link.IssueNumber, body)
	if err != nil {
		return &RemoteCallError{Tracker: "issue", Op: "comment", Err: err}
	}

	mapping := &CommentMapping{
		MessageID:   ev.MessageID,
		ThreadID:    ev.ThreadID,
		UserID:      ev.AuthorID,
		Username:    ev.AuthorName,
		IssueNumber: link.IssueNumber,
		CommentID:   commentID,
		CreatedAt:   time.Now(),
	}
	return errors.Wrap(s.Comments.Add(ctx, mapping), "storing comment mapping")
}

// OnMessageDeleted retracts the mirrored comment for a deleted chat message,
// if one exists. Like creation-mirroring this is best-effort: failures are
// logged, and a failed remote delete leaves the mapping in place so the
// retraction remains possible later.
func (s *Service) OnMessageDeleted(ctx context.Context, ev MessageDeleteEvent) {
	if err := s.mirrorDelete(ctx, ev); err != nil {
		s.logger().Error("retracting mirrored comment", "message_id", ev.MessageID, "err", err)
	}
}

func (s *Service) mirrorDelete(ctx context.Context, ev MessageDeleteEvent) error {
	mapping, err := s.Comments.ByMessageID(ctx, ev.MessageID)
	if errors.Is(err, ErrNotFound) {
		return nil // never mirrored, or already retracted
	}
	if err != nil {
		return errors.Wrap(err, "getting comment mapping")
	}

	if err := s.Issues.DeleteComment(ctx, mapping.CommentID); err != nil {
		// Keep the mapping so the delete can be retried.
		return &RemoteCallError{Tracker: "issue", Op: "delete comment", Err: err}
	}
	return errors.Wrap(s.Comments.Delete(ctx, ev.MessageID), "deleting comment mapping")
}
