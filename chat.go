package threadlink

import (
	"context"
	"time"
)

// ThreadMessage is one message from a thread's history, as reported by the
// chat platform.
type ThreadMessage struct {
	Content   string
	Timestamp time.Time
}

// ThreadReader supplies thread context from the chat platform. It is only
// consulted by the title/description fallback chain on Open; all methods may
// fail freely, the caller degrades instead of propagating.
type ThreadReader interface {
	// ThreadName returns the thread's current name.
	ThreadName(ctx context.Context, threadID string) (string, error)

	// StarterMessage returns the content of the thread's originating message.
	StarterMessage(ctx context.Context, threadID string) (string, error)

	// RecentMessages returns up to limit recent messages from the thread.
	RecentMessages(ctx context.Context, threadID string, limit int) ([]ThreadMessage, error)
}

// ThreadDecorator applies cosmetic host-platform mutations after a linkage
// commits: renaming the thread and tagging it. These run post-commit and
// best-effort; failures are logged, never surfaced.
type ThreadDecorator interface {
	RenameThread(ctx context.Context, threadID, name string) error
	ApplyTag(ctx context.Context, threadID, tag string) error
}

// Tags applied to a thread after a successful Open.
const (
	TagIssueCreated = "issue-created"
	TagPageCreated  = "page-created"
)
