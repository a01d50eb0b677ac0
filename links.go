package threadlink

import (
	"context"
	"time"
)

// LinkStatus is the lifecycle state of a ThreadLink.
type LinkStatus string

const (
	StatusCreated   LinkStatus = "created"
	StatusConnected LinkStatus = "connected"
	StatusClosed    LinkStatus = "closed"
	StatusArchived  LinkStatus = "archived"
)

// Priority of the linked work item.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Metadata keys for the denormalized URL cache on a ThreadLink.
// The cache is derived from the tracker responses and is never authoritative.
const (
	MetaIssueURL  = "issue_url"
	MetaPageURL   = "page_url"
	MetaThreadURL = "thread_url"
)

// ThreadLink ties one chat thread to a GitHub issue and/or a tracker page.
// There is at most one ThreadLink per thread; ThreadID is the upsert key.
// A link may hold an issue linkage, a page linkage, or both.
type ThreadLink struct {
	ThreadID        string            `json:"thread_id"`
	ParentChannelID string            `json:"parent_channel_id,omitempty"`
	GuildID         string            `json:"guild_id,omitempty"`
	IssueNumber     int               `json:"issue_number,omitempty"`
	PageID          string            `json:"page_id,omitempty"`
	Status          LinkStatus        `json:"status"`
	Title           string            `json:"title,omitempty"`
	Description     string            `json:"description,omitempty"`
	Priority        Priority          `json:"priority,omitempty"`
	CreatedBy       string            `json:"created_by,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	ClosedAt        time.Time         `json:"closed_at,omitempty"` // zero unless Status is StatusClosed
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// LinkStore is a persistent store for ThreadLinks, keyed by thread ID.
type LinkStore interface {
	// ByThreadID returns the link for the given thread, or ErrNotFound.
	ByThreadID(ctx context.Context, threadID string) (*ThreadLink, error)

	// Upsert inserts or replaces the link for link.ThreadID.
	Upsert(ctx context.Context, link *ThreadLink) error

	// Close marks the link closed and records closedAt.
	// It returns ErrNotFound if no link exists for threadID.
	Close(ctx context.Context, threadID string, closedAt time.Time) error
}
