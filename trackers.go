package threadlink

import "context"

// Issue state values reported by the issue tracker.
const (
	IssueStateOpen   = "open"
	IssueStateClosed = "closed"
)

// Issue is the subset of remote issue state the service cares about.
type Issue struct {
	Number  int      `json:"number"`
	Title   string   `json:"title"`
	State   string   `json:"state"`
	Labels  []string `json:"labels,omitempty"`
	HTMLURL string   `json:"html_url,omitempty"`
}

// IssueRequest is the payload for creating a remote issue.
type IssueRequest struct {
	Title    string
	Body     string
	Labels   []string
	Assignee string
}

// IssueTracker is a stateless client for the remote issue tracker.
// Every call is a remote round trip; implementations hold no local state
// beyond credentials and the target repository.
type IssueTracker interface {
	CreateIssue(ctx context.Context, req IssueRequest) (*Issue, error)
	CloseIssue(ctx context.Context, number int) error
	GetIssue(ctx context.Context, number int) (*Issue, error)

	// AddComment posts a comment on the given issue and returns its ID.
	AddComment(ctx context.Context, number int, body string) (int64, error)
	DeleteComment(ctx context.Context, commentID int64) error
}

// Page property names understood by UpdatePageProperty. Implementations map
// these onto whatever their backing tracker calls the properties.
const (
	PagePropStatus   = "status"
	PagePropPriority = "priority"
)

// PageStatusDone is the status value a page is patched to when its thread's
// linkage is closed.
const PageStatusDone = "done"

// Page is the subset of remote page state the service cares about.
type Page struct {
	ID         string            `json:"id"`
	URL        string            `json:"url,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// PageRequest is the payload for creating a remote page.
type PageRequest struct {
	Title       string
	Description string
	Tags        []string
	Priority    Priority
}

// PageTracker is a stateless client for the remote page tracker.
type PageTracker interface {
	CreatePage(ctx context.Context, req PageRequest) (*Page, error)
	UpdatePageProperty(ctx context.Context, pageID string, patch map[string]string) error
	GetPage(ctx context.Context, pageID string) (*Page, error)
}
