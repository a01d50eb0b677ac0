package threadlink

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by stores when no record matches the given key.
var ErrNotFound = errors.New("not found")

var (
	// ErrNotLinked means the operation requires a ThreadLink that does not exist.
	ErrNotLinked = errors.New("thread is not linked")

	// ErrAlreadyClosed means Close was requested on an already-closed link.
	ErrAlreadyClosed = errors.New("link is already closed")

	// ErrNoIssueLinkage and ErrNoPageLinkage mean the link exists but the
	// requested tracker slot is empty.
	ErrNoIssueLinkage = errors.New("no issue linked to thread")
	ErrNoPageLinkage  = errors.New("no page linked to thread")
)

// AlreadyLinkedError rejects an Open whose requested tracker slot is already
// connected. It names the existing identifier so the caller can report it.
type AlreadyLinkedError struct {
	IssueNumber int
	PageID      string
}

func (e AlreadyLinkedError) Error() string {
	if e.IssueNumber != 0 {
		return fmt.Sprintf("thread already linked to issue #%d", e.IssueNumber)
	}
	return fmt.Sprintf("thread already linked to page %s", e.PageID)
}

// RemoteCallError wraps a failed tracker-client operation. Transport-level
// detail stays in the wrapped error; callers see tracker and operation names.
type RemoteCallError struct {
	Tracker string // "issue" or "page"
	Op      string
	Err     error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s tracker: %s: %s", e.Tracker, e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// PartialCreationError reports a dual Open in which one tracker creation
// succeeded and the other failed. Nothing is persisted in that case, so the
// successful side's identifier is carried here for manual cleanup; there is
// no compensating delete.
type PartialCreationError struct {
	IssueNumber int    // set if the issue creation succeeded
	PageID      string // set if the page creation succeeded
	Err         error  // the failing side's error
}

func (e *PartialCreationError) Error() string {
	switch {
	case e.IssueNumber != 0:
		return fmt.Sprintf("page creation failed (issue #%d was created and is now unlinked): %s", e.IssueNumber, e.Err)
	case e.PageID != "":
		return fmt.Sprintf("issue creation failed (page %s was created and is now unlinked): %s", e.PageID, e.Err)
	default:
		return fmt.Sprintf("creation failed: %s", e.Err)
	}
}

func (e *PartialCreationError) Unwrap() error { return e.Err }
