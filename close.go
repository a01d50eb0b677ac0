package threadlink

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Close closes whichever tracker linkages the thread holds and marks the
// link closed. The issue close and the page status patch run concurrently
// and independently: a failure on one side does not stop the other, but any
// failure fails the operation and the link stays open so Close can be
// retried.
func (s *Service) Close(ctx context.Context, threadID string) (*ThreadLink, error) {
	link, err := s.Links.ByThreadID(ctx, threadID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotLinked
	}
	if err != nil {
		return nil, errors.Wrap(err, "getting thread link")
	}
	if link.Status == StatusClosed {
		return nil, ErrAlreadyClosed
	}

	var (
		issueErr error
		pageErr  error
		wg       sync.WaitGroup
	)
	if link.IssueNumber != 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Issues.CloseIssue(ctx, link.IssueNumber); err != nil {
				issueErr = &RemoteCallError{Tracker: "issue", Op: "close", Err: err}
			}
		}()
	}
	if link.PageID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			patch := map[string]string{PagePropStatus: PageStatusDone}
			if err := s.Pages.UpdatePageProperty(ctx, link.PageID, patch); err != nil {
				pageErr = &RemoteCallError{Tracker: "page", Op: "close", Err: err}
			}
		}()
	}
	wg.Wait()

	if issueErr != nil || pageErr != nil {
		return nil, stderrors.Join(issueErr, pageErr)
	}

	closedAt := time.Now()
	if err := s.Links.Close(ctx, threadID, closedAt); err != nil {
		return nil, errors.Wrap(err, "marking link closed")
	}

	closed := *link
	closed.Status = StatusClosed
	closed.ClosedAt = closedAt
	return &closed, nil
}
