package threadlink

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// StatusReport is the result of Query: the stored link plus the live remote
// state of each linked tracker. The cached metadata URLs are not consulted.
type StatusReport struct {
	Link  *ThreadLink `json:"link"`
	Issue *Issue      `json:"issue,omitempty"`
	Page  *Page       `json:"page,omitempty"`
}

// Query fetches the current remote state of every tracker linked to the
// thread. It fails with ErrNotLinked if the thread has no link at all, and
// with ErrNoIssueLinkage if the link holds no tracker identifiers (a
// transient state that should not normally be observed).
func (s *Service) Query(ctx context.Context, threadID string) (*StatusReport, error) {
	link, err := s.Links.ByThreadID(ctx, threadID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotLinked
	}
	if err != nil {
		return nil, errors.Wrap(err, "getting thread link")
	}
	if link.IssueNumber == 0 && link.PageID == "" {
		return nil, ErrNoIssueLinkage
	}

	report := &StatusReport{Link: link}

	var (
		issueErr error
		pageErr  error
		wg       sync.WaitGroup
	)
	if link.IssueNumber != 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report.Issue, issueErr = s.Issues.GetIssue(ctx, link.IssueNumber)
			if issueErr != nil {
				issueErr = &RemoteCallError{Tracker: "issue", Op: "get", Err: issueErr}
			}
		}()
	}
	if link.PageID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report.Page, pageErr = s.Pages.GetPage(ctx, link.PageID)
			if pageErr != nil {
				pageErr = &RemoteCallError{Tracker: "page", Op: "get", Err: pageErr}
			}
		}()
	}
	wg.Wait()

	if issueErr != nil {
		return nil, issueErr
	}
	if pageErr != nil {
		return nil, pageErr
	}
	return report, nil
}

// QueryIssue fetches the live state of the thread's linked issue.
func (s *Service) QueryIssue(ctx context.Context, threadID string) (*Issue, error) {
	link, err := s.Links.ByThreadID(ctx, threadID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotLinked
	}
	if err != nil {
		return nil, errors.Wrap(err, "getting thread link")
	}
	if link.IssueNumber == 0 {
		return nil, ErrNoIssueLinkage
	}
	issue, err := s.Issues.GetIssue(ctx, link.IssueNumber)
	if err != nil {
		return nil, &RemoteCallError{Tracker: "issue", Op: "get", Err: err}
	}
	return issue, nil
}

// QueryPage fetches the live state of the thread's linked page.
func (s *Service) QueryPage(ctx context.Context, threadID string) (*Page, error) {
	link, err := s.Links.ByThreadID(ctx, threadID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotLinked
	}
	if err != nil {
		return nil, errors.Wrap(err, "getting thread link")
	}
	if link.PageID == "" {
		return nil, ErrNoPageLinkage
	}
	page, err := s.Pages.GetPage(ctx, link.PageID)
	if err != nil {
		return nil, &RemoteCallError{Tracker: "page", Op: "get", Err: err}
	}
	return page, nil
}
