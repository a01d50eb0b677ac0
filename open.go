package threadlink

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// OpenRequest asks for a new tracker linkage on a thread. At least one of
// Issue and Page must be set. Title and Description are optional; when
// omitted they are derived from thread context (see resolveText).
type OpenRequest struct {
	ThreadID        string   `json:"thread_id"`
	ParentChannelID string   `json:"parent_channel_id,omitempty"`
	GuildID         string   `json:"guild_id,omitempty"`
	ThreadURL       string   `json:"thread_url,omitempty"`
	Title           string   `json:"title,omitempty"`
	Description     string   `json:"description,omitempty"`
	Priority        Priority `json:"priority,omitempty"`
	Assignee        string   `json:"assignee,omitempty"`
	Labels          []string `json:"labels,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	CreatedBy       string   `json:"created_by,omitempty"`

	Issue bool `json:"issue,omitempty"`
	Page  bool `json:"page,omitempty"`
}

const noDescription = "No description provided."

// Open creates the requested tracker linkages for a thread and persists the
// resulting ThreadLink with status connected.
//
// When both an issue and a page are requested, the two creations run
// concurrently and both must succeed: a single failure fails the whole
// operation and nothing is persisted. The surviving remote resource, if any,
// is reported via PartialCreationError rather than deleted.
//
// Opening a slot that is already connected fails with AlreadyLinkedError
// before any remote call. Opening the free slot of a partially linked thread
// merges into the existing record instead of overwriting it.
func (s *Service) Open(ctx context.Context, req OpenRequest) (*ThreadLink, error) {
	if !req.Issue && !req.Page {
		return nil, fmt.Errorf("no tracker requested for thread %s", req.ThreadID)
	}

	existing, err := s.Links.ByThreadID(ctx, req.ThreadID)
	if errors.Is(err, ErrNotFound) {
		existing = nil
	} else if err != nil {
		return nil, errors.Wrap(err, "getting thread link")
	}

	if existing != nil && existing.Status == StatusConnected {
		if req.Issue && existing.IssueNumber != 0 {
			return nil, AlreadyLinkedError{IssueNumber: existing.IssueNumber}
		}
		if req.Page && existing.PageID != "" {
			return nil, AlreadyLinkedError{PageID: existing.PageID}
		}
	}

	title, description := s.resolveText(ctx, req)
	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	var (
		issue    *Issue
		page     *Page
		issueErr error
		pageErr  error
		wg       sync.WaitGroup
	)
	if req.Issue {
		wg.Add(1)
		go func() {
			defer wg.Done()
			issue, issueErr = s.Issues.CreateIssue(ctx, IssueRequest{
				Title:    title,
				Body:     description,
				Labels:   req.Labels,
				Assignee: req.Assignee,
			})
			if issueErr != nil {
				issueErr = &RemoteCallError{Tracker: "issue", Op: "create", Err: issueErr}
			}
		}()
	}
	if req.Page {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, pageErr = s.Pages.CreatePage(ctx, PageRequest{
				Title:       title,
				Description: description,
				Tags:        req.Tags,
				Priority:    priority,
			})
			if pageErr != nil {
				pageErr = &RemoteCallError{Tracker: "page", Op: "create", Err: pageErr}
			}
		}()
	}
	wg.Wait()

	switch {
	case issueErr != nil && pageErr != nil:
		return nil, stderrors.Join(issueErr, pageErr)
	case issueErr != nil:
		if page != nil {
			return nil, &PartialCreationError{PageID: page.ID, Err: issueErr}
		}
		return nil, issueErr
	case pageErr != nil:
		if issue != nil {
			return nil, &PartialCreationError{IssueNumber: issue.Number, Err: pageErr}
		}
		return nil, pageErr
	}

	link := &ThreadLink{
		ThreadID:  req.ThreadID,
		CreatedAt: time.Now(),
		Metadata:  map[string]string{},
	}
	if existing != nil {
		copied := *existing
		link = &copied
		link.Metadata = cloneMetadata(existing.Metadata)
	}
	if req.ParentChannelID != "" {
		link.ParentChannelID = req.ParentChannelID
	}
	if req.GuildID != "" {
		link.GuildID = req.GuildID
	}
	link.Status = StatusConnected
	link.Title = title
	link.Description = description
	link.Priority = priority
	if req.CreatedBy != "" {
		link.CreatedBy = req.CreatedBy
	}
	link.ClosedAt = time.Time{}
	if issue != nil {
		link.IssueNumber = issue.Number
		link.Metadata[MetaIssueURL] = issue.HTMLURL
	}
	if page != nil {
		link.PageID = page.ID
		link.Metadata[MetaPageURL] = pageURL(page)
	}
	if req.ThreadURL != "" {
		link.Metadata[MetaThreadURL] = req.ThreadURL
	}

	if err := s.Links.Upsert(ctx, link); err != nil {
		return nil, errors.Wrap(err, "storing thread link")
	}

	go s.decorateOpen(link, issue != nil, page != nil)

	return link, nil
}

// resolveText fills in a missing title or description from thread context.
// It never fails: each lookup that errors or comes back empty falls through
// to the next source, ending in literal placeholders.
func (s *Service) resolveText(ctx context.Context, req OpenRequest) (title, description string) {
	title, description = req.Title, req.Description
	if title != "" && description != "" {
		return title, description
	}

	if title == "" && s.Threads != nil {
		if name, err := s.Threads.ThreadName(ctx, req.ThreadID); err == nil && name != "" {
			title = name
		} else if err != nil {
			s.logger().Warn("fetching thread name", "thread_id", req.ThreadID, "err", err)
		}
	}
	if title == "" {
		title = "Thread " + req.ThreadID
	}

	if description == "" && s.Threads != nil {
		description = s.describeThread(ctx, req.ThreadID)
	}
	if description == "" {
		description = noDescription
	}
	return title, description
}

// describeThread returns the thread's starter-message content, falling back
// to the earliest message in a bounded recent-history window.
func (s *Service) describeThread(ctx context.Context, threadID string) string {
	starter, err := s.Threads.StarterMessage(ctx, threadID)
	if err == nil && starter != "" {
		return starter
	}
	if err != nil {
		s.logger().Warn("fetching starter message", "thread_id", threadID, "err", err)
	}

	msgs, err := s.Threads.RecentMessages(ctx, threadID, 10)
	if err != nil {
		s.logger().Warn("fetching recent messages", "thread_id", threadID, "err", err)
		return ""
	}
	var (
		earliest   string
		earliestAt time.Time
	)
	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		if earliest == "" || m.Timestamp.Before(earliestAt) {
			earliest, earliestAt = m.Content, m.Timestamp
		}
	}
	return earliest
}

func cloneMetadata(m map[string]string) map[string]string {
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

func pageURL(p *Page) string {
	if p.URL != "" {
		return p.URL
	}
	return "https://notion.so/" + stripDashes(p.ID)
}

func stripDashes(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
