package threadlink

import (
	"context"
	"fmt"
	"time"
)

const (
	maxThreadNameLen = 100
	decorateTimeout  = 30 * time.Second
)

// decorateOpen applies cosmetic host-platform mutations after a linkage
// commits: renaming the thread to carry the tracker identifier and tagging
// it. It runs in its own goroutine with a fresh context, outside the core
// transaction; failures are logged and forgotten.
func (s *Service) decorateOpen(link *ThreadLink, issueCreated, pageCreated bool) {
	if s.Decorator == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), decorateTimeout)
	defer cancel()

	var name string
	switch {
	case issueCreated:
		name = fmt.Sprintf("[#%d] %s", link.IssueNumber, link.Title)
	case pageCreated && link.IssueNumber == 0:
		// Issue-linked threads keep their issue-numbered name.
		name = fmt.Sprintf("[Page] %s", link.Title)
	}
	if name != "" {
		if err := s.Decorator.RenameThread(ctx, link.ThreadID, truncate(name, maxThreadNameLen)); err != nil {
			s.logger().Warn("renaming thread", "thread_id", link.ThreadID, "err", err)
		}
	}

	if issueCreated {
		if err := s.Decorator.ApplyTag(ctx, link.ThreadID, TagIssueCreated); err != nil {
			s.logger().Warn("tagging thread", "thread_id", link.ThreadID, "tag", TagIssueCreated, "err", err)
		}
	}
	if pageCreated {
		if err := s.Decorator.ApplyTag(ctx, link.ThreadID, TagPageCreated); err != nil {
			s.logger().Warn("tagging thread", "thread_id", link.ThreadID, "tag", TagPageCreated, "err", err)
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
