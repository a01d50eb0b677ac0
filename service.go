package threadlink

import "log/slog"

// Service is the core of threadlink: the link lifecycle manager and the
// message mirror, wired to injected stores and tracker clients. All fields
// are set once at process start and never reinitialized.
type Service struct {
	Issues IssueTracker
	Pages  PageTracker

	Links    LinkStore
	Comments CommentMapStore

	// BotUserID is this service's own chat identity. Messages it authors are
	// never mirrored back.
	BotUserID string

	// Threads, if set, supplies thread context for the title/description
	// fallback chain on Open.
	Threads ThreadReader

	// Decorator, if set, receives fire-and-forget cosmetic mutations (thread
	// rename, tag assignment) after a successful Open.
	Decorator ThreadDecorator

	AdminKey string

	Logger *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
