package threadlink

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type fakeIssueTracker struct {
	mu sync.Mutex

	nextNumber    int
	nextCommentID int64

	createErr        error
	getErr           error
	commentErr       error
	closeErr         error
	deleteCommentErr error

	issues          map[int]*Issue
	comments        map[int64]string
	closed          []int
	deletedComments []int64

	createCalls  int
	getCalls     int
	commentCalls int
}

func newFakeIssueTracker() *fakeIssueTracker {
	return &fakeIssueTracker{
		nextNumber:    6,
		nextCommentID: 1000,
		issues:        make(map[int]*Issue),
		comments:      make(map[int64]string),
	}
}

var _ IssueTracker = &fakeIssueTracker{}

func (f *fakeIssueTracker) CreateIssue(ctx context.Context, req IssueRequest) (*Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextNumber++
	issue := &Issue{
		Number:  f.nextNumber,
		Title:   req.Title,
		State:   IssueStateOpen,
		Labels:  req.Labels,
		HTMLURL: fmt.Sprintf("https://github.example.com/o/r/issues/%d", f.nextNumber),
	}
	f.issues[issue.Number] = issue
	return issue, nil
}

func (f *fakeIssueTracker) CloseIssue(ctx context.Context, number int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closeErr != nil {
		return f.closeErr
	}
	if issue, ok := f.issues[number]; ok {
		issue.State = IssueStateClosed
	}
	f.closed = append(f.closed, number)
	return nil
}

func (f *fakeIssueTracker) GetIssue(ctx context.Context, number int) (*Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	issue, ok := f.issues[number]
	if !ok {
		return nil, fmt.Errorf("no issue #%d", number)
	}
	return issue, nil
}

func (f *fakeIssueTracker) AddComment(ctx context.Context, number int, body string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commentCalls++
	if f.commentErr != nil {
		return 0, f.commentErr
	}
	f.nextCommentID++
	f.comments[f.nextCommentID] = body
	return f.nextCommentID, nil
}

func (f *fakeIssueTracker) DeleteComment(ctx context.Context, commentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteCommentErr != nil {
		return f.deleteCommentErr
	}
	delete(f.comments, commentID)
	f.deletedComments = append(f.deletedComments, commentID)
	return nil
}

type pagePatch struct {
	pageID string
	patch  map[string]string
}

type fakePageTracker struct {
	mu sync.Mutex

	nextID int

	createErr error
	updateErr error
	getErr    error

	pages   map[string]*Page
	patches []pagePatch

	createCalls int
}

func newFakePageTracker() *fakePageTracker {
	return &fakePageTracker{pages: make(map[string]*Page)}
}

var _ PageTracker = &fakePageTracker{}

func (f *fakePageTracker) CreatePage(ctx context.Context, req PageRequest) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	page := &Page{
		ID:         fmt.Sprintf("page-%d", f.nextID),
		Properties: map[string]string{"Status": "Not started"},
	}
	f.pages[page.ID] = page
	return page, nil
}

func (f *fakePageTracker) UpdatePageProperty(ctx context.Context, pageID string, patch map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.patches = append(f.patches, pagePatch{pageID: pageID, patch: patch})
	return nil
}

func (f *fakePageTracker) GetPage(ctx context.Context, pageID string) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	page, ok := f.pages[pageID]
	if !ok {
		return nil, fmt.Errorf("no page %s", pageID)
	}
	return page, nil
}

type memLinkStore struct {
	mu    sync.Mutex
	links map[string]*ThreadLink
}

func newMemLinkStore() *memLinkStore {
	return &memLinkStore{links: make(map[string]*ThreadLink)}
}

var _ LinkStore = &memLinkStore{}

func (m *memLinkStore) ByThreadID(ctx context.Context, threadID string) (*ThreadLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *link
	return &copied, nil
}

func (m *memLinkStore) Upsert(ctx context.Context, link *ThreadLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *link
	m.links[link.ThreadID] = &copied
	return nil
}

func (m *memLinkStore) Close(ctx context.Context, threadID string, closedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[threadID]
	if !ok {
		return ErrNotFound
	}
	link.Status = StatusClosed
	link.ClosedAt = closedAt
	return nil
}

type memCommentStore struct {
	mu       sync.Mutex
	mappings map[string]*CommentMapping
}

func newMemCommentStore() *memCommentStore {
	return &memCommentStore{mappings: make(map[string]*CommentMapping)}
}

var _ CommentMapStore = &memCommentStore{}

func (m *memCommentStore) ByMessageID(ctx context.Context, messageID string) (*CommentMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mapping, ok := m.mappings[messageID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *mapping
	return &copied, nil
}

func (m *memCommentStore) Add(ctx context.Context, mapping *CommentMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *mapping
	m.mappings[mapping.MessageID] = &copied
	return nil
}

func (m *memCommentStore) Delete(ctx context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mappings, messageID)
	return nil
}

type fakeThreadReader struct {
	name       string
	nameErr    error
	starter    string
	starterErr error
	recent     []ThreadMessage
	recentErr  error
}

var _ ThreadReader = &fakeThreadReader{}

func (f *fakeThreadReader) ThreadName(ctx context.Context, threadID string) (string, error) {
	return f.name, f.nameErr
}

func (f *fakeThreadReader) StarterMessage(ctx context.Context, threadID string) (string, error) {
	return f.starter, f.starterErr
}

func (f *fakeThreadReader) RecentMessages(ctx context.Context, threadID string, limit int) ([]ThreadMessage, error) {
	return f.recent, f.recentErr
}

type fakeDecorator struct {
	mu      sync.Mutex
	renames map[string]string
	tags    map[string][]string
}

func newFakeDecorator() *fakeDecorator {
	return &fakeDecorator{
		renames: make(map[string]string),
		tags:    make(map[string][]string),
	}
}

var _ ThreadDecorator = &fakeDecorator{}

func (f *fakeDecorator) RenameThread(ctx context.Context, threadID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renames[threadID] = name
	return nil
}

func (f *fakeDecorator) ApplyTag(ctx context.Context, threadID, tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags[threadID] = append(f.tags[threadID], tag)
	return nil
}

func ts(n int) time.Time {
	return time.Date(2024, 5, 1, 12, 0, n, 0, time.UTC)
}

func newTestService() (*Service, *fakeIssueTracker, *fakePageTracker, *memLinkStore, *memCommentStore) {
	issues := newFakeIssueTracker()
	pages := newFakePageTracker()
	links := newMemLinkStore()
	comments := newMemCommentStore()
	s := &Service{
		Issues:    issues,
		Pages:     pages,
		Links:     links,
		Comments:  comments,
		BotUserID: "bot-1",
	}
	return s, issues, pages, links, comments
}
