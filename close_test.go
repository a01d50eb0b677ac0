package threadlink

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

func TestCloseNotLinked(t *testing.T) {
	s, _, _, _, _ := newTestService()
	_, err := s.Close(context.Background(), "T1")
	if !errors.Is(err, ErrNotLinked) {
		t.Fatalf("got %v, want ErrNotLinked", err)
	}
}

func TestCloseAlreadyClosed(t *testing.T) {
	ctx := context.Background()
	s, _, _, links, _ := newTestService()

	links.Upsert(ctx, &ThreadLink{
		ThreadID:    "T1",
		IssueNumber: 7,
		Status:      StatusClosed,
		ClosedAt:    ts(1),
	})

	_, err := s.Close(ctx, "T1")
	if !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("got %v, want ErrAlreadyClosed", err)
	}
}

func TestCloseBothLinkages(t *testing.T) {
	ctx := context.Background()
	s, issues, pages, links, _ := newTestService()

	issues.issues[7] = &Issue{Number: 7, State: IssueStateOpen}
	links.Upsert(ctx, &ThreadLink{
		ThreadID:    "T1",
		IssueNumber: 7,
		PageID:      "page-1",
		Status:      StatusConnected,
	})

	closed, err := s.Close(ctx, "T1")
	if err != nil {
		t.Fatal(err)
	}
	if closed.Status != StatusClosed || closed.ClosedAt.IsZero() {
		t.Errorf("returned link = %+v, want closed with timestamp", closed)
	}

	if len(issues.closed) != 1 || issues.closed[0] != 7 {
		t.Errorf("closed issues = %v, want [7]", issues.closed)
	}
	if len(pages.patches) != 1 {
		t.Fatalf("page patches = %v, want one", pages.patches)
	}
	patch := pages.patches[0]
	if patch.pageID != "page-1" || patch.patch[PagePropStatus] != PageStatusDone {
		t.Errorf("patch = %+v, want status done on page-1", patch)
	}

	stored, err := links.ByThreadID(ctx, "T1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != StatusClosed || stored.ClosedAt.IsZero() {
		t.Errorf("stored = %+v, want closed with timestamp", stored)
	}
}

func TestCloseIssueFailureLeavesLinkOpen(t *testing.T) {
	ctx := context.Background()
	s, issues, pages, links, _ := newTestService()
	issues.closeErr = fmt.Errorf("boom")

	links.Upsert(ctx, &ThreadLink{
		ThreadID:    "T1",
		IssueNumber: 7,
		PageID:      "page-1",
		Status:      StatusConnected,
	})

	_, err := s.Close(ctx, "T1")
	var remote *RemoteCallError
	if !errors.As(err, &remote) {
		t.Fatalf("got %v, want RemoteCallError", err)
	}

	// The page close is independent and still attempted.
	if len(pages.patches) != 1 {
		t.Errorf("page patches = %v, want one", pages.patches)
	}

	stored, err := links.ByThreadID(ctx, "T1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != StatusConnected {
		t.Errorf("status = %s, want still connected so Close can be retried", stored.Status)
	}
}
