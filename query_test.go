package threadlink

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestQueryNotLinked(t *testing.T) {
	s, _, _, _, _ := newTestService()
	_, err := s.Query(context.Background(), "T1")
	if !errors.Is(err, ErrNotLinked) {
		t.Fatalf("got %v, want ErrNotLinked", err)
	}
}

func TestQueryBothSlots(t *testing.T) {
	ctx := context.Background()
	s, issues, pages, links, _ := newTestService()

	issues.issues[7] = &Issue{Number: 7, Title: "Bug", State: IssueStateOpen, Labels: []string{"bug"}}
	pages.pages["page-1"] = &Page{ID: "page-1", Properties: map[string]string{"Status": "In progress"}}
	links.Upsert(ctx, &ThreadLink{
		ThreadID:    "T1",
		IssueNumber: 7,
		PageID:      "page-1",
		Status:      StatusConnected,
		Metadata:    map[string]string{MetaIssueURL: "stale"},
	})

	report, err := s.Query(ctx, "T1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(issues.issues[7], report.Issue); diff != "" {
		t.Errorf("issue mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(pages.pages["page-1"], report.Page); diff != "" {
		t.Errorf("page mismatch (-want +got):\n%s", diff)
	}
}

func TestQuerySlotVariants(t *testing.T) {
	ctx := context.Background()
	s, _, pages, links, _ := newTestService()

	pages.pages["page-1"] = &Page{ID: "page-1"}
	links.Upsert(ctx, &ThreadLink{
		ThreadID: "T1",
		PageID:   "page-1",
		Status:   StatusConnected,
	})

	if _, err := s.QueryIssue(ctx, "T1"); !errors.Is(err, ErrNoIssueLinkage) {
		t.Errorf("QueryIssue: got %v, want ErrNoIssueLinkage", err)
	}
	page, err := s.QueryPage(ctx, "T1")
	if err != nil {
		t.Fatal(err)
	}
	if page.ID != "page-1" {
		t.Errorf("page = %+v, want page-1", page)
	}
	if _, err := s.QueryPage(ctx, "T2"); !errors.Is(err, ErrNotLinked) {
		t.Errorf("QueryPage on unlinked thread: got %v, want ErrNotLinked", err)
	}
}
