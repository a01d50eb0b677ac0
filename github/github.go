// Package github implements threadlink.IssueTracker on top of the GitHub
// issues API.
package github

import (
	"context"

	"github.com/bobg/go-generics/slices"
	"github.com/google/go-github/v66/github"
	"github.com/pkg/errors"

	"threadlink"
)

// Config configures a Client. APIURL and UploadURL are only needed for
// GitHub Enterprise; leave them empty for github.com.
type Config struct {
	Token     string
	APIURL    string
	UploadURL string
	Owner     string
	Repo      string
}

// Client is a stateless issue-tracker adapter for one GitHub repository.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

var _ threadlink.IssueTracker = &Client{}

func New(c Config) (*Client, error) {
	gh := github.NewClient(nil)
	if c.APIURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(c.APIURL, c.UploadURL)
		if err != nil {
			return nil, errors.Wrap(err, "setting enterprise URLs")
		}
	}
	if c.Token != "" {
		gh = gh.WithAuthToken(c.Token)
	}
	return &Client{gh: gh, owner: c.Owner, repo: c.Repo}, nil
}

func (c *Client) CreateIssue(ctx context.Context, req threadlink.IssueRequest) (*threadlink.Issue, error) {
	ir := &github.IssueRequest{
		Title: github.String(req.Title),
		Body:  github.String(req.Body),
	}
	if len(req.Labels) > 0 {
		ir.Labels = &req.Labels
	}
	if req.Assignee != "" {
		ir.Assignee = github.String(req.Assignee)
	}
	issue, _, err := c.gh.Issues.Create(ctx, c.owner, c.repo, ir)
	if err != nil {
		return nil, errors.Wrap(err, "creating issue")
	}
	return toIssue(issue), nil
}

func (c *Client) CloseIssue(ctx context.Context, number int) error {
	_, _, err := c.gh.Issues.Edit(ctx, c.owner, c.repo, number, &github.IssueRequest{
		State: github.String("closed"),
	})
	return errors.Wrapf(err, "closing issue #%d", number)
}

func (c *Client) GetIssue(ctx context.Context, number int) (*threadlink.Issue, error) {
	issue, _, err := c.gh.Issues.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, errors.Wrapf(err, "getting issue #%d", number)
	}
	return toIssue(issue), nil
}

func (c *Client) AddComment(ctx context.Context, number int, body string) (int64, error) {
	comment, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return 0, errors.Wrapf(err, "commenting on issue #%d", number)
	}
	return comment.GetID(), nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	_, err := c.gh.Issues.DeleteComment(ctx, c.owner, c.repo, commentID)
	return errors.Wrapf(err, "deleting comment %d", commentID)
}

func toIssue(gi *github.Issue) *threadlink.Issue {
	labels, _ := slices.Map(gi.Labels, func(_ int, l *github.Label) (string, error) {
		return l.GetName(), nil
	})
	return &threadlink.Issue{
		Number:  gi.GetNumber(),
		Title:   gi.GetTitle(),
		State:   gi.GetState(),
		Labels:  labels,
		HTMLURL: gi.GetHTMLURL(),
	}
}
