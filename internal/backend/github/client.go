// Package github implements the backend.Backend interface against the
// GitHub issues API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"projectmd/internal/backend"
)

const (
	// APITimeout bounds each individual API call.
	APITimeout = 10 * time.Second

	// pageSize is the number of issues fetched per list page.
	pageSize = 100
)

// Client implements backend.Backend using the GitHub API.
type Client struct {
	client *gh.Client
	owner  string
	repo   string
}

// New creates a GitHub client for a repository given as "owner/name",
// authenticated with a personal access token.
func New(ctx context.Context, token, repo string) (*Client, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repo %q: expected owner/name", repo)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, src)

	return &Client{
		client: gh.NewClient(httpClient),
		owner:  owner,
		repo:   name,
	}, nil
}

// Create implements backend.Backend.
func (c *Client) Create(ctx context.Context, title, body string, labels []string) (backend.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	req := &gh.IssueRequest{
		Title:  gh.Ptr(title),
		Body:   gh.Ptr(body),
		Labels: &labels,
	}
	issue, _, err := c.client.Issues.Create(ctx, c.owner, c.repo, req)
	if err != nil {
		return backend.Issue{}, wrapError(err)
	}
	return convertIssue(issue), nil
}

// Update implements backend.Backend.
func (c *Client) Update(ctx context.Context, number int, title, body string, labels []string) (backend.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	req := &gh.IssueRequest{
		Title:  gh.Ptr(title),
		Body:   gh.Ptr(body),
		Labels: &labels,
	}
	issue, _, err := c.client.Issues.Edit(ctx, c.owner, c.repo, number, req)
	if err != nil {
		return backend.Issue{}, wrapError(err)
	}
	return convertIssue(issue), nil
}

// Get implements backend.Backend.
func (c *Client) Get(ctx context.Context, number int) (backend.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	issue, _, err := c.client.Issues.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return backend.Issue{}, wrapError(err)
	}
	return convertIssue(issue), nil
}

// List implements backend.Backend. Pull requests, which the issues API
// also returns, are filtered out.
func (c *Client) List(ctx context.Context) ([]backend.Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State:       "all",
		ListOptions: gh.ListOptions{PerPage: pageSize},
	}

	var result []backend.Issue
	for {
		issues, resp, err := c.listPage(ctx, opts)
		if err != nil {
			return nil, wrapError(err)
		}
		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			result = append(result, convertIssue(issue))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}
	return result, nil
}

func (c *Client) listPage(ctx context.Context, opts *gh.IssueListByRepoOptions) ([]*gh.Issue, *gh.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	return c.client.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
}

// convertIssue maps a GitHub issue to the backend type.
func convertIssue(issue *gh.Issue) backend.Issue {
	state := backend.StateUnknown
	switch issue.GetState() {
	case "open":
		state = backend.StateOpen
	case "closed":
		state = backend.StateClosed
	}

	return backend.Issue{
		ID:     issue.GetID(),
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		State:  state,
	}
}

// wrapError maps API failures to messages that make sense to a CLI user.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("github: request timed out")
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("github: authentication failed (check the token)")
		case http.StatusNotFound:
			return fmt.Errorf("github: not found")
		}
	}

	return fmt.Errorf("github: %w", err)
}
