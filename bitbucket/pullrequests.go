package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListOptions controls pull request listing.
type ListOptions struct {
	// State is one of OPEN, DECLINED, MERGED or ALL (Bitbucket semantics).
	State string
	// Direction is INCOMING or OUTGOING.
	Direction string
	// Limit is the page size; the client default applies when <= 0.
	Limit int
	// MaxItems caps the number of items fetched across pages.
	MaxItems int
}

// CreateOptions describes a pull request to create.
type CreateOptions struct {
	Title       string
	Description string
	// FromBranch and ToBranch are branch names without the refs/heads/ prefix.
	FromBranch string
	ToBranch   string
	// Reviewers are usernames; the exact field may vary by instance,
	// this uses user.name.
	Reviewers []string
	// Draft sets the PR draft status when non-nil. Older servers reject it.
	Draft *bool
}

func pullRequestsPath(project, repo string) string {
	return fmt.Sprintf("projects/%s/repos/%s/pull-requests", project, repo)
}

// ListPullRequests retrieves pull requests for a repository, following
// pagination up to opts.MaxItems.
func (c *Client) ListPullRequests(ctx context.Context, project, repo string, opts ListOptions) ([]map[string]any, error) {
	params := url.Values{}
	if opts.State != "" {
		params.Set("state", opts.State)
	}
	if opts.Direction != "" {
		params.Set("direction", opts.Direction)
	}

	prs, err := c.PagedGet(ctx, pullRequestsPath(project, repo), params, opts.Limit, opts.MaxItems)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("project", project).
		Str("repo", repo).
		Int("count", len(prs)).
		Msg("Retrieved pull requests")
	return prs, nil
}

// GetPullRequest retrieves a single pull request by ID.
func (c *Client) GetPullRequest(ctx context.Context, project, repo string, id int) (map[string]any, error) {
	path := fmt.Sprintf("%s/%d", pullRequestsPath(project, repo), id)
	return c.Request(ctx, http.MethodGet, path, nil, nil)
}

// CreatePullRequest opens a new pull request from opts.FromBranch into
// opts.ToBranch and returns the created resource.
func (c *Client) CreatePullRequest(ctx context.Context, project, repo string, opts CreateOptions) (map[string]any, error) {
	ref := func(branch string) map[string]any {
		return map[string]any{
			"id": "refs/heads/" + branch,
			"repository": map[string]any{
				"slug":    repo,
				"project": map[string]any{"key": project},
			},
		}
	}

	body := map[string]any{
		"title":       opts.Title,
		"description": opts.Description,
		"fromRef":     ref(opts.FromBranch),
		"toRef":       ref(opts.ToBranch),
	}

	if len(opts.Reviewers) > 0 {
		reviewers := make([]map[string]any, 0, len(opts.Reviewers))
		for _, name := range opts.Reviewers {
			reviewers = append(reviewers, map[string]any{"user": map[string]any{"name": name}})
		}
		body["reviewers"] = reviewers
	}

	if opts.Draft != nil {
		body["draft"] = *opts.Draft
	}

	return c.Request(ctx, http.MethodPost, pullRequestsPath(project, repo), nil, body)
}

// AddComment adds a top-level comment to a pull request.
func (c *Client) AddComment(ctx context.Context, project, repo string, id int, text string) (map[string]any, error) {
	path := fmt.Sprintf("%s/%d/comments", pullRequestsPath(project, repo), id)
	return c.Request(ctx, http.MethodPost, path, nil, map[string]any{"text": text})
}

// DashboardPullRequests fetches the first page of the caller's dashboard
// pull requests. It requires only valid auth and serves as a lightweight
// liveness check.
func (c *Client) DashboardPullRequests(ctx context.Context, limit int) (map[string]any, error) {
	if limit <= 0 {
		limit = 1
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("start", "0")
	return c.Request(ctx, http.MethodGet, "dashboard/pull-requests", params, nil)
}
