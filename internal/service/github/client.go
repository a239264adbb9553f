// Package github wraps the GitHub REST API operations the bot needs:
// listing organization issues for the list command, and resolving pull
// requests and commit lists for status notifications.
package github

import (
	"context"
	"fmt"

	gogithub "github.com/google/go-github/v57/github"
)

// Client is a thin wrapper around the go-github client.
type Client struct {
	api *gogithub.Client
}

// NewClient creates a Client authenticated with the given token.
func NewClient(token string) *Client {
	return &Client{api: gogithub.NewClient(nil).WithAuthToken(token)}
}

// ListOrgIssues returns all open issues and pull requests in the
// organization, following pagination.
func (c *Client) ListOrgIssues(ctx context.Context, org string) ([]*gogithub.Issue, error) {
	opts := &gogithub.IssueListOptions{
		Filter:      "all",
		State:       "open",
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}

	var all []*gogithub.Issue
	for {
		issues, resp, err := c.api.Issues.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues for org %q: %w", org, err)
		}
		all = append(all, issues...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// GetPullRequest fetches a single pull request, used to resolve its
// mergeable state.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*gogithub.PullRequest, error) {
	pr, _, err := c.api.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request %s/%s#%d: %w", owner, repo, number, err)
	}
	return pr, nil
}

// ListPullRequestCommits returns the commits on a pull request in order,
// following pagination. The last entry is the PR's current head.
func (c *Client) ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]*gogithub.RepositoryCommit, error) {
	opts := &gogithub.ListOptions{PerPage: 100}

	var all []*gogithub.RepositoryCommit
	for {
		commits, resp, err := c.api.PullRequests.ListCommits(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits for %s/%s#%d: %w", owner, repo, number, err)
		}
		all = append(all, commits...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// SearchIssues searches issues and pull requests matching the query,
// typically a commit sha.
func (c *Client) SearchIssues(ctx context.Context, query string) ([]*gogithub.Issue, error) {
	result, _, err := c.api.Search.Issues(ctx, query, &gogithub.SearchOptions{
		ListOptions: gogithub.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search issues for %q: %w", query, err)
	}
	return result.Issues, nil
}
