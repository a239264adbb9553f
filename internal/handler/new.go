package handler

import (
	"context"

	gogithub "github.com/google/go-github/v57/github"
	"github.com/slack-go/slack"

	"snippet_bot/internal/storage"
)

// SlackAPI is the slice of the Slack client the handlers use. Satisfied by
// *slack.Client.
type SlackAPI interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
	PostEphemeral(channelID, userID string, options ...slack.MsgOption) (string, error)
	OpenView(triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error)
}

// GithubAPI is the slice of the GitHub client the handlers use. Satisfied
// by *github.Client from internal/service/github.
type GithubAPI interface {
	ListOrgIssues(ctx context.Context, org string) ([]*gogithub.Issue, error)
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*gogithub.PullRequest, error)
	ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]*gogithub.RepositoryCommit, error)
	SearchIssues(ctx context.Context, query string) ([]*gogithub.Issue, error)
}

// Handler serves the GitHub webhook and the Slack command surfaces.
type Handler struct {
	api           SlackAPI
	github        GithubAPI
	store         storage.UserStore
	org           string
	webhookSecret string

	actions []commandAction
}

// NewHandler wires the handler with its collaborators. org is the GitHub
// organization searched by the list command; webhookSecret verifies
// inbound GitHub payloads.
func NewHandler(api SlackAPI, github GithubAPI, store storage.UserStore, org, webhookSecret string) *Handler {
	h := &Handler{
		api:           api,
		github:        github,
		store:         store,
		org:           org,
		webhookSecret: webhookSecret,
	}
	h.actions = h.commandTable()
	return h
}

// conversation identifies where a command came from and where replies go.
type conversation struct {
	channelID string
	userID    string
}
