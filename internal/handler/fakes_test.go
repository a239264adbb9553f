package handler

import (
	"context"
	"encoding/json"
	"sync"

	gogithub "github.com/google/go-github/v57/github"
	"github.com/slack-go/slack"

	"snippet_bot/internal/model"
)

// postedMessage is one delivery captured by fakeSlackAPI, with the message
// options decoded back into text and attachments.
type postedMessage struct {
	channel     string
	user        string // set for ephemeral posts
	text        string
	attachments []slack.Attachment
}

type fakeSlackAPI struct {
	mu       sync.Mutex
	messages []postedMessage
	views    []slack.ModalViewRequest
	err      error
}

func decodeOptions(channelID string, options ...slack.MsgOption) (string, []slack.Attachment, error) {
	_, values, err := slack.UnsafeApplyMsgOptions("token", channelID, "https://slack.com/api/", options...)
	if err != nil {
		return "", nil, err
	}
	var attachments []slack.Attachment
	if raw := values.Get("attachments"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &attachments); err != nil {
			return "", nil, err
		}
	}
	return values.Get("text"), attachments, nil
}

func (f *fakeSlackAPI) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	text, attachments, err := decodeOptions(channelID, options...)
	if err != nil {
		return "", "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", "", f.err
	}
	f.messages = append(f.messages, postedMessage{channel: channelID, text: text, attachments: attachments})
	return channelID, "", nil
}

func (f *fakeSlackAPI) PostEphemeral(channelID, userID string, options ...slack.MsgOption) (string, error) {
	text, attachments, err := decodeOptions(channelID, options...)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.messages = append(f.messages, postedMessage{channel: channelID, user: userID, text: text, attachments: attachments})
	return "", nil
}

func (f *fakeSlackAPI) OpenView(triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, view)
	return &slack.ViewResponse{}, nil
}

// sent returns a copy of the captured messages.
func (f *fakeSlackAPI) sent() []postedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]postedMessage(nil), f.messages...)
}

// channelsMessaged returns the distinct delivery targets in order of first
// delivery.
func (f *fakeSlackAPI) channelsMessaged() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var channels []string
	seen := make(map[string]bool)
	for _, message := range f.messages {
		if !seen[message.channel] {
			seen[message.channel] = true
			channels = append(channels, message.channel)
		}
	}
	return channels
}

type fakeStore struct {
	mu        sync.Mutex
	users     []*model.User
	listCalls int
	err       error
}

func (s *fakeStore) Get(ctx context.Context, name string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, user := range s.users {
		if user.Name == name {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) List(ctx context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]*model.User(nil), s.users...), nil
}

func (s *fakeStore) Save(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i, existing := range s.users {
		if existing.Name == user.Name {
			s.users[i] = user
			return nil
		}
	}
	s.users = append(s.users, user)
	return nil
}

type fakeGithub struct {
	mu            sync.Mutex
	issues        []*gogithub.Issue
	pullRequests  map[int]*gogithub.PullRequest
	commits       []*gogithub.RepositoryCommit
	searchResults []*gogithub.Issue
	searchCalls   int
	err           error
}

func (g *fakeGithub) ListOrgIssues(ctx context.Context, org string) ([]*gogithub.Issue, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.issues, nil
}

func (g *fakeGithub) GetPullRequest(ctx context.Context, owner, repo string, number int) (*gogithub.PullRequest, error) {
	if g.err != nil {
		return nil, g.err
	}
	if pr, ok := g.pullRequests[number]; ok {
		return pr, nil
	}
	return &gogithub.PullRequest{Number: gogithub.Int(number)}, nil
}

func (g *fakeGithub) ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]*gogithub.RepositoryCommit, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.commits, nil
}

func (g *fakeGithub) SearchIssues(ctx context.Context, query string) ([]*gogithub.Issue, error) {
	g.mu.Lock()
	g.searchCalls++
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.searchResults, nil
}

func newTestHandler(api *fakeSlackAPI, github *fakeGithub, store *fakeStore) *Handler {
	return NewHandler(api, github, store, "acme", "hook-secret")
}
