package handler

import (
	"context"
	"testing"

	gogithub "github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snippet_bot/internal/model"
)

const testSHA = "4f2d9c1e8a7b"

func statusEvent(state model.StatusState) *model.StatusEvent {
	return &model.StatusEvent{
		SHA:         testSHA,
		Name:        "acme/widget",
		State:       state,
		Context:     "ci/build",
		Description: "Build finished",
		Commit: model.StatusCommit{
			Author:    &model.Account{Login: "bob", Type: "User"},
			Committer: &model.Account{Login: "bob", Type: "User"},
		},
		Repository: model.Repository{
			Name:  "widget",
			Owner: model.Account{Login: "acme", Type: "Organization"},
		},
	}
}

func openPullIssue(number int) *gogithub.Issue {
	return &gogithub.Issue{
		Number:  gogithub.Int(number),
		Title:   gogithub.String("Add warp drive"),
		State:   gogithub.String("open"),
		HTMLURL: gogithub.String("https://github.com/acme/widget/pull/9"),
	}
}

func TestNotifyStatusIgnoresPending(t *testing.T) {
	api := &fakeSlackAPI{}
	store := &fakeStore{users: []*model.User{{Name: "U0000000B", GithubUser: "bob"}}}
	github := &fakeGithub{}
	h := newTestHandler(api, github, store)

	require.NoError(t, h.notifyStatus(context.Background(), statusEvent(model.StatusPending)))

	assert.Empty(t, api.sent())
	assert.Zero(t, store.listCalls)
	assert.Zero(t, github.searchCalls)
}

func TestNotifyStatusNoCandidates(t *testing.T) {
	api := &fakeSlackAPI{}
	store := &fakeStore{users: []*model.User{{Name: "U0000000A", GithubUser: "alice"}}}
	github := &fakeGithub{}
	h := newTestHandler(api, github, store)

	require.NoError(t, h.notifyStatus(context.Background(), statusEvent(model.StatusSuccess)))

	assert.Empty(t, api.sent())
	assert.Zero(t, github.searchCalls, "commit search should be skipped without candidates")
}

func TestNotifyStatusSuccess(t *testing.T) {
	api := &fakeSlackAPI{}
	store := &fakeStore{users: []*model.User{
		{Name: "U0000000B", GithubUser: "bob", SlackChannel: "C0TEAM"},
		{Name: "U0000000A", GithubUser: "alice"},
	}}
	github := &fakeGithub{
		searchResults: []*gogithub.Issue{openPullIssue(9)},
		commits: []*gogithub.RepositoryCommit{
			{SHA: gogithub.String("earlier")},
			{SHA: gogithub.String(testSHA)},
		},
	}
	h := newTestHandler(api, github, store)

	require.NoError(t, h.notifyStatus(context.Background(), statusEvent(model.StatusSuccess)))

	messages := api.sent()
	require.Len(t, messages, 1)
	// status messages are always direct, even with a channel configured
	assert.Equal(t, "U0000000B", messages[0].channel)
	assert.Equal(t, "Updated commit status on *acme/widget*:", messages[0].text)
	require.Len(t, messages[0].attachments, 1)
	assert.Equal(t, "good", messages[0].attachments[0].Color)
	assert.Equal(t, "#9: Add warp drive", messages[0].attachments[0].Title)
	assert.Equal(t, ":white_check_mark: *ci/build*: Build finished", messages[0].attachments[0].Text)
}

func TestNotifyStatusFailure(t *testing.T) {
	api := &fakeSlackAPI{}
	store := &fakeStore{users: []*model.User{{Name: "U0000000B", GithubUser: "bob"}}}
	github := &fakeGithub{
		searchResults: []*gogithub.Issue{openPullIssue(9)},
		commits:       []*gogithub.RepositoryCommit{{SHA: gogithub.String(testSHA)}},
	}
	h := newTestHandler(api, github, store)

	require.NoError(t, h.notifyStatus(context.Background(), statusEvent(model.StatusFailure)))

	messages := api.sent()
	require.Len(t, messages, 1)
	assert.Equal(t, "danger", messages[0].attachments[0].Color)
	assert.Equal(t, ":x: *ci/build*: Build finished", messages[0].attachments[0].Text)
}

func TestNotifyStatusStaleCommit(t *testing.T) {
	api := &fakeSlackAPI{}
	store := &fakeStore{users: []*model.User{{Name: "U0000000B", GithubUser: "bob"}}}
	github := &fakeGithub{
		searchResults: []*gogithub.Issue{openPullIssue(9)},
		commits: []*gogithub.RepositoryCommit{
			{SHA: gogithub.String(testSHA)},
			{SHA: gogithub.String("newer-head")},
		},
	}
	h := newTestHandler(api, github, store)

	require.NoError(t, h.notifyStatus(context.Background(), statusEvent(model.StatusSuccess)))

	assert.Empty(t, api.sent())
}

func TestNotifyStatusSkipsClosedIssues(t *testing.T) {
	closed := openPullIssue(9)
	closed.State = gogithub.String("closed")

	api := &fakeSlackAPI{}
	store := &fakeStore{users: []*model.User{{Name: "U0000000B", GithubUser: "bob"}}}
	github := &fakeGithub{
		searchResults: []*gogithub.Issue{closed},
		commits:       []*gogithub.RepositoryCommit{{SHA: gogithub.String(testSHA)}},
	}
	h := newTestHandler(api, github, store)

	require.NoError(t, h.notifyStatus(context.Background(), statusEvent(model.StatusSuccess)))

	assert.Empty(t, api.sent())
}

func TestStatusCandidates(t *testing.T) {
	event := statusEvent(model.StatusSuccess)
	event.Commit.Committer = &model.Account{Login: "carol", Type: "User"}

	users := []*model.User{
		{Name: "U0000000A", GithubUser: "alice"},
		{Name: "U0000000B", GithubUser: "bob"},
		{Name: "U0000000C", GithubUser: "carol"},
		{Name: "team"},
	}

	candidates := statusCandidates(users, event)
	require.Len(t, candidates, 2)
	assert.Equal(t, "U0000000B", candidates[0].Name)
	assert.Equal(t, "U0000000C", candidates[1].Name)
}
