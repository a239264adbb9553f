package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snippet_bot/internal/model"
)

func reviewEvent(action model.ReviewAction, state model.ReviewState) *model.ReviewEvent {
	return &model.ReviewEvent{
		Action: action,
		Review: model.Review{
			State:   state,
			HTMLURL: "https://github.com/acme/widget/pull/9#pullrequestreview-1",
			User:    &model.Account{Login: "alice", Type: "User"},
		},
		PullRequest: model.PullRequest{
			Number: 9,
			Title:  "Add warp drive",
			User:   &model.Account{Login: "bob", Type: "User"},
		},
		Repository: model.Repository{Name: "widget", FullName: "acme/widget"},
		Sender:     model.Account{Login: "alice", Type: "User"},
	}
}

func TestReviewAttachment(t *testing.T) {
	tests := []struct {
		name      string
		event     *model.ReviewEvent
		wantColor model.AttachmentColor
		wantText  string
		wantOK    bool
	}{
		{
			name:      "approved",
			event:     reviewEvent(model.ReviewActionSubmitted, model.ReviewApproved),
			wantColor: model.ColorGood,
			wantText:  ":white_check_mark: *Approved*",
			wantOK:    true,
		},
		{
			name:      "commented",
			event:     reviewEvent(model.ReviewActionSubmitted, model.ReviewCommented),
			wantColor: model.ColorNone,
			wantText:  ":eyes: *Commented*",
			wantOK:    true,
		},
		{
			name:      "changes requested",
			event:     reviewEvent(model.ReviewActionEdited, model.ReviewChangesRequested),
			wantColor: model.ColorDanger,
			wantText:  ":x: *Changes Requested*",
			wantOK:    true,
		},
		{
			name: "review body is appended",
			event: func() *model.ReviewEvent {
				e := reviewEvent(model.ReviewActionSubmitted, model.ReviewApproved)
				e.Review.Body = "ship it"
				return e
			}(),
			wantColor: model.ColorGood,
			wantText:  ":white_check_mark: *Approved*\nship it",
			wantOK:    true,
		},
		{
			name: "dismissed by someone else",
			event: func() *model.ReviewEvent {
				e := reviewEvent(model.ReviewActionDismissed, model.ReviewApproved)
				e.Sender = model.Account{Login: "mallory", Type: "User"}
				return e
			}(),
			wantColor: model.ColorWarning,
			wantText:  "\n:warning: *mallory* dismissed a review from *alice*",
			wantOK:    true,
		},
		{
			name:      "dismissed by the reviewer",
			event:     reviewEvent(model.ReviewActionDismissed, model.ReviewApproved),
			wantColor: model.ColorNone,
			wantText:  "",
			wantOK:    true,
		},
		{
			name:   "unsupported action",
			event:  reviewEvent("resolved", model.ReviewApproved),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ok := reviewAttachment(tt.event)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantColor, body.color)
				assert.Equal(t, tt.wantText, body.text)
			}
		})
	}
}

func TestNotifyReviewOwnerOnly(t *testing.T) {
	api := &fakeSlackAPI{}
	store := &fakeStore{users: []*model.User{
		{Name: "U0000000A", GithubUser: "alice"},
		{Name: "U0000000B", GithubUser: "bob"},
		{Name: "U0000000C", GithubUser: "carol"},
		{Name: "team", Snippets: []string{"warp"}},
	}}
	h := newTestHandler(api, &fakeGithub{}, store)

	err := h.notifyReview(context.Background(), reviewEvent(model.ReviewActionSubmitted, model.ReviewApproved))
	require.NoError(t, err)

	messages := api.sent()
	require.Len(t, messages, 1)
	assert.Equal(t, "U0000000B", messages[0].channel)
	assert.Equal(t, "Review submitted for *acme/widget* by *alice*:", messages[0].text)
	require.Len(t, messages[0].attachments, 1)
	assert.Equal(t, "good", messages[0].attachments[0].Color)
	assert.Equal(t, "#9: Add warp drive", messages[0].attachments[0].Title)
}

func TestNotifyReviewAlwaysDirectMessages(t *testing.T) {
	api := &fakeSlackAPI{}
	store := &fakeStore{users: []*model.User{
		{Name: "U0000000B", GithubUser: "bob", SlackChannel: "C0TEAM"},
	}}
	h := newTestHandler(api, &fakeGithub{}, store)

	err := h.notifyReview(context.Background(), reviewEvent(model.ReviewActionSubmitted, model.ReviewApproved))
	require.NoError(t, err)

	messages := api.sent()
	require.Len(t, messages, 1)
	// the configured channel is for issue notifications, not reviews
	assert.Equal(t, "U0000000B", messages[0].channel)
}

func TestNotifyReviewSelfSuppression(t *testing.T) {
	api := &fakeSlackAPI{}
	store := &fakeStore{users: []*model.User{{Name: "U0000000B", GithubUser: "bob"}}}
	h := newTestHandler(api, &fakeGithub{}, store)

	event := reviewEvent(model.ReviewActionSubmitted, model.ReviewCommented)
	event.Sender = model.Account{Login: "bob", Type: "User"}
	require.NoError(t, h.notifyReview(context.Background(), event))

	assert.Empty(t, api.sent())
}

func TestNotifyReviewUnsupportedAction(t *testing.T) {
	api := &fakeSlackAPI{}
	store := &fakeStore{users: []*model.User{{Name: "U0000000B", GithubUser: "bob"}}}
	h := newTestHandler(api, &fakeGithub{}, store)

	require.NoError(t, h.notifyReview(context.Background(), reviewEvent("resolved", model.ReviewApproved)))

	assert.Empty(t, api.sent())
	assert.Zero(t, store.listCalls)
}
