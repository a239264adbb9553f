package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"snippet_bot/internal/logger"
	"snippet_bot/internal/model"
)

// notifyIssueActivity fans an issue, pull request or comment event out to
// every stored user whose effective snippets match, plus the issue author.
// Deliveries are independent: one failed recipient never blocks the rest.
func (h *Handler) notifyIssueActivity(ctx context.Context, event *model.IssueActivityEvent) error {
	log := logger.GetLogger()

	// ignore automation users
	if !event.Sender.IsUser() {
		log.Info("ignoring activity from non-user sender",
			zap.String("login", senderLogin(event.Sender)))
		return nil
	}

	payload := event.AssembledPayload()
	title := attachmentTitle(event, payload)
	color := model.ColorNone
	if event.PullRequest != nil {
		color = model.ColorForMergeableState(event.PullRequest.MergeableState)
	}

	users, err := h.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	var wg sync.WaitGroup
	for _, user := range users {
		decision := decideIssueNotification(user, event, payload.Body)
		if !decision.send {
			continue
		}

		text := issueMessageText(event, decision.userIsAuthor)
		attachment := slack.Attachment{
			Color:      string(color),
			Title:      title,
			TitleLink:  payload.HTMLURL,
			Text:       payload.Body,
			MarkdownIn: []string{"text"},
		}

		wg.Add(1)
		go func(user *model.User) {
			defer wg.Done()
			if err := h.sendToUser(user, text, attachment); err != nil {
				log.Error("failed to deliver notification",
					zap.String("user", user.Name), zap.Error(err))
			}
		}(user)
	}
	wg.Wait()

	return nil
}

// issueDecision is the outcome of matching one user against one event.
type issueDecision struct {
	send         bool
	userIsAuthor bool
}

// decideIssueNotification applies the matching rules for a single user:
// self-actions are suppressed before anything else, the issue author is
// always notified, and everyone else needs a snippet that the event body
// newly contains.
func decideIssueNotification(user *model.User, event *model.IssueActivityEvent, body string) issueDecision {
	if user.GithubUser != "" {
		if user.GithubUser == event.Sender.Login {
			// do not notify of self-initiated actions
			return issueDecision{}
		}
		if user.GithubUser == event.IssueAuthor() {
			return issueDecision{send: true, userIsAuthor: true}
		}
	}

	previousBody := event.PreviousBody()
	for _, snippet := range user.EffectiveSnippets() {
		if !strings.Contains(body, snippet) {
			continue
		}
		// message only if the snippet was added in this change
		if event.Action == "edited" && strings.Contains(previousBody, snippet) {
			continue
		}
		return issueDecision{send: true}
	}
	return issueDecision{}
}

// attachmentTitle is the commit id for commit comments, otherwise the
// issue number and title.
func attachmentTitle(event *model.IssueActivityEvent, payload model.AssembledPayload) string {
	if event.IsCommitComment() {
		return event.Comment.CommitID
	}
	return fmt.Sprintf("#%d: %s", payload.Number, payload.Title)
}

// issueMessageText selects one of the four fixed templates and appends the
// base ← head line for pull requests.
func issueMessageText(event *model.IssueActivityEvent, userIsAuthor bool) string {
	repo := event.Repository.FullName
	sender := event.Sender.Login

	var text string
	switch {
	case userIsAuthor && event.IsComment():
		text = fmt.Sprintf("There is a new comment on *%s* from *%s*", repo, sender)
	case userIsAuthor && event.IsPullRequest():
		text = fmt.Sprintf("There is activity in a pull request for *%s* from *%s*", repo, sender)
	case userIsAuthor:
		text = fmt.Sprintf("There is activity in an issue for *%s* from *%s*", repo, sender)
	case event.IsComment():
		text = fmt.Sprintf("You were mentioned in a comment on *%s* by *%s*", repo, sender)
	case event.IsPullRequest():
		text = fmt.Sprintf("You were mentioned in a pull request for *%s* by *%s*", repo, sender)
	default:
		text = fmt.Sprintf("You were mentioned in an issue for *%s* by *%s*", repo, sender)
	}

	if pr := event.PullRequest; pr != nil && pr.Head != nil && pr.Base != nil &&
		pr.Head.Label != "" && pr.Base.Label != "" {
		text += fmt.Sprintf("\n   _%s :arrow_left: %s_", pr.Base.Label, pr.Head.Label)
	}
	return text
}

// sendToUser delivers to the user's configured channel, falling back to a
// direct message addressed by the user's own id.
func (h *Handler) sendToUser(user *model.User, text string, attachments ...slack.Attachment) error {
	channel := user.SlackChannel
	if channel == "" {
		channel = user.Name
	}
	_, _, err := h.api.PostMessage(channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAttachments(attachments...))
	if err != nil {
		return fmt.Errorf("failed to post message to %q: %w", channel, err)
	}
	return nil
}

func senderLogin(sender *model.Account) string {
	if sender == nil {
		return ""
	}
	return sender.Login
}
