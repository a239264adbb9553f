package handler

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"snippet_bot/internal/logger"
	"snippet_bot/internal/model"
)

const (
	checkEmoji   = ":white_check_mark:"
	eyesEmoji    = ":eyes:"
	xEmoji       = ":x:"
	warningEmoji = ":warning:"
)

// notifyReview tells the pull request owner about review activity on their
// PR. Nobody else is notified, and reviewers are not told about their own
// reviews.
func (h *Handler) notifyReview(ctx context.Context, event *model.ReviewEvent) error {
	log := logger.GetLogger()

	body, ok := reviewAttachment(event)
	if !ok {
		log.Error("unsupported pull request review action",
			zap.String("action", string(event.Action)))
		return nil
	}

	users, err := h.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	owner := ""
	if event.PullRequest.User != nil {
		owner = event.PullRequest.User.Login
	}

	for _, user := range users {
		if user.GithubUser == "" || user.GithubUser != owner {
			// send message only to the PR owner
			continue
		}
		if event.Sender.Login == user.GithubUser {
			// do not send messages for own actions
			continue
		}

		text := fmt.Sprintf("Review %s for *%s* by *%s*:",
			event.Action, repoFullName(event), event.Sender.Login)
		attachment := slack.Attachment{
			Color:      string(body.color),
			Title:      fmt.Sprintf("#%d: %s", event.PullRequest.Number, event.PullRequest.Title),
			TitleLink:  event.Review.HTMLURL,
			Text:       body.text,
			MarkdownIn: []string{"text"},
		}
		// always a direct message, even for channel-configured teams
		if _, _, err := h.api.PostMessage(user.Name,
			slack.MsgOptionText(text, false),
			slack.MsgOptionAttachments(attachment)); err != nil {
			log.Error("failed to deliver review notification",
				zap.String("user", user.Name), zap.Error(err))
		}
	}

	return nil
}

type reviewBody struct {
	color model.AttachmentColor
	text  string
}

// reviewAttachment renders the attachment for a review event. ok is false
// for actions the engine does not support.
func reviewAttachment(event *model.ReviewEvent) (reviewBody, bool) {
	switch event.Action {
	case model.ReviewActionSubmitted, model.ReviewActionEdited:
		var body reviewBody
		switch event.Review.State {
		case model.ReviewApproved:
			body = reviewBody{color: model.ColorGood, text: checkEmoji + " *Approved*"}
		case model.ReviewChangesRequested:
			body = reviewBody{color: model.ColorDanger, text: xEmoji + " *Changes Requested*"}
		case model.ReviewCommented:
			body = reviewBody{color: model.ColorNone, text: eyesEmoji + " *Commented*"}
		}
		if event.Review.Body != "" {
			body.text += "\n" + event.Review.Body
		}
		return body, true
	case model.ReviewActionDismissed:
		if event.Review.User != nil && event.Sender.Login != event.Review.User.Login {
			return reviewBody{
				color: model.ColorWarning,
				text: fmt.Sprintf("\n%s *%s* dismissed a review from *%s*",
					warningEmoji, event.Sender.Login, event.Review.User.Login),
			}, true
		}
		// the reviewer dismissed their own review, no extra text
		return reviewBody{}, true
	default:
		return reviewBody{}, false
	}
}

func repoFullName(event *model.ReviewEvent) string {
	if event.Repository.FullName != "" {
		return event.Repository.FullName
	}
	if event.PullRequest.Base != nil {
		return event.PullRequest.Base.Label
	}
	return ""
}
