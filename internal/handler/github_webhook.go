package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	gogithub "github.com/google/go-github/v57/github"
	"go.uber.org/zap"

	"snippet_bot/internal/logger"
	"snippet_bot/internal/model"
)

// notifyIntent is the routing decision for an inbound GitHub event.
type notifyIntent int

const (
	intentNone notifyIntent = iota
	intentIssueActivity
	intentReview
	intentStatus
)

// classify maps a webhook (kind, action) pair to a notification intent.
// Unrecognized pairs yield intentNone and are silently ignored.
func classify(kind, action string) notifyIntent {
	switch kind {
	case model.EventIssues, model.EventPullRequest:
		switch action {
		case "opened", "reopened", "edited":
			return intentIssueActivity
		}
	case model.EventCommitComment, model.EventIssueComment, model.EventPullRequestReviewComment:
		switch action {
		case "created", "edited":
			return intentIssueActivity
		}
	case model.EventPullRequestReview:
		// the action is resolved inside the review handler
		return intentReview
	case model.EventStatus:
		// pending states are filtered inside the status handler
		return intentStatus
	}
	return intentNone
}

// actionProbe extracts just the action field so classification can happen
// before committing to a payload shape.
type actionProbe struct {
	Action string `json:"action"`
}

// HandleGithubWebhook verifies and dispatches an inbound GitHub webhook.
// Processing errors are logged, never surfaced to GitHub: a webhook is
// acknowledged once its signature checks out.
func (h *Handler) HandleGithubWebhook(c *gin.Context) {
	log := logger.GetLogger()

	body, err := gogithub.ValidatePayload(c.Request, []byte(h.webhookSecret))
	if err != nil {
		log.Error("failed to verify github webhook signature", zap.Error(err))
		c.String(http.StatusUnauthorized, "unable to verify github signature")
		return
	}

	kind := gogithub.WebHookType(c.Request)
	var probe actionProbe
	if err := json.Unmarshal(body, &probe); err != nil {
		log.Error("failed to parse github webhook body", zap.Error(err))
		c.String(http.StatusBadRequest, "malformed payload")
		return
	}

	// Webhook handlers run to completion; there is no caller to cancel us.
	ctx := context.Background()

	switch classify(kind, probe.Action) {
	case intentIssueActivity:
		var event model.IssueActivityEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Error("failed to decode issue activity event", zap.Error(err))
			break
		}
		log.Debug("notify issue activity", zap.String("kind", kind), zap.String("action", probe.Action))
		if err := h.notifyIssueActivity(ctx, &event); err != nil {
			log.Error("failed to notify issue activity", zap.Error(err))
		}
	case intentReview:
		var event model.ReviewEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Error("failed to decode review event", zap.Error(err))
			break
		}
		log.Debug("notify pull request review", zap.String("action", probe.Action))
		if err := h.notifyReview(ctx, &event); err != nil {
			log.Error("failed to notify review", zap.Error(err))
		}
	case intentStatus:
		var event model.StatusEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Error("failed to decode status event", zap.Error(err))
			break
		}
		log.Debug("notify commit status", zap.String("state", string(event.State)))
		if err := h.notifyStatus(ctx, &event); err != nil {
			log.Error("failed to notify status", zap.Error(err))
		}
	default:
		log.Debug("ignoring github event", zap.String("kind", kind), zap.String("action", probe.Action))
	}

	c.String(http.StatusOK, "ok")
}
