package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	"snippet_bot/internal/logger"
)

// mentionPrefix strips the leading bot mention from app_mention text.
var mentionPrefix = regexp.MustCompile(`^\s*<@[^>]+>\s*`)

// HandleSlashCommand acknowledges the slash command right away and routes
// the text in the background, keeping well inside Slack's response
// deadline.
func (h *Handler) HandleSlashCommand(c *gin.Context) {
	cmd, err := slack.SlashCommandParse(c.Request)
	if err != nil {
		logger.GetLogger().Error("failed to parse slash command", zap.Error(err))
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	conv := conversation{channelID: cmd.ChannelID, userID: cmd.UserID}
	text := strings.TrimSpace(cmd.Text)
	logger.GetLogger().Debug("slash command",
		zap.String("user", cmd.UserID), zap.String("text", text))

	c.String(http.StatusOK, ":hourglass:")
	go h.dispatch(context.Background(), conv, text)
}

// HandleSlackEvents serves the Events API: URL verification challenges,
// direct messages and app mentions. Command text is dispatched in the
// background so the event is acknowledged immediately.
func (h *Handler) HandleSlackEvents(c *gin.Context) {
	log := logger.GetLogger()

	body, err := c.GetRawData()
	if err != nil {
		log.Error("failed to read request body", zap.Error(err))
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		log.Error("failed to parse slack event", zap.Error(err))
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			log.Error("failed to parse url verification challenge", zap.Error(err))
			c.String(http.StatusBadRequest, "bad request")
			return
		}
		c.String(http.StatusOK, challenge.Challenge)
		return
	case slackevents.CallbackEvent:
		switch inner := event.InnerEvent.Data.(type) {
		case *slackevents.MessageEvent:
			// direct messages only; channel traffic arrives as app_mention
			if inner.ChannelType != "im" && inner.ChannelType != "mpim" {
				break
			}
			if inner.BotID != "" || inner.SubType != "" {
				break
			}
			conv := conversation{channelID: inner.Channel, userID: inner.User}
			go h.dispatch(context.Background(), conv, strings.TrimSpace(inner.Text))
		case *slackevents.AppMentionEvent:
			if inner.BotID != "" {
				break
			}
			text := mentionPrefix.ReplaceAllString(inner.Text, "")
			conv := conversation{channelID: inner.Channel, userID: inner.User}
			go h.dispatch(context.Background(), conv, strings.TrimSpace(text))
		default:
			log.Debug("ignoring slack event", zap.String("type", event.InnerEvent.Type))
		}
	}

	c.String(http.StatusOK, "ok")
}

// reply posts to the conversation's channel.
func (h *Handler) reply(conv conversation, options ...slack.MsgOption) error {
	_, _, err := h.api.PostMessage(conv.channelID, options...)
	return err
}

func (h *Handler) replyText(conv conversation, text string) error {
	return h.reply(conv, slack.MsgOptionText(text, false))
}

// replyEphemeral posts a message only the invoking user can see.
func (h *Handler) replyEphemeral(conv conversation, text string) error {
	_, err := h.api.PostEphemeral(conv.channelID, conv.userID, slack.MsgOptionText(text, false))
	return err
}
