package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func slackEventsRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/slack/events", h.HandleSlackEvents)
	router.POST("/slack/command", h.HandleSlashCommand)
	return router
}

func TestHandleSlackEventsURLVerification(t *testing.T) {
	h := newTestHandler(&fakeSlackAPI{}, &fakeGithub{}, &fakeStore{})
	router := slackEventsRouter(h)

	body := `{"type":"url_verification","challenge":"3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P","token":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P", rec.Body.String())
}

func TestHandleSlackEventsRejectsGarbage(t *testing.T) {
	h := newTestHandler(&fakeSlackAPI{}, &fakeGithub{}, &fakeStore{})
	router := slackEventsRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSlashCommandAcknowledges(t *testing.T) {
	h := newTestHandler(&fakeSlackAPI{}, &fakeGithub{}, &fakeStore{})
	router := slackEventsRouter(h)

	form := url.Values{
		"command":    {"/snippets"},
		"text":       {"teams"},
		"user_id":    {"U0CALLER1"},
		"channel_id": {"C0GENERAL"},
	}
	req := httptest.NewRequest(http.MethodPost, "/slack/command", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// the ack must not wait for command processing
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ":hourglass:", rec.Body.String())
}

func TestMentionPrefixStripping(t *testing.T) {
	assert.Equal(t, "list my-team", mentionPrefix.ReplaceAllString("<@U0BOT9999> list my-team", ""))
	assert.Equal(t, "teams", mentionPrefix.ReplaceAllString("  <@U0BOT9999>   teams", ""))
	assert.Equal(t, "no mention here", mentionPrefix.ReplaceAllString("no mention here", ""))
}
