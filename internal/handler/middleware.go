package handler

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"snippet_bot/internal/logger"
)

// HandleSlackRetry is a middleware that handles Slack retry requests
func HandleSlackRetry() gin.HandlerFunc {
	return func(c *gin.Context) {
		retryNum := c.GetHeader("X-Slack-Retry-Num")
		retryReason := c.GetHeader("X-Slack-Retry-Reason")

		if retryNum != "" {
			logger.GetLogger().Info("slack retry request",
				zap.String("retry_num", retryNum),
				zap.String("retry_reason", retryReason))
			c.String(http.StatusOK, "ok (retry skipped)")
			c.Abort()
			return
		}
		c.Next()
	}
}

// VerifySlackSignature is a middleware that checks the Slack signing
// secret and request timestamp before any command reaches the router. The
// request body is restored for downstream parsing.
func VerifySlackSignature(signingSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.GetLogger().Error("failed to read request body", zap.Error(err))
			c.String(http.StatusBadRequest, "bad request")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		verifier, err := slack.NewSecretsVerifier(c.Request.Header, signingSecret)
		if err != nil {
			logger.GetLogger().Error("failed to create secrets verifier", zap.Error(err))
			c.String(http.StatusUnauthorized, "unable to verify slack signature")
			c.Abort()
			return
		}
		if _, err := verifier.Write(body); err != nil {
			logger.GetLogger().Error("failed to hash request body", zap.Error(err))
			c.String(http.StatusInternalServerError, "verification failed")
			c.Abort()
			return
		}
		if err := verifier.Ensure(); err != nil {
			logger.GetLogger().Error("slack signature mismatch", zap.Error(err))
			c.String(http.StatusUnauthorized, "unable to verify slack signature")
			c.Abort()
			return
		}

		c.Next()
	}
}
