// Package app assembles the HTTP surface shared by the standalone server
// and the Lambda entrypoint.
package app

import (
	"context"
	"fmt"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/slack-go/slack"

	"snippet_bot/internal/config"
	"snippet_bot/internal/handler"
	"snippet_bot/internal/logger"
	githubsvc "snippet_bot/internal/service/github"
	"snippet_bot/internal/storage"
)

// NewRouter builds the fully wired gin engine: user store, Slack and
// GitHub clients, handler, middlewares and routes.
func NewRouter(ctx context.Context, cfg *config.Config) (*gin.Engine, error) {
	store, err := newUserStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	api := slack.New(cfg.SlackBotToken)
	github := githubsvc.NewClient(cfg.GithubToken)
	h := handler.NewHandler(api, github, store, cfg.GithubOrg, cfg.GithubWebhookSecret)

	router := gin.New()
	router.Use(gin.Recovery(), logger.GinLogMiddleware())

	slackRoutes := router.Group("/slack",
		handler.VerifySlackSignature(cfg.SlackSigningSecret),
		handler.HandleSlackRetry())
	slackRoutes.POST("/command", h.HandleSlashCommand)
	slackRoutes.POST("/events", h.HandleSlackEvents)
	slackRoutes.POST("/interactive", h.HandleInteractive)

	router.POST("/github/webhook", h.HandleGithubWebhook)

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return router, nil
}

// newUserStore picks the storage backend: S3 when a bucket is configured,
// Redis otherwise.
func newUserStore(ctx context.Context, cfg *config.Config) (storage.UserStore, error) {
	if cfg.UserBucketName != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return storage.NewS3UserStore(s3.NewFromConfig(awsCfg), cfg.UserBucketName), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return storage.NewRedisUserStore(client), nil
}
