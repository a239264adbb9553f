package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Slack configuration
	SlackBotToken      string // Required: Slack bot user OAuth token
	SlackSigningSecret string // Required: secret used to verify inbound Slack requests

	// GitHub configuration
	GithubToken         string // Required: GitHub API token
	GithubWebhookSecret string // Required: HMAC secret for webhook payloads
	GithubOrg           string // Required: organization whose issues are searched

	// User store configuration
	RedisAddr      string // Redis address, defaults to localhost:6379
	RedisPassword  string // Optional Redis password
	UserBucketName string // Optional: when set, user records live in S3 instead of Redis

	// Log level
	LogLevel string // Log level, defaults to info

	// HTTP port for cmd/server
	Port string
}

var (
	// instance holds the singleton config instance
	instance *Config
)

// Get returns the singleton config instance
func Get() *Config {
	if instance == nil {
		panic("config not initialized")
	}
	return instance
}

// Load creates a new Config instance from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Load required values
	requiredVars := map[string]*string{
		"SLACK_BOT_TOKEN":       &cfg.SlackBotToken,
		"SLACK_SIGNING_SECRET":  &cfg.SlackSigningSecret,
		"GITHUB_TOKEN":          &cfg.GithubToken,
		"GITHUB_WEBHOOK_SECRET": &cfg.GithubWebhookSecret,
		"GITHUB_ORG":            &cfg.GithubOrg,
	}

	var missingVars []string
	for env, ptr := range requiredVars {
		*ptr = os.Getenv(env)
		if *ptr == "" {
			missingVars = append(missingVars, env)
		}
	}

	if len(missingVars) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.UserBucketName = getEnv("USER_BUCKET_NAME", "")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.Port = getEnv("PORT", "8080")

	// Store the instance
	instance = cfg

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
