package handler

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"snippet_bot/internal/logger"
)

// commandAction is one entry of the ordered dispatch table. Patterns are
// anchored and evaluated in declaration order; the first match wins and
// its captured groups are handed to run positionally.
type commandAction struct {
	commands []string // display forms for the help text
	message  string   // help description
	pattern  *regexp.Regexp
	run      func(ctx context.Context, conv conversation, args []string) error
}

// commandTable builds the dispatch table. More specific patterns must come
// before the trailing catch-all.
func (h *Handler) commandTable() []commandAction {
	return []commandAction{
		{
			commands: []string{"list", "_no input_"},
			message:  "show matching issues and pull-requests for the current user",
			pattern:  regexp.MustCompile(`(?i)^(?:list|pulls)?$`),
			run: func(ctx context.Context, conv conversation, args []string) error {
				return h.listPRsForUser(ctx, conv)
			},
		},
		{
			commands: []string{"list <team>", "<team>"},
			message:  "show matching issues and pull-requests for the specified team",
			pattern:  regexp.MustCompile(`(?i)^(?:list|pulls)\s+(.+)$`),
			run: func(ctx context.Context, conv conversation, args []string) error {
				return h.listPRs(ctx, conv, args[0])
			},
		},
		{
			commands: []string{"details"},
			message:  "show the configuration for the current user",
			pattern:  regexp.MustCompile(`(?i)^details$`),
			run: func(ctx context.Context, conv conversation, args []string) error {
				return h.teamDetailsForUser(ctx, conv)
			},
		},
		{
			commands: []string{"details <team>"},
			message:  "show the configuration for the specified team",
			pattern:  regexp.MustCompile(`(?i)^details\s+(.+)$`),
			run: func(ctx context.Context, conv conversation, args []string) error {
				return h.teamDetails(ctx, conv, args[0])
			},
		},
		{
			commands: []string{"teams"},
			message:  "show all configured users and teams",
			pattern:  regexp.MustCompile(`(?i)^teams$`),
			run: func(ctx context.Context, conv conversation, args []string) error {
				return h.listTeams(ctx, conv)
			},
		},
		{
			commands: []string{"configure"},
			message:  "configure settings for the current user",
			pattern:  regexp.MustCompile(`(?i)^configure$`),
			run: func(ctx context.Context, conv conversation, args []string) error {
				return h.configureUser(ctx, conv)
			},
		},
		{
			commands: []string{"configure <team>"},
			message:  "configure settings for the specified team",
			pattern:  regexp.MustCompile(`(?i)^configure\s+(.*)$`),
			run: func(ctx context.Context, conv conversation, args []string) error {
				return h.configureTeam(ctx, conv, args[0])
			},
		},
		{
			commands: []string{"help"},
			message:  "display this message",
			pattern:  regexp.MustCompile(`(?i)^help\s*$`),
			run: func(ctx context.Context, conv conversation, args []string) error {
				return h.replyEphemeral(conv, h.helpText())
			},
		},
		{
			// catch-all: treat the input as a team name
			pattern: regexp.MustCompile(`^(.*)$`),
			run: func(ctx context.Context, conv conversation, args []string) error {
				return h.handleUnrecognized(ctx, conv, args[0])
			},
		},
	}
}

// dispatch routes raw command text to the first matching table entry. A
// failing handler replies with the error and never propagates: one bad
// command must not affect the router or other commands.
func (h *Handler) dispatch(ctx context.Context, conv conversation, text string) {
	text = strings.TrimSpace(text)
	for _, action := range h.actions {
		matches := action.pattern.FindStringSubmatch(text)
		if matches == nil {
			continue
		}
		if err := action.run(ctx, conv, matches[1:]); err != nil {
			logger.GetLogger().Error("command failed",
				zap.String("text", text), zap.Error(err))
			if replyErr := h.replyEphemeral(conv, fmt.Sprintf("Unhandled error:\n%s", err)); replyErr != nil {
				logger.GetLogger().Error("failed to reply with error", zap.Error(replyErr))
			}
		}
		return
	}

	// unreachable while the table ends in a catch-all
	if err := h.replyEphemeral(conv, fmt.Sprintf("Error: Unknown command `%s`", text)); err != nil {
		logger.GetLogger().Error("failed to reply", zap.Error(err))
	}
}

// handleUnrecognized looks the text up as a team name before giving up.
func (h *Handler) handleUnrecognized(ctx context.Context, conv conversation, text string) error {
	user, err := h.store.Get(ctx, text)
	if err != nil {
		return err
	}
	if user == nil {
		return h.replyEphemeral(conv, "Unrecognized input. Ask for `help` to see a list of commands.")
	}
	return h.listPRs(ctx, conv, text)
}

// helpText assembles the usage summary from the command table.
func (h *Handler) helpText() string {
	var lines []string
	for _, action := range h.actions {
		if len(action.commands) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("• `%s` - %s", strings.Join(action.commands, "` / `"), action.message))
	}
	return fmt.Sprintf(`*Summary*

• Set up a team with a list of snippets to filter open issues and pull requests.

*Usage*

%s
`, strings.Join(lines, "\n"))
}
