package handler

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	gogithub "github.com/google/go-github/v57/github"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"snippet_bot/internal/logger"
	"snippet_bot/internal/model"
)

// slackUserID matches names that are raw Slack user ids rather than team
// names.
var slackUserID = regexp.MustCompile(`^U\w{8}$`)

// listPRsForUser runs the list command for the calling user, prompting for
// configuration when no record exists yet.
func (h *Handler) listPRsForUser(ctx context.Context, conv conversation) error {
	user, err := h.store.Get(ctx, conv.userID)
	if err != nil {
		return fmt.Errorf("failed to load user %q: %w", conv.userID, err)
	}
	if user == nil {
		return h.configureUser(ctx, conv)
	}
	return h.listPRs(ctx, conv, conv.userID)
}

// listPRs fetches every open issue in the organization, groups them by
// repository and replies with the ones matching the team's snippets.
func (h *Handler) listPRs(ctx context.Context, conv conversation, team string) error {
	user, err := h.store.Get(ctx, team)
	if err != nil {
		return fmt.Errorf("failed to load team %q: %w", team, err)
	}
	if user == nil {
		return h.replyEphemeral(conv, "Error: Team does not exist. Try `configure <team>`.")
	}

	issues, err := h.github.ListOrgIssues(ctx, h.org)
	if err != nil {
		return fmt.Errorf("failed to list issues for %q: %w", h.org, err)
	}

	snippets := user.EffectiveSnippets()
	sent := 0
	for _, group := range groupByRepository(issues) {
		matching := filterBySnippets(group, snippets)
		if len(matching) == 0 {
			continue
		}

		attachments := make([]slack.Attachment, 0, len(matching))
		for _, issue := range matching {
			color := model.ColorNone
			if issue.IsPullRequest() {
				owner, repo := splitRepositoryURL(issue.GetRepositoryURL())
				pr, err := h.github.GetPullRequest(ctx, owner, repo, issue.GetNumber())
				if err != nil {
					logger.GetLogger().Error("failed to fetch pull request",
						zap.Int("number", issue.GetNumber()), zap.Error(err))
				} else {
					color = model.ColorForMergeableState(model.MergeableState(pr.GetMergeableState()))
				}
			}
			attachments = append(attachments, issueAttachment(issue, color))
		}

		_, repoName := splitRepositoryURL(matching[0].GetRepositoryURL())
		if err := h.reply(conv,
			slack.MsgOptionText(fmt.Sprintf("*%s*", repoName), false),
			slack.MsgOptionAttachments(attachments...)); err != nil {
			return fmt.Errorf("failed to post issue list: %w", err)
		}
		sent++
	}

	if sent == 0 {
		return h.replyEphemeral(conv, "No matching issues!! You're in the clear.")
	}
	return nil
}

// groupByRepository buckets issues by their repository, ordered by
// repository URL for stable output.
func groupByRepository(issues []*gogithub.Issue) [][]*gogithub.Issue {
	byRepo := make(map[string][]*gogithub.Issue)
	for _, issue := range issues {
		url := issue.GetRepositoryURL()
		byRepo[url] = append(byRepo[url], issue)
	}

	urls := make([]string, 0, len(byRepo))
	for url := range byRepo {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	groups := make([][]*gogithub.Issue, 0, len(urls))
	for _, url := range urls {
		groups = append(groups, byRepo[url])
	}
	return groups
}

// filterBySnippets keeps issues whose title or body contains a snippet, or
// whose assignee or author equals a snippet with mention decoration
// stripped.
func filterBySnippets(issues []*gogithub.Issue, snippets []string) []*gogithub.Issue {
	var matching []*gogithub.Issue
	for _, issue := range issues {
		if issueMatches(issue, snippets) {
			matching = append(matching, issue)
		}
	}
	return matching
}

func issueMatches(issue *gogithub.Issue, snippets []string) bool {
	for _, snippet := range snippets {
		if strings.Contains(issue.GetTitle(), snippet) || strings.Contains(issue.GetBody(), snippet) {
			return true
		}
		login := strings.Trim(snippet, " @")
		if issue.GetAssignee().GetLogin() == login || issue.GetUser().GetLogin() == login {
			return true
		}
	}
	return false
}

func issueAttachment(issue *gogithub.Issue, color model.AttachmentColor) slack.Attachment {
	text := fmt.Sprintf("<%s|%s> (%s)", issue.GetHTMLURL(), issue.GetTitle(), issue.GetUser().GetLogin())
	if assignee := issue.GetAssignee().GetLogin(); assignee != "" {
		text += fmt.Sprintf("\n- *Assignee*: %s", assignee)
	}
	if len(issue.Labels) > 0 {
		names := make([]string, 0, len(issue.Labels))
		for _, label := range issue.Labels {
			names = append(names, label.GetName())
		}
		title := "Label"
		if len(names) > 1 {
			title = "Labels"
		}
		text += fmt.Sprintf("\n- *%s*: %s", title, strings.Join(names, ", "))
	}
	return slack.Attachment{
		Color:      string(color),
		Text:       text,
		MarkdownIn: []string{"text"},
	}
}

// splitRepositoryURL pulls owner and repository name out of an API
// repository URL such as https://api.github.com/repos/acme/widget.
func splitRepositoryURL(url string) (owner, repo string) {
	parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
	if len(parts) < 2 {
		return "", ""
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}

// teamDetailsForUser shows the calling user's own configuration.
func (h *Handler) teamDetailsForUser(ctx context.Context, conv conversation) error {
	user, err := h.store.Get(ctx, conv.userID)
	if err != nil {
		return fmt.Errorf("failed to load user %q: %w", conv.userID, err)
	}
	if user == nil {
		return h.configureUser(ctx, conv)
	}
	return h.teamDetails(ctx, conv, conv.userID)
}

// teamDetails renders the stored record for a team.
func (h *Handler) teamDetails(ctx context.Context, conv conversation, team string) error {
	user, err := h.store.Get(ctx, team)
	if err != nil {
		return fmt.Errorf("failed to load team %q: %w", team, err)
	}
	if user == nil {
		return h.replyEphemeral(conv, "Error: Team does not exist. Try `configure <team>`.")
	}

	var lines []string
	if user.GithubUser != "" {
		lines = append(lines, fmt.Sprintf("github username: `%s`", user.GithubUser))
	}
	if user.SlackChannel != "" {
		lines = append(lines, fmt.Sprintf("slack channel: `%s`", user.SlackChannel))
	}
	if len(user.Snippets) > 0 {
		lines = append(lines, fmt.Sprintf("snippets: `%s`", strings.Join(user.Snippets, "`, `")))
	}
	if len(lines) == 0 {
		lines = append(lines, "_not configured_")
	}
	return h.replyText(conv, strings.Join(lines, "\n"))
}

// listTeams replies with every stored user and team name. Names that are
// Slack user ids get a mention so they render readably.
func (h *Handler) listTeams(ctx context.Context, conv conversation) error {
	users, err := h.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list teams: %w", err)
	}

	names := make([]string, 0, len(users))
	for _, user := range users {
		names = append(names, user.Name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		if slackUserID.MatchString(name) {
			lines = append(lines, fmt.Sprintf(" - %s (<@%s>)", name, name))
		} else {
			lines = append(lines, fmt.Sprintf(" - %s", name))
		}
	}
	return h.replyText(conv, "Configured teams:\n"+strings.Join(lines, "\n"))
}
