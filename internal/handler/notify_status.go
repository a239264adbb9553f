package handler

import (
	"context"
	"fmt"
	"sync"

	gogithub "github.com/google/go-github/v57/github"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"snippet_bot/internal/logger"
	"snippet_bot/internal/model"
)

// notifyStatus direct-messages commit authors and committers about final
// CI statuses, but only when the commit is still the latest on an open
// pull request. Stale statuses on superseded commits are dropped.
func (h *Handler) notifyStatus(ctx context.Context, event *model.StatusEvent) error {
	log := logger.GetLogger()

	if event.State == model.StatusPending {
		// ignore non-final statuses
		return nil
	}

	users, err := h.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	candidates := statusCandidates(users, event)
	if len(candidates) == 0 {
		log.Debug("no users to notify")
		return nil
	}

	issues, err := h.github.SearchIssues(ctx, event.SHA)
	if err != nil {
		return fmt.Errorf("failed to search issues for commit %s: %w", event.SHA, err)
	}
	var open []*gogithub.Issue
	for _, issue := range issues {
		if model.IssueState(issue.GetState()) != model.IssueClosed {
			open = append(open, issue)
		}
	}
	if len(open) == 0 {
		log.Debug("no matching open issues found")
		return nil
	}

	owner := event.Repository.Owner.Login
	repo := event.Repository.Name

	var wg sync.WaitGroup
	for _, issue := range open {
		latest, err := h.commitIsLatest(ctx, owner, repo, issue.GetNumber(), event.SHA)
		if err != nil {
			log.Error("failed to verify latest commit",
				zap.Int("issue", issue.GetNumber()), zap.Error(err))
			continue
		}
		if !latest {
			log.Debug("ignoring status for a commit which is not the latest",
				zap.Int("issue", issue.GetNumber()), zap.String("sha", event.SHA))
			continue
		}

		text := fmt.Sprintf("Updated commit status on *%s*:", event.Name)
		attachment := statusAttachment(event, issue)

		for _, user := range candidates {
			wg.Add(1)
			go func(user *model.User) {
				defer wg.Done()
				// always a direct message, even for channel-configured teams
				if _, _, err := h.api.PostMessage(user.Name,
					slack.MsgOptionText(text, false),
					slack.MsgOptionAttachments(attachment)); err != nil {
					log.Error("failed to deliver status notification",
						zap.String("user", user.Name), zap.Error(err))
				}
			}(user)
		}
	}
	wg.Wait()

	return nil
}

// statusCandidates filters stored users down to the commit's author and
// committer.
func statusCandidates(users []*model.User, event *model.StatusEvent) []*model.User {
	var candidates []*model.User
	for _, user := range users {
		if user.GithubUser == "" {
			continue
		}
		if (event.Commit.Author != nil && user.GithubUser == event.Commit.Author.Login) ||
			(event.Commit.Committer != nil && user.GithubUser == event.Commit.Committer.Login) {
			candidates = append(candidates, user)
		}
	}
	return candidates
}

// commitIsLatest reports whether sha is the last commit on the pull
// request.
func (h *Handler) commitIsLatest(ctx context.Context, owner, repo string, number int, sha string) (bool, error) {
	commits, err := h.github.ListPullRequestCommits(ctx, owner, repo, number)
	if err != nil {
		return false, err
	}
	if len(commits) == 0 {
		return false, nil
	}
	return commits[len(commits)-1].GetSHA() == sha, nil
}

func statusAttachment(event *model.StatusEvent, issue *gogithub.Issue) slack.Attachment {
	color := model.ColorDanger
	emoji := xEmoji
	if event.State == model.StatusSuccess {
		color = model.ColorGood
		emoji = checkEmoji
	}
	return slack.Attachment{
		Color:      string(color),
		Title:      fmt.Sprintf("#%d: %s", issue.GetNumber(), issue.GetTitle()),
		TitleLink:  issue.GetHTMLURL(),
		Text:       fmt.Sprintf("%s *%s*: %s", emoji, event.Context, event.Description),
		MarkdownIn: []string{"text"},
	}
}
