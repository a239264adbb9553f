package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"snippet_bot/internal/logger"
	"snippet_bot/internal/model"
)

// configAction identifies one control of the configuration panel. The
// action id on the wire is "<action>|<team>" so the interaction callback
// knows which record it mutates.
type configAction string

const (
	actionChannel        configAction = "channel"
	actionGithubUsername configAction = "github_username"
	actionNewTeam        configAction = "new_team"
	actionAddSnippet     configAction = "add_snippet"
	actionRemoveSnippet  configAction = "remove_snippet"
	actionDone           configAction = "done"
)

func buildActionID(action configAction, team string) string {
	return string(action) + "|" + team
}

func parseActionID(actionID string) (configAction, string) {
	action, team, _ := strings.Cut(actionID, "|")
	return configAction(action), team
}

// configureUser opens the configuration panel for the calling user.
func (h *Handler) configureUser(ctx context.Context, conv conversation) error {
	return h.configure(ctx, conv, conv.userID, true)
}

// configureTeam opens the configuration panel for a named team.
func (h *Handler) configureTeam(ctx context.Context, conv conversation, team string) error {
	return h.configure(ctx, conv, team, false)
}

func (h *Handler) configure(ctx context.Context, conv conversation, team string, forUser bool) error {
	user, err := h.store.Get(ctx, team)
	if err != nil {
		return fmt.Errorf("failed to load team %q: %w", team, err)
	}

	var title string
	var blocks []slack.Block
	if user != nil {
		title, blocks = configurePanel(user, forUser)
	} else {
		// confirm creation first
		title = fmt.Sprintf("Unrecognized team: %s", team)
		blocks = newTeamPanel(team)
	}

	_, err = h.api.PostEphemeral(conv.channelID, conv.userID,
		slack.MsgOptionText(title, false),
		slack.MsgOptionBlocks(blocks...))
	if err != nil {
		return fmt.Errorf("failed to post configuration panel: %w", err)
	}
	return nil
}

// configurePanel renders the editing panel for an existing record.
func configurePanel(user *model.User, forUser bool) (string, []slack.Block) {
	subject := "the current user"
	if !forUser {
		subject = fmt.Sprintf("team: %s", user.Name)
	}
	title := fmt.Sprintf(":gear: Configure the bot for %s", subject)

	channelSelect := &slack.SelectBlockElement{
		Type:     slack.OptTypeConversations,
		ActionID: buildActionID(actionChannel, user.Name),
		Placeholder: slack.NewTextBlockObject(slack.PlainTextType,
			"Select where to notify", true, false),
	}
	if user.SlackChannel != "" {
		channelSelect.InitialConversation = user.SlackChannel
	}

	githubUser := "_undefined_"
	if user.GithubUser != "" {
		githubUser = user.GithubUser
	}

	snippetLines := make([]string, 0, len(user.Snippets))
	for _, snippet := range user.Snippets {
		snippetLines = append(snippetLines, fmt.Sprintf(" • %s", snippet))
	}

	snippetButtons := []slack.BlockElement{
		slack.NewButtonBlockElement(buildActionID(actionAddSnippet, user.Name), "",
			slack.NewTextBlockObject(slack.PlainTextType, "Add", false, false)).
			WithStyle(slack.StylePrimary),
	}
	if len(user.Snippets) > 0 {
		snippetButtons = append(snippetButtons,
			slack.NewButtonBlockElement(buildActionID(actionRemoveSnippet, user.Name), "",
				slack.NewTextBlockObject(slack.PlainTextType, "Remove", false, false)).
				WithStyle(slack.StyleDanger))
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, title, false, false), nil, nil),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.PlainTextType, "Select where to notify", false, false),
			nil, slack.NewAccessory(channelSelect),
			slack.SectionBlockOptionBlockID(string(actionChannel))),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.PlainTextType,
				fmt.Sprintf("GitHub Username: %s", githubUser), false, false),
			nil, slack.NewAccessory(
				slack.NewButtonBlockElement(buildActionID(actionGithubUsername, user.Name), "",
					slack.NewTextBlockObject(slack.PlainTextType, "Change", false, false))),
			slack.SectionBlockOptionBlockID(string(actionGithubUsername))),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				"Snippets\n"+strings.Join(snippetLines, "\n"), false, false),
			nil, nil, slack.SectionBlockOptionBlockID("snippets")),
		slack.NewActionBlock("snippet_actions", snippetButtons...),
		slack.NewDividerBlock(),
		slack.NewActionBlock("misc",
			slack.NewButtonBlockElement(buildActionID(actionDone, ""), "",
				slack.NewTextBlockObject(slack.PlainTextType, "Done", false, false))),
	}
	return title, blocks
}

// newTeamPanel asks whether to create a record for an unknown team.
func newTeamPanel(team string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.PlainTextType,
				fmt.Sprintf("Unrecognized team: %s", team), false, false), nil, nil),
		slack.NewActionBlock("",
			slack.NewButtonBlockElement(buildActionID(actionNewTeam, team), "",
				slack.NewTextBlockObject(slack.PlainTextType, "Configure new team", false, false)),
			slack.NewButtonBlockElement(buildActionID(actionDone, ""), "",
				slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false))),
	}
}

// HandleInteractive serves Slack interaction callbacks for the
// configuration panel and its modals.
func (h *Handler) HandleInteractive(c *gin.Context) {
	log := logger.GetLogger()

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(c.PostForm("payload")), &callback); err != nil {
		log.Error("failed to parse interaction payload", zap.Error(err))
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	ctx := context.Background()
	switch callback.Type {
	case slack.InteractionTypeBlockActions:
		if err := h.handleBlockActions(ctx, &callback); err != nil {
			log.Error("failed to handle block action", zap.Error(err))
		}
	case slack.InteractionTypeViewSubmission:
		if err := h.handleViewSubmission(ctx, &callback); err != nil {
			log.Error("failed to handle view submission", zap.Error(err))
		}
	default:
		log.Debug("ignoring interaction payload", zap.String("type", string(callback.Type)))
	}

	c.String(http.StatusOK, "")
}

func (h *Handler) handleBlockActions(ctx context.Context, callback *slack.InteractionCallback) error {
	if len(callback.ActionCallback.BlockActions) == 0 {
		return nil
	}
	action := callback.ActionCallback.BlockActions[0]
	actionType, team := parseActionID(action.ActionID)

	switch actionType {
	case actionChannel:
		user, err := h.store.Get(ctx, team)
		if err != nil {
			return fmt.Errorf("failed to load team %q: %w", team, err)
		}
		if user == nil {
			return fmt.Errorf("team %q vanished during configuration", team)
		}
		user.SlackChannel = action.SelectedConversation
		return h.store.Save(ctx, user)

	case actionNewTeam:
		user := &model.User{Name: team}
		if err := h.store.Save(ctx, user); err != nil {
			return fmt.Errorf("failed to create team %q: %w", team, err)
		}
		title, blocks := configurePanel(user, team == callback.User.ID)
		return slack.PostWebhook(callback.ResponseURL, &slack.WebhookMessage{
			Text:            title,
			Blocks:          &slack.Blocks{BlockSet: blocks},
			ReplaceOriginal: true,
		})

	case actionGithubUsername:
		user, err := h.store.Get(ctx, team)
		if err != nil {
			return fmt.Errorf("failed to load team %q: %w", team, err)
		}
		if user == nil {
			return fmt.Errorf("team %q vanished during configuration", team)
		}
		return h.openView(callback.TriggerID,
			textInputModal("GitHub username", "Username", action.ActionID, actionGithubUsername, user.GithubUser))

	case actionAddSnippet:
		return h.openView(callback.TriggerID,
			textInputModal("Add snippet", "Snippet", action.ActionID, actionAddSnippet, ""))

	case actionRemoveSnippet:
		user, err := h.store.Get(ctx, team)
		if err != nil {
			return fmt.Errorf("failed to load team %q: %w", team, err)
		}
		if user == nil {
			return fmt.Errorf("team %q vanished during configuration", team)
		}
		return h.openView(callback.TriggerID, removeSnippetModal(action.ActionID, user.Snippets))

	case actionDone:
		return slack.PostWebhook(callback.ResponseURL, &slack.WebhookMessage{DeleteOriginal: true})

	default:
		return fmt.Errorf("unexpected action type %q", actionType)
	}
}

func (h *Handler) openView(triggerID string, view slack.ModalViewRequest) error {
	if _, err := h.api.OpenView(triggerID, view); err != nil {
		return fmt.Errorf("failed to open modal: %w", err)
	}
	return nil
}

// handleViewSubmission applies a modal result to the stored record. The
// modal's private metadata carries the action id of the button that opened
// it.
func (h *Handler) handleViewSubmission(ctx context.Context, callback *slack.InteractionCallback) error {
	actionType, team := parseActionID(callback.View.PrivateMetadata)

	user, err := h.store.Get(ctx, team)
	if err != nil {
		return fmt.Errorf("failed to load team %q: %w", team, err)
	}
	if user == nil {
		return fmt.Errorf("team %q vanished during configuration", team)
	}

	values := callback.View.State.Values
	switch actionType {
	case actionGithubUsername:
		user.GithubUser = modalValue(values, actionGithubUsername)
	case actionAddSnippet:
		snippet := modalValue(values, actionAddSnippet)
		if snippet == "" || contains(user.Snippets, snippet) {
			return nil
		}
		user.Snippets = append(user.Snippets, snippet)
	case actionRemoveSnippet:
		selected := values[string(actionRemoveSnippet)][string(actionRemoveSnippet)].SelectedOption.Value
		var kept []string
		for _, snippet := range user.Snippets {
			if snippet != selected {
				kept = append(kept, snippet)
			}
		}
		user.Snippets = kept
	default:
		return fmt.Errorf("unexpected view submission %q", actionType)
	}

	logger.GetLogger().Info("updating user configuration",
		zap.String("team", user.Name), zap.String("action", string(actionType)))
	return h.store.Save(ctx, user)
}

func modalValue(values map[string]map[string]slack.BlockAction, action configAction) string {
	return strings.TrimSpace(values[string(action)][string(action)].Value)
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

// textInputModal builds a one-field modal. The action id of the opening
// button travels in the private metadata so the submission can find its
// team.
func textInputModal(title, label, privateMetadata string, action configAction, initialValue string) slack.ModalViewRequest {
	input := &slack.PlainTextInputBlockElement{
		Type:     slack.METPlainTextInput,
		ActionID: string(action),
	}
	if initialValue != "" {
		input.InitialValue = initialValue
	}

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      string(action),
		PrivateMetadata: privateMetadata,
		Title:           slack.NewTextBlockObject(slack.PlainTextType, title, false, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Save", false, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				&slack.InputBlock{
					Type:    slack.MBTInput,
					BlockID: string(action),
					Label:   slack.NewTextBlockObject(slack.PlainTextType, label, false, false),
					Element: input,
				},
			},
		},
	}
}

// removeSnippetModal builds a modal with one select listing the current
// snippets.
func removeSnippetModal(privateMetadata string, snippets []string) slack.ModalViewRequest {
	options := make([]*slack.OptionBlockObject, 0, len(snippets))
	for _, snippet := range snippets {
		options = append(options, slack.NewOptionBlockObject(snippet,
			slack.NewTextBlockObject(slack.PlainTextType, snippet, false, false), nil))
	}

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      string(actionRemoveSnippet),
		PrivateMetadata: privateMetadata,
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Remove snippet", false, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Remove", false, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				&slack.InputBlock{
					Type:    slack.MBTInput,
					BlockID: string(actionRemoveSnippet),
					Label:   slack.NewTextBlockObject(slack.PlainTextType, "Snippet", false, false),
					Element: &slack.SelectBlockElement{
						Type:     slack.OptTypeStatic,
						ActionID: string(actionRemoveSnippet),
						Options:  options,
					},
				},
			},
		},
	}
}
