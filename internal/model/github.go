package model

// Webhook event kinds as delivered in the X-GitHub-Event header.
const (
	EventIssues                   = "issues"
	EventPullRequest              = "pull_request"
	EventCommitComment            = "commit_comment"
	EventIssueComment             = "issue_comment"
	EventPullRequestReviewComment = "pull_request_review_comment"
	EventPullRequestReview        = "pull_request_review"
	EventStatus                   = "status"
)

// MergeableState is GitHub's mergeability summary for a pull request.
type MergeableState string

const (
	MergeableClean    MergeableState = "clean"
	MergeableUnknown  MergeableState = "unknown"
	MergeableUnstable MergeableState = "unstable"
	MergeableDirty    MergeableState = "dirty"
)

// ReviewState is the verdict of a submitted pull request review.
type ReviewState string

const (
	ReviewApproved         ReviewState = "approved"
	ReviewCommented        ReviewState = "commented"
	ReviewChangesRequested ReviewState = "changes_requested"
)

// ReviewAction is the action field of a pull_request_review webhook.
type ReviewAction string

const (
	ReviewActionSubmitted ReviewAction = "submitted"
	ReviewActionEdited    ReviewAction = "edited"
	ReviewActionDismissed ReviewAction = "dismissed"
)

// StatusState is the state field of a commit status webhook.
type StatusState string

const (
	StatusPending StatusState = "pending"
	StatusSuccess StatusState = "success"
	StatusFailure StatusState = "failure"
	StatusError   StatusState = "error"
)

// IssueState is the open/closed state of an issue or pull request.
type IssueState string

const (
	IssueOpen   IssueState = "open"
	IssueClosed IssueState = "closed"
)

// Account is a GitHub user or bot actor.
type Account struct {
	Login string `json:"login"`
	Type  string `json:"type"` // "User", "Bot", "Organization"
}

// IsUser reports whether the actor is a human account. Automation actors
// never trigger notifications.
func (a *Account) IsUser() bool {
	return a != nil && a.Type == "User"
}

// Repository identifies the repository an event belongs to.
type Repository struct {
	Name     string  `json:"name"`
	FullName string  `json:"full_name"`
	Owner    Account `json:"owner"`
}

// Issue is the issue half of an issues/issue_comment payload. PullRequest
// is non-nil when the issue is backed by a pull request.
type Issue struct {
	Number      int            `json:"number"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	HTMLURL     string         `json:"html_url"`
	State       IssueState     `json:"state"`
	User        *Account       `json:"user,omitempty"`
	Assignee    *Account       `json:"assignee,omitempty"`
	Labels      []Label        `json:"labels,omitempty"`
	PullRequest map[string]any `json:"pull_request,omitempty"` // marker: issue is a PR
}

// Label is an issue label.
type Label struct {
	Name string `json:"name"`
}

// Branch is one side of a pull request.
type Branch struct {
	Label string `json:"label"`
	SHA   string `json:"sha"`
}

// PullRequest is the pull_request half of a pull_request payload.
type PullRequest struct {
	Number         int            `json:"number"`
	Title          string         `json:"title"`
	Body           string         `json:"body"`
	HTMLURL        string         `json:"html_url"`
	User           *Account       `json:"user,omitempty"`
	Head           *Branch        `json:"head,omitempty"`
	Base           *Branch        `json:"base,omitempty"`
	MergeableState MergeableState `json:"mergeable_state,omitempty"`
}

// Comment is the comment half of a *_comment payload. CommitID is set only
// for commit comments.
type Comment struct {
	Body     string `json:"body"`
	HTMLURL  string `json:"html_url"`
	CommitID string `json:"commit_id,omitempty"`
}

// Changes carries the previous values on "edited" actions.
type Changes struct {
	Body struct {
		From string `json:"from"`
	} `json:"body"`
}

// IssueActivityEvent is the payload shape shared by issues, pull_request
// and the three comment webhooks. Which sub-objects are present depends on
// the webhook kind; AssembledPayload merges them for uniform access.
type IssueActivityEvent struct {
	Action      string       `json:"action"`
	Issue       *Issue       `json:"issue,omitempty"`
	PullRequest *PullRequest `json:"pull_request,omitempty"`
	Comment     *Comment     `json:"comment,omitempty"`
	Changes     *Changes     `json:"changes,omitempty"`
	Repository  Repository   `json:"repository"`
	Sender      *Account     `json:"sender,omitempty"`
}

// AssembledPayload is the merge of issue, pull request and comment fields,
// with comment fields winning on conflict. It answers "what changed"
// without callers probing which sub-object an event happens to carry.
type AssembledPayload struct {
	Number  int
	Title   string
	Body    string
	HTMLURL string
}

// AssembledPayload merges issue, pull_request and comment into one view.
func (e *IssueActivityEvent) AssembledPayload() AssembledPayload {
	var p AssembledPayload
	if e.Issue != nil {
		p.Number = e.Issue.Number
		p.Title = e.Issue.Title
		p.Body = e.Issue.Body
		p.HTMLURL = e.Issue.HTMLURL
	}
	if e.PullRequest != nil {
		p.Number = e.PullRequest.Number
		p.Title = e.PullRequest.Title
		p.Body = e.PullRequest.Body
		p.HTMLURL = e.PullRequest.HTMLURL
	}
	if e.Comment != nil {
		p.Body = e.Comment.Body
		p.HTMLURL = e.Comment.HTMLURL
	}
	return p
}

// IsComment reports whether the event carries a comment.
func (e *IssueActivityEvent) IsComment() bool {
	return e.Comment != nil
}

// IsCommitComment reports whether the comment is attached to a commit
// rather than an issue or pull request.
func (e *IssueActivityEvent) IsCommitComment() bool {
	return e.Comment != nil && e.Comment.CommitID != ""
}

// IsPullRequest reports whether the activity concerns a pull request,
// either directly or through an issue backed by one.
func (e *IssueActivityEvent) IsPullRequest() bool {
	if e.PullRequest != nil {
		return true
	}
	return e.Issue != nil && e.Issue.PullRequest != nil
}

// IssueAuthor returns the login of the original issue author, or "" when
// the event has no issue. Comment authorship is deliberately not consulted.
func (e *IssueActivityEvent) IssueAuthor() string {
	if e.Issue != nil && e.Issue.User != nil {
		return e.Issue.User.Login
	}
	return ""
}

// PreviousBody returns the body text before an edit, or "" for non-edit
// actions.
func (e *IssueActivityEvent) PreviousBody() string {
	if e.Changes == nil {
		return ""
	}
	return e.Changes.Body.From
}

// Review is the review half of a pull_request_review payload.
type Review struct {
	State   ReviewState `json:"state"`
	Body    string      `json:"body"`
	HTMLURL string      `json:"html_url"`
	User    *Account    `json:"user,omitempty"`
}

// ReviewEvent is a pull_request_review webhook payload.
type ReviewEvent struct {
	Action      ReviewAction `json:"action"`
	Review      Review       `json:"review"`
	PullRequest PullRequest  `json:"pull_request"`
	Repository  Repository   `json:"repository"`
	Sender      Account      `json:"sender"`
}

// StatusCommit is the commit a status webhook refers to.
type StatusCommit struct {
	Author    *Account `json:"author,omitempty"`
	Committer *Account `json:"committer,omitempty"`
}

// StatusEvent is a commit status webhook payload.
type StatusEvent struct {
	SHA         string       `json:"sha"`
	Name        string       `json:"name"` // repository full name
	State       StatusState  `json:"state"`
	Context     string       `json:"context"`
	Description string       `json:"description"`
	Commit      StatusCommit `json:"commit"`
	Repository  Repository   `json:"repository"`
}
