package model

// User is a notification target. A record keyed by a Slack user id is a
// personal registration; a record keyed by any other name acts as a team.
// The store's key space is the only thing enforcing uniqueness.
type User struct {
	// Name is the store key: a Slack user id or an arbitrary team name.
	Name string `json:"name"`

	// GithubUser is an optional GitHub login. When set it doubles as an
	// implicit "@login" snippet and identifies authorship and self-actions.
	GithubUser string `json:"github_user,omitempty"`

	// SlackChannel, when set, receives notifications instead of a DM.
	SlackChannel string `json:"slack_channel,omitempty"`

	// Snippets are case-sensitive substrings matched against event bodies.
	// Order only matters for display.
	Snippets []string `json:"snippets,omitempty"`
}

// EffectiveSnippets returns the snippets this user matches on: the
// configured list plus an implicit "@<GithubUser>" mention when a GitHub
// login is set. The result is always a fresh slice; the stored list is
// never aliased.
func (u *User) EffectiveSnippets() []string {
	snippets := make([]string, 0, len(u.Snippets)+1)
	snippets = append(snippets, u.Snippets...)
	if u.GithubUser != "" {
		snippets = append(snippets, "@"+u.GithubUser)
	}
	return snippets
}
