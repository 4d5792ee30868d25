// Package models defines data structures shared across the application.
package models

// Issue is a read-only snapshot of a Jira issue, limited to the fields the
// exporter consumes. Timestamps are kept as Jira-formatted strings; parsing
// happens at record-build time.
type Issue struct {
	// Key is the full Jira issue identifier (e.g., "ABC-123")
	Key string

	// Summary is the issue's summary field
	Summary string

	// Type is the Jira issue type name (e.g., "Story", "Bug")
	Type string

	// Priority is the name of the issue's priority
	Priority string

	// Reporter is the username of the reporting user
	Reporter string

	// Assignee is the username of the assigned user, empty when unassigned
	Assignee string

	// Created is the issue creation timestamp as reported by Jira
	Created string
}

// Comment is a single comment on a Jira issue, in the order Jira returned it.
type Comment struct {
	// IssueKey is the key of the parent issue
	IssueKey string

	// Body is the raw comment text in Jira wiki markup
	Body string

	// Author is the display name of the comment author
	Author string

	// AuthorEmail is the email address of the comment author
	AuthorEmail string

	// Created is the comment creation timestamp as reported by Jira
	Created string

	// Updated is the comment's last-update timestamp as reported by Jira
	Updated string
}

// User identifies a Jira user resolved from a mention token.
type User struct {
	// Name is the Jira username (the token inside [~...])
	Name string

	// DisplayName is the user's human-readable name
	DisplayName string

	// EmailAddress is the user's email address
	EmailAddress string
}
