package jira

import (
	"errors"
	"fmt"
	"net/http"

	jira "github.com/andygrunwald/go-jira"
)

// Argument errors reported before any network call is made.
var (
	// ErrNoClient indicates the Jira client was never initialized.
	ErrNoClient = errors.New("jira client not initialized")

	// ErrEmptyJQL indicates an empty or blank JQL query string.
	ErrEmptyJQL = errors.New("empty jql query")

	// ErrEmptyPage indicates the server returned a zero-length page while
	// reporting more results remain; continuing would loop forever.
	ErrEmptyPage = errors.New("server returned an empty page before the reported total was reached")
)

// MalformedTimestampError reports a timestamp string that does not match the
// Jira timestamp shape even after fractional-second normalization. It is
// treated as a data-integrity failure, not a recoverable condition.
type MalformedTimestampError struct {
	Value string
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("malformed jira timestamp %q", e.Value)
}

// SearchError is the terminal failure of a paginated issue traversal. It
// carries the query and pagination state at the point of failure so an
// operator can tell how far the export got.
type SearchError struct {
	// JQL is the query that was being executed.
	JQL string

	// StartAt is the pagination offset of the failed page.
	StartAt int

	// Total is the server-reported result count, or -1 if no page succeeded.
	Total int

	// LastKey is the key of the last issue yielded before the failure.
	LastKey string

	// Err is the underlying cause.
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("jql search failed: jql=%q startAt=%d total=%d lastIssue=%q: %v",
		e.JQL, e.StartAt, e.Total, e.LastKey, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// retryable reports whether a failed search response is worth retrying.
// Only server-side overload conditions qualify; anything else (auth failures,
// bad queries, client errors) propagates immediately.
func retryable(resp *jira.Response) bool {
	if resp == nil {
		return false
	}
	return resp.StatusCode == http.StatusInternalServerError ||
		resp.StatusCode == http.StatusServiceUnavailable
}
