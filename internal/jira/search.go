package jira

import (
	"iter"
	"strings"

	"github.com/mfeher/jiraexport/pkg/models"
)

// Issues returns a lazy sequence over every issue matched by the JQL query,
// spanning all result pages in server order. Arguments are validated up
// front: a missing client or blank query fails before any network call.
//
// The sequence yields each issue exactly once. If a page fetch fails beyond
// the retry budget, the sequence yields a single terminal *SearchError and
// stops; it never truncates silently.
//
// The offset is advanced by the number of issues the server actually
// returned, not by batchSize: the last page is usually short, and some
// servers cap the effective page size below the requested one.
func (c *Client) Issues(jql string, fields []string, expand string, batchSize int) (iter.Seq2[models.Issue, error], error) {
	if c == nil || c.client == nil {
		return nil, ErrNoClient
	}
	if strings.TrimSpace(jql) == "" {
		return nil, ErrEmptyJQL
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	return func(yield func(models.Issue, error) bool) {
		startAt := 0
		total := -1
		lastKey := ""

		fail := func(cause error) {
			yield(models.Issue{}, &SearchError{
				JQL:     jql,
				StartAt: startAt,
				Total:   total,
				LastKey: lastKey,
				Err:     cause,
			})
		}

		for total < 0 || startAt < total {
			page, pageTotal, err := c.SearchPage(jql, fields, expand, batchSize, startAt)
			if err != nil {
				fail(err)
				return
			}

			total = pageTotal
			if len(page) == 0 && startAt < total {
				// A short server would otherwise keep us polling the same
				// offset forever.
				fail(ErrEmptyPage)
				return
			}
			startAt += len(page)

			for _, issue := range page {
				lastKey = issue.Key
				if !yield(issue, nil) {
					return
				}
			}
		}

		c.log.Debug("jql search exhausted",
			"jql", jql,
			"total", total,
			"fetched", startAt)
	}, nil
}
