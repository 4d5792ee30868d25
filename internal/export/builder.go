// Package export turns Jira issues and their comments into flat JSON records
// on an output stream, one record per comment.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"math"
	"time"

	"log/slog"

	"github.com/StevenACoffman/j2m"

	"github.com/mfeher/jiraexport/internal/jira"
	"github.com/mfeher/jiraexport/pkg/models"
)

// exportFields is the issue field projection requested from the server.
var exportFields = []string{"summary", "issuetype", "priority", "reporter", "assignee", "created"}

// defaultBatchSize is the search page size when the caller passes none.
const defaultBatchSize = 100

// Source is the slice of the Jira surface the exporter drives: paged issue
// search, per-issue comment listing, and user lookup for mentions.
type Source interface {
	Issues(jql string, fields []string, expand string, batchSize int) (iter.Seq2[models.Issue, error], error)
	Comments(issueKey string) ([]models.Comment, error)
	UserLookup
}

// Exporter walks every issue matched by a JQL query and writes one JSON
// object per comment to out, one per line. Records are streamed: each one is
// written before the next is built.
type Exporter struct {
	source    Source
	resolver  *Resolver
	enc       *json.Encoder
	log       *slog.Logger
	batchSize int

	// convert renders Jira wiki markup as markdown
	convert func(string) string
}

// NewExporter wires an exporter for one run. The mention cache lives inside
// the resolver and is shared across all issues of the run.
func NewExporter(source Source, out io.Writer, log *slog.Logger, batchSize int) *Exporter {
	if log == nil {
		log = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Exporter{
		source:    source,
		resolver:  NewResolver(source, log),
		enc:       json.NewEncoder(out),
		log:       log,
		batchSize: batchSize,
		convert:   j2m.JiraToMD,
	}
}

// Run executes the export for one JQL query. It either completes fully or
// returns the error that stopped it; there is no partial-success mode, since
// downstream ingestion assumes a complete export per invocation.
func (e *Exporter) Run(jql string) error {
	seq, err := e.source.Issues(jql, exportFields, "", e.batchSize)
	if err != nil {
		return err
	}

	e.log.Info("searching for issues", "jql", jql)

	issueCount := 0
	recordCount := 0
	for issue, err := range seq {
		if err != nil {
			return err
		}
		issueCount++
		e.log.Info("processing issue",
			"n", issueCount,
			"key", issue.Key)

		comments, err := e.source.Comments(issue.Key)
		if err != nil {
			return err
		}

		for record, err := range e.buildRecords(issue, comments) {
			if err != nil {
				return fmt.Errorf("building record for '%s': %w", issue.Key, err)
			}
			if err := e.enc.Encode(record); err != nil {
				return fmt.Errorf("failed to write record for '%s': %w", issue.Key, err)
			}
			recordCount++
		}
	}

	e.log.Info("export complete",
		"issues", issueCount,
		"records", recordCount)
	return nil
}

// buildRecords lazily produces one record per comment, in tracker order.
// The first comment of an issue carries no delta; every later one carries
// the hours since the immediately preceding comment, rounded to one decimal.
// A malformed timestamp stops the sequence: it signals a server-side format
// change that should not be papered over.
func (e *Exporter) buildRecords(issue models.Issue, comments []models.Comment) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		ticket, err := buildTicket(issue)
		if err != nil {
			yield(Record{}, err)
			return
		}

		var prevCreated time.Time
		for seq, comment := range comments {
			created, err := jira.ParseTimestamp(comment.Created)
			if err != nil {
				yield(Record{}, err)
				return
			}
			updated, err := jira.ParseTimestamp(comment.Updated)
			if err != nil {
				yield(Record{}, err)
				return
			}

			var emails []string
			for _, user := range e.resolver.Resolve(comment.Body) {
				emails = append(emails, user.EmailAddress)
			}

			record := Record{
				Ticket:          ticket,
				Comment:         e.convert(comment.Body),
				Author:          comment.Author,
				AuthorEmail:     comment.AuthorEmail,
				Seq:             seq,
				Created:         comment.Created,
				Updated:         comment.Updated,
				CreatedEpoch:    jira.EpochSeconds(created),
				UpdatedEpoch:    jira.EpochSeconds(updated),
				ReferencedUsers: emails,
			}
			if seq > 0 {
				delta := math.Round(created.Sub(prevCreated).Hours()*10) / 10
				record.DeltaCreatedHours = &delta
			}
			prevCreated = created

			if !yield(record, nil) {
				return
			}
		}
	}
}

// buildTicket derives the per-issue sub-record shared by all its comments.
func buildTicket(issue models.Issue) (Ticket, error) {
	created, err := jira.ParseTimestamp(issue.Created)
	if err != nil {
		return Ticket{}, err
	}
	return Ticket{
		Key:          issue.Key,
		Title:        issue.Summary,
		IssueType:    issue.Type,
		Reporter:     issue.Reporter,
		Assignee:     issue.Assignee,
		Priority:     issue.Priority,
		Created:      issue.Created,
		CreatedEpoch: jira.EpochSeconds(created),
	}, nil
}
