package export

import "encoding/json"

// Ticket is the issue sub-record repeated on every comment record.
type Ticket struct {
	Key          string
	Title        string
	IssueType    string
	Reporter     string
	Assignee     string
	Priority     string
	Created      string
	CreatedEpoch float64
}

// Record is one exported comment, written once and never mutated afterwards.
type Record struct {
	Ticket      Ticket
	Comment     string
	Author      string
	AuthorEmail string

	// Seq is the zero-based position of the comment within its issue.
	Seq int

	Created      string
	Updated      string
	CreatedEpoch float64
	UpdatedEpoch float64

	// ReferencedUsers holds the email addresses of users mentioned in the
	// comment body, in order of first appearance.
	ReferencedUsers []string

	// DeltaCreatedHours is the hours elapsed since the previous comment of
	// the same issue, rounded to one decimal. Nil for the first comment.
	DeltaCreatedHours *float64
}

// MarshalJSON renders the record as a flat JSON object with the downstream
// field names. Going through maps keeps the keys lexicographically sorted at
// every level, which keeps exports diffable.
func (r Record) MarshalJSON() ([]byte, error) {
	var assignee any
	if r.Ticket.Assignee != "" {
		assignee = r.Ticket.Assignee
	}

	ticket := map[string]any{
		"key":           r.Ticket.Key,
		"title":         r.Ticket.Title,
		"issuetype":     r.Ticket.IssueType,
		"reporter":      r.Ticket.Reporter,
		"assignee":      assignee,
		"priority":      r.Ticket.Priority,
		"created":       nullableString(r.Ticket.Created),
		"created_epoch": nullableEpoch(r.Ticket.Created, r.Ticket.CreatedEpoch),
	}

	users := r.ReferencedUsers
	if users == nil {
		users = []string{}
	}

	obj := map[string]any{
		"ticket":           ticket,
		"comment":          r.Comment,
		"author":           r.Author,
		"author_email":     r.AuthorEmail,
		"seq":              r.Seq,
		"created":          nullableString(r.Created),
		"updated":          nullableString(r.Updated),
		"created_epoch":    nullableEpoch(r.Created, r.CreatedEpoch),
		"updated_epoch":    nullableEpoch(r.Updated, r.UpdatedEpoch),
		"referenced_users": users,
	}
	if r.DeltaCreatedHours != nil {
		obj["delta_created_h"] = *r.DeltaCreatedHours
	}

	return json.Marshal(obj)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableEpoch(ts string, epoch float64) any {
	if ts == "" {
		return nil
	}
	return epoch
}
