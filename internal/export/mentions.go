package export

import (
	"log/slog"
	"regexp"

	"github.com/mfeher/jiraexport/pkg/models"
)

// mentionPattern matches Jira user mentions like [~jdoe].
var mentionPattern = regexp.MustCompile(`\[~([^\]]+)\]`)

// UserLookup resolves a Jira username to a user identity.
type UserLookup interface {
	LookupUser(username string) (models.User, error)
}

// Resolver turns mention tokens in comment bodies into user identities.
// It owns a per-run cache so each distinct username is looked up remotely at
// most once across all issues and comments; successful lookups are cached
// for the lifetime of the resolver and never evicted.
type Resolver struct {
	lookup UserLookup
	log    *slog.Logger
	cache  map[string]models.User
}

// NewResolver creates a resolver with an empty cache. Construct one per run
// and share it across every comment of the export.
func NewResolver(lookup UserLookup, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		lookup: lookup,
		log:    log,
		cache:  make(map[string]models.User),
	}
}

// Resolve returns the users mentioned in body, deduplicated by token and
// ordered by first appearance. A token that cannot be resolved is logged and
// skipped; a broken mention never aborts record production. Only successful
// lookups are cached, so a user created between comments is still found.
func (r *Resolver) Resolve(body string) []models.User {
	var users []models.User
	seen := make(map[string]bool)

	for _, match := range mentionPattern.FindAllStringSubmatch(body, -1) {
		token := match[1]
		if seen[token] {
			continue
		}
		seen[token] = true

		if user, ok := r.cache[token]; ok {
			users = append(users, user)
			continue
		}

		user, err := r.lookup.LookupUser(token)
		if err != nil {
			r.log.Warn("mentioned user not found in jira",
				"user", token,
				"error", err)
			continue
		}
		r.cache[token] = user
		users = append(users, user)
	}
	return users
}
