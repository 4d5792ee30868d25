package export

import (
	"errors"
	"io"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfeher/jiraexport/pkg/models"
)

type mockLookup struct {
	calls []string
	users map[string]models.User
}

func (m *mockLookup) LookupUser(username string) (models.User, error) {
	m.calls = append(m.calls, username)
	if user, ok := m.users[username]; ok {
		return user, nil
	}
	return models.User{}, errors.New("user not found")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveDeduplicatesAndPreservesOrder(t *testing.T) {
	lookup := &mockLookup{users: map[string]models.User{
		"alice": {Name: "alice", EmailAddress: "alice@example.com"},
		"bob":   {Name: "bob", EmailAddress: "bob@example.com"},
	}}
	resolver := NewResolver(lookup, discardLogger())

	users := resolver.Resolve("see [~alice] and [~alice] and [~bob]")

	// alice mentioned twice resolves once, order of first appearance kept.
	assert.Equal(t, []string{"alice", "bob"}, lookup.calls)
	require.Len(t, users, 2)
	assert.Equal(t, "alice@example.com", users[0].EmailAddress)
	assert.Equal(t, "bob@example.com", users[1].EmailAddress)
}

func TestResolveCachesAcrossCalls(t *testing.T) {
	lookup := &mockLookup{users: map[string]models.User{
		"alice": {Name: "alice", EmailAddress: "alice@example.com"},
	}}
	resolver := NewResolver(lookup, discardLogger())

	first := resolver.Resolve("ping [~alice]")
	second := resolver.Resolve("again [~alice]")

	assert.Equal(t, []string{"alice"}, lookup.calls, "second resolution must hit the cache")
	assert.Equal(t, first, second)
}

func TestResolveOmitsUnresolvableMentions(t *testing.T) {
	lookup := &mockLookup{users: map[string]models.User{
		"alice": {Name: "alice", EmailAddress: "alice@example.com"},
	}}
	resolver := NewResolver(lookup, discardLogger())

	users := resolver.Resolve("cc [~ghost] and [~alice]")

	require.Len(t, users, 1)
	assert.Equal(t, "alice@example.com", users[0].EmailAddress)

	// Failed lookups are not cached, so a later mention retries.
	resolver.Resolve("cc [~ghost]")
	assert.Equal(t, []string{"ghost", "alice", "ghost"}, lookup.calls)
}

func TestResolveNoMentions(t *testing.T) {
	lookup := &mockLookup{}
	resolver := NewResolver(lookup, discardLogger())

	assert.Empty(t, resolver.Resolve("no mentions here"))
	assert.Empty(t, resolver.Resolve(""))
	assert.Empty(t, lookup.calls)
}
