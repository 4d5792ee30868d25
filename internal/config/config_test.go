package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jira.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadStanza(t *testing.T) {
	t.Setenv("TEST_JIRA_TOKEN", "sekrit-token")

	path := writeConfigFile(t, `
[source]
jira_server = https://jira.example.com
jira_token = ${TEST_JIRA_TOKEN}
jql = project = ABC ORDER BY key
`)

	cfg, err := Load(path, "source")
	require.NoError(t, err)

	assert.Equal(t, "https://jira.example.com", cfg.Server)
	assert.Equal(t, "sekrit-token", cfg.Token, "values must be environment-expanded")
	assert.Equal(t, "project = ABC ORDER BY key", cfg.JQL)
	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, DefaultRetries, cfg.Retries)
	assert.Equal(t, DefaultRetryDelay, cfg.RetryDelaySeconds)
	assert.Empty(t, cfg.ClientCert)
	assert.Empty(t, cfg.ClientKey)
}

func TestLoadTuningOverrides(t *testing.T) {
	path := writeConfigFile(t, `
[source]
jira_server = https://jira.example.com
jira_token = abc
jql = project = ABC
batch_size = 25
retries = 3
retry_delay_s = 10
`)

	cfg, err := Load(path, "source")
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, 10, cfg.RetryDelaySeconds)
}

func TestLoadSelectsStanza(t *testing.T) {
	path := writeConfigFile(t, `
[source]
jira_server = https://source.example.com
jira_token = a
jql = project = SRC

[target]
jira_server = https://target.example.com
jira_token = b
jql = project = TGT
`)

	cfg, err := Load(path, "target")
	require.NoError(t, err)
	assert.Equal(t, "https://target.example.com", cfg.Server)
	assert.Equal(t, "project = TGT", cfg.JQL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.ini"), "source")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadMissingStanza(t *testing.T) {
	path := writeConfigFile(t, `
[source]
jira_server = https://jira.example.com
jira_token = abc
jql = project = ABC
`)

	_, err := Load(path, "production")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "production")
}

func TestLoadMissingRequiredKeys(t *testing.T) {
	path := writeConfigFile(t, `
[source]
jql = project = ABC
`)

	_, err := Load(path, "source")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jira_server")
	assert.Contains(t, err.Error(), "jira_token")
}

func TestLoadUnpairedClientCert(t *testing.T) {
	path := writeConfigFile(t, `
[source]
jira_server = https://jira.example.com
jira_token = abc
jql = project = ABC
client_crt = /etc/jira/client.crt
`)

	_, err := Load(path, "source")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_key")
}

func TestLoadRejectsBadTuning(t *testing.T) {
	path := writeConfigFile(t, `
[source]
jira_server = https://jira.example.com
jira_token = abc
jql = project = ABC
batch_size = 0
`)

	_, err := Load(path, "source")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch_size")
}
