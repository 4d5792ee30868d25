// Package config provides centralized configuration management for the application.
//
// Configuration lives in an INI file with one stanza per Jira instance, e.g.:
//
//	[source]
//	jira_server = https://jira.example.com
//	jira_token  = $JIRA_TOKEN
//	jql         = project = ABC ORDER BY key
//
// Values are environment-expanded, so secrets can be referenced as $VAR or
// ${VAR} instead of being stored in the file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Defaults applied when the stanza leaves the tuning keys unset.
const (
	DefaultBatchSize  = 100
	DefaultRetries    = 5
	DefaultRetryDelay = 45 // seconds
)

// Config holds the settings for one Jira instance stanza.
type Config struct {
	// Server is the base URL of the Jira instance.
	Server string

	// Token is the personal access token used as a bearer credential.
	Token string

	// ClientCert and ClientKey are optional file paths for mutual TLS.
	ClientCert string
	ClientKey  string

	// JQL is the query selecting the issues to export.
	JQL string

	// BatchSize is the page size used for the issue search.
	BatchSize int

	// Retries is the attempt budget for transient search failures.
	Retries int

	// RetryDelaySeconds is the linear backoff base between retries.
	RetryDelaySeconds int
}

// Load reads the INI file at path and extracts the named stanza.
func Load(path, stanza string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("configuration file '%s' not found: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read configuration file '%s': %w", path, err)
	}

	section := v.Sub(stanza)
	if section == nil {
		return nil, fmt.Errorf("missing stanza '%s' in configuration file '%s'", stanza, path)
	}

	// Every value may reference environment variables.
	get := func(key string) string {
		return os.ExpandEnv(strings.TrimSpace(section.GetString(key)))
	}

	config := &Config{
		Server:            get("jira_server"),
		Token:             get("jira_token"),
		ClientCert:        get("client_crt"),
		ClientKey:         get("client_key"),
		JQL:               get("jql"),
		BatchSize:         DefaultBatchSize,
		Retries:           DefaultRetries,
		RetryDelaySeconds: DefaultRetryDelay,
	}

	if section.IsSet("batch_size") {
		config.BatchSize = section.GetInt("batch_size")
	}
	if section.IsSet("retries") {
		config.Retries = section.GetInt("retries")
	}
	if section.IsSet("retry_delay_s") {
		config.RetryDelaySeconds = section.GetInt("retry_delay_s")
	}

	if err := validateConfig(config, stanza); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig ensures that all required stanza keys are provided.
func validateConfig(config *Config, stanza string) error {
	var missingKeys []string

	if config.Server == "" {
		missingKeys = append(missingKeys, "jira_server")
	}
	if config.Token == "" {
		missingKeys = append(missingKeys, "jira_token")
	}
	if config.JQL == "" {
		missingKeys = append(missingKeys, "jql")
	}

	if len(missingKeys) > 0 {
		return fmt.Errorf("missing required keys in stanza '%s': %v", stanza, missingKeys)
	}

	// Client certificates only make sense as a pair.
	if (config.ClientCert == "") != (config.ClientKey == "") {
		return fmt.Errorf("stanza '%s' must set both client_crt and client_key or neither", stanza)
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("stanza '%s': batch_size must be positive", stanza)
	}
	if config.Retries <= 0 {
		return fmt.Errorf("stanza '%s': retries must be positive", stanza)
	}

	return nil
}
