// Package cmd provides the command-line interface for the jiraexport tool.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jiraexport",
	Short: "jiraexport extracts Jira comment history as JSON lines",
	Long: `jiraexport runs a JQL query against a Jira instance and writes one JSON
object per comment to stdout, ready for downstream ingestion.

Connection settings and the query come from an INI configuration file with one
stanza per Jira instance. Values in the file may reference environment
variables ($VAR or ${VAR}), which is the recommended way to supply the access
token. Logs go to stderr so stdout stays a clean data channel.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the INI configuration file")
	rootCmd.PersistentFlags().StringP("stanza", "s", "source", "Configuration stanza naming the Jira instance to read from")
}
