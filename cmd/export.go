package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfeher/jiraexport/internal/config"
	"github.com/mfeher/jiraexport/internal/export"
	"github.com/mfeher/jiraexport/internal/jira"
	"github.com/mfeher/jiraexport/internal/logging"
)

// exportCmd runs the comment export for the configured JQL query.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export Jira comment history to stdout",
	Long: `Export runs the configured JQL query, walks every matching issue and
writes one JSON object per comment to stdout, one per line with sorted keys.

Each record contains the parent ticket snapshot, the comment body converted to
markdown, author identity, a per-issue sequence number, epoch timestamps, the
hours elapsed since the previous comment and the email addresses of users
mentioned as [~username] in the body.

The run either completes fully or fails; a failed run must not be ingested.

Example:
  jiraexport export -c jira.ini -s source > comments.jsonl`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		stanza, err := cmd.Flags().GetString("stanza")
		if err != nil {
			return err
		}

		if configPath == "" {
			return fmt.Errorf("config flag is required")
		}

		log := logging.GetLogger()
		log.Info("starting export",
			"config_file", configPath,
			"stanza", stanza)

		cfg, err := config.Load(configPath, stanza)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		client, err := jira.NewClient(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize jira client: %w", err)
		}

		exporter := export.NewExporter(client, os.Stdout, log, cfg.BatchSize)
		if err := exporter.Run(cfg.JQL); err != nil {
			log.Error("export failed",
				"jql", cfg.JQL,
				"error", err)
			return err
		}

		log.Info("executed jql", "jql", cfg.JQL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
