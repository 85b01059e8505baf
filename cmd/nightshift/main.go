package main

import (
	"context"
	"os"

	"log/slog"

	"github.com/spf13/cobra"

	"github.com/coderops/nightshift/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nightshift",
		Short:   "Workspace autostop agent",
		Long:    "Nightshift stops remote development workspaces based on quiet hours policies and TTL deadlines.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help by default when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "nightshift.yml", "Configuration file path (YAML or JSON)")
	cmd.PersistentFlags().String("url", "", "Platform base URL (env NIGHTSHIFT_URL)")
	cmd.PersistentFlags().String("token", "", "Platform session token (env NIGHTSHIFT_TOKEN)")
	cmd.PersistentFlags().String("history-db", "", "Run history database URL, e.g. sqlite:./nightshift-history.db")
	cmd.PersistentFlags().String("log-format", "human", "Log format (human|text|json) (env NIGHTSHIFT_LOG_FORMAT)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().String("log-output", "-", "Log output: '-' for stderr, 'none', a path, or empty for an auto-named file")
	cmd.PersistentFlags().String("log-dir", "logs", "Directory for auto-named log files")
	cmd.PersistentFlags().Int("log-retention-days", 7, "Days to retain auto-named log files, 0 disables cleanup")

	var logFile *logging.LogFile
	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		format, _ := c.Flags().GetString("log-format")
		if env := os.Getenv("NIGHTSHIFT_LOG_FORMAT"); env != "" { // env overrides flag
			format = env
		}
		level := slog.LevelInfo
		switch lv, _ := c.Flags().GetString("log-level"); lv {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}

		output, _ := c.Flags().GetString("log-output")
		dir, _ := c.Flags().GetString("log-dir")
		lf, err := logging.OpenLogFile(output, dir)
		if err != nil {
			return err
		}
		logFile = lf
		if retention, _ := c.Flags().GetInt("log-retention-days"); lf.Path != "" {
			_ = logging.CleanupOldLogFiles(dir, retention)
		}

		l, err := logging.NewWithWriter(format, level, lf.Writer())
		if err != nil {
			return err
		}
		ctx := logging.WithLogger(c.Context(), l)
		c.SetContext(ctx)
		return nil
	}
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		if logFile != nil {
			return logFile.Close()
		}
		return nil
	}

	cmd.AddCommand(newCmdVersion())
	cmd.AddCommand(newCmdStatus())
	cmd.AddCommand(newCmdCategorize())
	cmd.AddCommand(newCmdReport())
	cmd.AddCommand(newCmdTTL())
	cmd.AddCommand(newCmdSweep())
	return cmd
}

func main() {
	root := newRootCmd()
	root.SetContext(context.Background())
	executed, err := root.ExecuteC()
	if err != nil {
		ctx := root.Context()
		if executed != nil {
			ctx = executed.Context()
		}
		logging.FromContext(ctx).Errorf(ctx, "Failed: %s", err)
		os.Exit(1)
	}
}
