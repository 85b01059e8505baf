package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coderops/nightshift/adapters/gateway/coderd"
	historyrdb "github.com/coderops/nightshift/adapters/history/rdb"
	"github.com/coderops/nightshift/config/nightshiftcfg"
	"github.com/coderops/nightshift/usecase/classify"
	"github.com/coderops/nightshift/usecase/filter"
	"github.com/coderops/nightshift/usecase/stop"
	"github.com/coderops/nightshift/usecase/sweep"
)

// loadConfig resolves the effective configuration: defaults, then the config
// file if present, then environment, then command-line flags.
func loadConfig(cmd *cobra.Command) (*nightshiftcfg.Root, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg := nightshiftcfg.Default()
	if _, err := os.Stat(path); err == nil {
		cfg, err = nightshiftcfg.Load(path)
		if err != nil {
			return nil, err
		}
	} else if cmd.Flags().Changed("config") {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	cfg.ApplyEnv()

	if v, _ := cmd.Flags().GetString("url"); v != "" {
		cfg.URL = v
	}
	if v, _ := cmd.Flags().GetString("token"); v != "" {
		cfg.Token = v
	}
	if v, _ := cmd.Flags().GetString("history-db"); v != "" {
		cfg.History.URL = v
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun, _ = cmd.Flags().GetBool("dry-run")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildUseCase assembles the sweep use case with its gateway and optional
// history sink.
func buildUseCase(cfg *nightshiftcfg.Root) (*sweep.UseCase, error) {
	gw, err := coderd.New(cfg.URL, cfg.Token, time.Duration(cfg.Executor.RequestTimeoutSec)*time.Second)
	if err != nil {
		return nil, err
	}
	uc := &sweep.UseCase{Gateway: gw}

	if cfg.History.URL != "" {
		db, err := historyrdb.OpenFromURL(cfg.History.URL)
		if err != nil {
			return nil, fmt.Errorf("open history db: %w", err)
		}
		if err := historyrdb.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("migrate history db: %w", err)
		}
		uc.History = historyrdb.NewRecorder(db)
	}
	return uc, nil
}

// sweepOptions derives evaluation options from configuration and per-command
// flags. Filter flags override the config file lists when given, matching
// the original agent's custom-filter behavior.
func sweepOptions(cmd *cobra.Command, cfg *nightshiftcfg.Root) (sweep.Options, error) {
	policy, err := classify.NewPolicy(
		cfg.QuietHours.StartTime,
		cfg.QuietHours.EndTime,
		cfg.QuietHours.Timezone,
		cfg.QuietHours.GracePeriodHours,
		cfg.QuietHours.Enabled,
	)
	if err != nil {
		return sweep.Options{}, err
	}

	opts := sweep.Options{
		Policy:            policy,
		Duration:          time.Duration(cfg.Prune.DurationHours) * time.Hour,
		ExcludedUsers:     cfg.QuietHours.ExcludedUsers,
		ExcludedTemplates: cfg.QuietHours.ExcludedTemplates,
		Filter:            filterSpec(cmd, cfg),
	}

	if cmd.Flags().Lookup("duration") != nil {
		if hours, _ := cmd.Flags().GetInt("duration"); cmd.Flags().Changed("duration") {
			opts.Duration = time.Duration(hours) * time.Hour
		}
	}
	if cmd.Flags().Lookup("user") != nil {
		opts.TargetUser, _ = cmd.Flags().GetString("user")
	}
	return opts, nil
}

// addFilterFlags registers the eight include/exclude filter flags.
func addFilterFlags(fs *pflag.FlagSet) {
	fs.StringArray("include-org", nil, "Include specific organizations (repeatable)")
	fs.StringArray("exclude-org", nil, "Exclude specific organizations (repeatable)")
	fs.StringArray("include-group", nil, "Include specific groups (repeatable)")
	fs.StringArray("exclude-group", nil, "Exclude specific groups (repeatable)")
	fs.StringArray("include-user", nil, "Include specific users (repeatable)")
	fs.StringArray("exclude-user", nil, "Exclude specific users (repeatable)")
	fs.StringArray("include-template", nil, "Include specific templates (repeatable)")
	fs.StringArray("exclude-template", nil, "Exclude specific templates (repeatable)")
}

func filterSpec(cmd *cobra.Command, cfg *nightshiftcfg.Root) filter.Spec {
	fs := cmd.Flags()
	pick := func(flag string, fallback []string) []string {
		if fs.Lookup(flag) == nil {
			return fallback
		}
		if vals, _ := fs.GetStringArray(flag); len(vals) > 0 {
			return vals
		}
		return fallback
	}
	return filter.Spec{
		Organizations: filter.Dimension{
			Include: pick("include-org", cfg.Prune.IncludeOrgs),
			Exclude: pick("exclude-org", cfg.Prune.ExcludeOrgs),
		},
		Groups: filter.Dimension{
			Include: pick("include-group", cfg.Prune.IncludeGroups),
			Exclude: pick("exclude-group", cfg.Prune.ExcludeGroups),
		},
		Users: filter.Dimension{
			Include: pick("include-user", cfg.Prune.IncludeUsers),
			Exclude: pick("exclude-user", cfg.Prune.ExcludeUsers),
		},
		Templates: filter.Dimension{
			Include: pick("include-template", cfg.Prune.IncludeTemplates),
			Exclude: pick("exclude-template", cfg.Prune.ExcludeTemplates),
		},
	}
}

// buildExecutor assembles the stop executor from configuration.
func buildExecutor(uc *sweep.UseCase, cfg *nightshiftcfg.Root, dryRun bool) *stop.Executor {
	return &stop.Executor{
		Gateway:         uc.Gateway,
		FallbackReasons: cfg.Executor.Reasons,
		DryRun:          dryRun,
		MaxPerMinute:    cfg.Executor.MaxStopsPerMinute,
		Workers:         cfg.Executor.Workers,
		MaxAttempts:     cfg.Executor.MaxAttempts,
	}
}
