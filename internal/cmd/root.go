// Package cmd implements the quay-pruner CLI using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ceph/quay-pruner/internal/config"
	"github.com/ceph/quay-pruner/internal/credentials"
	"github.com/ceph/quay-pruner/internal/names"
	"github.com/ceph/quay-pruner/internal/prune"
	"github.com/ceph/quay-pruner/internal/registry"
	"github.com/ceph/quay-pruner/internal/shaman"
	"github.com/ceph/quay-pruner/internal/slogger"
)

var (
	dryRunFlag  bool
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "quay-pruner",
	Short: "Delete CI image tags whose builds are gone from shaman",
	Long: `quay-pruner removes tags from the ceph-ci Quay repository whose builds
shaman no longer lists as ready.

Tags named <ref>-<sha1:7>-centos-<el>-<arch>-devel are checked by reference;
tags starting with a full sha1 are deleted along with their build, or when
shaman no longer knows the sha1. When shaman cannot be reached, tags are kept.

The Quay token is read from $QUAYTOKEN, ~/.quaytoken, or the system keyring
(see "quay-pruner auth"). It is not needed with --dryrun.`,
	Example: `  # Show what would be deleted, with reasons
  quay-pruner --dryrun --verbose

  # Delete
  QUAYTOKEN=... quay-pruner`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runPrune,
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// Main runs the CLI and returns the process exit code.
func Main() int {
	if err := Execute(); err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.Flags().BoolVarP(&dryRunFlag, "dryrun", "d", false, "don't actually delete")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "say more")
}

// setup loads configuration and installs the logger for every command.
func setup(cmd *cobra.Command, _ []string) error {
	loader, err := config.NewLoader()
	if err != nil {
		return fmt.Errorf("init config loader: %w", err)
	}

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Narration goes to stdout alongside the deletion report; without
	// --verbose only diagnostics are logged, to stderr.
	logCfg := slogger.Config{Format: cfg.Log.Format, Output: cmd.ErrOrStderr()}
	if verboseFlag {
		logCfg.Verbosity = 1
		logCfg.Output = cmd.OutOrStdout()
	}
	logger, err := slogger.New(logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx := cmd.Context()
	ctx = WithConfig(ctx, cfg)
	ctx = WithLoader(ctx, loader)
	ctx = slogger.WithLogger(ctx, logger)
	cmd.SetContext(ctx)

	return nil
}

func runPrune(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := requireConfig(ctx)
	if err != nil {
		return err
	}

	log := slogger.L(ctx).With("run", names.RunID(time.Now()))
	ctx = slogger.WithLogger(ctx, log)

	var token string
	if !dryRunFlag {
		var source credentials.Source
		token, source, err = tokenResolver(cfg).Token()
		if err != nil {
			return fmt.Errorf("load quay token: %w", err)
		}
		log.Info("loaded quay token", "source", source)
	}

	reg, err := registry.NewClient(registry.ClientConfig{
		Repository: cfg.Registry.Repository,
		Token:      token,
		Insecure:   cfg.Registry.Insecure,
		PageSize:   cfg.Registry.PageSize,
		StartPage:  cfg.Registry.StartPage,
		PageLimit:  cfg.Registry.PageLimit,
		Timeout:    cfg.HTTP.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create registry client: %w", err)
	}

	searcher, err := shaman.NewClient(shaman.ClientConfig{
		URL:     cfg.Shaman.URL,
		Project: cfg.Shaman.Project,
		Flavor:  cfg.Shaman.Flavor,
		Timeout: cfg.HTTP.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create shaman client: %w", err)
	}

	pruner := prune.New(reg, searcher, prune.Options{
		DryRun: dryRunFlag,
		Out:    cmd.OutOrStdout(),
	})

	report, err := pruner.Run(ctx)
	if err != nil {
		return err
	}

	log.Info("run complete",
		"candidates", len(report.Planned),
		"deleted", len(report.Deleted),
		"failed", len(report.Failed),
		"dryrun", report.DryRun,
	)
	return nil
}

// tokenResolver builds the credential lookup chain from configuration.
func tokenResolver(cfg *config.Config) *credentials.Resolver {
	r := &credentials.Resolver{File: cfg.Credentials.File}
	if cfg.Credentials.Keyring {
		r.OpenKeyring = credentials.OpenSystemKeyring
	}
	return r
}
