// Package cli provides the command-line interface for cancerml.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"cancerml/internal/cli/commands"
	"cancerml/internal/cli/config"
)

// Version information (set at build time).
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "cancerml",
		Short: "Breast cancer classification pipeline",
		Long: `cancerml downloads, cleans, validates and splits the Wisconsin Diagnostic
Breast Cancer data, then tunes and fits a k-nearest-neighbour classifier.

Every stage is recorded in a run ledger unless state_path is empty.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// cmd.Flags() holds the inherited persistent flags after parsing,
			// so stage flags such as --train-data-size also reach the config.
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger := NewLogger(cmd.ErrOrStderr(), cfg)
			if cfg.File != "" {
				logger.Debug("using config file", slog.String("path", cfg.File))
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "Log format (text|json)")
	rootCmd.PersistentFlags().String("state", config.DefaultStateFile, "Path to the run ledger database (empty disables it)")
	rootCmd.PersistentFlags().Int64("seed", config.DefaultSeed, "Random seed")

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewDownloadCommand())
	rootCmd.AddCommand(commands.NewCleanCommand())
	rootCmd.AddCommand(commands.NewSplitCommand())
	rootCmd.AddCommand(commands.NewFitCommand())
	rootCmd.AddCommand(commands.NewAllCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())

	return rootCmd
}

// NewLogger builds the process logger: text or JSON on w, debug level when verbose.
func NewLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Verbose {
		opts.Level = slog.LevelDebug
	}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Execute runs the root command. An interrupt cancels the running stage.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
