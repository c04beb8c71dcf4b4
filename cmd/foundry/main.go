// Package main provides the foundry CLI entry point.
//
// Overview:
//   - Responsibility: Command parsing, logger and output setup, exit codes
//   - Key Types: Cobra command tree
//   - Concurrency Model: Single-threaded CLI execution; SIGINT cancels external commands
//   - Error Semantics: Exit 2 for a non-empty destination, 1 for any other fatal error
//   - Performance Notes: Fast startup, templates are embedded
//
// Usage:
//
//	foundry new shop-api --context customer,order --arch hybrid
//	foundry catalog
//	foundry version
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"go.eggybyte.com/foundry/internal/core/errors"
	"go.eggybyte.com/foundry/internal/core/log"
	"go.eggybyte.com/foundry/internal/logx"
	"go.eggybyte.com/foundry/internal/ui"
)

// Exit codes.
const (
	exitOK           = 0
	exitFailure      = 1
	exitPrecondition = 2
)

var (
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "foundry",
	Short: "FastAPI project scaffolder",
	Long: `foundry generates a ready-to-run FastAPI service from an embedded template corpus.

It supports:
- Four source layouts: ddd, hexagonal, mvc, hybrid
- SQLAlchemy or Peewee persistence on PostgreSQL or MySQL
- One or more bounded contexts, each with entities, repositories and routes
- Optional Docker deployment files
- Optional virtual environment provisioning and Alembic bootstrap`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetVerbose(verbose)
		ui.SetJSONOutput(jsonOutput)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// newLogger builds the structured logger for library packages. It stays quiet
// unless --verbose is set; user-facing output goes through ui.
func newLogger() log.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return logx.New(
		logx.WithLevel(level),
		logx.WithWriter(os.Stderr),
		logx.WithColor(isatty.IsTerminal(os.Stderr.Fd())),
	)
}

// exitCode maps a command error onto the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.IsCode(err, errors.CodePreconditionFailed):
		return exitPrecondition
	default:
		return exitFailure
	}
}

// execute runs the command tree and reports the exit status.
func execute(ctx context.Context, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		ui.Error("%v", err)
	}
	return exitCode(err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
