// Package toolrunner provides execution of external tools and commands.
//
// Overview:
//   - Responsibility: Run the environment provisioner (venv, pip) and the migration tool initializer
//   - Key Types: Runner, CommandResult, Venv, Alembic
//   - Concurrency Model: Sequential command execution with context support
//   - Error Semantics: Any failed or non-zero process is TOOL_FAILED; nothing is retried
//   - Performance Notes: Output captured in memory; each process runs at most once per call
//
// Usage:
//
//	runner := toolrunner.NewRunner(projectDir, logger)
//	venv := toolrunner.NewVenv(runner)
//	err := venv.CreateEnvironment(ctx)
package toolrunner

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"go.eggybyte.com/foundry/internal/core/errors"
	"go.eggybyte.com/foundry/internal/core/log"
)

// Commander runs a single external command.
type Commander interface {
	Run(ctx context.Context, name string, args ...string) (*CommandResult, error)
}

// Runner provides execution of external tools in a working directory.
//
// Parameters:
//   - workDir: Working directory for commands
//   - logger: Receives one record per command
//
// Concurrency:
//   - Safe for concurrent use
type Runner struct {
	workDir string
	logger  log.Logger
}

// CommandResult represents the result of a command execution.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewRunner creates a new tool runner. A nil logger discards output.
func NewRunner(workDir string, logger log.Logger) *Runner {
	if logger == nil {
		logger = log.Nop()
	}
	return &Runner{workDir: workDir, logger: logger}
}

// Run executes a command and captures its output.
//
// Parameters:
//   - ctx: Context for cancellation
//   - name: Command name or path (relative paths resolve against the working directory)
//   - args: Command arguments
//
// Returns:
//   - *CommandResult: Command execution result, also on failure
//   - error: TOOL_FAILED if the command could not start or exited non-zero
func (r *Runner) Run(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	start := time.Now()
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.workDir

	r.logger.Info("running command", log.Str("cmd", line))

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &CommandResult{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		r.logger.Debug("command failed", log.Str("cmd", line), log.Int("exit_code", result.ExitCode), log.Str("stderr", result.Stderr))
		return result, errors.Wrapf(errors.CodeToolFailed, "toolrunner.Run", err, "%s: %s", line, strings.TrimSpace(result.Stderr))
	}

	r.logger.Debug("command finished", log.Str("cmd", line), "duration", result.Duration)
	return result, nil
}

// CheckToolAvailability reports whether a tool is on PATH.
func CheckToolAvailability(toolName string) bool {
	_, err := exec.LookPath(toolName)
	return err == nil
}
