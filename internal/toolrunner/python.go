package toolrunner

import (
	"context"
	"path/filepath"
	"runtime"

	"go.eggybyte.com/foundry/internal/core/errors"
)

// EnvironmentDir is the virtual environment directory inside the project.
const EnvironmentDir = ".venv"

// Provisioner creates an isolated environment and installs dependencies into it.
type Provisioner interface {
	CreateEnvironment(ctx context.Context) error
	Install(ctx context.Context, deps []string) error
	Freeze(ctx context.Context) (string, error)
}

// MigrationTool initializes the migration tool's scaffolding.
type MigrationTool interface {
	Init(ctx context.Context) error
}

// Interpreter bootstraps the virtual environment.
const Interpreter = "python3"

// Venv provisions a Python virtual environment with pip.
type Venv struct {
	cmd Commander
}

// NewVenv creates a provisioner that bootstraps with Interpreter.
func NewVenv(cmd Commander) *Venv {
	return &Venv{cmd: cmd}
}

// CreateEnvironment runs "python3 -m venv .venv".
func (v *Venv) CreateEnvironment(ctx context.Context) error {
	_, err := v.cmd.Run(ctx, Interpreter, "-m", "venv", EnvironmentDir)
	return err
}

// Install upgrades pip, then installs deps in one call.
func (v *Venv) Install(ctx context.Context, deps []string) error {
	if _, err := v.cmd.Run(ctx, EnvBinary("pip"), "install", "-U", "pip"); err != nil {
		return err
	}
	if len(deps) == 0 {
		return nil
	}
	args := append([]string{"install", "-U"}, deps...)
	_, err := v.cmd.Run(ctx, EnvBinary("pip"), args...)
	return err
}

// Freeze returns the "pip freeze" listing of the environment.
func (v *Venv) Freeze(ctx context.Context) (string, error) {
	res, err := v.cmd.Run(ctx, EnvBinary("pip"), "freeze")
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Alembic initializes the async alembic template inside the environment.
type Alembic struct {
	cmd Commander
}

// NewAlembic creates the migration tool initializer.
func NewAlembic(cmd Commander) *Alembic {
	return &Alembic{cmd: cmd}
}

// Init runs "alembic init -t async alembic" with the environment's interpreter.
func (a *Alembic) Init(ctx context.Context) error {
	_, err := a.cmd.Run(ctx, EnvBinary("python"), "-m", "alembic", "init", "-t", "async", "alembic")
	return err
}

// NewMigrationTool returns the initializer for a catalog migration tool name,
// or nil when the persistence technology has none.
func NewMigrationTool(name string, cmd Commander) (MigrationTool, error) {
	switch name {
	case "":
		return nil, nil
	case "alembic":
		return NewAlembic(cmd), nil
	default:
		return nil, errors.Newf(errors.CodeInvalidArgument, "unsupported migration tool %q", name)
	}
}

// EnvBinary returns the path of a binary inside the environment, relative to
// the project directory.
func EnvBinary(name string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(EnvironmentDir, "Scripts", name+".exe")
	}
	return filepath.Join(EnvironmentDir, "bin", name)
}
