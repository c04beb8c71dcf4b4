package scaffold

import (
	"context"
	"fmt"
	"io/fs"

	"go.eggybyte.com/foundry/internal/core/errors"
	"go.eggybyte.com/foundry/internal/core/log"
	"go.eggybyte.com/foundry/internal/migrate"
	"go.eggybyte.com/foundry/internal/projectfs"
	"go.eggybyte.com/foundry/internal/request"
	"go.eggybyte.com/foundry/internal/toolrunner"
	"go.eggybyte.com/foundry/internal/ui"
)

// RequirementsFile receives the frozen dependency list after provisioning.
const RequirementsFile = "requirements.txt"

// Result reports what Generate did.
type Result struct {
	Plan        *Plan
	Warnings    []string
	Provisioned bool
	Migration   *migrate.Result // nil when no migration tool ran
}

// Generate checks the destination, writes every planned output, then runs the
// optional bootstrap: environment provisioning, migration tool initialization
// and the migration environment patch.
//
// Parameters:
//   - ctx: Cancels external commands
//   - req: Resolved generation request
//   - pfs: Destination file system
//
// Returns:
//   - *Result: Written plan and warnings; partial on error
//   - error: PRECONDITION_FAILED before any write, or the first fatal failure
func (g *Generator) Generate(ctx context.Context, req *request.Request, pfs *projectfs.ProjectFS) (*Result, error) {
	if err := pfs.EnsureEmpty(); err != nil {
		return nil, err
	}

	steps := 2
	if req.Provision() {
		steps = 3
		if g.migrationTool(req) != "" {
			steps = 4
		}
	}

	ui.Step(1, steps, "Rendering templates (%s, %s, %s)", req.Architecture(), req.Persistence(), req.Database())
	plan, err := g.Plan(req)
	if err != nil {
		return nil, err
	}
	res := &Result{Plan: plan, Warnings: append([]string(nil), plan.Warnings...)}
	for _, w := range plan.Warnings {
		ui.Warning("%s", w)
	}

	ui.Step(2, steps, "Writing %d files", len(plan.Files))
	for _, f := range plan.Files {
		if err := pfs.WriteFile(f.Path, f.Content, fs.FileMode(f.Mode())); err != nil {
			return res, err
		}
	}

	if !req.Provision() {
		return res, nil
	}

	ui.Step(3, steps, "Provisioning environment")
	if err := g.provision(ctx, req, pfs); err != nil {
		return res, err
	}
	res.Provisioned = true

	if steps < 4 {
		return res, nil
	}
	ui.Step(4, steps, "Initializing migrations")
	mres, warning, err := g.migrations(ctx, req, pfs, plan)
	if err != nil {
		return res, err
	}
	res.Migration = mres
	if warning != "" {
		res.Warnings = append(res.Warnings, warning)
		ui.Warning("%s", warning)
	}
	return res, nil
}

func (g *Generator) provision(ctx context.Context, req *request.Request, pfs *projectfs.ProjectFS) error {
	if g.tools == nil {
		return errors.New(errors.CodeInvalidArgument, "provisioning requested without a command runner")
	}
	if !g.lookup(toolrunner.Interpreter) {
		return errors.Newf(errors.CodeToolFailed, "%s not found on PATH", toolrunner.Interpreter)
	}
	venv := toolrunner.NewVenv(g.tools)

	if err := venv.CreateEnvironment(ctx); err != nil {
		return err
	}
	deps := g.cat.DependenciesFor(string(req.Persistence()), string(req.Database()))
	g.logger.Info("installing dependencies", log.Int("count", len(deps)))
	if err := venv.Install(ctx, deps); err != nil {
		return err
	}
	frozen, err := venv.Freeze(ctx)
	if err != nil {
		return err
	}
	return pfs.WriteFile(RequirementsFile, frozen, 0o644)
}

// migrations runs the persistence technology's migration tool, if any, and
// patches its environment file. Patch problems come back as a warning.
func (g *Generator) migrations(ctx context.Context, req *request.Request, pfs *projectfs.ProjectFS, plan *Plan) (*migrate.Result, string, error) {
	tool, err := toolrunner.NewMigrationTool(g.migrationTool(req), g.tools)
	if err != nil || tool == nil {
		return nil, "", err
	}
	if err := tool.Init(ctx); err != nil {
		return nil, "", err
	}

	exists, err := pfs.FileExists(migrate.EnvFile)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		g.logger.Warn("migration environment not patched", log.Str("file", migrate.EnvFile), log.Str("reason", string(errors.CodeNotFound)))
		return &migrate.Result{}, fmt.Sprintf("%s not patched: %s was not created by %s", migrate.EnvFile, migrate.EnvFile, g.migrationTool(req)), nil
	}

	res, err := migrate.PatchFile(pfs, migrate.EnvFile, migrate.NewPlan(req.Package(), plan.Assembly))
	if errors.Fatal(err) {
		return nil, "", err
	}
	if err != nil {
		g.logger.Warn("migration environment not patched", log.Str("file", migrate.EnvFile), log.Str("reason", string(errors.CodeOf(err))))
		return &res, fmt.Sprintf("%s not patched: %v", migrate.EnvFile, err), nil
	}
	return &res, "", nil
}

func (g *Generator) migrationTool(req *request.Request) string {
	traits, _ := g.cat.Traits(string(req.Persistence()))
	return traits.MigrationTool
}
