package main

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"go.eggybyte.com/foundry/internal/catalog"
	"go.eggybyte.com/foundry/internal/core/log"
	"go.eggybyte.com/foundry/internal/projectfs"
	"go.eggybyte.com/foundry/internal/request"
	"go.eggybyte.com/foundry/internal/scaffold"
	"go.eggybyte.com/foundry/internal/templates"
	"go.eggybyte.com/foundry/internal/toolrunner"
	"go.eggybyte.com/foundry/internal/ui"
)

// newCmd represents the new command.
var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Generate a new FastAPI project",
	Long: `Generate a new FastAPI project in ./<name>.

The destination must be missing or empty. The command renders:
- Shared files: README, LICENSE, pyproject, scripts, tests
- The chosen source layout with one module set per bounded context
- Persistence adapters and database wiring
- Docker files unless --no-docker is given

With --venv it also creates .venv, installs dependencies, writes
requirements.txt, and initializes Alembic for SQLAlchemy projects.

Examples:
  foundry new shop-api
  foundry new shop-api --module shop --context customer,order --arch ddd
  foundry new inventory --orm peewee --db mysql --no-docker
  foundry new shop-api --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

var newFlags struct {
	module       string
	apiPrefix    string
	contexts     []string
	arch         request.Architecture
	orm          request.Persistence
	db           request.Database
	venv         bool
	noDocker     bool
	dryRun       bool
	templatesDir string
	catalogFile  string
}

func init() {
	rootCmd.AddCommand(newCmd)

	newFlags.arch = request.ArchHybrid
	newFlags.orm = request.PersistenceSQLAlchemy
	newFlags.db = request.DatabasePostgreSQL

	f := newCmd.Flags()
	f.StringVar(&newFlags.module, "module", "", "Python package name (default \"app\")")
	f.StringVar(&newFlags.apiPrefix, "api-prefix", "/api", "HTTP route prefix")
	f.StringArrayVar(&newFlags.contexts, "context", nil, "Bounded context; repeatable, comma-separated lists allowed")
	f.Var(&newFlags.arch, "arch", "Source layout: "+strings.Join(catalog.Default().Architectures(), ", "))
	f.Var(&newFlags.orm, "orm", "Persistence technology: sqlalchemy, peewee")
	f.Var(&newFlags.db, "db", "Database: postgresql, mysql")
	f.BoolVar(&newFlags.venv, "venv", false, "Create .venv, install dependencies and initialize migrations")
	f.BoolVar(&newFlags.noDocker, "no-docker", false, "Skip Dockerfile and docker-compose.yml")
	f.BoolVar(&newFlags.dryRun, "dry-run", false, "List the planned files without writing anything")
	f.StringVar(&newFlags.templatesDir, "templates", "", "Template directory to use instead of the embedded corpus")
	f.StringVar(&newFlags.catalogFile, "catalog", "", "Catalog YAML file merged over the built-in tables")
}

// runNew executes the new command.
//
// Parameters:
//   - cmd: Cobra command
//   - args: Project name
//
// Returns:
//   - error: PRECONDITION_FAILED for a non-empty destination, or the first fatal failure
func runNew(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	req, err := request.New(request.Options{
		ProjectName:    args[0],
		Package:        newFlags.module,
		APIPrefix:      newFlags.apiPrefix,
		Architecture:   newFlags.arch,
		Persistence:    newFlags.orm,
		Database:       newFlags.db,
		Contexts:       newFlags.contexts,
		EmitDeployment: !newFlags.noDocker,
		Provision:      newFlags.venv,
	})
	if err != nil {
		return err
	}
	logger.Debug("request resolved", log.Str("request", req.String()))

	cat, err := loadCatalog(newFlags.catalogFile)
	if err != nil {
		return err
	}
	corpus, err := loadCorpus(newFlags.templatesDir)
	if err != nil {
		return err
	}

	dest, err := filepath.Abs(req.ProjectName())
	if err != nil {
		return err
	}
	gen := scaffold.New(scaffold.Options{
		Corpus:  corpus,
		Catalog: cat,
		Logger:  logger,
		Tools:   toolrunner.NewRunner(dest, logger),
	})

	if newFlags.dryRun {
		plan, err := gen.Plan(req)
		if err != nil {
			return err
		}
		for _, w := range plan.Warnings {
			ui.Warning("%s", w)
		}
		ui.PrintSummary(gen.Summary(req, plan, false, true))
		return nil
	}

	ui.Info("Creating %s in %s", req.ProjectName(), dest)
	res, err := gen.Generate(cmd.Context(), req, projectfs.New(osfs.New(dest), logger))
	if err != nil {
		return err
	}
	ui.PrintSummary(gen.Summary(req, res.Plan, res.Provisioned, false))
	return nil
}

// loadCorpus returns the embedded corpus, or a template directory on disk.
func loadCorpus(dir string) (fs.FS, error) {
	if dir == "" {
		return templates.Default(), nil
	}
	return templates.Dir(dir)
}
