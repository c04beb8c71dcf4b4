package scaffold

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.eggybyte.com/foundry/internal/core/errors"
	"go.eggybyte.com/foundry/internal/migrate"
	"go.eggybyte.com/foundry/internal/projectfs"
	"go.eggybyte.com/foundry/internal/request"
	"go.eggybyte.com/foundry/internal/testingx"
	"go.eggybyte.com/foundry/internal/toolrunner"
	"go.eggybyte.com/foundry/internal/ui"
)

var fixedClock = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

func TestMain(m *testing.M) {
	ui.SetOutput(io.Discard, io.Discard)
	os.Exit(m.Run())
}

func newRequest(t *testing.T, opts request.Options) *request.Request {
	t.Helper()
	if opts.ProjectName == "" {
		opts.ProjectName = "shop-api"
	}
	if opts.Package == "" {
		opts.Package = "shop"
	}
	req, err := request.New(opts)
	require.NoError(t, err)
	return req
}

func paths(plan *Plan) []string {
	out := make([]string, len(plan.Files))
	for i, f := range plan.Files {
		out[i] = f.Path
	}
	return out
}

func fileByPath(t *testing.T, plan *Plan, p string) string {
	t.Helper()
	for _, f := range plan.Files {
		if f.Path == p {
			return f.Content
		}
	}
	t.Fatalf("%s not planned; have %v", p, paths(plan))
	return ""
}

func TestPlanDefaultCorpusHybrid(t *testing.T) {
	gen := New(Options{Clock: fixedClock})
	req := newRequest(t, request.Options{Contexts: []string{"customer,order"}, EmitDeployment: true})

	plan, err := gen.Plan(req)
	require.NoError(t, err)
	assert.Empty(t, plan.Warnings)

	for _, want := range []string{
		"LICENSE",
		"README.md",
		"Dockerfile",
		"docker-compose.yml",
		"scripts/dev.sh",
		"tests/test_customer_entities.py",
		"tests/test_order_entities.py",
		"src/shop/main.py",
		"src/shop/core/config.py",
		"src/shop/core/logging.py",
		"src/shop/core/db.py",
		"src/shop/core/dialect.py",
		"src/shop/api/health.py",
		"src/shop/api/routers/order.py",
		"src/shop/domain/customer/entities.py",
		"src/shop/adapters/order/repository_impl.py",
		"src/shop/application/unit_of_work.py",
		"src/shop/__init__.py",
		"src/shop/domain/__init__.py",
		"src/shop/domain/order/__init__.py",
	} {
		assert.Contains(t, paths(plan), want)
	}
	assert.NotContains(t, paths(plan), "tests/__init__.py")

	uow := fileByPath(t, plan, "src/shop/application/unit_of_work.py")
	assert.Contains(t, uow, "from shop.adapters.customer.repository_impl import SqlAlchemyCustomerRepository")
	assert.Contains(t, uow, "from shop.adapters.order.repository_impl import SqlAlchemyOrderRepository")
	assert.Contains(t, fileByPath(t, plan, "LICENSE"), "Copyright (c) 2026 shop-api")
}

func TestPlanPhaseOrder(t *testing.T) {
	gen := New(Options{Clock: fixedClock})
	req := newRequest(t, request.Options{EmitDeployment: true})

	plan, err := gen.Plan(req)
	require.NoError(t, err)

	index := make(map[string]int)
	for i, f := range plan.Files {
		index[f.Path] = i
	}
	ordered := []string{
		"LICENSE",                              // common
		"src/shop/main.py",                     // architecture
		"src/shop/application/unit_of_work.py", // technology
		"src/shop/core/db.py",                  // persistence
		"docker-compose.yml",                   // deployment
		"Dockerfile",
		"src/shop/__init__.py", // markers
	}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, index[ordered[i-1]], index[ordered[i]], "%s before %s", ordered[i-1], ordered[i])
	}
}

func TestPlanEveryCombination(t *testing.T) {
	gen := New(Options{Clock: fixedClock})

	for _, arch := range request.Architectures {
		for _, orm := range request.Persistences {
			for _, db := range request.Databases {
				t.Run(fmt.Sprintf("%s/%s/%s", arch, orm, db), func(t *testing.T) {
					req := newRequest(t, request.Options{
						Architecture:   arch,
						Persistence:    orm,
						Database:       db,
						Contexts:       []string{"customer", "order_item"},
						EmitDeployment: true,
					})
					plan, err := gen.Plan(req)
					require.NoError(t, err)
					assert.Empty(t, plan.Warnings)
					assert.Empty(t, plan.Collisions)

					keys := plan.Assembly.ForContext("order_item").Keys()
					for _, f := range plan.Files {
						assert.NotContains(t, f.Path, "${")
						assert.False(t, strings.HasSuffix(f.Path, ".tmpl"), f.Path)
						for _, key := range keys {
							re := regexp.MustCompile(`\$(?:` + key + `\b|\{` + key + `\})`)
							assert.False(t, re.MatchString(f.Content), "%s leaves $%s unresolved", f.Path, key)
						}
						assert.NotRegexp(t, `(?m)^\s*(from|import)\s+app\b`, f.Content, f.Path)
					}
				})
			}
		}
	}
}

func TestPlanWithoutDeployment(t *testing.T) {
	gen := New(Options{Clock: fixedClock})
	req := newRequest(t, request.Options{})

	plan, err := gen.Plan(req)
	require.NoError(t, err)
	assert.NotContains(t, paths(plan), "Dockerfile")
	assert.NotContains(t, paths(plan), "docker-compose.yml")
}

func TestPlanPeeweeDDD(t *testing.T) {
	gen := New(Options{Clock: fixedClock})
	req := newRequest(t, request.Options{
		Architecture: request.ArchDDD,
		Persistence:  request.PersistencePeewee,
		Database:     request.DatabaseMySQL,
		Contexts:     []string{"order"},
	})

	plan, err := gen.Plan(req)
	require.NoError(t, err)
	assert.Contains(t, paths(plan), "src/shop/infrastructure/order/peewee_repository.py")
	assert.Contains(t, paths(plan), "src/shop/domain/order/entities.py")
	assert.NotContains(t, paths(plan), "src/shop/infrastructure/order/repository_impl.py")
}

func TestPlanDeterministic(t *testing.T) {
	gen := New(Options{Clock: fixedClock})
	req := newRequest(t, request.Options{Contexts: []string{"a,b,c"}, EmitDeployment: true})

	first, err := gen.Plan(req)
	require.NoError(t, err)
	second, err := gen.Plan(req)
	require.NoError(t, err)
	assert.Equal(t, first.Files, second.Files)
}

func miniCorpus() fstest.MapFS {
	return fstest.MapFS{
		"common/README.md.tmpl":                          {Data: []byte("# $project_name\n")},
		"common/LICENSE.tmpl":                            {Data: []byte("MIT $year\n")},
		"hybrid/README.md.tmpl":                          {Data: []byte("# $project_name ($arch)\n")},
		"hybrid/app/main.py.tmpl":                        {Data: []byte("from app.api import router\n")},
		"hybrid/app/__init__.py.tmpl":                    {Data: []byte("\"\"\"$package\"\"\"\n")},
		"hybrid/technology/sqlalchemy/_common/x.py.tmpl": {Data: []byte("x = 1\n")},
	}
}

func TestPlanMissingRootWarns(t *testing.T) {
	logger := testingx.NewRecordingLogger(t)
	gen := New(Options{Corpus: miniCorpus(), Clock: fixedClock, Logger: logger})
	req := newRequest(t, request.Options{})

	plan, err := gen.Plan(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"template root missing: orm/sqlalchemy"}, plan.Warnings[len(plan.Warnings)-1:])

	entry := logger.AssertLogged("WARN", "template root missing")
	assert.Equal(t, "persistence", entry.Fields["phase"])
}

func TestPlanCollisionLastWriteWins(t *testing.T) {
	logger := testingx.NewRecordingLogger(t)
	gen := New(Options{Corpus: miniCorpus(), Clock: fixedClock, Logger: logger})
	req := newRequest(t, request.Options{})

	plan, err := gen.Plan(req)
	require.NoError(t, err)

	require.Len(t, plan.Collisions, 1)
	assert.Equal(t, Collision{
		Path:     "README.md",
		Previous: "common/README.md.tmpl",
		Template: "hybrid/README.md.tmpl",
	}, plan.Collisions[0])
	assert.Equal(t, "# shop-api (hybrid)\n", fileByPath(t, plan, "README.md"))

	count := 0
	for _, p := range paths(plan) {
		if p == "README.md" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Contains(t, plan.Warnings[0], "hybrid/README.md.tmpl")
	assert.Contains(t, plan.Warnings[0], "common/README.md.tmpl")

	entry := logger.AssertLogged("WARN", "output collision")
	assert.Equal(t, "README.md", entry.Fields["path"])
}

func TestPlanKeepsTemplateMarkers(t *testing.T) {
	gen := New(Options{Corpus: miniCorpus(), Clock: fixedClock})
	req := newRequest(t, request.Options{})

	plan, err := gen.Plan(req)
	require.NoError(t, err)
	assert.Equal(t, "\"\"\"shop\"\"\"\n", fileByPath(t, plan, "src/shop/__init__.py"))
	assert.Equal(t, "from shop.api import router\n", fileByPath(t, plan, "src/shop/main.py"))
}

func TestPlanMissingDeploymentDocument(t *testing.T) {
	corpus := miniCorpus()
	corpus["docker/Dockerfile.tmpl"] = &fstest.MapFile{Data: []byte("FROM python\n")}
	gen := New(Options{Corpus: corpus, Clock: fixedClock})
	req := newRequest(t, request.Options{EmitDeployment: true})

	_, err := gen.Plan(req)
	testingx.AssertCode(t, err, errors.CodeNotFound)
}

type fakeTools struct {
	pfs   *projectfs.ProjectFS
	calls []string
	env   string
}

func (f *fakeTools) Run(_ context.Context, name string, args ...string) (*toolrunner.CommandResult, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.calls = append(f.calls, line)
	switch {
	case strings.HasSuffix(line, "freeze"):
		return &toolrunner.CommandResult{Stdout: "fastapi==0.110.0\n"}, nil
	case strings.Contains(line, "alembic init"):
		if f.env != "" {
			if err := f.pfs.WriteFile(migrate.EnvFile, f.env, 0o644); err != nil {
				return nil, err
			}
		}
	}
	return &toolrunner.CommandResult{}, nil
}

func onPath(string) bool { return true }

const alembicEnv = `from logging.config import fileConfig

from alembic import context

config = context.config
target_metadata = None
`

func TestGenerateWritesTree(t *testing.T) {
	pfs := projectfs.New(memfs.New(), nil)
	gen := New(Options{Clock: fixedClock})
	req := newRequest(t, request.Options{EmitDeployment: true})

	res, err := gen.Generate(context.Background(), req, pfs)
	require.NoError(t, err)
	assert.False(t, res.Provisioned)
	assert.Nil(t, res.Migration)

	files, err := pfs.ListFiles()
	require.NoError(t, err)
	assert.ElementsMatch(t, paths(res.Plan), files)

	mode, err := pfs.Mode("scripts/dev.sh")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), mode.Perm())
	mode, err = pfs.Mode("README.md")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), mode.Perm())
}

func TestGenerateRequiresEmptyDestination(t *testing.T) {
	pfs := projectfs.New(memfs.New(), nil)
	require.NoError(t, pfs.WriteFile("keep.txt", "mine", 0o644))
	gen := New(Options{Clock: fixedClock})

	_, err := gen.Generate(context.Background(), newRequest(t, request.Options{}), pfs)
	require.Error(t, err)
	assert.Equal(t, errors.CodePreconditionFailed, errors.CodeOf(err))

	files, err := pfs.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.txt"}, files)
}

func TestGenerateProvisionsAndPatches(t *testing.T) {
	pfs := projectfs.New(memfs.New(), nil)
	tools := &fakeTools{pfs: pfs, env: alembicEnv}
	gen := New(Options{Clock: fixedClock, Tools: tools, ToolAvailable: onPath})
	req := newRequest(t, request.Options{Contexts: []string{"order"}, Provision: true})

	res, err := gen.Generate(context.Background(), req, pfs)
	require.NoError(t, err)
	assert.True(t, res.Provisioned)
	require.NotNil(t, res.Migration)
	assert.True(t, res.Migration.Changed)
	assert.Empty(t, res.Warnings)

	frozen, err := pfs.ReadFile(RequirementsFile)
	require.NoError(t, err)
	assert.Equal(t, "fastapi==0.110.0\n", frozen)

	env, err := pfs.ReadFile(migrate.EnvFile)
	require.NoError(t, err)
	assert.Contains(t, env, migrate.Sentinel)
	assert.Contains(t, env, "from shop.adapters.order import models as order_models  # noqa: F401")
	assert.NotContains(t, env, migrate.Placeholder)

	assert.Equal(t, "python3 -m venv .venv", tools.calls[0])
	assert.Equal(t, toolrunner.EnvBinary("python")+" -m alembic init -t async alembic", tools.calls[len(tools.calls)-1])
}

func TestGenerateMissingEnvironmentFileWarns(t *testing.T) {
	pfs := projectfs.New(memfs.New(), nil)
	tools := &fakeTools{pfs: pfs}
	gen := New(Options{Clock: fixedClock, Tools: tools, ToolAvailable: onPath})
	req := newRequest(t, request.Options{Provision: true})

	res, err := gen.Generate(context.Background(), req, pfs)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], migrate.EnvFile)
}

func TestGenerateMissingAnchorWarns(t *testing.T) {
	pfs := projectfs.New(memfs.New(), nil)
	tools := &fakeTools{pfs: pfs, env: "config = context.config\ntarget_metadata = None\n"}
	gen := New(Options{Clock: fixedClock, Tools: tools, ToolAvailable: onPath})
	req := newRequest(t, request.Options{Provision: true})

	res, err := gen.Generate(context.Background(), req, pfs)
	require.NoError(t, err)
	require.NotNil(t, res.Migration)
	assert.False(t, res.Migration.AnchorFound)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], string(errors.CodeMissingAnchor))

	env, err := pfs.ReadFile(migrate.EnvFile)
	require.NoError(t, err)
	assert.Equal(t, "config = context.config\ntarget_metadata = None\n", env)
}

func TestGenerateMissingInterpreter(t *testing.T) {
	pfs := projectfs.New(memfs.New(), nil)
	tools := &fakeTools{pfs: pfs}
	var looked []string
	gen := New(Options{Clock: fixedClock, Tools: tools, ToolAvailable: func(name string) bool {
		looked = append(looked, name)
		return false
	}})

	_, err := gen.Generate(context.Background(), newRequest(t, request.Options{Provision: true}), pfs)
	testingx.AssertCode(t, err, errors.CodeToolFailed)
	assert.Equal(t, []string{toolrunner.Interpreter}, looked)
	assert.Empty(t, tools.calls)
}

func TestGeneratePeeweeSkipsMigrations(t *testing.T) {
	pfs := projectfs.New(memfs.New(), nil)
	tools := &fakeTools{pfs: pfs, env: alembicEnv}
	gen := New(Options{Clock: fixedClock, Tools: tools, ToolAvailable: onPath})
	req := newRequest(t, request.Options{Persistence: request.PersistencePeewee, Provision: true})

	res, err := gen.Generate(context.Background(), req, pfs)
	require.NoError(t, err)
	assert.True(t, res.Provisioned)
	assert.Nil(t, res.Migration)
	for _, c := range tools.calls {
		assert.NotContains(t, c, "alembic")
	}
	exists, err := pfs.FileExists(migrate.EnvFile)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenerateProvisionWithoutTools(t *testing.T) {
	pfs := projectfs.New(memfs.New(), nil)
	gen := New(Options{Clock: fixedClock})

	_, err := gen.Generate(context.Background(), newRequest(t, request.Options{Provision: true}), pfs)
	assert.Equal(t, errors.CodeInvalidArgument, errors.CodeOf(err))
}

func TestNextSteps(t *testing.T) {
	gen := New(Options{})

	steps := gen.NextSteps(newRequest(t, request.Options{EmitDeployment: true}), true)
	assert.Equal(t, []string{
		"cd shop-api",
		"cp .env.example .env",
		"./scripts/migrate.sh",
		"./scripts/dev.sh",
		"docker compose up -d --build",
		"open http://localhost:8000/docs",
	}, steps)

	steps = gen.NextSteps(newRequest(t, request.Options{Persistence: request.PersistencePeewee}), false)
	assert.Contains(t, steps[2], "python3 -m venv .venv")
	assert.Contains(t, steps[2], "peewee")
	assert.NotContains(t, steps, "./scripts/migrate.sh")
	assert.NotContains(t, steps, "docker compose up -d --build")
}

func TestSummaryDryRunListsFiles(t *testing.T) {
	gen := New(Options{Clock: fixedClock})
	req := newRequest(t, request.Options{})
	plan, err := gen.Plan(req)
	require.NoError(t, err)

	s := gen.Summary(req, plan, false, true)
	assert.Contains(t, s.Title, "dry run")
	assert.Len(t, s.Files, len(plan.Files))
	assert.Contains(t, s.Files, "scripts/dev.sh (executable)")
	assert.Empty(t, s.NextSteps)
}
