// Package scaffold orchestrates project generation.
//
// Overview:
//   - Responsibility: Run the template phases, write outputs, then bootstrap the environment
//   - Key Types: Generator, Options, Plan, Result
//   - Concurrency Model: Single goroutine; one Generate call per destination
//   - Error Semantics: PRECONDITION_FAILED before any write; NOT_FOUND for a missing document;
//     missing roots, output collisions and a missing migration anchor are warnings
//   - Performance Notes: All outputs are rendered in memory before the first write
//
// Usage:
//
//	gen := scaffold.New(scaffold.Options{Corpus: templates.Default(), Catalog: cat, Tools: runner})
//	res, err := gen.Generate(ctx, req, projectfs.New(osfs.New(dir), logger))
package scaffold

import (
	"io/fs"
	"time"

	"go.eggybyte.com/foundry/internal/catalog"
	"go.eggybyte.com/foundry/internal/core/errors"
	"go.eggybyte.com/foundry/internal/core/log"
	"go.eggybyte.com/foundry/internal/render"
	"go.eggybyte.com/foundry/internal/request"
	"go.eggybyte.com/foundry/internal/templates"
	"go.eggybyte.com/foundry/internal/toolrunner"
	"go.eggybyte.com/foundry/internal/vars"
	"go.eggybyte.com/foundry/internal/walker"
)

// Options configures a Generator.
type Options struct {
	Corpus  fs.FS                // template corpus; defaults to the embedded one
	Catalog *catalog.Catalog     // lookup tables; defaults to catalog.Default()
	Logger  log.Logger           // structured debug output; defaults to a no-op logger
	Clock   func() time.Time     // defaults to time.Now
	Tools   toolrunner.Commander // runs provisioning and migration commands in the project directory
	// ToolAvailable reports whether an executable is on PATH; defaults to toolrunner.CheckToolAvailability.
	ToolAvailable func(name string) bool
}

// Generator turns a request into a project tree.
type Generator struct {
	corpus fs.FS
	cat    *catalog.Catalog
	logger log.Logger
	clock  func() time.Time
	tools  toolrunner.Commander
	lookup func(name string) bool
}

// New creates a generator, filling unset options with defaults.
func New(opts Options) *Generator {
	g := &Generator{
		corpus: opts.Corpus,
		cat:    opts.Catalog,
		logger: opts.Logger,
		clock:  opts.Clock,
		tools:  opts.Tools,
		lookup: opts.ToolAvailable,
	}
	if g.corpus == nil {
		g.corpus = templates.Default()
	}
	if g.cat == nil {
		g.cat = catalog.Default()
	}
	if g.logger == nil {
		g.logger = log.Nop()
	}
	if g.clock == nil {
		g.clock = time.Now
	}
	if g.lookup == nil {
		g.lookup = toolrunner.CheckToolAvailability
	}
	return g
}

// Catalog returns the lookup tables the generator uses.
func (g *Generator) Catalog() *catalog.Catalog {
	return g.cat
}

// Collision records two templates projecting onto the same destination.
type Collision struct {
	Path     string
	Previous string
	Template string
}

// Plan is the full set of outputs for a request, in write order.
type Plan struct {
	Files      []render.OutputFile
	Warnings   []string
	Collisions []Collision
	Assembly   *vars.Assembly
}

type phase struct {
	name   string
	root   string
	filter walker.Filter
	deploy bool
}

func (g *Generator) phases(req *request.Request) []phase {
	arch := string(req.Architecture())
	orm := string(req.Persistence())
	db := string(req.Database())

	ps := []phase{
		{name: "common", root: templates.RootCommon},
		{name: "architecture", root: arch, filter: walker.Neutral()},
		{name: "technology", root: arch, filter: walker.Combo(orm, db)},
		{name: "persistence", root: templates.PersistenceRoot(orm), filter: walker.Persistence(db)},
	}
	if req.EmitDeployment() {
		ps = append(ps, phase{name: "deployment", root: templates.RootDeployment, deploy: true})
	}
	return ps
}

// Plan renders every output of a request in memory without touching the
// destination. Later outputs replace earlier ones on the same path; each
// replacement is reported as a collision and a warning.
//
// Parameters:
//   - req: Resolved generation request
//
// Returns:
//   - *Plan: Ordered outputs, package markers last
//   - error: NOT_FOUND for an unreadable document, INVALID_ARGUMENT for catalog gaps
func (g *Generator) Plan(req *request.Request) (*Plan, error) {
	asm, err := vars.Assemble(g.cat, req, g.clock())
	if err != nil {
		return nil, err
	}
	r := render.New(g.cat, asm, req.Package())

	plan := &Plan{Assembly: asm}
	index := make(map[string]int)
	add := func(out render.OutputFile) {
		if i, ok := index[out.Path]; ok {
			prev := plan.Files[i]
			plan.Collisions = append(plan.Collisions, Collision{Path: out.Path, Previous: prev.Template, Template: out.Template})
			plan.Warnings = append(plan.Warnings, "output "+out.Path+" from "+out.Template+" overwrites "+prev.Template)
			g.logger.Warn("output collision", log.Str("path", out.Path), log.Str("previous", prev.Template), log.Str("template", out.Template))
			plan.Files[i] = out
			return
		}
		index[out.Path] = len(plan.Files)
		plan.Files = append(plan.Files, out)
	}

	for _, ph := range g.phases(req) {
		docs, err := g.documents(ph, req)
		if errors.Is(err, walker.ErrRootMissing) {
			plan.Warnings = append(plan.Warnings, "template root missing: "+ph.root)
			g.logger.Warn("template root missing", log.Str("phase", ph.name), log.Str("root", ph.root))
			continue
		}
		if err != nil {
			return nil, err
		}

		for _, doc := range docs {
			text, err := fs.ReadFile(g.corpus, doc.Source)
			if err != nil {
				return nil, errors.Wrapf(errors.CodeNotFound, "scaffold.Plan", err, "template %s", doc.Source)
			}
			outs, err := r.Render(doc, string(text))
			if err != nil {
				return nil, err
			}
			for _, out := range outs {
				g.logger.Debug("template rendered", log.Str("template", doc.Source), log.Str("dest", out.Path), log.Str("context", out.Context))
				add(out)
			}
		}
	}

	for _, marker := range g.markers(plan.Files, req.Package(), index) {
		index[marker.Path] = len(plan.Files)
		plan.Files = append(plan.Files, marker)
	}
	return plan, nil
}

func (g *Generator) documents(ph phase, req *request.Request) ([]walker.Document, error) {
	if ph.deploy {
		return walker.Deployment(g.corpus, ph.root, string(req.Database()))
	}
	return walker.Walk(g.corpus, ph.root, ph.filter)
}

// markers lists the package markers the planned files need that no template
// already provides, in first-needed order.
func (g *Generator) markers(files []render.OutputFile, pkg string, planned map[string]int) []render.OutputFile {
	seen := make(map[string]bool)
	var out []render.OutputFile
	for _, f := range files {
		for _, p := range render.PackageMarkers(f.Path, pkg) {
			if _, ok := planned[p]; ok || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, render.Marker(p))
		}
	}
	return out
}
