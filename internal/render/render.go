// Package render turns template documents into output files.
//
// Overview:
//   - Responsibility: Context fan-out, placeholder substitution and output post-processing
//   - Key Types: Renderer, OutputFile
//   - Concurrency Model: Renderer is immutable after construction; Render is safe for concurrent use
//   - Error Semantics: Substitution never fails; a destination escaping the project root is INVALID_ARGUMENT
//   - Performance Notes: One regexp pass per placeholder kind per output
//
// Usage:
//
//	r := render.New(cat, asm, req.Package())
//	files, err := r.Render(doc, text)
package render

import (
	"path"
	"strings"

	"go.eggybyte.com/foundry/internal/catalog"
	"go.eggybyte.com/foundry/internal/core/errors"
	"go.eggybyte.com/foundry/internal/layout"
	"go.eggybyte.com/foundry/internal/vars"
	"go.eggybyte.com/foundry/internal/walker"
)

// OutputFile is one file to be written, relative to the project root.
type OutputFile struct {
	Path       string
	Content    string
	Executable bool
	Template   string // corpus path of the originating document; empty for package markers
	Context    string // context the file was rendered for; empty unless fanned out
}

// Mode returns the permission bits the file should be written with.
func (o OutputFile) Mode() uint32 {
	if o.Executable {
		return 0o755
	}
	return 0o644
}

// Renderer renders documents for one generation request.
type Renderer struct {
	cat       *catalog.Catalog
	projector *layout.Projector
	asm       *vars.Assembly
	pkg       string
}

// New creates a renderer over an assembled environment.
//
// Parameters:
//   - cat: Reserved names, executable allowlist
//   - asm: Request-wide and per-context substitution values
//   - pkg: Sanitized package identifier
//
// Returns:
//   - *Renderer: Renderer instance
func New(cat *catalog.Catalog, asm *vars.Assembly, pkg string) *Renderer {
	return &Renderer{
		cat:       cat,
		projector: layout.NewProjector(cat),
		asm:       asm,
		pkg:       pkg,
	}
}

// Render produces the output files of one document. A document whose path
// carries the context token yields one file per context in request order;
// any other document yields exactly one file rendered with the base
// environment.
func (r *Renderer) Render(doc walker.Document, text string) ([]OutputFile, error) {
	if !strings.Contains(doc.Rel, catalog.ContextToken) {
		out, err := r.finish(doc, doc.Rel, text, r.asm.Base(), "")
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil
	}

	contexts := r.asm.Contexts()
	outs := make([]OutputFile, 0, len(contexts))
	for _, ctx := range contexts {
		rel := strings.ReplaceAll(doc.Rel, catalog.ContextToken, ctx)
		out, err := r.finish(doc, rel, text, r.asm.ForContext(ctx), ctx)
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}

func (r *Renderer) finish(doc walker.Document, rel, text string, env vars.Env, ctx string) (OutputFile, error) {
	dest := r.projector.Project(rel, r.pkg)
	if dest == "." || dest == ".." || strings.HasPrefix(dest, "../") || path.IsAbs(dest) {
		return OutputFile{}, errors.Newf(errors.CodeInvalidArgument, "template %q projects outside the project root: %q", doc.Source, dest)
	}

	content := RewriteLegacyImports(Substitute(text, env), r.pkg)
	dest = r.coerceExtension(dest, content)

	return OutputFile{
		Path:       dest,
		Content:    content,
		Executable: r.cat.IsExecutable(dest),
		Template:   doc.Source,
		Context:    ctx,
	}, nil
}

// coerceExtension appends the source extension to extensionless files in the
// package tree whose content reads like source.
func (r *Renderer) coerceExtension(dest, content string) string {
	if path.Ext(dest) != "" || !layout.UnderPackage(dest, r.pkg) || r.projector.IsReservedPath(dest, r.pkg) {
		return dest
	}
	if !LooksLikeSource(content) {
		return dest
	}
	return dest + catalog.SourceExt
}

// PackageMarkers lists the package marker files required for dest: one per
// directory from the package root down to dest's directory. Destinations
// outside the package tree need none.
func PackageMarkers(dest, pkg string) []string {
	if !layout.UnderPackage(dest, pkg) {
		return nil
	}
	root := layout.PackageRoot(pkg)
	markers := []string{path.Join(root, catalog.PackageMarker)}

	dir := root
	for _, seg := range strings.Split(strings.TrimPrefix(path.Dir(dest), root), "/") {
		if seg == "" {
			continue
		}
		dir = path.Join(dir, seg)
		markers = append(markers, path.Join(dir, catalog.PackageMarker))
	}
	return markers
}

// Marker returns an empty package marker output.
func Marker(p string) OutputFile {
	return OutputFile{Path: p}
}
