// Package layout projects template paths onto the generated project tree.
//
// Overview:
//   - Responsibility: Map a template's relative path to its destination path
//   - Key Types: Projector, Rule
//   - Concurrency Model: Projector is immutable and safe for concurrent use
//   - Error Semantics: None; projection is total
//   - Performance Notes: A handful of string operations per path, no I/O
//
// Usage:
//
//	p := layout.NewProjector(catalog.Default())
//	dest := p.Project("app/domain/order/entities.tmpl", "shop") // src/shop/domain/order/entities
package layout

import (
	"path"
	"strings"

	"go.eggybyte.com/foundry/internal/catalog"
)

// Rule is one (predicate, transform) pair of the projection table.
// Match and Apply receive the marker-stripped path split into segments.
type Rule struct {
	Name  string
	Match func(segs []string, pkg string) bool
	Apply func(segs []string, pkg string) []string
}

// Projector maps template paths to destination paths. Rules are evaluated in
// order and the first match wins.
type Projector struct {
	cat   *catalog.Catalog
	rules []Rule
}

// NewProjector builds the projector over the catalog's reserved names.
func NewProjector(cat *catalog.Catalog) *Projector {
	p := &Projector{cat: cat}
	src := catalog.SourceRoot
	legacy := catalog.LegacyPackage

	p.rules = []Rule{
		{
			Name: "legacy-src-app",
			Match: func(segs []string, _ string) bool {
				return len(segs) > 2 && segs[0] == src && segs[1] == legacy
			},
			Apply: func(segs []string, pkg string) []string {
				return join([]string{src, pkg}, segs[2:])
			},
		},
		{
			Name: "bare-app",
			Match: func(segs []string, _ string) bool {
				return len(segs) > 1 && segs[0] == legacy
			},
			Apply: func(segs []string, pkg string) []string {
				return join([]string{src, pkg}, segs[1:])
			},
		},
		{
			Name: "foreign-src",
			Match: func(segs []string, pkg string) bool {
				return len(segs) > 1 && segs[0] == src && segs[1] != pkg
			},
			Apply: func(segs []string, pkg string) []string {
				return join([]string{src, pkg}, segs[1:])
			},
		},
		{
			Name: "reserved",
			Match: func(segs []string, _ string) bool {
				return p.cat.IsReserved(segs[0]) || p.cat.IsReserved(segs[len(segs)-1])
			},
			Apply: func(segs []string, _ string) []string {
				return segs
			},
		},
		{
			Name:  "nest",
			Match: func([]string, string) bool { return true },
			Apply: func(segs []string, pkg string) []string {
				return join([]string{src, pkg}, segs)
			},
		},
	}
	return p
}

// Rules returns the projection table in evaluation order.
func (p *Projector) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

// Project strips the template marker and applies the first matching rule.
func (p *Projector) Project(rel, pkg string) string {
	dest, _ := p.Explain(rel, pkg)
	return dest
}

// Explain is Project that also reports the name of the rule that fired.
func (p *Projector) Explain(rel, pkg string) (string, string) {
	segs := strings.Split(path.Clean(StripMarker(rel)), "/")
	for _, r := range p.rules {
		if r.Match(segs, pkg) {
			return strings.Join(r.Apply(segs, pkg), "/"), r.Name
		}
	}
	return strings.Join(segs, "/"), ""
}

// IsReservedPath reports whether a destination carries a reserved name. Inside
// the package tree only the final segment counts, since the source root is
// itself reserved.
func (p *Projector) IsReservedPath(dest, pkg string) bool {
	segs := strings.Split(dest, "/")
	if p.cat.IsReserved(segs[len(segs)-1]) {
		return true
	}
	return !UnderPackage(dest, pkg) && p.cat.IsReserved(segs[0])
}

// PackageRoot returns the package-rooted source directory, e.g. "src/shop".
func PackageRoot(pkg string) string {
	return catalog.SourceRoot + "/" + pkg
}

// UnderPackage reports whether dest lies strictly inside the package-rooted source tree.
func UnderPackage(dest, pkg string) bool {
	return strings.HasPrefix(dest, PackageRoot(pkg)+"/")
}

// StripMarker removes the template marker suffix, if present.
func StripMarker(rel string) string {
	return strings.TrimSuffix(rel, catalog.TemplateSuffix)
}

func join(prefix, rest []string) []string {
	out := make([]string, 0, len(prefix)+len(rest))
	out = append(out, prefix...)
	return append(out, rest...)
}
