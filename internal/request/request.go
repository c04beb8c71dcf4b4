// Package request defines the generation request and its input normalization.
//
// Overview:
//   - Responsibility: Parse caller input into an immutable, validated GenerationRequest
//   - Key Types: Request, Architecture, Persistence, Database, Options
//   - Concurrency Model: Request is immutable after New and safe to share
//   - Error Semantics: New returns INVALID_ARGUMENT errors; NormalizeContexts never fails
//   - Performance Notes: Linear in the number of raw context tokens
//
// Usage:
//
//	req, err := request.New(request.Options{
//	    ProjectName: "shop-api",
//	    Contexts:    []string{"customer,order"},
//	})
package request

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"go.eggybyte.com/foundry/internal/catalog"
	"go.eggybyte.com/foundry/internal/core/errors"
)

var contextPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Options is the raw caller input. Zero values select the defaults.
type Options struct {
	ProjectName    string
	Package        string
	APIPrefix      string
	Architecture   Architecture
	Persistence    Persistence
	Database       Database
	Contexts       []string
	EmitDeployment bool
	Provision      bool
}

// Request is the resolved generation request. It is never mutated after New.
type Request struct {
	projectName    string
	pkg            string
	apiPrefix      string
	arch           Architecture
	persistence    Persistence
	db             Database
	contexts       []string
	emitDeployment bool
	provision      bool
}

type validated struct {
	ProjectName string   `validate:"required,excludesall=/\\"`
	APIPrefix   string   `validate:"required,startswith=/"`
	Arch        string   `validate:"oneof=ddd hexagonal mvc hybrid"`
	Persistence string   `validate:"oneof=sqlalchemy peewee"`
	Database    string   `validate:"oneof=postgresql mysql"`
	Contexts    []string `validate:"min=1,unique,dive,required"`
}

// New resolves defaults, normalizes contexts, corrects the package identifier,
// and validates the result.
func New(opts Options) (*Request, error) {
	r := &Request{
		projectName:    strings.TrimSpace(opts.ProjectName),
		pkg:            SanitizePackage(opts.Package),
		apiPrefix:      opts.APIPrefix,
		arch:           opts.Architecture,
		persistence:    opts.Persistence,
		db:             opts.Database,
		contexts:       NormalizeContexts(opts.Contexts),
		emitDeployment: opts.EmitDeployment,
		provision:      opts.Provision,
	}
	if r.apiPrefix == "" {
		r.apiPrefix = "/api"
	}
	if r.arch == "" {
		r.arch = ArchHybrid
	}
	if r.persistence == "" {
		r.persistence = PersistenceSQLAlchemy
	}
	if r.db == "" {
		r.db = DatabasePostgreSQL
	}

	if err := validator.New().Struct(validated{
		ProjectName: r.projectName,
		APIPrefix:   r.apiPrefix,
		Arch:        string(r.arch),
		Persistence: string(r.persistence),
		Database:    string(r.db),
		Contexts:    r.contexts,
	}); err != nil {
		return nil, errors.Wrapf(errors.CodeInvalidArgument, "request.New", err, "invalid generation request")
	}
	for _, ctx := range r.contexts {
		if !contextPattern.MatchString(ctx) {
			return nil, errors.Newf(errors.CodeInvalidArgument,
				"context %q must contain only lowercase letters, digits and underscores", ctx)
		}
	}
	return r, nil
}

// NormalizeContexts turns raw context tokens into an ordered, duplicate-free list.
// Each token may itself be a comma-separated list. An empty result yields the
// default context.
func NormalizeContexts(raw []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, token := range raw {
		for _, part := range strings.Split(token, ",") {
			name := strings.ToLower(strings.TrimSpace(part))
			if name == "" {
				continue
			}
			name = strings.Join(strings.Fields(name), "_")
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return []string{catalog.DefaultContext}
	}
	return out
}

// SanitizePackage corrects a package identifier to [A-Za-z_][A-Za-z0-9_]*.
// Invalid characters become underscores and a leading digit gets an underscore prefix.
func SanitizePackage(pkg string) string {
	pkg = strings.TrimSpace(pkg)
	if pkg == "" {
		return catalog.DefaultPackage
	}
	var b strings.Builder
	for _, r := range pkg {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	out := b.String()
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

// ProjectName returns the project (directory) name.
func (r *Request) ProjectName() string { return r.projectName }

// Package returns the corrected package identifier.
func (r *Request) Package() string { return r.pkg }

// APIPrefix returns the HTTP route prefix.
func (r *Request) APIPrefix() string { return r.apiPrefix }

// Architecture returns the architecture variant.
func (r *Request) Architecture() Architecture { return r.arch }

// Persistence returns the persistence technology.
func (r *Request) Persistence() Persistence { return r.persistence }

// Database returns the database variant.
func (r *Request) Database() Database { return r.db }

// Contexts returns a copy of the ordered context names.
func (r *Request) Contexts() []string {
	return append([]string(nil), r.contexts...)
}

// EmitDeployment reports whether deployment files are generated.
func (r *Request) EmitDeployment() bool { return r.emitDeployment }

// Provision reports whether the environment provisioner runs after rendering.
func (r *Request) Provision() bool { return r.provision }

// String implements fmt.Stringer.
func (r *Request) String() string {
	return fmt.Sprintf("%s (package=%s arch=%s orm=%s db=%s contexts=%s)",
		r.projectName, r.pkg, r.arch, r.persistence, r.db, strings.Join(r.contexts, ","))
}
