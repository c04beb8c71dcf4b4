package vars

import (
	"strconv"
	"strings"
	"time"

	"go.eggybyte.com/foundry/internal/catalog"
	"go.eggybyte.com/foundry/internal/core/errors"
	"go.eggybyte.com/foundry/internal/request"
)

// Scalar token names.
const (
	KeyProjectName   = "project_name"
	KeyModuleName    = "module_name"
	KeyPackage       = "package"
	KeyAPIPrefix     = "api_prefix"
	KeyArch          = "arch"
	KeyORM           = "orm"
	KeyDB            = "db"
	KeyDBURL         = "db_url"
	KeyYear          = "year"
	KeyDate          = "date"
	KeyTimestamp     = "timestamp"
	KeyContexts      = "contexts"
	KeyContextCount  = "context_count"
	KeyContext       = "context"
	KeyContextCap    = "ContextCap"
	KeyContextPlural = "context_plural"
	KeyDomainModule  = "domain_module"
	KeyAdapterModule = "adapter_module"
	KeyModelsModule  = "models_module"
)

// Assembly is the request-wide environment plus the per-context records it was built from.
type Assembly struct {
	base    Env
	records []Record
	style   Style
}

// Assemble builds the substitution environment for a request. It performs no I/O
// and the same inputs always yield byte-identical values.
//
// Parameters:
//   - cat: Lookup tables (layouts, persistence traits, connection strings)
//   - req: Resolved generation request
//   - now: Clock value for the timestamp fields
//
// Returns:
//   - *Assembly: Base environment and per-context records
//   - error: INVALID_ARGUMENT when a catalog lookup fails
func Assemble(cat *catalog.Catalog, req *request.Request, now time.Time) (*Assembly, error) {
	layout, ok := cat.Layout(string(req.Architecture()))
	if !ok {
		return nil, errors.Newf(errors.CodeInvalidArgument, "no layout for architecture %q", req.Architecture())
	}
	traits, ok := cat.Traits(string(req.Persistence()))
	if !ok {
		return nil, errors.Newf(errors.CodeInvalidArgument, "no traits for persistence %q", req.Persistence())
	}
	dbURL, err := cat.DatabaseURL(string(req.Database()), req.ProjectName())
	if err != nil {
		return nil, err
	}

	contexts := req.Contexts()
	style := Style{Package: req.Package(), Layout: layout, Traits: traits}
	records := Records(contexts)

	values := map[string]string{
		KeyProjectName:  req.ProjectName(),
		KeyModuleName:   req.Package(),
		KeyPackage:      req.Package(),
		KeyAPIPrefix:    req.APIPrefix(),
		KeyArch:         string(req.Architecture()),
		KeyORM:          string(req.Persistence()),
		KeyDB:           string(req.Database()),
		KeyDBURL:        dbURL,
		KeyYear:         now.Format("2006"),
		KeyDate:         now.Format("2006_01_02"),
		KeyTimestamp:    now.UTC().Format(time.RFC3339),
		KeyContexts:     strings.Join(contexts, ","),
		KeyContextCount: strconv.Itoa(len(contexts)),
	}
	for k, v := range FormatFragments(records, style) {
		values[k] = v
	}
	// The first context also serves templates that are not fanned out.
	for k, v := range contextValues(records[0], style) {
		values[k] = v
	}

	return &Assembly{base: NewEnv(values), records: records, style: style}, nil
}

// Base returns the request-wide environment.
func (a *Assembly) Base() Env {
	return a.base
}

// Records returns the per-context records in context order.
func (a *Assembly) Records() []Record {
	return append([]Record(nil), a.records...)
}

// Contexts returns the context names in order.
func (a *Assembly) Contexts() []string {
	names := make([]string, len(a.records))
	for i, r := range a.records {
		names[i] = r.Name
	}
	return names
}

// ForContext extends the base environment with one context's scalars.
func (a *Assembly) ForContext(name string) Env {
	for _, r := range a.records {
		if r.Name == name {
			return a.base.WithMap(contextValues(r, a.style))
		}
	}
	return a.base.WithMap(contextValues(Records([]string{name})[0], a.style))
}

// ModelsModule returns the module that holds a context's persistence models.
func (a *Assembly) ModelsModule(name string) string {
	return a.style.adapter(Record{Name: name}) + ".models"
}

func contextValues(r Record, s Style) map[string]string {
	return map[string]string{
		KeyContext:       r.Name,
		KeyContextCap:    r.Cap,
		KeyContextPlural: r.Property,
		KeyDomainModule:  s.domain(r),
		KeyAdapterModule: s.adapter(r),
		KeyModelsModule:  s.adapter(r) + ".models",
	}
}
