package vars

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"go.eggybyte.com/foundry/internal/catalog"
)

// Record is the per-context input to fragment formatting.
type Record struct {
	Name     string // context name, e.g. "order_item"
	Cap      string // capitalized identifier, e.g. "OrderItem"
	Property string // pluralized property name, e.g. "order_items"
}

// Style carries the request-wide choices that shape fragment text.
type Style struct {
	Package string
	Layout  catalog.ArchLayout
	Traits  catalog.PersistenceTraits
}

// Fragment keys, in the order they are formatted.
const (
	FragDomainRepoImports  = "domain_repo_imports"
	FragAdapterRepoImports = "adapter_repo_imports"
	FragUoWProperties      = "uow_properties"
	FragUoWFields          = "uow_fields"
	FragUoWInits           = "uow_inits"
	FragUoWResets          = "uow_resets"
	FragUoWGetters         = "uow_getters"
	FragRouterImports      = "router_imports"
	FragRouterIncludes     = "router_includes"
	FragModelImports       = "model_imports"
)

// fragment formats one entry per record. Entries are joined with sep.
type fragment struct {
	key  string
	sep  string
	line func(r Record, s Style) string
}

var fragments = []fragment{
	{FragDomainRepoImports, "\n", func(r Record, s Style) string {
		return fmt.Sprintf("from %s.repositories import %sRepository", s.domain(r), r.Cap)
	}},
	{FragAdapterRepoImports, "\n", func(r Record, s Style) string {
		return fmt.Sprintf("from %s.%s import %s", s.adapter(r), s.Traits.RepositoryModule, s.impl(r))
	}},
	{FragUoWProperties, "\n", func(r Record, s Style) string {
		return fmt.Sprintf("    %s: %sRepository", r.Property, r.Cap)
	}},
	{FragUoWFields, "\n", func(r Record, s Style) string {
		return fmt.Sprintf("    _%s: %sRepository | None", r.Property, r.Cap)
	}},
	{FragUoWInits, "\n", func(r Record, s Style) string {
		return fmt.Sprintf("        self._%s = %s(self.%s)", r.Property, s.impl(r), s.Traits.Handle)
	}},
	{FragUoWResets, "\n", func(r Record, s Style) string {
		return fmt.Sprintf("        self._%s = None", r.Property)
	}},
	{FragUoWGetters, "\n\n", func(r Record, s Style) string {
		return strings.Join([]string{
			"    @property",
			fmt.Sprintf("    def %s(self) -> %sRepository:", r.Property, r.Cap),
			fmt.Sprintf("        assert self._%s is not None, %q", r.Property,
				fmt.Sprintf("UnitOfWork.%s used outside 'async with uow'", r.Property)),
			fmt.Sprintf("        return self._%s", r.Property),
		}, "\n")
	}},
	{FragRouterImports, "\n", func(r Record, s Style) string {
		return fmt.Sprintf("from %s import %s as %s_router", catalog.Expand(s.Layout.RouterPackage, s.Package, r.Name), r.Name, r.Name)
	}},
	{FragRouterIncludes, "\n", func(r Record, s Style) string {
		return fmt.Sprintf("api_router.include_router(%s_router.router, prefix=\"/%s\", tags=[\"%s\"])", r.Name, r.Property, r.Property)
	}},
	{FragModelImports, "\n", func(r Record, s Style) string {
		return fmt.Sprintf("from %s import models as %s_models  # noqa: F401", s.adapter(r), r.Name)
	}},
}

func (s Style) domain(r Record) string {
	return catalog.Expand(s.Layout.DomainPackage, s.Package, r.Name)
}
func (s Style) adapter(r Record) string {
	return catalog.Expand(s.Layout.AdapterPackage, s.Package, r.Name)
}
func (s Style) impl(r Record) string { return s.Traits.AdapterPrefix + r.Cap + "Repository" }

// Records selects the per-context records in context order.
func Records(contexts []string) []Record {
	out := make([]Record, 0, len(contexts))
	for _, name := range contexts {
		out = append(out, Record{
			Name:     name,
			Cap:      Capitalize(name),
			Property: Pluralize(name),
		})
	}
	return out
}

// FormatFragments renders every fragment kind for the records, in record order.
func FormatFragments(records []Record, s Style) map[string]string {
	out := make(map[string]string, len(fragments))
	for _, f := range fragments {
		parts := make([]string, len(records))
		for i, r := range records {
			parts[i] = f.line(r, s)
		}
		out[f.key] = strings.Join(parts, f.sep)
	}
	return out
}

// FragmentKeys returns the fragment keys in formatting order.
func FragmentKeys() []string {
	keys := make([]string, len(fragments))
	for i, f := range fragments {
		keys[i] = f.key
	}
	return keys
}

// Capitalize title-cases each underscore-delimited word and concatenates them.
func Capitalize(name string) string {
	caser := cases.Title(language.Und)
	var b strings.Builder
	for _, word := range strings.Split(name, "_") {
		if word == "" {
			continue
		}
		b.WriteString(caser.String(word))
	}
	return b.String()
}

// Pluralize appends "s" unless the name already ends in "s".
func Pluralize(name string) string {
	if strings.HasSuffix(name, "s") {
		return name
	}
	return name + "s"
}
