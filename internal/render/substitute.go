package render

import (
	"regexp"
	"strings"

	"go.eggybyte.com/foundry/internal/catalog"
)

// placeholder matches "$$", "$name" and "${name}". Anything else after a "$"
// is left alone, which makes substitution total.
var placeholder = regexp.MustCompile(`\$(?:(\$)|([_a-zA-Z][_a-zA-Z0-9]*)|\{([_a-zA-Z][_a-zA-Z0-9]*)\})`)

// Env is the read side of a substitution environment.
type Env interface {
	Lookup(key string) (string, bool)
}

// Substitute replaces known placeholders in text. "$$" collapses to "$";
// unknown or malformed placeholders are kept verbatim. It never fails.
func Substitute(text string, env Env) string {
	if !strings.Contains(text, "$") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		sub := placeholder.FindStringSubmatch(m)
		switch {
		case sub[1] != "":
			return "$"
		case sub[2] != "":
			if v, ok := env.Lookup(sub[2]); ok {
				return v
			}
		case sub[3] != "":
			if v, ok := env.Lookup(sub[3]); ok {
				return v
			}
		}
		return m
	})
}

var legacyImport = regexp.MustCompile(`(?m)^(\s*)(from|import)(\s+)` + catalog.LegacyPackage + `\b`)

// RewriteLegacyImports points line-leading "from app" / "import app"
// statements at pkg. It is a no-op when pkg is the legacy package itself.
func RewriteLegacyImports(text, pkg string) string {
	if pkg == catalog.LegacyPackage {
		return text
	}
	return legacyImport.ReplaceAllString(text, "${1}${2}${3}"+pkg)
}

var sourceLine = regexp.MustCompile(`(?m)^(?:from\s+\S+\s+import\b|import\s+\S|class\s+\w|def\s+\w|async\s+def\s+\w|@\w|if\s+__name__\s*==)`)

// LooksLikeSource reports whether text reads like Python source.
//
// It looks for a line starting with an import, a class or function
// definition, a decorator, or the main guard. Prose whose line begins with
// "import" is misclassified as source; a module holding only a docstring is
// not recognized.
func LooksLikeSource(text string) bool {
	return sourceLine.MatchString(text)
}
