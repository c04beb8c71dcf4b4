// Package walker enumerates template documents under a template root.
//
// Overview:
//   - Responsibility: Deterministic, filtered enumeration of *.tmpl documents
//   - Key Types: Document, Filter
//   - Concurrency Model: Stateless; walks are independent and read-only
//   - Error Semantics: A missing root yields ErrRootMissing (NOT_FOUND) and no documents;
//     other read failures are INTERNAL
//   - Performance Notes: One directory walk per pass; results sorted once
//
// Usage:
//
//	docs, err := walker.Walk(corpus, "hybrid", walker.Neutral())
package walker

import (
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"go.eggybyte.com/foundry/internal/catalog"
	"go.eggybyte.com/foundry/internal/core/errors"
)

// ErrRootMissing is returned (wrapped) when a template root does not exist.
var ErrRootMissing = errors.New(errors.CodeNotFound, "template root missing")

// Document identifies one template document.
type Document struct {
	Root   string // root name, e.g. "common" or "hybrid"
	Source string // path inside the corpus, used to read the text
	Rel    string // path used for projection (selector prefix stripped)
}

// Filter selects documents by their path relative to the root and may rewrite
// the relative path. It returns false to skip the document.
type Filter func(rel string) (string, bool)

// Walk enumerates *.tmpl files under root in lexicographic order of their
// relative path. A nil filter selects everything.
func Walk(corpus fs.FS, root string, filter Filter) ([]Document, error) {
	info, err := fs.Stat(corpus, root)
	if err != nil || !info.IsDir() {
		return nil, errors.Wrapf(errors.CodeNotFound, "walker.Walk", ErrRootMissing, "root %q", root)
	}

	var found []string
	err = fs.WalkDir(corpus, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, catalog.TemplateSuffix) {
			return nil
		}
		found = append(found, strings.TrimPrefix(p, root+"/"))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(errors.CodeInternal, "walker.Walk", err, "walk %q", root)
	}
	sort.Strings(found)

	docs := make([]Document, 0, len(found))
	for _, rel := range found {
		out := rel
		if filter != nil {
			var ok bool
			if out, ok = filter(rel); !ok {
				continue
			}
		}
		docs = append(docs, Document{Root: root, Source: path.Join(root, rel), Rel: out})
	}
	return docs, nil
}

// Neutral selects architecture-neutral documents: everything outside the
// technology subtree except the deployment files, which only come from the
// deployment root.
func Neutral() Filter {
	return func(rel string) (string, bool) {
		if rel == "technology" || strings.HasPrefix(rel, "technology/") {
			return "", false
		}
		switch path.Base(rel) {
		case "Dockerfile" + catalog.TemplateSuffix, "docker-compose.yml" + catalog.TemplateSuffix:
			return "", false
		}
		return rel, true
	}
}

// Select keeps documents under any of the given prefixes and strips the
// matching prefix from the relative path. Prefixes are matched as doublestar
// patterns "<prefix>/**".
func Select(prefixes ...string) Filter {
	return func(rel string) (string, bool) {
		for _, prefix := range prefixes {
			if ok, _ := doublestar.Match(prefix+"/**", rel); ok {
				return strings.TrimPrefix(rel, prefix+"/"), true
			}
		}
		return "", false
	}
}

// Combo selects the persistence/database specific documents inside an
// architecture root: technology/<persistence>/{_common,_context,<database>}.
func Combo(persistence, database string) Filter {
	base := path.Join("technology", persistence)
	return Select(path.Join(base, "_common"), path.Join(base, "_context"), path.Join(base, database))
}

// Persistence selects the documents of a persistence root: _common and <database>.
func Persistence(database string) Filter {
	return Select("_common", database)
}

// Deployment returns the two fixed deployment documents for a database variant:
// the compose file and the shared container build file. Only the root is
// checked here; a missing document fails when it is read.
func Deployment(corpus fs.FS, root, database string) ([]Document, error) {
	fixed := []Document{
		{Root: root, Source: path.Join(root, database, "docker-compose.yml"+catalog.TemplateSuffix), Rel: "docker-compose.yml" + catalog.TemplateSuffix},
		{Root: root, Source: path.Join(root, "Dockerfile"+catalog.TemplateSuffix), Rel: "Dockerfile" + catalog.TemplateSuffix},
	}
	if info, err := fs.Stat(corpus, root); err != nil || !info.IsDir() {
		return nil, errors.Wrapf(errors.CodeNotFound, "walker.Deployment", ErrRootMissing, "root %q", root)
	}
	return fixed, nil
}
