// Package templates provides the built-in template corpus.
//
// Overview:
//   - Responsibility: Expose the embedded corpus (or a directory override) as an fs.FS
//   - Key Types: Corpus roots as constants
//   - Concurrency Model: Read-only file systems, safe for concurrent use
//   - Error Semantics: A missing override directory is NOT_FOUND
//   - Performance Notes: Embedded at build time, no disk access for the default corpus
//
// Usage:
//
//	corpus := templates.Default()
//	docs, err := walker.Walk(corpus, templates.RootCommon, nil)
package templates

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"go.eggybyte.com/foundry/internal/catalog"
	"go.eggybyte.com/foundry/internal/core/errors"
)

//go:embed all:templates
var templateFS embed.FS

// Corpus root names.
const (
	RootCommon      = "common"
	RootDeployment  = "docker"
	RootPersistence = "orm"
)

// Default returns the embedded corpus rooted at its top-level directory.
func Default() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Dir returns a corpus read from a directory on disk.
func Dir(dir string) (fs.FS, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(errors.CodeNotFound, "templates.Dir", err, "template directory %q", dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.CodeInvalidArgument, "template path %q is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

// PersistenceRoot returns the corpus root of a persistence technology.
func PersistenceRoot(persistence string) string {
	return path.Join(RootPersistence, persistence)
}

// ListTemplates lists every template file in a corpus, sorted.
func ListTemplates(corpus fs.FS) ([]string, error) {
	var found []string
	err := fs.WalkDir(corpus, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, catalog.TemplateSuffix) {
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "templates.ListTemplates", err)
	}
	sort.Strings(found)
	return found, nil
}
