// Package projectfs provides the output file system of a generated project.
//
// Overview:
//   - Responsibility: Destination precondition, file writes with permissions, reads for patching
//   - Key Types: ProjectFS over a go-billy filesystem
//   - Concurrency Model: Sequential file operations; not safe for concurrent writers
//   - Error Semantics: PRECONDITION_FAILED for a non-empty destination, INTERNAL for I/O failures,
//     NOT_FOUND when a file to read is missing
//   - Performance Notes: Parent directories created on demand, one write per file
//
// Usage:
//
//	pfs := projectfs.New(osfs.New("shop-api"), logger)
//	if err := pfs.EnsureEmpty(); err != nil { ... }
//	err := pfs.WriteFile("scripts/dev.sh", content, 0o755)
package projectfs

import (
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"go.eggybyte.com/foundry/internal/core/errors"
	"go.eggybyte.com/foundry/internal/core/log"
)

const rootDir = "/"

// ProjectFS provides file system operations rooted at the project directory.
//
// Parameters:
//   - fs: Filesystem rooted at the project directory (osfs in production, memfs in tests)
//   - logger: Receives one debug record per write
//
// Concurrency:
//   - Not safe for concurrent use
type ProjectFS struct {
	fs     billy.Filesystem
	logger log.Logger
}

// New creates a project file system. A nil logger discards output.
func New(fsys billy.Filesystem, logger log.Logger) *ProjectFS {
	if logger == nil {
		logger = log.Nop()
	}
	return &ProjectFS{fs: fsys, logger: logger}
}

// Root returns the project directory as seen by the underlying filesystem.
func (p *ProjectFS) Root() string {
	return p.fs.Root()
}

// EnsureEmpty verifies the destination either does not exist or exists with
// no entries. It must be called once, before any write.
//
// Returns:
//   - error: PRECONDITION_FAILED when the destination has contents or is a file
func (p *ProjectFS) EnsureEmpty() error {
	info, err := p.fs.Stat(rootDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "projectfs.EnsureEmpty", err)
	}
	if !info.IsDir() {
		return errors.Newf(errors.CodePreconditionFailed, "destination %q exists and is not a directory", p.fs.Root())
	}

	entries, err := p.fs.ReadDir(rootDir)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "projectfs.EnsureEmpty", err)
	}
	if len(entries) > 0 {
		return errors.Newf(errors.CodePreconditionFailed, "destination %q already exists and is not empty", p.fs.Root())
	}
	return nil
}

// WriteFile writes content to a file, creating parent directories and
// replacing any previous content. The mode is applied with an explicit chmod
// when the filesystem supports it.
//
// Parameters:
//   - name: File path relative to the project root, slash separated
//   - content: File content
//   - mode: File permissions
//
// Returns:
//   - error: INTERNAL on any I/O failure
func (p *ProjectFS) WriteFile(name, content string, mode fs.FileMode) error {
	full := abs(name)
	if err := p.fs.MkdirAll(path.Dir(full), 0o755); err != nil {
		return errors.Wrapf(errors.CodeInternal, "projectfs.WriteFile", err, "create parent of %s", name)
	}
	if err := util.WriteFile(p.fs, full, []byte(content), mode); err != nil {
		return errors.Wrapf(errors.CodeInternal, "projectfs.WriteFile", err, "write %s", name)
	}
	if ch, ok := p.fs.(billy.Change); ok {
		if err := ch.Chmod(full, mode); err != nil {
			return errors.Wrapf(errors.CodeInternal, "projectfs.WriteFile", err, "chmod %s", name)
		}
	}

	p.logger.Debug("file written", log.Str("path", name), "mode", mode.String())
	return nil
}

// ReadFile reads a file relative to the project root.
func (p *ProjectFS) ReadFile(name string) (string, error) {
	data, err := util.ReadFile(p.fs, abs(name))
	if errors.Is(err, os.ErrNotExist) {
		return "", errors.Wrapf(errors.CodeNotFound, "projectfs.ReadFile", err, "%s", name)
	}
	if err != nil {
		return "", errors.Wrapf(errors.CodeInternal, "projectfs.ReadFile", err, "%s", name)
	}
	return string(data), nil
}

// FileExists checks if a file exists.
func (p *ProjectFS) FileExists(name string) (bool, error) {
	_, err := p.fs.Stat(abs(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, errors.Wrap(errors.CodeInternal, "projectfs.FileExists", err)
}

// Mode returns the permission bits of a file.
func (p *ProjectFS) Mode(name string) (fs.FileMode, error) {
	info, err := p.fs.Stat(abs(name))
	if err != nil {
		return 0, errors.Wrap(errors.CodeNotFound, "projectfs.Mode", err)
	}
	return info.Mode().Perm(), nil
}

// ListFiles returns every regular file under the project root in walk order.
func (p *ProjectFS) ListFiles() ([]string, error) {
	var files []string
	err := util.Walk(p.fs, rootDir, func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, strings.TrimPrefix(path.Clean(name), rootDir))
		}
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(errors.CodeInternal, "projectfs.ListFiles", err)
	}
	return files, nil
}

func abs(name string) string {
	return path.Join(rootDir, name)
}
