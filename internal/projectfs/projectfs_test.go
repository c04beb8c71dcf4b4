package projectfs

import (
	"io/fs"
	"sort"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.eggybyte.com/foundry/internal/core/errors"
	"go.eggybyte.com/foundry/internal/testingx"
)

func TestEnsureEmpty(t *testing.T) {
	pfs := New(memfs.New(), nil)
	require.NoError(t, pfs.EnsureEmpty(), "fresh destination")

	require.NoError(t, pfs.WriteFile("README.md", "# shop\n", 0o644))
	err := pfs.EnsureEmpty()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodePreconditionFailed), "got %v", err)
}

func TestWriteFileCreatesParents(t *testing.T) {
	pfs := New(memfs.New(), nil)

	require.NoError(t, pfs.WriteFile("src/shop/domain/order/entities.py", "class Order: ...\n", 0o644))

	got, err := pfs.ReadFile("src/shop/domain/order/entities.py")
	require.NoError(t, err)
	assert.Equal(t, "class Order: ...\n", got)

	ok, err := pfs.FileExists("src/shop/domain/order/entities.py")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pfs.FileExists("src/shop/domain/order/missing.py")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteFileOverwrites(t *testing.T) {
	pfs := New(memfs.New(), nil)

	require.NoError(t, pfs.WriteFile("docs/notes.md", "first version, longer\n", 0o644))
	require.NoError(t, pfs.WriteFile("docs/notes.md", "second\n", 0o644))

	got, err := pfs.ReadFile("docs/notes.md")
	require.NoError(t, err)
	assert.Equal(t, "second\n", got)
}

func TestWriteFileMode(t *testing.T) {
	pfs := New(memfs.New(), nil)

	tests := []struct {
		name string
		mode fs.FileMode
	}{
		{name: "scripts/dev.sh", mode: 0o755},
		{name: "README.md", mode: 0o644},
	}
	for _, tt := range tests {
		require.NoError(t, pfs.WriteFile(tt.name, "x\n", tt.mode))
		mode, err := pfs.Mode(tt.name)
		require.NoError(t, err)
		if mode != tt.mode {
			t.Errorf("%s: expected mode %v, got %v", tt.name, tt.mode, mode)
		}
	}
}

func TestReadFileMissing(t *testing.T) {
	pfs := New(memfs.New(), nil)

	_, err := pfs.ReadFile("alembic/env.py")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}

func TestListFiles(t *testing.T) {
	pfs := New(memfs.New(), nil)
	for _, name := range []string{"LICENSE", "src/shop/__init__.py", "scripts/dev.sh"} {
		require.NoError(t, pfs.WriteFile(name, "", 0o644))
	}

	files, err := pfs.ListFiles()
	require.NoError(t, err)
	sort.Strings(files)
	assert.Equal(t, []string{"LICENSE", "scripts/dev.sh", "src/shop/__init__.py"}, files)
}

func TestWriteFileLogs(t *testing.T) {
	logger := testingx.NewRecordingLogger(t)
	pfs := New(memfs.New(), logger)

	require.NoError(t, pfs.WriteFile("scripts/dev.sh", "#!/bin/sh\n", 0o755))

	entry := logger.AssertLogged("DEBUG", "file written")
	assert.Equal(t, "scripts/dev.sh", entry.Fields["path"])
	assert.Equal(t, "-rwxr-xr-x", entry.Fields["mode"])
}
