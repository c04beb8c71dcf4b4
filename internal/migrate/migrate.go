// Package migrate wires generated models into the migration tool's environment file.
//
// Overview:
//   - Responsibility: Idempotent insertion of a model-metadata block after a fixed anchor line
//   - Key Types: Plan, Result
//   - Concurrency Model: Patch is a pure function; PatchFile performs one read and at most one write
//   - Error Semantics: A missing anchor is reported as MISSING_ANCHOR (a warning, content untouched);
//     a missing file is NOT_FOUND
//   - Performance Notes: Single pass over the file's lines
//
// Usage:
//
//	plan := migrate.NewPlan(req.Package(), asm)
//	res, err := migrate.PatchFile(pfs, migrate.EnvFile, plan)
package migrate

import (
	"fmt"
	"io/fs"
	"strings"

	"go.eggybyte.com/foundry/internal/core/errors"
	"go.eggybyte.com/foundry/internal/vars"
)

const (
	// EnvFile is the environment file created by the migration tool's initializer.
	EnvFile = "alembic/env.py"
	// Anchor is the line the block is inserted after.
	Anchor = "from alembic import context"
	// Sentinel opens the inserted block and marks a file as already patched.
	Sentinel = "# foundry:metadata"
	// Placeholder is the initializer's default metadata line, dropped on insert.
	Placeholder = "target_metadata = None"
)

// Plan holds the lines to insert for one request.
type Plan struct {
	Package string
	Imports []string // one model import per context, in context order
}

// NewPlan builds the insertion plan from the assembled per-context modules.
func NewPlan(pkg string, asm *vars.Assembly) Plan {
	contexts := asm.Contexts()
	imports := make([]string, 0, len(contexts))
	for _, ctx := range contexts {
		adapter := asm.ForContext(ctx).Get(vars.KeyAdapterModule)
		imports = append(imports, fmt.Sprintf("from %s import models as %s_models  # noqa: F401", adapter, ctx))
	}
	return Plan{Package: pkg, Imports: imports}
}

// Block renders the inserted lines, sentinel first.
func (p Plan) Block() []string {
	lines := make([]string, 0, len(p.Imports)+3)
	lines = append(lines, Sentinel, fmt.Sprintf("from %s.core.db import Base  # noqa: F401", p.Package))
	lines = append(lines, p.Imports...)
	return append(lines, "target_metadata = Base.metadata")
}

// Result describes what Patch did.
type Result struct {
	Changed        bool
	AnchorFound    bool
	AlreadyPatched bool
}

// Patch inserts the plan's block right after the anchor line. Content that
// already carries the sentinel is returned unchanged, so patching twice
// yields one block. Without an anchor the content is returned unchanged and
// AnchorFound is false.
func Patch(content string, plan Plan) (string, Result) {
	lines := strings.Split(content, "\n")

	var res Result
	anchor := -1
	for i, line := range lines {
		switch strings.TrimRight(line, " \t\r") {
		case Sentinel:
			res.AlreadyPatched = true
		case Anchor:
			if anchor < 0 {
				anchor = i
			}
		}
	}
	res.AnchorFound = anchor >= 0
	// Without an anchor there is nowhere to put the replacement metadata, so
	// the placeholder stays and the file keeps loading.
	if res.AlreadyPatched || !res.AnchorFound {
		return content, res
	}

	// Inserted lines follow the file's own line ending.
	cr := ""
	if strings.Contains(content, "\r\n") {
		cr = "\r"
	}

	out := make([]string, 0, len(lines)+len(plan.Imports)+3)
	for i, line := range lines {
		if strings.TrimRight(line, " \t\r") == Placeholder {
			continue
		}
		out = append(out, line)
		if i == anchor {
			for _, l := range plan.Block() {
				out = append(out, l+cr)
			}
		}
	}
	res.Changed = true
	return strings.Join(out, "\n"), res
}

// Files is the file access PatchFile needs.
type Files interface {
	ReadFile(name string) (string, error)
	WriteFile(name, content string, mode fs.FileMode) error
}

// PatchFile patches a file in place.
//
// Returns:
//   - Result: What was done
//   - error: NOT_FOUND when the file is missing, MISSING_ANCHOR when the anchor
//     line is absent (the file is left untouched), INTERNAL on write failure
func PatchFile(files Files, name string, plan Plan) (Result, error) {
	content, err := files.ReadFile(name)
	if err != nil {
		return Result{}, err
	}

	patched, res := Patch(content, plan)
	if !res.AnchorFound && !res.AlreadyPatched {
		return res, errors.Newf(errors.CodeMissingAnchor, "%s has no %q line", name, Anchor)
	}
	if !res.Changed {
		return res, nil
	}
	if err := files.WriteFile(name, patched, 0o644); err != nil {
		return res, err
	}
	return res, nil
}
