package request

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.eggybyte.com/foundry/internal/core/errors"
)

func TestNormalizeContexts(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{name: "first occurrence wins", raw: []string{"b", "a,b", "a"}, want: []string{"b", "a"}},
		{name: "comma list", raw: []string{"customer,order"}, want: []string{"customer", "order"}},
		{name: "trim and lowercase", raw: []string{"  Customer , ORDER "}, want: []string{"customer", "order"}},
		{name: "internal spaces", raw: []string{"order item"}, want: []string{"order_item"}},
		{name: "drop empties", raw: []string{",,", " , customer,"}, want: []string{"customer"}},
		{name: "case-insensitive dedupe", raw: []string{"Order", "order"}, want: []string{"order"}},
		{name: "empty input", raw: nil, want: []string{"customer"}},
		{name: "only separators", raw: []string{" , "}, want: []string{"customer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeContexts(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NormalizeContexts(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestNormalizeContextsDuplicateFree(t *testing.T) {
	inputs := [][]string{
		{"a,a,a"},
		{"x", "y", "x,y,z", "Z"},
		{"one two", "one_two", "ONE TWO"},
	}
	for _, raw := range inputs {
		got := NormalizeContexts(raw)
		seen := map[string]bool{}
		for _, name := range got {
			assert.False(t, seen[name], "duplicate %q in %v", name, got)
			seen[name] = true
		}
	}
}

func TestSanitizePackage(t *testing.T) {
	tests := map[string]string{
		"":         "app",
		"shop":     "shop",
		"my-shop":  "my_shop",
		"1shop":    "_1shop",
		"Shop_API": "Shop_API",
		"café":     "caf_",
		" pkg ":    "pkg",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizePackage(in), "SanitizePackage(%q)", in)
	}
}

func TestNewDefaults(t *testing.T) {
	req, err := New(Options{ProjectName: "shop-api"})
	require.NoError(t, err)

	assert.Equal(t, "shop-api", req.ProjectName())
	assert.Equal(t, "app", req.Package())
	assert.Equal(t, "/api", req.APIPrefix())
	assert.Equal(t, ArchHybrid, req.Architecture())
	assert.Equal(t, PersistenceSQLAlchemy, req.Persistence())
	assert.Equal(t, DatabasePostgreSQL, req.Database())
	assert.Equal(t, []string{"customer"}, req.Contexts())
}

func TestNewContextsAreCopied(t *testing.T) {
	req, err := New(Options{ProjectName: "shop", Contexts: []string{"customer,order"}})
	require.NoError(t, err)

	ctxs := req.Contexts()
	ctxs[0] = "mutated"
	assert.Equal(t, []string{"customer", "order"}, req.Contexts())
}

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "missing project", opts: Options{}},
		{name: "project with slash", opts: Options{ProjectName: "a/b"}},
		{name: "prefix without slash", opts: Options{ProjectName: "p", APIPrefix: "api"}},
		{name: "unknown arch", opts: Options{ProjectName: "p", Architecture: "onion"}},
		{name: "unknown db", opts: Options{ProjectName: "p", Database: "sqlite"}},
		{name: "context with dash", opts: Options{ProjectName: "p", Contexts: []string{"order-item"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeInvalidArgument), "got %v", err)
		})
	}
}

func TestEnumFlags(t *testing.T) {
	var arch Architecture
	var orm Persistence
	var db Database

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Var(&arch, "arch", "")
	fs.Var(&orm, "orm", "")
	fs.Var(&db, "db", "")

	require.NoError(t, fs.Parse([]string{"--arch", "DDD", "--orm", "peewee", "--db", "mysql"}))
	assert.Equal(t, ArchDDD, arch)
	assert.Equal(t, PersistencePeewee, orm)
	assert.Equal(t, DatabaseMySQL, db)

	err := fs.Parse([]string{"--db", "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgresql|mysql")
}
