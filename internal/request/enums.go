package request

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Architecture is a source-layout strategy.
type Architecture string

// Architecture variants.
const (
	ArchDDD       Architecture = "ddd"
	ArchHexagonal Architecture = "hexagonal"
	ArchMVC       Architecture = "mvc"
	ArchHybrid    Architecture = "hybrid"
)

// Persistence is a data-access / object-mapping technology.
type Persistence string

// Persistence technologies.
const (
	PersistenceSQLAlchemy Persistence = "sqlalchemy"
	PersistencePeewee     Persistence = "peewee"
)

// Database is a database variant.
type Database string

// Database variants.
const (
	DatabasePostgreSQL Database = "postgresql"
	DatabaseMySQL      Database = "mysql"
)

// Architectures lists every architecture variant.
var Architectures = []Architecture{ArchDDD, ArchHexagonal, ArchMVC, ArchHybrid}

// Persistences lists every persistence technology.
var Persistences = []Persistence{PersistenceSQLAlchemy, PersistencePeewee}

// Databases lists every database variant.
var Databases = []Database{DatabasePostgreSQL, DatabaseMySQL}

var (
	_ pflag.Value = (*Architecture)(nil)
	_ pflag.Value = (*Persistence)(nil)
	_ pflag.Value = (*Database)(nil)
)

// String implements pflag.Value.
func (a *Architecture) String() string { return string(*a) }

// Set implements pflag.Value.
func (a *Architecture) Set(v string) error { return setEnum(a, v, Architectures) }

// Type implements pflag.Value.
func (a *Architecture) Type() string { return "arch" }

// String implements pflag.Value.
func (p *Persistence) String() string { return string(*p) }

// Set implements pflag.Value.
func (p *Persistence) Set(v string) error { return setEnum(p, v, Persistences) }

// Type implements pflag.Value.
func (p *Persistence) Type() string { return "orm" }

// String implements pflag.Value.
func (d *Database) String() string { return string(*d) }

// Set implements pflag.Value.
func (d *Database) Set(v string) error { return setEnum(d, v, Databases) }

// Type implements pflag.Value.
func (d *Database) Type() string { return "db" }

func setEnum[T ~string](dst *T, v string, allowed []T) error {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if string(a) == v {
			*dst = a
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", Choices(allowed))
}

// Choices renders allowed values for help text and errors.
func Choices[T ~string](allowed []T) string {
	parts := make([]string, len(allowed))
	for i, a := range allowed {
		parts[i] = string(a)
	}
	return strings.Join(parts, "|")
}
