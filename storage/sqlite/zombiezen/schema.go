package zombiezen

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"
	"slices"

	"zombiezen.com/go/sqlite/sqlitex"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Schemas of the three stores. A database file may hold any of them.
const (
	SchemaRules   = "rules.sql"   // ordered rule table
	SchemaReports = "reports.sql" // runs and their application reports
	SchemaDocs    = "docs.sql"    // parse cache
)

var schemas = []string{SchemaRules, SchemaReports, SchemaDocs}

var ErrUnknownSchema = errors.New("unknown schema")

// CreateSchemas creates the missing tables of the named schemas in one
// transaction. Unknown names are rejected before the database is touched.
func CreateSchemas(pool *sqlitex.Pool, names ...string) (err error) {
	scripts := make([]string, 0, len(names))
	for _, name := range names {
		if !slices.Contains(schemas, name) {
			return fmt.Errorf("%w %q, known: %v", ErrUnknownSchema, name, schemas)
		}

		script, err := sqlFiles.ReadFile(path.Join("sql", name))
		if err != nil {
			return err
		}
		scripts = append(scripts, string(script))
	}

	if len(scripts) == 0 {
		return nil
	}

	conn, err := pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer pool.Put(conn)

	defer sqlitex.Save(conn)(&err)

	for i, script := range scripts {
		if err := sqlitex.ExecuteScript(conn, script, nil); err != nil {
			return fmt.Errorf("failed to create schema %s: %w", names[i], err)
		}
	}

	return nil
}
