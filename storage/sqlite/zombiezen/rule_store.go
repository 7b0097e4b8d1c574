package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/revelaction/phascan/category"
	"github.com/revelaction/phascan/storage"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// RuleStore keeps the rule table in the rules table. The position column
// holds the priority order.
type RuleStore struct {
	pool *sqlitex.Pool
}

var _ storage.RuleRepository = (*RuleStore)(nil)

func NewRuleStore(pool *sqlitex.Pool) *RuleStore {
	return &RuleStore{pool: pool}
}

func (rs *RuleStore) ReadAll() (category.Table, error) {
	conn, err := rs.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer rs.pool.Put(conn)

	table := category.Table{}
	err = sqlitex.Execute(conn, "SELECT name, triggers FROM rules ORDER BY position", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			r, err := scanRule(stmt)
			if err != nil {
				return err
			}
			table = append(table, r)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return table, nil
}

func (rs *RuleStore) Read(name string) (category.Rule, error) {
	conn, err := rs.pool.Take(context.TODO())
	if err != nil {
		return category.Rule{}, err
	}
	defer rs.pool.Put(conn)

	var r category.Rule
	found := false
	err = sqlitex.Execute(conn, "SELECT name, triggers FROM rules WHERE name = ? LIMIT 1", &sqlitex.ExecOptions{
		Args: []interface{}{name},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var err error
			r, err = scanRule(stmt)
			found = true
			return err
		},
	})
	if err != nil {
		return category.Rule{}, err
	}

	if !found {
		return category.Rule{}, fmt.Errorf("category %q: %w", name, storage.ErrNotFound)
	}

	return r, nil
}

// Write keeps the position of an existing rule; a new rule goes last.
func (rs *RuleStore) Write(r category.Rule) error {
	if err := (category.Table{r}).Validate(); err != nil {
		return err
	}

	conn, err := rs.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer rs.pool.Put(conn)

	return writeRule(conn, r)
}

func (rs *RuleStore) Delete(name string) error {
	conn, err := rs.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer rs.pool.Put(conn)

	err = sqlitex.Execute(conn, "DELETE FROM rules WHERE name = ?", &sqlitex.ExecOptions{
		Args: []interface{}{name},
	})
	if err != nil {
		return err
	}

	if conn.Changes() == 0 {
		return fmt.Errorf("category %q: %w", name, storage.ErrNotFound)
	}

	return nil
}

// WriteAll replaces the whole table in one transaction.
func (rs *RuleStore) WriteAll(t category.Table) (err error) {
	if err := t.Validate(); err != nil {
		return err
	}

	conn, err := rs.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer rs.pool.Put(conn)

	defer sqlitex.Save(conn)(&err)

	if err := sqlitex.Execute(conn, "DELETE FROM rules", nil); err != nil {
		return err
	}

	for _, r := range t {
		if err := writeRule(conn, r); err != nil {
			return err
		}
	}

	return nil
}

func writeRule(conn *sqlite.Conn, r category.Rule) error {
	triggers := r.Triggers
	if triggers == nil {
		triggers = []string{}
	}

	triggersJSON, err := json.Marshal(triggers)
	if err != nil {
		return err
	}

	return sqlitex.Execute(conn, `
		INSERT INTO rules (name, position, triggers, updated)
		VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM rules), ?, `+timestamp+`)
		ON CONFLICT(name) DO UPDATE SET
			triggers = excluded.triggers,
			updated = excluded.updated
	`, &sqlitex.ExecOptions{
		Args: []interface{}{r.Name, string(triggersJSON)},
	})
}

func scanRule(stmt *sqlite.Stmt) (category.Rule, error) {
	r := category.Rule{Name: stmt.ColumnText(0)}
	if err := json.Unmarshal([]byte(stmt.ColumnText(1)), &r.Triggers); err != nil {
		return category.Rule{}, fmt.Errorf("category %q: %w", r.Name, err)
	}

	return r, nil
}
