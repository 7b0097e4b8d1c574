package zombiezen

import (
	"context"
	"encoding/json"

	sent "github.com/revelaction/phascan/sentence"
	"github.com/revelaction/phascan/storage"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// DocCache keeps dependency parses in the docs table, keyed by the sha256
// of the text.
type DocCache struct {
	pool *sqlitex.Pool
}

var _ storage.DocCache = (*DocCache)(nil)

func NewDocCache(pool *sqlitex.Pool) *DocCache {
	return &DocCache{pool: pool}
}

func (c *DocCache) Get(text string) (sent.Doc, bool, error) {
	conn, err := c.pool.Take(context.TODO())
	if err != nil {
		return sent.Doc{}, false, err
	}
	defer c.pool.Put(conn)

	var doc sent.Doc
	found := false
	err = sqlitex.Execute(conn, "SELECT data FROM docs WHERE key = ?", &sqlitex.ExecOptions{
		Args: []interface{}{storage.Key(text)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			return json.Unmarshal([]byte(stmt.ColumnText(0)), &doc)
		},
	})
	if err != nil {
		return sent.Doc{}, false, err
	}

	return doc, found, nil
}

func (c *DocCache) Put(text string, doc sent.Doc) error {
	if doc.Title == "" {
		doc.Title = text
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	conn, err := c.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer c.pool.Put(conn)

	return sqlitex.Execute(conn, `
		INSERT INTO docs (key, text, data, created)
		VALUES (?, ?, ?, `+timestamp+`)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data
	`, &sqlitex.ExecOptions{
		Args: []interface{}{storage.Key(text), text, string(data)},
	})
}
