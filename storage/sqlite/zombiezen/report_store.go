package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/revelaction/phascan/pipeline"
	"github.com/revelaction/phascan/storage"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ReportStore keeps reports grouped by run.
type ReportStore struct {
	pool *sqlitex.Pool
}

var _ storage.ReportRepository = (*ReportStore)(nil)

func NewReportStore(pool *sqlitex.Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

func (h *ReportStore) Start() (storage.Run, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return storage.Run{}, err
	}
	defer h.pool.Put(conn)

	run := storage.Run{
		Id:      uuid.NewString(),
		Started: time.Now().UTC().Truncate(time.Second),
	}

	err = sqlitex.Execute(conn, "INSERT INTO runs (id, started) VALUES (?, ?)", &sqlitex.ExecOptions{
		Args: []interface{}{run.Id, run.Started.Format(time.RFC3339)},
	})
	if err != nil {
		return storage.Run{}, err
	}

	return run, nil
}

func (h *ReportStore) Write(run string, r pipeline.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer h.pool.Put(conn)

	if !runExists(conn, run) {
		return fmt.Errorf("run %s: %w", run, storage.ErrNotFound)
	}

	return sqlitex.Execute(conn, `
		INSERT INTO reports (run_id, package, source, category, data)
		VALUES (?, ?, ?, ?, ?)
	`, &sqlitex.ExecOptions{
		Args: []interface{}{run, r.Package, r.Source, r.Category, string(data)},
	})
}

func (h *ReportStore) Runs() ([]storage.Run, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	runs := []storage.Run{}
	err = sqlitex.Execute(conn, `
		SELECT runs.id, runs.started, COUNT(reports.id)
		FROM runs LEFT JOIN reports ON reports.run_id = runs.id
		GROUP BY runs.id
		ORDER BY runs.started DESC, runs.rowid DESC
	`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			started, err := time.Parse(time.RFC3339, stmt.ColumnText(1))
			if err != nil {
				return err
			}

			runs = append(runs, storage.Run{
				Id:      stmt.ColumnText(0),
				Started: started,
				Reports: stmt.ColumnInt(2),
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return runs, nil
}

func (h *ReportStore) List(run string) ([]pipeline.Report, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	if !runExists(conn, run) {
		return nil, fmt.Errorf("run %s: %w", run, storage.ErrNotFound)
	}

	reports := []pipeline.Report{}
	err = sqlitex.Execute(conn, "SELECT data FROM reports WHERE run_id = ? ORDER BY id", &sqlitex.ExecOptions{
		Args: []interface{}{run},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var r pipeline.Report
			if err := json.Unmarshal([]byte(stmt.ColumnText(0)), &r); err != nil {
				return err
			}
			reports = append(reports, r)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return reports, nil
}

func runExists(conn *sqlite.Conn, run string) bool {
	found := false
	err := sqlitex.Execute(conn, "SELECT 1 FROM runs WHERE id = ?", &sqlitex.ExecOptions{
		Args: []interface{}{run},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			return nil
		},
	})

	return err == nil && found
}
