package sqlite

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const DefaultPath = "./shortcut-report.db"

// Run is one recorded report run. The table is an audit log only; reports
// never read it back.
type Run struct {
	ID          string
	Kind        string
	WindowStart time.Time
	WindowEnd   time.Time
	ItemCount   int
	Files       []string
	Narrative   bool
	LLMProvider string
	CreatedAt   time.Time
}

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS report_runs (
		id           TEXT PRIMARY KEY,
		kind         TEXT NOT NULL,
		window_start DATETIME NOT NULL,
		window_end   DATETIME NOT NULL,
		item_count   INTEGER NOT NULL DEFAULT 0,
		files        TEXT DEFAULT '',
		narrative    INTEGER NOT NULL DEFAULT 0,
		llm_provider TEXT DEFAULT '',
		created_at   DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_report_runs_created_at ON report_runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_report_runs_kind ON report_runs(kind);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InsertRun stores run, assigning an id and creation time when missing, and
// returns the id used.
func InsertRun(db *sql.DB, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		`INSERT INTO report_runs (id, kind, window_start, window_end, item_count, files, narrative, llm_provider, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.WindowStart.UTC(), run.WindowEnd.UTC(), run.ItemCount,
		strings.Join(run.Files, "\n"), run.Narrative, run.LLMProvider, run.CreatedAt.UTC(),
	)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs first. A kind of "" matches all.
func ListRuns(db *sql.DB, kind string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(
		`SELECT id, kind, window_start, window_end, item_count, files, narrative, llm_provider, created_at
		 FROM report_runs WHERE (? = '' OR kind = ?) ORDER BY created_at DESC, id LIMIT ?`,
		kind, kind, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var files string
		err := rows.Scan(
			&run.ID, &run.Kind, &run.WindowStart, &run.WindowEnd, &run.ItemCount,
			&files, &run.Narrative, &run.LLMProvider, &run.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if files != "" {
			run.Files = strings.Split(files, "\n")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
