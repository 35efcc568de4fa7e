package results

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteSink stores rows in the results table of a SQLite database, tagged
// with the id of the run that produced them.
type SQLiteSink struct {
	db    *sql.DB
	runID string
}

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	header TEXT NOT NULL,
	length INTEGER NOT NULL,
	elapsed REAL NOT NULL,
	score REAL NOT NULL,
	tp INTEGER NOT NULL,
	tn INTEGER NOT NULL,
	fp INTEGER NOT NULL,
	fn INTEGER NOT NULL,
	sen REAL NOT NULL,
	ppv REAL NOT NULL,
	fval REAL NOT NULL,
	mcc REAL NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
`

// NewSQLiteSink opens or creates the database at path.
func NewSQLiteSink(path, runID string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create results table: %w", err)
	}
	return &SQLiteSink{db: db, runID: runID}, nil
}

// RunID returns the id stored with every row.
func (s *SQLiteSink) RunID() string {
	return s.runID
}

// Write implements Sink.
func (s *SQLiteSink) Write(r Row) error {
	_, err := s.db.Exec(`INSERT INTO results
		(run_id, header, length, elapsed, score, tp, tn, fp, fn, sen, ppv, fval, mcc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, r.Header, r.Length, r.Elapsed.Seconds(), r.Score,
		r.TP, r.TN, r.FP, r.FN, r.Sen, r.PPV, r.F, r.MCC)
	return err
}

// Summary aggregates the rows stored for run.
func (s *SQLiteSink) Summary(run string) (*Summary, error) {
	rows, err := s.db.Query(`SELECT tp, tn, fp, fn, fval, mcc FROM results WHERE run_id = ?`, run)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sum := &Summary{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.TP, &r.TN, &r.FP, &r.FN, &r.F, &r.MCC); err != nil {
			return nil, err
		}
		sum.Add(r)
	}
	return sum, rows.Err()
}

// Close implements Sink.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
