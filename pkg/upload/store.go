package upload

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// StoredFile is one accepted file of an upload batch.
type StoredFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Path string `json:"path"` // relative path inside the storage namespace
}

// Batch groups the files accepted together in one upload request.
type Batch struct {
	ID        string       `json:"id"`
	CreatedAt int64        `json:"created_at"`
	Files     []StoredFile `json:"files"`
}

// Ledger records accepted upload batches in SQLite so operators can see
// which files currently back the datasets.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (or creates) the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open upload ledger: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS upload_files (
		batch_id   TEXT NOT NULL,
		name       TEXT NOT NULL,
		size       INTEGER NOT NULL,
		rel_path   TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create upload_files table: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record persists one accepted batch.
func (l *Ledger) Record(batchID string, files []StoredFile) error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	now := time.Now().Unix()
	for _, f := range files {
		if _, err := tx.Exec(
			`INSERT INTO upload_files (batch_id, name, size, rel_path, created_at) VALUES (?, ?, ?, ?, ?)`,
			batchID, f.Name, f.Size, f.Path, now,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record %s: %w", f.Name, err)
		}
	}
	return tx.Commit()
}

// List returns all batches, newest first.
func (l *Ledger) List() ([]Batch, error) {
	rows, err := l.db.Query(
		`SELECT batch_id, name, size, rel_path, created_at
		 FROM upload_files ORDER BY created_at DESC, batch_id, name`)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var (
		out  []Batch
		last string
	)
	for rows.Next() {
		var (
			f       StoredFile
			batchID string
			created int64
		)
		if err := rows.Scan(&batchID, &f.Name, &f.Size, &f.Path, &created); err != nil {
			return nil, fmt.Errorf("scan upload row: %w", err)
		}
		if batchID != last {
			out = append(out, Batch{ID: batchID, CreatedAt: created})
			last = batchID
		}
		b := &out[len(out)-1]
		b.Files = append(b.Files, f)
	}
	return out, rows.Err()
}
