package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"reactiontest/internal/results"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	owner_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	result   TEXT NOT NULL,
	PRIMARY KEY (owner_id, position)
);`

// SQLitePersistence stores each owner's history as ordered JSON rows in a
// local SQLite file. Mutations rewrite the owner's rows wholesale, which
// keeps the adapter schema-free beyond "a list of results".
type SQLitePersistence struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLitePersistence, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &SQLitePersistence{db: db}, nil
}

func (p *SQLitePersistence) Close() error {
	return p.db.Close()
}

func (p *SQLitePersistence) Load(ctx context.Context, ownerID string) ([]results.TestResult, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT result FROM history WHERE owner_id = ? ORDER BY position
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	var rs []results.TestResult
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		var r results.TestResult
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decoding history row: %w", err)
		}
		rs = append(rs, r)
	}
	return rs, rows.Err()
}

func (p *SQLitePersistence) Save(ctx context.Context, ownerID string, rs []results.TestResult) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning history save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("clearing old history: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO history (owner_id, position, result) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing history insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rs {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding result %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, ownerID, i, string(raw)); err != nil {
			return fmt.Errorf("inserting history row: %w", err)
		}
	}
	return tx.Commit()
}
