// Package records is the shared result pool: every finished run is
// forwarded here, owner-scoped for signed-in players or into the anonymous
// pool, and percentile ranking reads the population back out.
package records

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"reactiontest/internal/results"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Service struct {
	conn *sql.DB
}

func Connect(dsn string) (*Service, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	log.Println("[Records] Connected to PostgreSQL")
	return &Service{conn: conn}, nil
}

func (s *Service) Close() error {
	return s.conn.Close()
}

func (s *Service) Ping() error {
	return s.conn.Ping()
}

func (s *Service) Migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	for _, entry := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := s.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
		log.Printf("[Records] Applied migration: %s\n", entry.Name())
	}
	return nil
}

// scoreBag is the JSONB metric payload shared with percentile queries.
// Keys match results.MetricKey values.
type scoreBag struct {
	AverageTime *float64 `json:"averageTime,omitempty"`
	TotalClicks *int     `json:"totalClicks,omitempty"`
	FastestTime *float64 `json:"fastestTime,omitempty"`
	SlowestTime *float64 `json:"slowestTime,omitempty"`
	Accuracy    *float64 `json:"accuracy,omitempty"`
	Score       *int     `json:"score,omitempty"`
}

// Insert stores one finished run. An empty ownerID contributes to the
// anonymous pool; otherwise the record is scoped to the owner.
func (s *Service) Insert(ctx context.Context, r results.TestResult, ownerID string) error {
	bag, err := json.Marshal(scoreBag{
		AverageTime: r.AverageTime,
		TotalClicks: r.TotalClicks,
		FastestTime: r.FastestTime,
		SlowestTime: r.SlowestTime,
		Accuracy:    r.Accuracy,
		Score:       r.Score,
	})
	if err != nil {
		return fmt.Errorf("encoding score bag: %w", err)
	}

	if ownerID == "" {
		_, err = s.conn.ExecContext(ctx, `
			INSERT INTO public_records (id, test_type, score)
			VALUES ($1, $2, $3)
		`, r.ID, string(r.Type), bag)
	} else {
		_, err = s.conn.ExecContext(ctx, `
			INSERT INTO test_records (id, owner_id, test_type, score)
			VALUES ($1, $2, $3, $4)
		`, r.ID, ownerID, string(r.Type), bag)
	}
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// Scores returns every population value for (type, metric) across both
// the anonymous pool and owner-scoped records. Records missing the metric
// are skipped, not zeroed.
func (s *Service) Scores(ctx context.Context, t results.TestType, key results.MetricKey) ([]float64, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT (score->>$2)::float8
		FROM public_records
		WHERE test_type = $1 AND score ? $2
		UNION ALL
		SELECT (score->>$2)::float8
		FROM test_records
		WHERE test_type = $1 AND score ? $2
	`, string(t), string(key))
	if err != nil {
		return nil, fmt.Errorf("querying scores: %w", err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		scores = append(scores, v)
	}
	return scores, rows.Err()
}

// Delete removes one owner-scoped record by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, `
		DELETE FROM test_records WHERE id = $1
	`, id); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// DeleteOwner removes every record scoped to the owner.
func (s *Service) DeleteOwner(ctx context.Context, ownerID string) error {
	if _, err := s.conn.ExecContext(ctx, `
		DELETE FROM test_records WHERE owner_id = $1
	`, ownerID); err != nil {
		return fmt.Errorf("deleting owner records: %w", err)
	}
	return nil
}
