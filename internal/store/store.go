// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typerush/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so stored timestamps sort as text. Times are
// written in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// Store wraps SQLite access for typing results.
type Store struct {
	db    *sql.DB
	newID func() string
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, newID: uuid.NewString}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			level INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			total_chars INTEGER NOT NULL,
			typed_chars INTEGER NOT NULL,
			correct_chars INTEGER NOT NULL,
			mistakes INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			cps REAL NOT NULL,
			grade TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS result_char_stats (
			result_id INTEGER NOT NULL,
			char TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			PRIMARY KEY (result_id, char)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_ended_at ON results(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_results_name ON results(name);`,
		`CREATE INDEX IF NOT EXISTS idx_result_char_stats_char ON result_char_stats(char);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a result and its per-character stats. A record without
// a UUID gets a fresh one. The returned record carries the row id.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord, chars []model.CharStats) (model.SessionRecord, error) {
	if rec.UUID == "" {
		rec.UUID = s.newID()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rec, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO results (uuid, name, level, started_at, ended_at, duration_ms, total_chars, typed_chars, correct_chars, mistakes, accuracy, wpm, cps, grade)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UUID,
		rec.Name,
		rec.Level,
		formatTime(rec.StartedAt),
		formatTime(rec.EndedAt),
		rec.DurationMs,
		rec.TotalChars,
		rec.TypedChars,
		rec.CorrectChars,
		rec.Mistakes,
		rec.Accuracy,
		rec.WPM,
		rec.CPS,
		rec.Grade,
	)
	if err != nil {
		return rec, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return rec, err
	}

	if len(chars) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO result_char_stats (result_id, char, correct, incorrect)
			 VALUES (?, ?, ?, ?)`)
		if err != nil {
			return rec, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, cs := range chars {
			if _, err = stmt.ExecContext(ctx, id, cs.Char, cs.Correct, cs.Incorrect); err != nil {
				return rec, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return rec, err
	}
	rec.ID = id
	return rec, nil
}

// GetWeakChars aggregates character stats over the most recent results,
// optionally limited to one user.
func (s *Store) GetWeakChars(ctx context.Context, window int, name string) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent AS (
		SELECT id FROM results
		WHERE (? = '' OR name = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT cs.char, SUM(cs.correct) AS correct, SUM(cs.incorrect) AS incorrect
	FROM result_char_stats cs
	JOIN recent r ON r.id = cs.result_id
	GROUP BY cs.char`

	rows, err := s.db.QueryContext(ctx, query, name, name, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanAggregates(rows)
}

// ListSessions returns stored results matching the filter, oldest first.
// Last keeps only the most recent N matches.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Name != "" {
		clauses = append(clauses, "name = ?")
		args = append(args, cfg.Name)
	}
	if cfg.Level > 0 {
		clauses = append(clauses, "level = ?")
		args = append(args, cfg.Level)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT id, uuid, name, level, started_at, ended_at, duration_ms, total_chars,
		typed_chars, correct_chars, mistakes, accuracy, wpm, cps, grade
		FROM results
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var startedAt, endedAt string
		if err := rows.Scan(&rec.ID, &rec.UUID, &rec.Name, &rec.Level, &startedAt, &endedAt,
			&rec.DurationMs, &rec.TotalChars, &rec.TypedChars, &rec.CorrectChars, &rec.Mistakes,
			&rec.Accuracy, &rec.WPM, &rec.CPS, &rec.Grade); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(records) > cfg.Last {
		records = records[len(records)-cfg.Last:]
	}
	return records, nil
}

// LastSession returns the most recent result for name, or any user when name is empty.
func (s *Store) LastSession(ctx context.Context, name string) (model.SessionRecord, bool, error) {
	records, err := s.ListSessions(ctx, model.StatsConfig{Name: name, Last: 1})
	if err != nil || len(records) == 0 {
		return model.SessionRecord{}, false, err
	}
	return records[0], true, nil
}

// BestWPM returns the highest stored WPM for name, or any user when name is empty.
func (s *Store) BestWPM(ctx context.Context, name string) (int, error) {
	var best sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(wpm) FROM results WHERE (? = '' OR name = ?)`, name, name).Scan(&best)
	if err != nil {
		return 0, err
	}
	return int(best.Int64), nil
}

// Totals holds footer aggregates over stored results.
type Totals struct {
	Sessions    int
	AvgWPM      float64
	AvgAccuracy float64
}

// Totals averages WPM and accuracy for name, or any user when name is empty.
func (s *Store) Totals(ctx context.Context, name string) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(wpm), 0), COALESCE(AVG(accuracy), 0)
		 FROM results WHERE (? = '' OR name = ?)`, name, name).
		Scan(&t.Sessions, &t.AvgWPM, &t.AvgAccuracy)
	if err != nil {
		return Totals{}, err
	}
	return t, nil
}

// ListCharAggregatesForSessions aggregates per-character stats across results.
func (s *Store) ListCharAggregatesForSessions(ctx context.Context, ids []int64) ([]model.CharAggregate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT char, SUM(correct) AS correct, SUM(incorrect) AS incorrect
		FROM result_char_stats
		WHERE result_id IN (%s)
		GROUP BY char`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanAggregates(rows)
}

func scanAggregates(rows *sql.Rows) ([]model.CharAggregate, error) {
	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
