package lingoquiz

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ScoreStore records the final score of every completed quiz session
type ScoreStore interface {
	Record(ctx context.Context, entry ScoreEntry) error
	History(ctx context.Context) ([]ScoreEntry, error)
}

// ScoreDB keeps the score history in an in-memory SQLite database.
// The history lives as long as the process.
type ScoreDB struct {
	db *sql.DB
}

// OpenScoreDB opens a fresh in-memory score database
func OpenScoreDB() (*ScoreDB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open score database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping score database: %w", err)
	}

	s := &ScoreDB{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database, discarding the history
func (s *ScoreDB) Close() error {
	return s.db.Close()
}

func (s *ScoreDB) createTables() error {
	query := `CREATE TABLE IF NOT EXISTS score_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic TEXT NOT NULL,
		language TEXT NOT NULL,
		score INTEGER NOT NULL,
		total INTEGER NOT NULL,
		completed_at DATETIME NOT NULL
	)`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create score_history table: %w", err)
	}
	return nil
}

// Record appends one completed session to the history
func (s *ScoreDB) Record(ctx context.Context, entry ScoreEntry) error {
	if entry.CompletedAt.IsZero() {
		entry.CompletedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO score_history (topic, language, score, total, completed_at) VALUES (?, ?, ?, ?, ?)",
		entry.Topic, entry.Language, entry.Score, entry.Total, entry.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record score for %q: %w", entry.Topic, err)
	}
	return nil
}

// History returns every recorded session in completion order
func (s *ScoreDB) History(ctx context.Context) ([]ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT topic, language, score, total, completed_at FROM score_history ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get score history: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		if err := rows.Scan(&e.Topic, &e.Language, &e.Score, &e.Total, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scores: %w", err)
	}
	return entries, nil
}

// GroupByTopic folds entries into topic -> scores, plus the topics in the
// order they were first played.
func GroupByTopic(entries []ScoreEntry) (map[string][]int, []string) {
	scores := make(map[string][]int)
	var order []string
	for _, e := range entries {
		if _, ok := scores[e.Topic]; !ok {
			order = append(order, e.Topic)
		}
		scores[e.Topic] = append(scores[e.Topic], e.Score)
	}
	return scores, order
}
