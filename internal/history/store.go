package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/chainaudit/repo-judge/internal/analysis"
)

// maxEntries bounds the stored history; inserting past the cap trims the
// oldest rows so callers always see the most recent analyses
const maxEntries = 20

// Store keeps a bounded, newest-first history of analysis results
type Store struct {
	db *sql.DB
}

// NewStore opens (and if needed creates) the sqlite history database
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "repo_judge.db")
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS score_history (
			id TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			repo TEXT NOT NULL,
			overall_score REAL NOT NULL,
			score_data TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create score_history table: %w", err)
	}
	return nil
}

// Save inserts a result and trims the history back to the bound
func (s *Store) Save(sd analysis.ScoreData) error {
	payload, err := json.Marshal(sd)
	if err != nil {
		return fmt.Errorf("failed to encode score data: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO score_history (id, owner, repo, overall_score, score_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), sd.Owner, sd.Repo, sd.OverallScore, string(payload), time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert score history: %w", err)
	}

	_, err = s.db.Exec(`
		DELETE FROM score_history
		WHERE id NOT IN (
			SELECT id FROM score_history ORDER BY created_at DESC LIMIT ?
		)
	`, maxEntries)
	if err != nil {
		return fmt.Errorf("failed to trim score history: %w", err)
	}

	return nil
}

// List returns the stored results, newest first
func (s *Store) List() ([]analysis.ScoreData, error) {
	rows, err := s.db.Query(`
		SELECT score_data FROM score_history
		ORDER BY created_at DESC
		LIMIT ?
	`, maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history: %w", err)
	}
	defer rows.Close()

	results := make([]analysis.ScoreData, 0, maxEntries)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan score history row: %w", err)
		}

		var sd analysis.ScoreData
		if err := json.Unmarshal([]byte(payload), &sd); err != nil {
			return nil, fmt.Errorf("failed to decode score data: %w", err)
		}
		results = append(results, sd)
	}

	return results, rows.Err()
}

// Clear removes all stored results
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM score_history`)
	if err != nil {
		return fmt.Errorf("failed to clear score history: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
