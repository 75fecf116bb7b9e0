package taskstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/briefpress/briefpress/internal/domain"
)

// Store provides SQLite-backed run journaling
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts a new run record
func (s *Store) SaveRun(run *domain.Run) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, email, task, round, nonce, brief, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Email,
		run.Task,
		run.Round,
		run.Nonce,
		run.Brief,
		string(run.Status),
		run.CreatedAt,
		run.UpdatedAt,
	)
	return err
}

// UpdateRunStatus updates a run's status and error message
func (s *Store) UpdateRunStatus(id string, status domain.RunStatus, errMsg string) error {
	_, err := s.db.Exec(`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), errMsg, time.Now(), id)
	return err
}

// UpdateRunResult records the publish result on a run
func (s *Store) UpdateRunResult(id string, status domain.RunStatus, res *domain.PublishResult) error {
	_, err := s.db.Exec(`
		UPDATE runs SET status = ?, repo_url = ?, commit_sha = ?, pages_url = ?, updated_at = ?
		WHERE id = ?
	`, string(status), res.RepoURL, res.CommitSHA, res.PagesURL, time.Now(), id)
	return err
}

// GetRun retrieves a run by ID; a missing run returns (nil, nil)
func (s *Store) GetRun(id string) (*domain.Run, error) {
	row := s.db.QueryRow(`
		SELECT id, email, task, round, nonce, brief, status, repo_url, commit_sha, pages_url, error, created_at, updated_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// ListOptions specifies filters for listing runs
type ListOptions struct {
	Task   string
	Status domain.RunStatus
	Limit  int
}

// ListRuns returns runs matching the given options, newest first
func (s *Store) ListRuns(opts ListOptions) ([]*domain.Run, error) {
	query := `SELECT id, email, task, round, nonce, brief, status, repo_url, commit_sha, pages_url, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []interface{}

	if opts.Task != "" {
		query += " AND task = ?"
		args = append(args, opts.Task)
	}
	if opts.Status != "" {
		query += " AND status = ?"
		args = append(args, string(opts.Status))
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// CountByStatus returns run counts grouped by status
func (s *Store) CountByStatus() (map[domain.RunStatus]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM runs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.RunStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.RunStatus(status)] = n
	}
	return counts, rows.Err()
}

// PruneBefore deletes runs created before the cutoff and returns the count
func (s *Store) PruneBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanRun(scan func(dest ...any) error) (*domain.Run, error) {
	var run domain.Run
	var status string
	var repoURL, commitSHA, pagesURL, errMsg sql.NullString

	err := scan(&run.ID, &run.Email, &run.Task, &run.Round, &run.Nonce, &run.Brief,
		&status, &repoURL, &commitSHA, &pagesURL, &errMsg, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}

	run.Status = domain.RunStatus(status)
	run.RepoURL = repoURL.String
	run.CommitSHA = commitSHA.String
	run.PagesURL = pagesURL.String
	run.Error = errMsg.String

	return &run, nil
}
