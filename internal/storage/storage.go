package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"rekindle/internal/logging"
	"rekindle/internal/task"
)

var ErrNotFound = errors.New("task not found")

type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the task database at dbPath. A nil logger
// discards store logs.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: logger}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	due_date TEXT NOT NULL,
	priority TEXT NOT NULL DEFAULT 'medium',
	completed INTEGER NOT NULL DEFAULT 0,
	added_by TEXT NOT NULL DEFAULT '',
	frequency TEXT NOT NULL DEFAULT 'once',
	created_at TEXT NOT NULL
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureTaskColumns()
}

// ensureTaskColumns adds columns introduced after the first schema.
func (s *Store) ensureTaskColumns() error {
	required := map[string]string{
		"description": "ALTER TABLE tasks ADD COLUMN description TEXT NOT NULL DEFAULT '';",
		"added_by":    "ALTER TABLE tasks ADD COLUMN added_by TEXT NOT NULL DEFAULT '';",
		"frequency":   "ALTER TABLE tasks ADD COLUMN frequency TEXT NOT NULL DEFAULT 'once';",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(tasks);`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
		s.log.Info("added task column", "column", col)
	}
	return nil
}

// FetchTasks returns every task ordered by due date, then creation time.
// Rows that no longer pass validation are logged and skipped.
func (s *Store) FetchTasks() ([]task.Task, error) {
	rows, err := s.db.Query(`SELECT id, title, description, due_date, priority, completed, added_by, frequency, created_at FROM tasks ORDER BY due_date, created_at, id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var doneInt int
		var priority, frequency, createdStr string

		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &priority, &doneInt, &t.AddedBy, &frequency, &createdStr); err != nil {
			return nil, err
		}
		t.Completed = doneInt == 1
		t.Priority = task.Priority(priority)
		t.Frequency = task.Frequency(frequency)
		if created, err := time.Parse(time.RFC3339, createdStr); err == nil {
			t.CreatedAt = created
		}
		if err := t.Validate(); err != nil {
			s.log.Warn("skipping invalid task row", "task_id", t.ID, "err", err)
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// AddTask validates and inserts t, assigning an ID when it has none.
func (s *Store) AddTask(t task.Task) (task.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC().Truncate(time.Second)

	_, err := s.db.Exec(`INSERT INTO tasks (id, title, description, due_date, priority, completed, added_by, frequency, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		t.ID, t.Title, t.Description, t.DueDate, string(t.Priority), boolToInt(t.Completed), t.AddedBy, string(t.Frequency), t.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return task.Task{}, err
	}
	s.log.Debug("task added", "task_id", t.ID, "frequency", t.Frequency, "due_date", t.DueDate)
	return t, nil
}

// UpdateTask rewrites every mutable field of the stored task with t's ID.
func (s *Store) UpdateTask(t task.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if err := t.Validate(); err != nil {
		return err
	}
	res, err := s.db.Exec(`UPDATE tasks SET title = ?, description = ?, due_date = ?, priority = ?, completed = ?, added_by = ?, frequency = ? WHERE id = ?;`,
		t.Title, t.Description, t.DueDate, string(t.Priority), boolToInt(t.Completed), t.AddedBy, string(t.Frequency), t.ID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (s *Store) SetCompleted(id string, done bool) error {
	res, err := s.db.Exec(`UPDATE tasks SET completed = ? WHERE id = ?;`, boolToInt(done), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	if err := expectOne(res); err != nil {
		return err
	}
	s.log.Debug("task deleted", "task_id", id)
	return nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
