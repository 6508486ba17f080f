package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// FindTaskByTitle returns the non-deleted task with exactly this
// title, or nil. Used for dedup before creating tasks.
func (s *Store) FindTaskByTitle(title string) (*Task, error) {
	rows, err := s.db.Query(`
		SELECT id, title, description, status, priority, due_date,
			origin_type, origin_id, contact_id, transcript_id, created_at
		FROM tasks WHERE title = ? AND deleted = 0 LIMIT 1`, title)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()
	tasks, err := scanTasks(rows)
	if err != nil || len(tasks) == 0 {
		return nil, err
	}
	return tasks[0], nil
}

// CreateTask inserts a task row.
func (s *Store) CreateTask(t *Task) (*Task, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	if t.Priority == "" {
		t.Priority = "medium"
	}
	t.CreatedAt = time.Now().UTC()
	_, err := s.db.Exec(`
		INSERT INTO tasks (id, title, description, status, priority, due_date,
			origin_type, origin_id, contact_id, transcript_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
		t.OriginType, t.OriginID, t.ContactID, t.TranscriptID, t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

// CreateTasks inserts each task, deduplicating by exact title against
// non-deleted rows. A duplicate title returns the existing task in
// place of a new one, so repeated runs hand back the same ID.
func (s *Store) CreateTasks(tasks []*Task) ([]*Task, error) {
	var out []*Task
	for _, t := range tasks {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			continue
		}
		t.Title = title
		existing, err := s.FindTaskByTitle(title)
		if err != nil {
			return out, err
		}
		if existing != nil {
			out = append(out, existing)
			continue
		}
		if _, err := s.CreateTask(t); err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, nil
}

// OpenTasks returns pending tasks ordered by due date (dated first),
// then creation time.
func (s *Store) OpenTasks(limit int) ([]*Task, error) {
	rows, err := s.db.Query(`
		SELECT id, title, description, status, priority, due_date,
			origin_type, origin_id, contact_id, transcript_id, created_at
		FROM tasks WHERE status = ? AND deleted = 0
		ORDER BY CASE WHEN due_date = '' THEN 1 ELSE 0 END, due_date, created_at
		LIMIT ?`, TaskStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

// CompleteTask marks a task done.
func (s *Store) CompleteTask(id string) error {
	res, err := s.db.Exec(`UPDATE tasks SET status = ? WHERE id = ? AND deleted = 0`,
		TaskStatusCompleted, id)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s not found", id)
	}
	return nil
}

// DeleteTask soft-deletes a task; its title becomes reusable.
func (s *Store) DeleteTask(id string) error {
	_, err := s.db.Exec(`UPDATE tasks SET deleted = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func scanTasks(rows *sql.Rows) ([]*Task, error) {
	var out []*Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.DueDate, &t.OriginType, &t.OriginID, &t.ContactID, &t.TranscriptID,
			&t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, &t)
	}
	return out, nil
}
