package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskman/internal/apperr"
	"taskman/internal/auth"
	"taskman/internal/models"
)

// maxListLimit caps a single page. Out-of-range limits are clamped here
// rather than rejected, so a sloppy caller can never trigger an unbounded
// scan.
const maxListLimit = 100

// TaskStore is the only way to touch task rows. Every method takes an
// auth.Actor, which only the guard can produce, and every query carries an
// owner_id predicate. "Does not exist" and "exists but belongs to someone
// else" are deliberately the same apperr.ErrTaskNotFound: callers cannot
// probe for other users' task ids.
type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

// TaskInput carries the caller-settable fields for a new task.
type TaskInput struct {
	Title       string
	Description string
	Priority    string
	Category    string
}

// TaskUpdate carries a partial update; nil means "leave unchanged".
type TaskUpdate struct {
	Title       *string
	Description *string
	IsCompleted *bool
	Priority    *string
	Category    *string
}

// Create inserts a task owned by the actor. Title must be non-empty;
// priority defaults to medium.
func (s *TaskStore) Create(ctx context.Context, actor auth.Actor, in TaskInput) (models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Task{}, apperr.NewValidation("title", "must not be empty")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(in.Priority) {
		return models.Task{}, apperr.NewValidation("priority", "must be one of low, medium, high")
	}

	now := time.Now().UTC()
	task := models.Task{
		OwnerID:     actor.UserID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tasks (owner_id, title, description, is_completed, priority, category, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		task.OwnerID, task.Title, task.Description, task.IsCompleted,
		task.Priority, task.Category, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}

	return task, nil
}

// List returns the actor's tasks in creation order. skip below zero is
// treated as zero; limit outside (0, maxListLimit] is clamped to the max.
// A user with no tasks gets an empty slice, not an error.
func (s *TaskStore) List(ctx context.Context, actor auth.Actor, skip, limit int) ([]models.Task, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, title, description, is_completed, priority, category, created_at, updated_at
		 FROM tasks WHERE owner_id = $1
		 ORDER BY id
		 OFFSET $2 LIMIT $3`,
		actor.UserID(), skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := scanTask(rows.Scan, &task); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

// Get fetches one of the actor's tasks by id.
func (s *TaskStore) Get(ctx context.Context, actor auth.Actor, taskID int) (models.Task, error) {
	var task models.Task
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, is_completed, priority, category, created_at, updated_at
		 FROM tasks WHERE id = $1 AND owner_id = $2`,
		taskID, actor.UserID())
	if err := scanTask(row.Scan, &task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, apperr.ErrTaskNotFound
		}
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// Update applies only the supplied fields and bumps updated_at. The row is
// locked for the duration so a concurrent mutation cannot interleave, and a
// vanished row (deleted between lock and write) still reports not-found.
func (s *TaskStore) Update(ctx context.Context, actor auth.Actor, taskID int, in TaskUpdate) (models.Task, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return models.Task{}, apperr.NewValidation("title", "must not be empty")
	}
	if in.Priority != nil && !models.ValidPriority(*in.Priority) {
		return models.Task{}, apperr.NewValidation("priority", "must be one of low, medium, high")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var task models.Task
	row := tx.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, is_completed, priority, category, created_at, updated_at
		 FROM tasks WHERE id = $1 AND owner_id = $2
		 FOR UPDATE`,
		taskID, actor.UserID())
	if err := scanTask(row.Scan, &task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, apperr.ErrTaskNotFound
		}
		return models.Task{}, fmt.Errorf("lock task: %w", err)
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.IsCompleted != nil {
		task.IsCompleted = *in.IsCompleted
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.Category != nil {
		task.Category = *in.Category
	}
	task.UpdatedAt = time.Now().UTC()

	res, err := tx.ExecContext(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, is_completed = $3, priority = $4, category = $5, updated_at = $6
		 WHERE id = $7 AND owner_id = $8`,
		task.Title, task.Description, task.IsCompleted, task.Priority, task.Category, task.UpdatedAt,
		task.ID, task.OwnerID)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if n == 0 {
		return models.Task{}, apperr.ErrTaskNotFound
	}

	if err := tx.Commit(); err != nil {
		return models.Task{}, fmt.Errorf("commit update: %w", err)
	}
	return task, nil
}

// Delete removes one of the actor's tasks. A single statement settles
// existence, ownership and removal at once; zero rows affected is the
// authoritative not-found signal.
func (s *TaskStore) Delete(ctx context.Context, actor auth.Actor, taskID int) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2`,
		taskID, actor.UserID())
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrTaskNotFound
	}
	return nil
}

func scanTask(scan func(dest ...interface{}) error, task *models.Task) error {
	return scan(&task.ID, &task.OwnerID, &task.Title, &task.Description, &task.IsCompleted,
		&task.Priority, &task.Category, &task.CreatedAt, &task.UpdatedAt)
}
