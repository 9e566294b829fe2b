package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pomodoro/timer/internal/model"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, name, status, parent_id, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	var parentID interface{}
	if task.ParentID != nil {
		parentID = *task.ParentID
	}
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO tasks (id, name, status, parent_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.Name,
		task.Status,
		parentID,
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// List returns all tasks in creation order.
func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE tasks SET name = ?, status = ?, updated_at = ? WHERE id = ?`,
		task.Name,
		task.Status,
		formatTime(task.UpdatedAt),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireAffected(result)
}

// Delete removes the task; subtasks go with it through the foreign key.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(s scanner) (*model.Task, error) {
	task := model.Task{}
	var parentID sql.NullString
	var createdAt string
	var updatedAt string
	err := s.Scan(&task.ID, &task.Name, &task.Status, &parentID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if parentID.Valid {
		value := parentID.String
		task.ParentID = &value
	}
	task.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse task created_at: %w", err)
	}
	task.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse task updated_at: %w", err)
	}
	return &task, nil
}
