package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "pomodoro/timer/internal/errors"
	"pomodoro/timer/internal/model"
	"pomodoro/timer/internal/repository"
)

const maxTaskNameLength = 200

type TaskService struct {
	repo *repository.TaskRepository
}

func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// List returns root tasks in creation order, each with its subtasks.
func (s *TaskService) List(ctx context.Context) ([]model.TaskGroup, *apperrors.APIError) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tasks")
		return nil, apperrors.Internal("failed to list tasks")
	}

	groups := make([]model.TaskGroup, 0)
	index := make(map[string]int)
	for _, task := range tasks {
		if task.ParentID == nil {
			index[task.ID] = len(groups)
			groups = append(groups, model.TaskGroup{Task: task, Subtasks: []model.Task{}})
		}
	}
	for _, task := range tasks {
		if task.ParentID == nil {
			continue
		}
		if i, ok := index[*task.ParentID]; ok {
			groups[i].Subtasks = append(groups[i].Subtasks, task)
		}
	}
	return groups, nil
}

func (s *TaskService) Create(ctx context.Context, name string, parentID *string) (*model.Task, *apperrors.APIError) {
	name, apiErr := normalizeTaskName(name)
	if apiErr != nil {
		return nil, apiErr
	}

	if parentID != nil {
		parent, err := s.repo.Get(ctx, *parentID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("parent_not_found", "parent task not found")
		}
		if err != nil {
			return nil, apperrors.Internal("failed to load parent task")
		}
		if parent.ParentID != nil {
			return nil, apperrors.BadRequest("nesting_too_deep", "subtasks cannot have subtasks").
				WithDetails(map[string]string{"rootTaskId": *parent.ParentID})
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Internal("failed to generate task id")
	}
	now := time.Now().UTC()
	task := model.Task{
		ID:        id.String(),
		Name:      name,
		Status:    model.TaskTodo,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, &task); err != nil {
		log.Error().Err(err).Msg("Failed to create task")
		return nil, apperrors.Internal("failed to create task")
	}
	return &task, nil
}

func (s *TaskService) Rename(ctx context.Context, id, name string) (*model.Task, *apperrors.APIError) {
	name, apiErr := normalizeTaskName(name)
	if apiErr != nil {
		return nil, apiErr
	}
	return s.update(ctx, id, func(task *model.Task) { task.Name = name })
}

// Advance moves the task to the next status in the todo, doing, done cycle.
func (s *TaskService) Advance(ctx context.Context, id string) (*model.Task, *apperrors.APIError) {
	return s.update(ctx, id, func(task *model.Task) { task.Status = task.Status.Next() })
}

func (s *TaskService) Delete(ctx context.Context, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to delete task")
		return apperrors.Internal("failed to delete task")
	}
	return nil
}

func (s *TaskService) update(ctx context.Context, id string, apply func(*model.Task)) (*model.Task, *apperrors.APIError) {
	task, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("task_not_found", "task not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load task")
	}

	apply(task)
	task.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, task); err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to update task")
		return nil, apperrors.Internal("failed to update task")
	}
	return task, nil
}

func normalizeTaskName(name string) (string, *apperrors.APIError) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.BadRequest("invalid_name", "name is required")
	}
	if len([]rune(name)) > maxTaskNameLength {
		return "", apperrors.BadRequest("invalid_name", "name is too long")
	}
	return name, nil
}
