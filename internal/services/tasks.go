package services

import (
	"context"
	"time"
	"unicode/utf8"

	"todos-app/backend/internal/apperr"
	"todos-app/backend/internal/models"
	"todos-app/backend/internal/repositories"

	"github.com/gofrs/uuid"
)

// CreateTaskInput carries the fields accepted at task creation. Status
// and priority fall back to their defaults when omitted.
type CreateTaskInput struct {
	Title       string     `json:"title" validate:"required,max=100"`
	Description string     `json:"description" validate:"required,max=500"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate" validate:"required"`
}

// UpdateTaskInput is a partial update: nil fields keep their prior
// values.
type UpdateTaskInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

type TaskService interface {
	Create(ctx context.Context, owner uuid.UUID, in CreateTaskInput) (*models.Task, error)
	List(ctx context.Context, owner uuid.UUID) ([]models.Task, error)
	Get(ctx context.Context, owner, id uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, owner, id uuid.UUID, in UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

type taskService struct {
	tasks repositories.TaskRepository
}

func NewTaskService(tasks repositories.TaskRepository) TaskService {
	return &taskService{tasks: tasks}
}

func (s *taskService) Create(ctx context.Context, owner uuid.UUID, in CreateTaskInput) (*models.Task, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	status := models.StatusPending
	if in.Status != "" {
		status = models.TaskStatus(in.Status)
	}
	priority := models.PriorityMedium
	if in.Priority != "" {
		priority = models.TaskPriority(in.Priority)
	}

	var violations []apperr.FieldViolation
	if !status.Valid() {
		violations = append(violations, apperr.Violation("status", "must be one of pending, working, completed"))
	}
	if !priority.Valid() {
		violations = append(violations, apperr.Violation("priority", "must be one of low, medium, high"))
	}
	if in.DueDate != nil && !in.DueDate.After(time.Now()) {
		violations = append(violations, apperr.Violation("dueDate", "must be in the future"))
	}
	if len(violations) > 0 {
		return nil, apperr.NewValidation(violations...)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          id,
		UserID:      owner,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     *in.DueDate,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, owner uuid.UUID) ([]models.Task, error) {
	return s.tasks.FindByOwner(ctx, owner)
}

func (s *taskService) Get(ctx context.Context, owner, id uuid.UUID) (*models.Task, error) {
	return s.tasks.FindByIDAndOwner(ctx, id, owner)
}

func (s *taskService) Update(ctx context.Context, owner, id uuid.UUID, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.tasks.FindByIDAndOwner(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	var violations []apperr.FieldViolation
	if in.Title != nil {
		// Rune count, matching the validator max= rule used at creation.
		if *in.Title == "" || utf8.RuneCountInString(*in.Title) > 100 {
			violations = append(violations, apperr.Violation("title", "must be between 1 and 100 characters"))
		} else {
			task.Title = *in.Title
		}
	}
	if in.Description != nil {
		if *in.Description == "" || utf8.RuneCountInString(*in.Description) > 500 {
			violations = append(violations, apperr.Violation("description", "must be between 1 and 500 characters"))
		} else {
			task.Description = *in.Description
		}
	}
	if in.Status != nil {
		status := models.TaskStatus(*in.Status)
		if !status.Valid() {
			violations = append(violations, apperr.Violation("status", "must be one of pending, working, completed"))
		} else {
			task.Status = status
		}
	}
	if in.Priority != nil {
		priority := models.TaskPriority(*in.Priority)
		if !priority.Valid() {
			violations = append(violations, apperr.Violation("priority", "must be one of low, medium, high"))
		} else {
			task.Priority = priority
		}
	}
	if in.DueDate != nil {
		task.DueDate = *in.DueDate
	}
	if len(violations) > 0 {
		return nil, apperr.NewValidation(violations...)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.tasks.DeleteByIDAndOwner(ctx, id, owner)
}
