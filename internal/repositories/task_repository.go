package repositories

import (
	"context"
	"errors"

	"todos-app/backend/internal/apperr"
	"todos-app/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskRepository scopes every single-task operation by id AND owner.
// There is deliberately no FindByID without an owner: a task owned by
// another user must look exactly like a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByOwner(ctx context.Context, owner uuid.UUID) ([]models.Task, error)
	FindByIDAndOwner(ctx context.Context, id, owner uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	DeleteByIDAndOwner(ctx context.Context, id, owner uuid.UUID) error
	DeleteByOwner(ctx context.Context, owner uuid.UUID) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) FindByOwner(ctx context.Context, owner uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) FindByIDAndOwner(ctx context.Context, id, owner uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).First(&task, "id = ? AND user_id = ?", id, owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepository) DeleteByIDAndOwner(ctx context.Context, id, owner uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, "id = ? AND user_id = ?", id, owner)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteByOwner removes every task owned by a user. Idempotent: zero
// rows is a success, which lets the cleanup worker retry a partially
// failed account deletion.
func (r *taskRepository) DeleteByOwner(ctx context.Context, owner uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, "user_id = ?", owner)
	return result.RowsAffected, result.Error
}
