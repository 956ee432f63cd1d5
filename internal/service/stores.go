package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/llamaio/task-api/internal/models"
	"github.com/llamaio/task-api/internal/repository"
)

// TaskStore is the per-collection access the services need for tasks. Every
// method is a single atomic store operation; no two calls are jointly
// transactional.
type TaskStore interface {
	Insert(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Task, error)
	Find(ctx context.Context, opts repository.QueryOptions) ([]models.Task, error)
	Count(ctx context.Context, where map[string]interface{}) (int, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	UnassignAllForUser(ctx context.Context, userID uuid.UUID) error
	ClearAssignments(ctx context.Context, taskIDs []uuid.UUID, ownerID uuid.UUID) error
	RefreshAssigneeName(ctx context.Context, userID uuid.UUID, name string) error
}

// UserStore is the per-collection access the services need for users.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string, exclude uuid.NullUUID) (*models.User, error)
	Find(ctx context.Context, opts repository.QueryOptions) ([]models.User, error)
	Count(ctx context.Context, where map[string]interface{}) (int, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddPendingTask(ctx context.Context, userID, taskID uuid.UUID) error
	RemovePendingTask(ctx context.Context, userID, taskID uuid.UUID) error
}
