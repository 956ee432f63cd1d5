package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/llamaio/task-api/internal/models"
	"github.com/llamaio/task-api/internal/repository"
	"github.com/llamaio/task-api/pkg/apierror"
)

type UserService struct {
	users UserStore
	tasks TaskStore
	rel   *RelationshipService
}

func NewUserService(users UserStore, tasks TaskStore, rel *RelationshipService) *UserService {
	return &UserService{
		users: users,
		tasks: tasks,
		rel:   rel,
	}
}

func (s *UserService) List(ctx context.Context, opts repository.QueryOptions) ([]models.User, error) {
	return s.users.Find(ctx, opts)
}

func (s *UserService) Count(ctx context.Context, where map[string]interface{}) (int, error) {
	return s.users.Count(ctx, where)
}

// Create inserts the user and, when a pending-task list was supplied, syncs
// it through the relationship service. Returns the fresh record.
func (s *UserService) Create(ctx context.Context, body map[string]interface{}) (*models.User, error) {
	payload, err := ExtractUserPayload(body)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailUnique(ctx, payload.Email, uuid.NullUUID{}); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         payload.Name,
		Email:        payload.Email,
		PendingTasks: models.UUIDSlice{},
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	if payload.HasPendingTasks {
		if err := s.rel.SyncPendingTasks(ctx, user, payload.PendingTasks); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, user.ID)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apierror.NotFound("user not found")
	}
	return user, nil
}

// Update rewrites name and email. With a pending-task list the whole
// relationship is re-synced; without one the user is persisted as-is and the
// denormalized assignee name on their tasks is refreshed.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, body map[string]interface{}) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := ExtractUserPayload(body)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailUnique(ctx, payload.Email, uuid.NullUUID{UUID: id, Valid: true}); err != nil {
		return nil, err
	}

	user.Name = payload.Name
	user.Email = payload.Email

	if payload.HasPendingTasks {
		if err := s.rel.SyncPendingTasks(ctx, user, payload.PendingTasks); err != nil {
			return nil, err
		}
	} else {
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		if err := s.tasks.RefreshAssigneeName(ctx, user.ID, user.Name); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, user.ID)
}

// Delete unassigns every task pointing at the user, then removes the user.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.rel.UnassignAllForUser(ctx, id); err != nil {
		return nil, err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ensureEmailUnique(ctx context.Context, email string, exclude uuid.NullUUID) error {
	existing, err := s.users.FindByEmail(ctx, email, exclude)
	if err != nil {
		return err
	}
	if existing != nil {
		return apierror.DuplicateEmail()
	}
	return nil
}
