package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/llamaio/task-api/internal/models"
	"github.com/llamaio/task-api/internal/repository"
	"github.com/llamaio/task-api/pkg/apierror"
)

type TaskService struct {
	tasks TaskStore
	users UserStore
	rel   *RelationshipService
}

func NewTaskService(tasks TaskStore, users UserStore, rel *RelationshipService) *TaskService {
	return &TaskService{
		tasks: tasks,
		users: users,
		rel:   rel,
	}
}

func (s *TaskService) List(ctx context.Context, opts repository.QueryOptions) ([]models.Task, error) {
	return s.tasks.Find(ctx, opts)
}

func (s *TaskService) Count(ctx context.Context, where map[string]interface{}) (int, error) {
	return s.tasks.Count(ctx, where)
}

// Create validates the body, resolves the assignee through the relationship
// service, and inserts the task.
func (s *TaskService) Create(ctx context.Context, body map[string]interface{}) (*models.Task, error) {
	payload, err := ExtractTaskPayload(body)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:               uuid.New(),
		Name:             payload.Name,
		Description:      payload.Description,
		Deadline:         payload.Deadline,
		Completed:        payload.Completed,
		AssignedUserName: models.UnassignedName,
		DateCreated:      time.Now().UTC(),
	}

	if _, err := s.rel.AssignTask(ctx, task, payload.AssignedUser, task.Completed); err != nil {
		return nil, err
	}
	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apierror.NotFound("task not found")
	}
	return task, nil
}

// Update replaces the task's fields with the body and reconciles the
// assignment before persisting.
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, body map[string]interface{}) (*models.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := ExtractTaskPayload(body)
	if err != nil {
		return nil, err
	}

	task.Name = payload.Name
	task.Description = payload.Description
	task.Deadline = payload.Deadline
	task.Completed = payload.Completed

	if _, err := s.rel.AssignTask(ctx, task, payload.AssignedUser, task.Completed); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes the task and, after the delete succeeds, pulls its id from
// the assignee's pending set.
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return nil, err
	}
	if task.AssignedUser.Valid {
		if err := s.users.RemovePendingTask(ctx, task.AssignedUser.UUID, task.ID); err != nil {
			return nil, err
		}
	}
	return task, nil
}
