package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/llamaio/task-api/internal/ident"
	"github.com/llamaio/task-api/internal/models"
	"github.com/llamaio/task-api/pkg/apierror"
)

// RelationshipService keeps the task/user relationship consistent: a task is
// assigned to at most one user, and a user's pending set holds exactly the
// ids of their incomplete assigned tasks. It is the only writer of
// Task.AssignedUser, Task.AssignedUserName, and User.PendingTasks.
//
// The store offers no cross-collection transaction, so each operation is an
// ordered sequence of single-collection writes. A failure aborts the
// remaining steps and leaves already-applied writes in place.
type RelationshipService struct {
	tasks TaskStore
	users UserStore
}

func NewRelationshipService(tasks TaskStore, users UserStore) *RelationshipService {
	return &RelationshipService{
		tasks: tasks,
		users: users,
	}
}

// AssignTask sets or clears the task's assignee and reconciles both users'
// pending sets. rawAssignee is an untrusted reference; null or empty means
// unassign. completed is the task's target completed state: an incomplete
// task is added to the new assignee's pending set, a completed one removed.
//
// The task is mutated in memory only; the caller persists it. When the
// referenced user does not exist the task is returned unmutated and no
// pending-set write has happened.
func (s *RelationshipService) AssignTask(ctx context.Context, task *models.Task, rawAssignee interface{}, completed bool) (*models.User, error) {
	previous := task.AssignedUser

	normalized, err := ident.Normalize(rawAssignee, "assignedUser")
	if err != nil {
		return nil, err
	}

	var assignee *models.User
	if !normalized.Valid {
		task.ClearAssignment()
	} else {
		user, err := s.users.GetByID(ctx, normalized.UUID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apierror.ReferenceNotFound("assigned user does not exist")
		}
		assignee = user
		task.AssignedUser = uuid.NullUUID{UUID: user.ID, Valid: true}
		task.AssignedUserName = user.Name

		if !completed {
			if err := s.users.AddPendingTask(ctx, user.ID, task.ID); err != nil {
				return nil, err
			}
		} else {
			if err := s.users.RemovePendingTask(ctx, user.ID, task.ID); err != nil {
				return nil, err
			}
		}
	}

	if previous.Valid && (!normalized.Valid || previous.UUID != normalized.UUID) {
		if err := s.users.RemovePendingTask(ctx, previous.UUID, task.ID); err != nil {
			return nil, err
		}
	}

	return assignee, nil
}

// SyncPendingTasks replaces the user's entire pending set with rawIDs and
// reconciles every affected task. Tasks dropped from the set are unassigned
// (guarded on the current assignee, so a concurrently reassigned task is left
// alone); tasks in the new list are claimed for this user and forced
// incomplete. The user record, pending set included, is persisted last.
func (s *RelationshipService) SyncPendingTasks(ctx context.Context, user *models.User, rawIDs interface{}) error {
	ids, err := ident.NormalizeArray(rawIDs, "pendingTasks")
	if err != nil {
		return err
	}

	tasks, err := s.tasks.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(tasks) != len(ids) {
		return apierror.ReferenceNotFound("one or more pending tasks do not exist")
	}

	requested := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}

	var dropped []uuid.UUID
	for _, id := range user.PendingTasks {
		if !requested[id] {
			dropped = append(dropped, id)
		}
	}
	if len(dropped) > 0 {
		if err := s.tasks.ClearAssignments(ctx, dropped, user.ID); err != nil {
			return err
		}
	}

	byID := make(map[uuid.UUID]*models.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}

	for _, id := range ids {
		task := byID[id]
		if task.AssignedUser.Valid && task.AssignedUser.UUID != user.ID {
			if err := s.users.RemovePendingTask(ctx, task.AssignedUser.UUID, task.ID); err != nil {
				return err
			}
		}

		task.AssignedUser = uuid.NullUUID{UUID: user.ID, Valid: true}
		task.AssignedUserName = user.Name
		// Listing a task as pending reopens it, even when it was complete.
		task.Completed = false
		if err := s.tasks.Update(ctx, task); err != nil {
			return err
		}
	}

	user.PendingTasks = models.UUIDSlice(ids)
	return s.users.Update(ctx, user)
}

// UnassignAllForUser clears the assignment of every task assigned to userID
// in one bulk write. The user record itself is untouched; callers delete it
// afterward.
func (s *RelationshipService) UnassignAllForUser(ctx context.Context, userID uuid.UUID) error {
	return s.tasks.UnassignAllForUser(ctx, userID)
}
