package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llamaio/task-api/internal/models"
	"github.com/llamaio/task-api/pkg/apierror"
)

func newTaskService(f *fixture) *TaskService {
	return NewTaskService(f.tasks, f.users, f.rel)
}

func TestTaskServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an assigned task", func(t *testing.T) {
		f := newFixture()
		svc := newTaskService(f)
		user := f.seedUser("Alice", "alice@example.com")

		task, err := svc.Create(ctx, map[string]interface{}{
			"name":         "write report",
			"deadline":     "2026-10-01T12:00:00Z",
			"assignedUser": user.ID.String(),
		})
		require.NoError(t, err)
		assert.True(t, task.AssignedTo(user.ID))
		assert.Equal(t, "Alice", task.AssignedUserName)
		assert.False(t, task.DateCreated.IsZero())

		stored, ok := f.tasks.Snapshot(task.ID)
		require.True(t, ok)
		assert.Equal(t, "write report", stored.Name)
		storedUser, _ := f.users.Snapshot(user.ID)
		assert.True(t, storedUser.PendingTasks.Contains(task.ID))
	})

	t.Run("creates unassigned task with sentinel name", func(t *testing.T) {
		f := newFixture()
		svc := newTaskService(f)

		task, err := svc.Create(ctx, map[string]interface{}{
			"name":     "write report",
			"deadline": "2026-10-01T12:00:00Z",
		})
		require.NoError(t, err)
		assert.False(t, task.AssignedUser.Valid)
		assert.Equal(t, models.UnassignedName, task.AssignedUserName)
	})

	t.Run("nonexistent assignee fails and inserts nothing", func(t *testing.T) {
		f := newFixture()
		svc := newTaskService(f)

		_, err := svc.Create(ctx, map[string]interface{}{
			"name":         "write report",
			"deadline":     "2026-10-01T12:00:00Z",
			"assignedUser": uuid.NewString(),
		})
		require.Error(t, err)
		assert.Equal(t, apierror.KindReferenceNotFound, apierror.KindOf(err))
		assert.Empty(t, f.tasks.All())
	})
}

func TestTaskServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("reassigns and persists", func(t *testing.T) {
		f := newFixture()
		svc := newTaskService(f)
		userA := f.seedUser("Alice", "alice@example.com")
		userB := f.seedUser("Bob", "bob@example.com")
		task := f.seedTask("write report", &userA, false)
		f.users.Seed(models.User{ID: userA.ID, Name: userA.Name, Email: userA.Email,
			PendingTasks: models.UUIDSlice{task.ID}})

		updated, err := svc.Update(ctx, task.ID, map[string]interface{}{
			"name":         "write report v2",
			"deadline":     "2026-10-01T12:00:00Z",
			"assignedUser": userB.ID.String(),
		})
		require.NoError(t, err)
		assert.True(t, updated.AssignedTo(userB.ID))

		storedA, _ := f.users.Snapshot(userA.ID)
		storedB, _ := f.users.Snapshot(userB.ID)
		assert.Empty(t, storedA.PendingTasks)
		assert.True(t, storedB.PendingTasks.Contains(task.ID))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		f := newFixture()
		svc := newTaskService(f)
		_, err := svc.Update(ctx, uuid.New(), map[string]interface{}{
			"name":     "x",
			"deadline": "2026-10-01T12:00:00Z",
		})
		require.Error(t, err)
		assert.Equal(t, 404, apierror.StatusOf(err))
	})
}

func TestTaskServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("pulls the id from the assignee's pending set", func(t *testing.T) {
		f := newFixture()
		svc := newTaskService(f)
		user := f.seedUser("Alice", "alice@example.com")
		task := f.seedTask("write report", &user, false)
		f.users.Seed(models.User{ID: user.ID, Name: user.Name, Email: user.Email,
			PendingTasks: models.UUIDSlice{task.ID}})

		deleted, err := svc.Delete(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, deleted.ID)

		_, ok := f.tasks.Snapshot(task.ID)
		assert.False(t, ok)
		storedUser, _ := f.users.Snapshot(user.ID)
		assert.Empty(t, storedUser.PendingTasks)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		f := newFixture()
		svc := newTaskService(f)
		_, err := svc.Delete(ctx, uuid.New())
		require.Error(t, err)
		assert.Equal(t, 404, apierror.StatusOf(err))
	})
}
