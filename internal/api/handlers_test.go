package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llamaio/task-api/internal/models"
	"github.com/llamaio/task-api/internal/service"
	"github.com/llamaio/task-api/internal/storetest"
)

type testEnv struct {
	tasks  *storetest.MemoryTaskStore
	users  *storetest.MemoryUserStore
	router http.Handler
}

func newTestEnv() *testEnv {
	tasks := storetest.NewMemoryTaskStore()
	users := storetest.NewMemoryUserStore()
	rel := service.NewRelationshipService(tasks, users)
	return &testEnv{
		tasks:  tasks,
		users:  users,
		router: SetupRouter(service.NewTaskService(tasks, users, rel), service.NewUserService(users, tasks, rel)),
	}
}

func (e *testEnv) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestTaskEndpoints(t *testing.T) {
	t.Run("create get update delete round trip", func(t *testing.T) {
		env := newTestEnv()
		user := models.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
		env.users.Seed(user)

		rec, envelope := env.do(t, http.MethodPost, "/api/tasks",
			fmt.Sprintf(`{"name":"write report","deadline":"2026-10-01T12:00:00Z","assignedUser":%q}`, user.ID))
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Task created", envelope["message"])
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, "Alice", data["assignedUserName"])
		taskID := data["id"].(string)

		rec, envelope = env.do(t, http.MethodGet, "/api/tasks/"+taskID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		data = envelope["data"].(map[string]interface{})
		assert.Equal(t, "write report", data["name"])
		assert.Equal(t, user.ID.String(), data["assignedUser"])

		rec, _ = env.do(t, http.MethodPut, "/api/tasks/"+taskID,
			`{"name":"write report","deadline":"2026-10-01T12:00:00Z","completed":true}`)
		require.Equal(t, http.StatusOK, rec.Code)

		stored, _ := env.users.Snapshot(user.ID)
		assert.Empty(t, stored.PendingTasks, "completed update must clear pending set")

		rec, _ = env.do(t, http.MethodDelete, "/api/tasks/"+taskID, "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec, _ = env.do(t, http.MethodGet, "/api/tasks/"+taskID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed path id is a 404", func(t *testing.T) {
		env := newTestEnv()
		rec, envelope := env.do(t, http.MethodGet, "/api/tasks/not-a-uuid", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "task not found", envelope["message"])
	})

	t.Run("bad assignee reference is a 400", func(t *testing.T) {
		env := newTestEnv()
		rec, _ := env.do(t, http.MethodPost, "/api/tasks",
			`{"name":"x","deadline":"2026-10-01T12:00:00Z","assignedUser":"bad-id"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list supports select and count", func(t *testing.T) {
		env := newTestEnv()
		for i := 0; i < 3; i++ {
			env.tasks.Seed(models.Task{
				ID:               uuid.New(),
				Name:             fmt.Sprintf("task-%d", i),
				Deadline:         time.Now().Add(time.Hour),
				AssignedUserName: models.UnassignedName,
				DateCreated:      time.Now(),
			})
		}

		rec, envelope := env.do(t, http.MethodGet, `/api/tasks?select={"name":1}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
		items := envelope["data"].([]interface{})
		require.Len(t, items, 3)
		first := items[0].(map[string]interface{})
		assert.Contains(t, first, "name")
		assert.Contains(t, first, "id")
		assert.NotContains(t, first, "deadline")

		rec, envelope = env.do(t, http.MethodGet, "/api/tasks?count=true", "")
		require.Equal(t, http.StatusOK, rec.Code)
		counts := envelope["data"].(map[string]interface{})
		assert.Equal(t, float64(3), counts["count"])
	})
}

func TestUserEndpoints(t *testing.T) {
	t.Run("create with pending tasks syncs relationship", func(t *testing.T) {
		env := newTestEnv()
		task := models.Task{
			ID:               uuid.New(),
			Name:             "t1",
			Deadline:         time.Now().Add(time.Hour),
			AssignedUserName: models.UnassignedName,
			DateCreated:      time.Now(),
		}
		env.tasks.Seed(task)

		rec, envelope := env.do(t, http.MethodPost, "/api/users",
			fmt.Sprintf(`{"name":"Alice","email":"ALICE@example.com","pendingTasks":[%q]}`, task.ID))
		require.Equal(t, http.StatusCreated, rec.Code)
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, "alice@example.com", data["email"])
		pending := data["pendingTasks"].([]interface{})
		require.Len(t, pending, 1)
		assert.Equal(t, task.ID.String(), pending[0])

		stored, _ := env.tasks.Snapshot(task.ID)
		assert.Equal(t, "Alice", stored.AssignedUserName)
	})

	t.Run("duplicate email is a 400", func(t *testing.T) {
		env := newTestEnv()
		env.users.Seed(models.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"})

		rec, envelope := env.do(t, http.MethodPost, "/api/users",
			`{"name":"Other","email":"alice@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "a user with that email already exists", envelope["message"])
	})

	t.Run("delete cascades to assigned tasks", func(t *testing.T) {
		env := newTestEnv()
		user := models.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
		task := models.Task{
			ID:               uuid.New(),
			Name:             "t1",
			Deadline:         time.Now().Add(time.Hour),
			AssignedUser:     uuid.NullUUID{UUID: user.ID, Valid: true},
			AssignedUserName: user.Name,
			DateCreated:      time.Now(),
		}
		user.PendingTasks = models.UUIDSlice{task.ID}
		env.users.Seed(user)
		env.tasks.Seed(task)

		rec, _ := env.do(t, http.MethodDelete, "/api/users/"+user.ID.String(), "")
		require.Equal(t, http.StatusOK, rec.Code)

		stored, _ := env.tasks.Snapshot(task.ID)
		assert.False(t, stored.AssignedUser.Valid)
		assert.Equal(t, models.UnassignedName, stored.AssignedUserName)
	})
}

func TestHome(t *testing.T) {
	env := newTestEnv()
	rec, envelope := env.do(t, http.MethodGet, "/api", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, envelope["message"], "Task API")
}
