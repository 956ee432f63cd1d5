package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/llamaio/task-api/internal/service"
	"github.com/llamaio/task-api/pkg/apierror"
)

// defaultTaskLimit caps unpaginated task listings.
const defaultTaskLimit = 100

type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := ParseQueryOptions(r.URL.Query(), QueryDefaults{DefaultLimit: defaultTaskLimit})
	if err != nil {
		SendError(w, err, "failed to fetch tasks")
		return
	}

	if opts.CountOnly {
		count, err := h.tasks.Count(r.Context(), opts.Store.Where)
		if err != nil {
			SendError(w, err, "failed to fetch tasks")
			return
		}
		Send(w, http.StatusOK, "Task count retrieved", map[string]int{"count": count})
		return
	}

	tasks, err := h.tasks.List(r.Context(), opts.Store)
	if err != nil {
		SendError(w, err, "failed to fetch tasks")
		return
	}

	if opts.Select != nil {
		projected, err := opts.Select.ApplyAll(tasks)
		if err != nil {
			SendError(w, err, "failed to fetch tasks")
			return
		}
		Send(w, http.StatusOK, "Tasks retrieved", projected)
		return
	}
	Send(w, http.StatusOK, "Tasks retrieved", tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		SendError(w, err, "failed to create task")
		return
	}

	task, err := h.tasks.Create(r.Context(), body)
	if err != nil {
		SendError(w, err, "failed to create task")
		return
	}
	Send(w, http.StatusCreated, "Task created", task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "task not found")
	if err != nil {
		SendError(w, err, "failed to fetch task")
		return
	}

	opts, err := ParseQueryOptions(r.URL.Query(), QueryDefaults{})
	if err != nil {
		SendError(w, err, "failed to fetch task")
		return
	}

	task, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		SendError(w, err, "failed to fetch task")
		return
	}

	if opts.Select != nil {
		projected, err := opts.Select.Apply(task)
		if err != nil {
			SendError(w, err, "failed to fetch task")
			return
		}
		Send(w, http.StatusOK, "Task retrieved", projected)
		return
	}
	Send(w, http.StatusOK, "Task retrieved", task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "task not found")
	if err != nil {
		SendError(w, err, "failed to update task")
		return
	}

	body, err := decodeBody(r)
	if err != nil {
		SendError(w, err, "failed to update task")
		return
	}

	task, err := h.tasks.Update(r.Context(), id, body)
	if err != nil {
		SendError(w, err, "failed to update task")
		return
	}
	Send(w, http.StatusOK, "Task updated", task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "task not found")
	if err != nil {
		SendError(w, err, "failed to delete task")
		return
	}

	task, err := h.tasks.Delete(r.Context(), id)
	if err != nil {
		SendError(w, err, "failed to delete task")
		return
	}
	Send(w, http.StatusOK, "Task deleted", task)
}

// pathID parses the {id} path segment. A malformed id is reported as the
// resource not existing, not as a bad request.
func pathID(r *http.Request, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.UUID{}, apierror.NotFound(notFound)
	}
	return id, nil
}

func decodeBody(r *http.Request) (map[string]interface{}, error) {
	body := map[string]interface{}{}
	if r.Body == nil {
		return body, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, apierror.BadRequest("invalid JSON body")
	}
	return body, nil
}
