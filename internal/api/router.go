package api

import (
	"net/http"

	"github.com/llamaio/task-api/internal/service"
)

// SetupRouter wires the handlers onto a mux wrapped in the shared middleware.
func SetupRouter(tasks *service.TaskService, users *service.UserService) http.Handler {
	mux := http.NewServeMux()

	taskHandler := NewTaskHandler(tasks)
	userHandler := NewUserHandler(users)

	mux.HandleFunc("GET /api", home)

	mux.HandleFunc("GET /api/tasks", taskHandler.List)
	mux.HandleFunc("POST /api/tasks", taskHandler.Create)
	mux.HandleFunc("GET /api/tasks/{id}", taskHandler.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", taskHandler.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", taskHandler.Delete)

	mux.HandleFunc("GET /api/users", userHandler.List)
	mux.HandleFunc("POST /api/users", userHandler.Create)
	mux.HandleFunc("GET /api/users/{id}", userHandler.Get)
	mux.HandleFunc("PUT /api/users/{id}", userHandler.Update)
	mux.HandleFunc("DELETE /api/users/{id}", userHandler.Delete)

	return AllowCrossDomain(RequestLogger(mux))
}

func home(w http.ResponseWriter, _ *http.Request) {
	Send(w, http.StatusOK, "Welcome to Llama.io Task API", map[string]interface{}{
		"status": "ready",
		"theme": map[string]string{
			"primary":   "#1F3C88",
			"secondary": "#A9B3C1",
			"neutral":   "#F4F6FA",
		},
	})
}
