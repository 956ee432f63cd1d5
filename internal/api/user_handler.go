package api

import (
	"net/http"

	"github.com/llamaio/task-api/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := ParseQueryOptions(r.URL.Query(), QueryDefaults{})
	if err != nil {
		SendError(w, err, "failed to fetch users")
		return
	}

	if opts.CountOnly {
		count, err := h.users.Count(r.Context(), opts.Store.Where)
		if err != nil {
			SendError(w, err, "failed to fetch users")
			return
		}
		Send(w, http.StatusOK, "User count retrieved", map[string]int{"count": count})
		return
	}

	users, err := h.users.List(r.Context(), opts.Store)
	if err != nil {
		SendError(w, err, "failed to fetch users")
		return
	}

	if opts.Select != nil {
		projected, err := opts.Select.ApplyAll(users)
		if err != nil {
			SendError(w, err, "failed to fetch users")
			return
		}
		Send(w, http.StatusOK, "Users retrieved", projected)
		return
	}
	Send(w, http.StatusOK, "Users retrieved", users)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		SendError(w, err, "failed to create user")
		return
	}

	user, err := h.users.Create(r.Context(), body)
	if err != nil {
		SendError(w, err, "failed to create user")
		return
	}
	Send(w, http.StatusCreated, "User created", user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user not found")
	if err != nil {
		SendError(w, err, "failed to fetch user")
		return
	}

	opts, err := ParseQueryOptions(r.URL.Query(), QueryDefaults{})
	if err != nil {
		SendError(w, err, "failed to fetch user")
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		SendError(w, err, "failed to fetch user")
		return
	}

	if opts.Select != nil {
		projected, err := opts.Select.Apply(user)
		if err != nil {
			SendError(w, err, "failed to fetch user")
			return
		}
		Send(w, http.StatusOK, "User retrieved", projected)
		return
	}
	Send(w, http.StatusOK, "User retrieved", user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user not found")
	if err != nil {
		SendError(w, err, "failed to update user")
		return
	}

	body, err := decodeBody(r)
	if err != nil {
		SendError(w, err, "failed to update user")
		return
	}

	user, err := h.users.Update(r.Context(), id, body)
	if err != nil {
		SendError(w, err, "failed to update user")
		return
	}
	Send(w, http.StatusOK, "User updated", user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user not found")
	if err != nil {
		SendError(w, err, "failed to delete user")
		return
	}

	user, err := h.users.Delete(r.Context(), id)
	if err != nil {
		SendError(w, err, "failed to delete user")
		return
	}
	Send(w, http.StatusOK, "User deleted", user)
}
