// Package storetest provides in-memory TaskStore and UserStore
// implementations for tests. Each method behaves like one atomic store call
// on a single collection, and records are copied on the way in and out so a
// caller mutating a loaded record changes nothing until it writes it back.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/llamaio/task-api/internal/models"
	"github.com/llamaio/task-api/internal/repository"
)

type MemoryTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]models.Task
	order []uuid.UUID
}

func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[uuid.UUID]models.Task)}
}

// Seed stores a task directly, bypassing any consistency checks.
func (s *MemoryTaskStore) Seed(task models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.ID]; !exists {
		s.order = append(s.order, task.ID)
	}
	s.tasks[task.ID] = copyTask(task)
}

// Snapshot returns the current stored record for assertions.
func (s *MemoryTaskStore) Snapshot(id uuid.UUID) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	return copyTask(task), ok
}

func (s *MemoryTaskStore) Insert(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("duplicate task id %s", task.ID)
	}
	s.order = append(s.order, task.ID)
	s.tasks[task.ID] = copyTask(*task)
	return nil
}

func (s *MemoryTaskStore) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	out := copyTask(task)
	return &out, nil
}

func (s *MemoryTaskStore) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Task{}
	for _, id := range ids {
		if task, ok := s.tasks[id]; ok {
			out = append(out, copyTask(task))
		}
	}
	return out, nil
}

func (s *MemoryTaskStore) Find(_ context.Context, opts repository.QueryOptions) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Task{}
	for _, id := range s.order {
		task := s.tasks[id]
		if matchesTask(task, opts.Where) {
			out = append(out, copyTask(task))
		}
	}
	sortTasks(out, opts.Sort)
	return paginate(out, opts.Skip, opts.Limit), nil
}

func (s *MemoryTaskStore) Count(_ context.Context, where map[string]interface{}) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, task := range s.tasks {
		if matchesTask(task, where) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryTaskStore) Update(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return nil
	}
	s.tasks[task.ID] = copyTask(*task)
	return nil
}

func (s *MemoryTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryTaskStore) UnassignAllForUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, task := range s.tasks {
		if task.AssignedTo(userID) {
			task.ClearAssignment()
			s.tasks[id] = task
		}
	}
	return nil
}

func (s *MemoryTaskStore) ClearAssignments(_ context.Context, taskIDs []uuid.UUID, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range taskIDs {
		task, ok := s.tasks[id]
		if !ok || !task.AssignedTo(ownerID) {
			continue
		}
		task.ClearAssignment()
		s.tasks[id] = task
	}
	return nil
}

func (s *MemoryTaskStore) RefreshAssigneeName(_ context.Context, userID uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, task := range s.tasks {
		if task.AssignedTo(userID) {
			task.AssignedUserName = name
			s.tasks[id] = task
		}
	}
	return nil
}

// All returns every stored task in insertion order.
func (s *MemoryTaskStore) All() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyTask(s.tasks[id]))
	}
	return out
}

type MemoryUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
	order []uuid.UUID
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uuid.UUID]models.User)}
}

func (s *MemoryUserStore) Seed(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.ID]; !exists {
		s.order = append(s.order, user.ID)
	}
	s.users[user.ID] = copyUser(user)
}

func (s *MemoryUserStore) Snapshot(id uuid.UUID) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	return copyUser(user), ok
}

func (s *MemoryUserStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("duplicate user id %s", user.ID)
	}
	s.order = append(s.order, user.ID)
	s.users[user.ID] = copyUser(*user)
	return nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	out := copyUser(user)
	return &out, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string, exclude uuid.NullUUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		user := s.users[id]
		if user.Email != email {
			continue
		}
		if exclude.Valid && user.ID == exclude.UUID {
			continue
		}
		out := copyUser(user)
		return &out, nil
	}
	return nil, nil
}

func (s *MemoryUserStore) Find(_ context.Context, opts repository.QueryOptions) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, id := range s.order {
		user := s.users[id]
		if matchesUser(user, opts.Where) {
			out = append(out, copyUser(user))
		}
	}
	sortUsers(out, opts.Sort)
	return paginate(out, opts.Skip, opts.Limit), nil
}

func (s *MemoryUserStore) Count(_ context.Context, where map[string]interface{}) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, user := range s.users {
		if matchesUser(user, where) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryUserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return nil
	}
	s.users[user.ID] = copyUser(*user)
	return nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryUserStore) AddPendingTask(_ context.Context, userID, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil
	}
	if !user.PendingTasks.Contains(taskID) {
		user.PendingTasks = append(user.PendingTasks, taskID)
		s.users[userID] = user
	}
	return nil
}

func (s *MemoryUserStore) RemovePendingTask(_ context.Context, userID, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil
	}
	user.PendingTasks = user.PendingTasks.Without(taskID)
	s.users[userID] = user
	return nil
}

// All returns every stored user in insertion order.
func (s *MemoryUserStore) All() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyUser(s.users[id]))
	}
	return out
}

func copyTask(task models.Task) models.Task {
	return task
}

func copyUser(user models.User) models.User {
	out := user
	out.PendingTasks = append(models.UUIDSlice{}, user.PendingTasks...)
	return out
}

func matchesTask(task models.Task, where map[string]interface{}) bool {
	for field, value := range where {
		switch field {
		case "completed":
			want, ok := value.(bool)
			if !ok || task.Completed != want {
				return false
			}
		case "assignedUser":
			if value == nil {
				if task.AssignedUser.Valid {
					return false
				}
				continue
			}
			want, ok := value.(string)
			if !ok || !task.AssignedUser.Valid || task.AssignedUser.UUID.String() != want {
				return false
			}
		case "name":
			if task.Name != value {
				return false
			}
		case "assignedUserName":
			if task.AssignedUserName != value {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func matchesUser(user models.User, where map[string]interface{}) bool {
	for field, value := range where {
		switch field {
		case "name":
			if user.Name != value {
				return false
			}
		case "email":
			if user.Email != value {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func sortTasks(tasks []models.Task, fields []repository.SortField) {
	for i := len(fields) - 1; i >= 0; i-- {
		field := fields[i]
		sort.SliceStable(tasks, func(a, b int) bool {
			var less bool
			switch field.Field {
			case "name":
				less = tasks[a].Name < tasks[b].Name
			case "deadline":
				less = tasks[a].Deadline.Before(tasks[b].Deadline)
			case "dateCreated":
				less = tasks[a].DateCreated.Before(tasks[b].DateCreated)
			default:
				return false
			}
			if field.Desc {
				return !less
			}
			return less
		})
	}
}

func sortUsers(users []models.User, fields []repository.SortField) {
	for i := len(fields) - 1; i >= 0; i-- {
		field := fields[i]
		sort.SliceStable(users, func(a, b int) bool {
			var less bool
			switch field.Field {
			case "name":
				less = users[a].Name < users[b].Name
			case "email":
				less = users[a].Email < users[b].Email
			default:
				return false
			}
			if field.Desc {
				return !less
			}
			return less
		})
	}
}

func paginate[T any](items []T, skip uint64, limit *uint64) []T {
	if skip >= uint64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit != nil && *limit < uint64(len(items)) {
		items = items[:*limit]
	}
	return items
}
