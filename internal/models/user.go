package models

import "github.com/google/uuid"

// User is a person who may be assigned tasks.
//
// Invariant: every id in PendingTasks references a task whose AssignedUser is
// this user and whose Completed is false. The converse holds on the task
// side; the relationship service is the only writer of either.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PendingTasks UUIDSlice `json:"pendingTasks" db:"pending_tasks"`
}
