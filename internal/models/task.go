package models

import (
	"time"

	"github.com/google/uuid"
)

// UnassignedName is the denormalized assignee name stored on a task with no
// assignee. It exists only in the persisted and rendered record; in memory
// the optional assignee is AssignedUser.Valid.
const UnassignedName = "unassigned"

// Task is a unit of work with a deadline, optionally assigned to one user.
//
// Invariant: when AssignedUser is set and Completed is false, the referenced
// user's pending set contains this task's id, and AssignedUserName mirrors
// that user's name as of the last relationship mutation. All three fields are
// mutated only through the relationship service.
type Task struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	Name             string        `json:"name" db:"name"`
	Description      string        `json:"description" db:"description"`
	Deadline         time.Time     `json:"deadline" db:"deadline"`
	Completed        bool          `json:"completed" db:"completed"`
	AssignedUser     uuid.NullUUID `json:"assignedUser" db:"assigned_user"`
	AssignedUserName string        `json:"assignedUserName" db:"assigned_user_name"`
	DateCreated      time.Time     `json:"dateCreated" db:"date_created"`
}

// ClearAssignment resets the task to the unassigned state.
func (t *Task) ClearAssignment() {
	t.AssignedUser = uuid.NullUUID{}
	t.AssignedUserName = UnassignedName
}

// AssignedTo reports whether the task is currently assigned to userID.
func (t *Task) AssignedTo(userID uuid.UUID) bool {
	return t.AssignedUser.Valid && t.AssignedUser.UUID == userID
}
