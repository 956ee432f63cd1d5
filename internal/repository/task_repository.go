package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/llamaio/task-api/internal/models"
)

// taskColumns maps persisted field names onto table columns.
var taskColumns = map[string]string{
	"id":               "id",
	"name":             "name",
	"description":      "description",
	"deadline":         "deadline",
	"completed":        "completed",
	"assignedUser":     "assigned_user",
	"assignedUserName": "assigned_user_name",
	"dateCreated":      "date_created",
}

const taskSelectColumns = "id, name, description, deadline, completed, assigned_user, assigned_user_name, date_created"

type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Insert(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, name, description, deadline, completed, assigned_user, assigned_user_name, date_created)
		VALUES (:id, :name, :description, :deadline, :completed, :assigned_user, :assigned_user_name, :date_created)
	`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID returns the task, or nil when no task has that id.
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	query := `SELECT ` + taskSelectColumns + ` FROM tasks WHERE id = $1`
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// FindByIDs returns the tasks whose ids are in ids, in no particular order.
func (r *TaskRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Task, error) {
	if len(ids) == 0 {
		return []models.Task{}, nil
	}
	tasks := []models.Task{}
	query := `SELECT ` + taskSelectColumns + ` FROM tasks WHERE id = ANY($1::uuid[])`
	if err := r.db.SelectContext(ctx, &tasks, query, pq.Array(idStrings(ids))); err != nil {
		return nil, fmt.Errorf("find tasks by ids: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Find(ctx context.Context, opts QueryOptions) ([]models.Task, error) {
	builder, err := applyOptions(psql.Select(taskSelectColumns).From("tasks"), taskColumns, opts)
	if err != nil {
		return nil, err
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build task query: %w", err)
	}
	tasks := []models.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Count(ctx context.Context, where map[string]interface{}) (int, error) {
	builder := psql.Select("COUNT(*)").From("tasks")
	if len(where) > 0 {
		conds, err := buildWhere(taskColumns, where)
		if err != nil {
			return 0, err
		}
		builder = builder.Where(conds)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build task count query: %w", err)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

// Update persists the full task record.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET name = :name,
		    description = :description,
		    deadline = :deadline,
		    completed = :completed,
		    assigned_user = :assigned_user,
		    assigned_user_name = :assigned_user_name
		WHERE id = :id
	`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// UnassignAllForUser clears the assignment fields of every task assigned to
// userID in one statement.
func (r *TaskRepository) UnassignAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE tasks
		SET assigned_user = NULL, assigned_user_name = $2
		WHERE assigned_user = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID, models.UnassignedName); err != nil {
		return fmt.Errorf("unassign tasks for user: %w", err)
	}
	return nil
}

// ClearAssignments clears the assignment fields of the given tasks, but only
// where ownerID is still the assignee, so a task a concurrent operation has
// already reassigned is not clobbered.
func (r *TaskRepository) ClearAssignments(ctx context.Context, taskIDs []uuid.UUID, ownerID uuid.UUID) error {
	if len(taskIDs) == 0 {
		return nil
	}
	query := `
		UPDATE tasks
		SET assigned_user = NULL, assigned_user_name = $3
		WHERE id = ANY($1::uuid[]) AND assigned_user = $2
	`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(idStrings(taskIDs)), ownerID, models.UnassignedName); err != nil {
		return fmt.Errorf("clear task assignments: %w", err)
	}
	return nil
}

// RefreshAssigneeName rewrites the denormalized assignee name on every task
// assigned to userID.
func (r *TaskRepository) RefreshAssigneeName(ctx context.Context, userID uuid.UUID, name string) error {
	query := `UPDATE tasks SET assigned_user_name = $2 WHERE assigned_user = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, name); err != nil {
		return fmt.Errorf("refresh assignee name: %w", err)
	}
	return nil
}

func idStrings(ids []uuid.UUID) []string {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return strs
}
