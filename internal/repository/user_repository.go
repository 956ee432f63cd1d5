package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/llamaio/task-api/internal/models"
	"github.com/llamaio/task-api/pkg/apierror"
)

var userColumns = map[string]string{
	"id":           "id",
	"name":         "name",
	"email":        "email",
	"pendingTasks": "pending_tasks",
}

const userSelectColumns = "id, name, email, pending_tasks"

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Insert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, pending_tasks)
		VALUES (:id, :name, :email, :pending_tasks)
	`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return apierror.DuplicateEmail()
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID returns the user, or nil when no user has that id.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userSelectColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// FindByEmail returns the user with the given email, or nil. When exclude is
// set, a user with that id is ignored (self-match during update).
func (r *UserRepository) FindByEmail(ctx context.Context, email string, exclude uuid.NullUUID) (*models.User, error) {
	var user models.User
	var err error
	if exclude.Valid {
		query := `SELECT ` + userSelectColumns + ` FROM users WHERE email = $1 AND id <> $2`
		err = r.db.GetContext(ctx, &user, query, email, exclude.UUID)
	} else {
		query := `SELECT ` + userSelectColumns + ` FROM users WHERE email = $1`
		err = r.db.GetContext(ctx, &user, query, email)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Find(ctx context.Context, opts QueryOptions) ([]models.User, error) {
	builder, err := applyOptions(psql.Select(userSelectColumns).From("users"), userColumns, opts)
	if err != nil {
		return nil, err
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}
	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context, where map[string]interface{}) (int, error) {
	builder := psql.Select("COUNT(*)").From("users")
	if len(where) > 0 {
		conds, err := buildWhere(userColumns, where)
		if err != nil {
			return 0, err
		}
		builder = builder.Where(conds)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build user count query: %w", err)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// Update persists the full user record, pending set included.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = :name, email = :email, pending_tasks = :pending_tasks
		WHERE id = :id
	`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return apierror.DuplicateEmail()
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// AddPendingTask adds taskID to the user's pending set. The guard makes the
// add idempotent, a set-add rather than an append.
func (r *UserRepository) AddPendingTask(ctx context.Context, userID, taskID uuid.UUID) error {
	query := `
		UPDATE users
		SET pending_tasks = array_append(pending_tasks, $2)
		WHERE id = $1 AND NOT ($2 = ANY(pending_tasks))
	`
	if _, err := r.db.ExecContext(ctx, query, userID, taskID.String()); err != nil {
		return fmt.Errorf("add pending task: %w", err)
	}
	return nil
}

// RemovePendingTask removes taskID from the user's pending set.
func (r *UserRepository) RemovePendingTask(ctx context.Context, userID, taskID uuid.UUID) error {
	query := `
		UPDATE users
		SET pending_tasks = array_remove(pending_tasks, $2)
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID, taskID.String()); err != nil {
		return fmt.Errorf("remove pending task: %w", err)
	}
	return nil
}
