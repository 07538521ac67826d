package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskTitleBlank    = errors.New("task title must not be blank")
	ErrInvalidSchemaMode = errors.New("invalid schema generation mode")
	ErrSchemaMismatch    = errors.New("schema mismatch")
)

type TaskService interface {
	// ListTasks returns all tasks ordered by ascending ID.
	ListTasks(ctx context.Context) ([]*models.Task, error)

	// ListTasksByCompleted returns the tasks whose completion
	// flag equals completed, ordered by ascending ID.
	ListTasksByCompleted(ctx context.Context, completed bool) ([]*models.Task, error)

	// GetTaskByID returns ErrTaskNotFound if there is no task with the given ID.
	GetTaskByID(ctx context.Context, id int64) (*models.Task, error)

	// CreateTask inserts the task and returns a copy carrying the
	// assigned ID. Any ID set on the argument is ignored.
	//
	// It returns ErrTaskTitleBlank if the database rejects the title.
	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)

	// UpdateTask replaces the title, description and completion flag
	// of the task with the same ID.
	//
	// It returns ErrTaskNotFound if the task doesn't exist or
	// ErrTaskTitleBlank if the database rejects the title.
	UpdateTask(ctx context.Context, task *models.Task) (*models.Task, error)

	// DeleteTask returns ErrTaskNotFound if there is no task with the given ID.
	DeleteTask(ctx context.Context, id int64) error

	// InTx runs fn against a TaskService bound to a single transaction.
	// The transaction commits if fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx TaskService) error) error
}

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
