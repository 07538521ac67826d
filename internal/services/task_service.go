package services

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	db     Querier
}

func NewTaskService(
	logger zerolog.Logger,
	db Querier,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		db:     db,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*models.Task, error) {
	const selectTasksQuery = `
SELECT id,
       title,
       description,
       COALESCE(completed, FALSE)
FROM tasks
ORDER BY id
`
	tasks, err := s.selectTasks(ctx, selectTasksQuery)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks")
	return tasks, nil
}

func (s *taskServiceImpl) ListTasksByCompleted(ctx context.Context, completed bool) ([]*models.Task, error) {
	const selectTasksByCompletedQuery = `
SELECT id,
       title,
       description,
       COALESCE(completed, FALSE)
FROM tasks
WHERE COALESCE(completed, FALSE) = $1
ORDER BY id
`
	tasks, err := s.selectTasks(ctx, selectTasksByCompletedQuery, completed)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Bool("completed", completed).
		Msg("selected tasks by completed")
	return tasks, nil
}

func (s *taskServiceImpl) selectTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task := new(models.Task)
		err = rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Completed,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return tasks, nil
}

func (s *taskServiceImpl) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	task := &models.Task{ID: id}

	const selectTaskByIDQuery = `
SELECT title,
       description,
       COALESCE(completed, FALSE)
FROM tasks
WHERE id = $1
`
	err := s.db.QueryRow(
		ctx,
		selectTaskByIDQuery,
		task.ID,
	).Scan(
		&task.Title,
		&task.Description,
		&task.Completed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug().
				Int64("task_id", id).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to select task by id")
		return nil, err
	}
	s.logger.Debug().
		Int64("task_id", id).
		Msg("selected task by id")
	return task, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	task = &models.Task{
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
	}

	const insertTaskQuery = `
INSERT INTO tasks (title,
                   description,
                   completed)
VALUES ($1, $2, $3)
RETURNING id
`
	err := s.db.QueryRow(
		ctx,
		insertTaskQuery,
		task.Title,
		task.Description,
		task.Completed,
	).Scan(&task.ID)
	if err != nil {
		if isTitleViolation(err) {
			s.logger.Warn().
				Err(err).
				Msg("task title rejected by database")
			return nil, ErrTaskTitleBlank
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	task = &models.Task{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
	}

	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2,
    completed = $3
WHERE id = $4
`
	tag, err := s.db.Exec(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		task.Completed,
		task.ID,
	)
	if err != nil {
		if isTitleViolation(err) {
			s.logger.Warn().
				Err(err).
				Int64("task_id", task.ID).
				Msg("task title rejected by database")
			return nil, ErrTaskTitleBlank
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Debug().
			Int64("task_id", task.ID).
			Msg("task not found")
		return nil, ErrTaskNotFound
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Bool("completed", task.Completed).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := s.db.Exec(
		ctx,
		deleteTaskQuery,
		id,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Debug().
			Int64("task_id", id).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Info().
		Int64("task_id", id).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) InTx(ctx context.Context, fn func(tx TaskService) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}

	committed := false
	defer func() {
		if committed {
			return
		}

		// The request context may already be cancelled here.
		rollbackErr := tx.Rollback(context.WithoutCancel(ctx))
		if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.logger.Error().
				Err(rollbackErr).
				Msg("failed to roll back transaction")
			return
		}
		s.logger.Debug().Msg("rolled back transaction")
	}()

	err = fn(&taskServiceImpl{
		logger: s.logger,
		db:     tx,
	})
	if err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}
	committed = true
	s.logger.Debug().Msg("committed transaction")
	return nil
}

func isTitleViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.CheckViolation ||
		pgErr.Code == pgerrcode.NotNullViolation
}
