package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	SchemaModeNone     = "none"
	SchemaModeValidate = "validate"
	SchemaModeCreate   = "create"
)

var taskColumns = []string{"id", "title", "description", "completed"}

// MigrateSchema brings the tasks table in line with the given schema
// generation mode.
func MigrateSchema(ctx context.Context, logger zerolog.Logger, db Querier, mode string) error {
	switch mode {
	case SchemaModeNone:
		logger.Debug().Msg("schema generation disabled")
		return nil
	case SchemaModeValidate:
		return validateSchema(ctx, logger, db)
	case SchemaModeCreate:
		return createSchema(ctx, logger, db)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSchemaMode, mode)
	}
}

func createSchema(ctx context.Context, logger zerolog.Logger, db Querier) error {
	const createTasksTableQuery = `
CREATE TABLE IF NOT EXISTS tasks (
    id          BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    title       TEXT    NOT NULL CHECK (title ~ '\S'),
    description TEXT,
    completed   BOOLEAN NOT NULL DEFAULT FALSE
)
`
	_, err := db.Exec(ctx, createTasksTableQuery)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to create tasks table")
		return err
	}
	logger.Info().Msg("created tasks table")
	return nil
}

func validateSchema(ctx context.Context, logger zerolog.Logger, db Querier) error {
	const selectColumnsQuery = `
SELECT column_name
FROM information_schema.columns
WHERE table_schema = current_schema()
  AND table_name = 'tasks'
`
	rows, err := db.Query(ctx, selectColumnsQuery)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to select tasks columns")
		return err
	}
	defer rows.Close()

	present := make(map[string]bool, len(taskColumns))
	for rows.Next() {
		var column string
		err = rows.Scan(&column)
		if err != nil {
			logger.Error().
				Err(err).
				Msg("failed to scan column name")
			return err
		}
		present[column] = true
	}

	err = rows.Err()
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return err
	}

	var missing []string
	for _, column := range taskColumns {
		if !present[column] {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		logger.Error().
			Strs("missing_columns", missing).
			Msg("tasks table doesn't match the model")
		return fmt.Errorf("%w: tasks is missing columns %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}

	logger.Info().Msg("validated tasks table")
	return nil
}
