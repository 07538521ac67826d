package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

var taskColumnsOut = []string{"id", "title", "description", "completed"}

func newMockService(t *testing.T) (TaskService, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool() err = %v", err)
	}
	t.Cleanup(mock.Close)

	return NewTaskService(zerolog.Nop(), mock), mock
}

func expectationsMet(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func ptr(s string) *string {
	return &s
}

func TestTaskService_ListTasks(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery("ORDER BY id").
		WillReturnRows(pgxmock.NewRows(taskColumnsOut).
			AddRow(int64(1), "A", (*string)(nil), false).
			AddRow(int64(2), "B", ptr("2L"), true))

	tasks, err := svc.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks() err = %v, want nil", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("ListTasks() len = %d, want 2", len(tasks))
	}
	if tasks[0].ID != 1 || tasks[0].Title != "A" || tasks[0].Description != nil || tasks[0].Completed {
		t.Fatalf("ListTasks()[0] = %+v", tasks[0])
	}
	if tasks[1].ID != 2 || tasks[1].Description == nil || *tasks[1].Description != "2L" || !tasks[1].Completed {
		t.Fatalf("ListTasks()[1] = %+v", tasks[1])
	}
	expectationsMet(t, mock)
}

func TestTaskService_ListTasks_Empty(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery("FROM tasks").
		WillReturnRows(pgxmock.NewRows(taskColumnsOut))

	tasks, err := svc.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks() err = %v, want nil", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("ListTasks() = %v, want empty non-nil slice", tasks)
	}
	expectationsMet(t, mock)
}

func TestTaskService_ListTasks_QueryError(t *testing.T) {
	svc, mock := newMockService(t)

	boom := errors.New("connection refused")
	mock.ExpectQuery("FROM tasks").WillReturnError(boom)

	_, err := svc.ListTasks(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("ListTasks() err = %v, want %v", err, boom)
	}
	expectationsMet(t, mock)
}

func TestTaskService_ListTasksByCompleted(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery("WHERE COALESCE").
		WithArgs(true).
		WillReturnRows(pgxmock.NewRows(taskColumnsOut).
			AddRow(int64(3), "done", (*string)(nil), true))

	tasks, err := svc.ListTasksByCompleted(context.Background(), true)
	if err != nil {
		t.Fatalf("ListTasksByCompleted() err = %v, want nil", err)
	}
	if len(tasks) != 1 || tasks[0].ID != 3 || !tasks[0].Completed {
		t.Fatalf("ListTasksByCompleted() = %+v", tasks)
	}
	expectationsMet(t, mock)
}

func TestTaskService_ListTasksByCompleted_Pending(t *testing.T) {
	svc, mock := newMockService(t)

	// A NULL completed column reads as pending.
	mock.ExpectQuery(regexp.QuoteMeta("WHERE COALESCE(completed, FALSE) = $1")).
		WithArgs(false).
		WillReturnRows(pgxmock.NewRows(taskColumnsOut).
			AddRow(int64(4), "legacy", (*string)(nil), false).
			AddRow(int64(6), "todo", ptr("soon"), false))

	tasks, err := svc.ListTasksByCompleted(context.Background(), false)
	if err != nil {
		t.Fatalf("ListTasksByCompleted() err = %v, want nil", err)
	}
	if len(tasks) != 2 || tasks[0].ID != 4 || tasks[1].ID != 6 {
		t.Fatalf("ListTasksByCompleted() = %+v", tasks)
	}
	for _, task := range tasks {
		if task.Completed {
			t.Fatalf("ListTasksByCompleted(false) returned completed task %+v", task)
		}
	}
	expectationsMet(t, mock)
}

func TestTaskService_GetTaskByID(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery("WHERE id = ").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"title", "description", "completed"}).
			AddRow("Buy milk", ptr("2L"), true))

	task, err := svc.GetTaskByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetTaskByID() err = %v, want nil", err)
	}
	if task.ID != 7 || task.Title != "Buy milk" || *task.Description != "2L" || !task.Completed {
		t.Fatalf("GetTaskByID() = %+v", task)
	}
	expectationsMet(t, mock)
}

func TestTaskService_GetTaskByID_NotFound(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery("WHERE id = ").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetTaskByID(context.Background(), 99)
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("GetTaskByID() err = %v, want %v", err, ErrTaskNotFound)
	}
	expectationsMet(t, mock)
}

func TestTaskService_CreateTask(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery("INSERT INTO tasks").
		WithArgs("Buy milk", pgxmock.AnyArg(), false).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	in := &models.Task{ID: 42, Title: "Buy milk"}
	task, err := svc.CreateTask(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateTask() err = %v, want nil", err)
	}
	if task.ID != 1 {
		t.Fatalf("CreateTask() id = %d, want 1", task.ID)
	}
	if in.ID != 42 {
		t.Fatalf("CreateTask() mutated its argument: %+v", in)
	}
	if task.Description != nil || task.Completed {
		t.Fatalf("CreateTask() = %+v, want no description and not completed", task)
	}
	expectationsMet(t, mock)
}

func TestTaskService_CreateTask_ConstraintViolation(t *testing.T) {
	for _, code := range []string{pgerrcode.CheckViolation, pgerrcode.NotNullViolation} {
		t.Run(code, func(t *testing.T) {
			svc, mock := newMockService(t)

			mock.ExpectQuery("INSERT INTO tasks").
				WithArgs(" ", pgxmock.AnyArg(), false).
				WillReturnError(&pgconn.PgError{Code: code})

			_, err := svc.CreateTask(context.Background(), &models.Task{Title: " "})
			if !errors.Is(err, ErrTaskTitleBlank) {
				t.Fatalf("CreateTask() err = %v, want %v", err, ErrTaskTitleBlank)
			}
			expectationsMet(t, mock)
		})
	}
}

func TestTaskService_UpdateTask(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec("UPDATE tasks").
		WithArgs("Buy milk", pgxmock.AnyArg(), true, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	task, err := svc.UpdateTask(context.Background(), &models.Task{
		ID:          1,
		Title:       "Buy milk",
		Description: ptr("2L"),
		Completed:   true,
	})
	if err != nil {
		t.Fatalf("UpdateTask() err = %v, want nil", err)
	}
	if task.ID != 1 || *task.Description != "2L" || !task.Completed {
		t.Fatalf("UpdateTask() = %+v", task)
	}
	expectationsMet(t, mock)
}

func TestTaskService_UpdateTask_NotFound(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec("UPDATE tasks").
		WithArgs("x", pgxmock.AnyArg(), false, int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	_, err := svc.UpdateTask(context.Background(), &models.Task{ID: 5, Title: "x"})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("UpdateTask() err = %v, want %v", err, ErrTaskNotFound)
	}
	expectationsMet(t, mock)
}

func TestTaskService_DeleteTask(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec("DELETE FROM tasks").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM tasks").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.DeleteTask(context.Background(), 1)
	if err != nil {
		t.Fatalf("DeleteTask() err = %v, want nil", err)
	}

	err = svc.DeleteTask(context.Background(), 1)
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("second DeleteTask() err = %v, want %v", err, ErrTaskNotFound)
	}
	expectationsMet(t, mock)
}

func TestTaskService_InTx_Commit(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO tasks").
		WithArgs("A", pgxmock.AnyArg(), false).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	var created *models.Task
	err := svc.InTx(context.Background(), func(tx TaskService) error {
		var err error
		created, err = tx.CreateTask(context.Background(), &models.Task{Title: "A"})
		return err
	})
	if err != nil {
		t.Fatalf("InTx() err = %v, want nil", err)
	}
	if created == nil || created.ID != 1 {
		t.Fatalf("InTx() created = %+v", created)
	}
	expectationsMet(t, mock)
}

func TestTaskService_InTx_RollbackOnError(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tasks").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := svc.InTx(context.Background(), func(tx TaskService) error {
		return tx.DeleteTask(context.Background(), 1)
	})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("InTx() err = %v, want %v", err, ErrTaskNotFound)
	}
	expectationsMet(t, mock)
}

func TestTaskService_InTx_RollbackOnPanic(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("InTx() didn't propagate the panic")
			}
		}()
		_ = svc.InTx(context.Background(), func(TaskService) error {
			panic("boom")
		})
	}()
	expectationsMet(t, mock)
}

func TestTaskService_InTx_BeginError(t *testing.T) {
	svc, mock := newMockService(t)

	boom := errors.New("pool exhausted")
	mock.ExpectBegin().WillReturnError(boom)

	called := false
	err := svc.InTx(context.Background(), func(TaskService) error {
		called = true
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx() err = %v, want %v", err, boom)
	}
	if called {
		t.Fatal("InTx() ran fn without a transaction")
	}
	expectationsMet(t, mock)
}

func TestTaskService_InTx_CancelledContextStillRollsBack(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx, cancel := context.WithCancel(context.Background())
	err := svc.InTx(ctx, func(TaskService) error {
		cancel()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("InTx() err = %v, want %v", err, context.Canceled)
	}
	expectationsMet(t, mock)
}
