package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

type getTaskResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

func newGetTaskResponse(task *models.Task) getTaskResponse {
	return getTaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
	}
}

func newGetTasksResponse(tasks []*models.Task) []getTaskResponse {
	response := make([]getTaskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newGetTaskResponse(task)
	}
	return response
}

// saveTaskRequest is shared by create and update. Update has full
// replacement semantics, so omitted fields fall back to their zero values.
type saveTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

func (r saveTaskRequest) toTask(id int64) *models.Task {
	return &models.Task{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	tasks, err := h.tasks.ListTasks(c.Request.Context())
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	h.logger.Debug().
		Int("count", len(tasks)).
		Msg("fetched tasks")
	c.JSON(http.StatusOK, newGetTasksResponse(tasks))
}

func (h *handlerImpl) HandleGetCompletedTasks(c *gin.Context) {
	h.handleGetTasksByCompleted(c, true)
}

func (h *handlerImpl) HandleGetPendingTasks(c *gin.Context) {
	h.handleGetTasksByCompleted(c, false)
}

func (h *handlerImpl) handleGetTasksByCompleted(c *gin.Context, completed bool) {
	tasks, err := h.tasks.ListTasksByCompleted(c.Request.Context(), completed)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	h.logger.Debug().
		Int("count", len(tasks)).
		Bool("completed", completed).
		Msg("fetched tasks by completed")
	c.JSON(http.StatusOK, newGetTasksResponse(tasks))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	taskID, ok := parseTaskID(c)
	if !ok {
		h.logger.Debug().
			Str("id", c.Param("id")).
			Msg("malformed task id")
		abort(c, newNotFoundError(msgTaskNotFound))
		return
	}

	task, err := h.tasks.GetTaskByID(c.Request.Context(), taskID)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newGetTaskResponse(task))
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req saveTaskRequest
	err := bindJSON(c, &req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	task := req.toTask(0)
	if !task.HasTitle() {
		h.logger.Warn().Msg("blank task title")
		abort(c, newBadRequestError(msgTitleBlank))
		return
	}

	ctx := c.Request.Context()
	var created *models.Task
	err = h.tasks.InTx(ctx, func(tx services.TaskService) error {
		var txErr error
		created, txErr = tx.CreateTask(ctx, task)
		return txErr
	})
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	h.logger.Info().
		Int64("task_id", created.ID).
		Msg("created task")
	c.JSON(http.StatusCreated, newGetTaskResponse(created))
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	taskID, ok := parseTaskID(c)
	if !ok {
		h.logger.Debug().
			Str("id", c.Param("id")).
			Msg("malformed task id")
		abort(c, newNotFoundError(msgTaskNotFound))
		return
	}

	var req saveTaskRequest
	err := bindJSON(c, &req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	ctx := c.Request.Context()
	var updated *models.Task
	err = h.tasks.InTx(ctx, func(tx services.TaskService) error {
		_, err := tx.GetTaskByID(ctx, taskID)
		if err != nil {
			return err
		}

		task := req.toTask(taskID)
		if !task.HasTitle() {
			return services.ErrTaskTitleBlank
		}

		updated, err = tx.UpdateTask(ctx, task)
		return err
	})
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	h.logger.Info().
		Int64("task_id", updated.ID).
		Msg("updated task")
	c.JSON(http.StatusOK, newGetTaskResponse(updated))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	taskID, ok := parseTaskID(c)
	if !ok {
		h.logger.Debug().
			Str("id", c.Param("id")).
			Msg("malformed task id")
		abort(c, newNotFoundError(msgTaskNotFound))
		return
	}

	ctx := c.Request.Context()
	err := h.tasks.InTx(ctx, func(tx services.TaskService) error {
		return tx.DeleteTask(ctx, taskID)
	})
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	h.logger.Info().
		Int64("task_id", taskID).
		Msg("deleted task")
	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newNotFoundError(msgTaskNotFound))
	case errors.Is(err, services.ErrTaskTitleBlank):
		abort(c, newBadRequestError(msgTitleBlank))
	default:
		h.logger.Error().
			Err(err).
			Msg("task service failure")
		_ = c.Error(err)
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}

// bindJSON decodes the whole body into dst, rejecting trailing data
// that gin's decoder-based binding would silently ignore.
func bindJSON(c *gin.Context, dst any) error {
	body, err := c.GetRawData()
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

// parseTaskID reports false for anything that can't name a stored task.
func parseTaskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
