package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/services"
)

type Handler interface {
	HandleGetTasks(c *gin.Context)
	HandleGetCompletedTasks(c *gin.Context)
	HandleGetPendingTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	tasks  services.TaskService
}

func New(
	logger zerolog.Logger,
	taskService services.TaskService,
) Handler {
	return &handlerImpl{
		logger: logger,
		tasks:  taskService,
	}
}

// RegisterRoutes mounts the task API under /tasks.
func RegisterRoutes(router gin.IRouter, h Handler) {
	tasksRouter := router.Group("/tasks")
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.GET("/completed", h.HandleGetCompletedTasks)
	tasksRouter.GET("/pending", h.HandleGetPendingTasks)
	tasksRouter.GET("/:id", h.HandleGetTask)
	tasksRouter.POST("", RequireJSON, h.HandleCreateTask)
	tasksRouter.PUT("/:id", RequireJSON, h.HandleUpdateTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)
}
