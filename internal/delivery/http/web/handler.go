package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/services"
)

const indexTemplate = "index"

type Handler interface {
	HandleIndex(c *gin.Context)
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

// RegisterRoutes mounts the index page and its static assets. The engine
// must already carry the templates from ParseTemplates.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router.GET("/", h.HandleIndex)
	router.StaticFS("/static", StaticFS())
}

// HandleIndex renders every task into the index page. Each request has its
// own goroutine, so the blocking render doesn't hold up other requests.
func (h *handlerImpl) HandleIndex(c *gin.Context) {
	tasks, err := h.tasks.ListTasks(c.Request.Context())
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks for index")
		_ = c.Error(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Debug().
		Int("count", len(tasks)).
		Msg("rendering index")
	c.HTML(http.StatusOK, indexTemplate, gin.H{"tasks": tasks})
}
