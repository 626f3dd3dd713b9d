package api

import (
	financeDelivery "planora-backend/internal/finance/delivery"
	financeUsecasePkg "planora-backend/internal/finance/usecase"
	noteDelivery "planora-backend/internal/note/delivery"
	noteUsecasePkg "planora-backend/internal/note/usecase"
	"planora-backend/internal/notification"
	taskDelivery "planora-backend/internal/task/delivery"
	taskUsecasePkg "planora-backend/internal/task/usecase"
	"planora-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	config         *config.Config
	scheduler      *notification.Scheduler
	taskHandler    *taskDelivery.TaskHandler
	noteHandler    *noteDelivery.NoteHandler
	financeHandler *financeDelivery.FinanceHandler
}

func NewHandler(taskUc taskUsecasePkg.TaskUsecase, noteUc noteUsecasePkg.NoteUsecase, financeUc financeUsecasePkg.FinanceUsecase, scheduler *notification.Scheduler, cfg *config.Config) *Handler {
	return &Handler{
		config:         cfg,
		scheduler:      scheduler,
		taskHandler:    taskDelivery.NewTaskHandler(taskUc),
		noteHandler:    noteDelivery.NewNoteHandler(noteUc),
		financeHandler: financeDelivery.NewFinanceHandler(financeUc),
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.taskHandler, h.noteHandler, h.financeHandler, h.scheduler)

	return r.Run(addr)
}
