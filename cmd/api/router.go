package api

import (
	"net/http"

	financeDelivery "planora-backend/internal/finance/delivery"
	noteDelivery "planora-backend/internal/note/delivery"
	"planora-backend/internal/notification"
	taskDelivery "planora-backend/internal/task/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, taskHandler *taskDelivery.TaskHandler, noteHandler *noteDelivery.NoteHandler, financeHandler *financeDelivery.FinanceHandler, scheduler *notification.Scheduler) {
	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Reminder action buttons (delivered out of band) report back here.
		api.POST("/notifications/:id/actions/:action", func(c *gin.Context) {
			scheduler.HandleAction(c.Param("action"), c.Param("id"))
			c.JSON(http.StatusOK, gin.H{"message": "Action handled"})
		})

		// Task routes
		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.GetTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/stats", taskHandler.GetStats)
			tasks.GET("/history", taskHandler.GetHistory)
			tasks.GET("/selected", taskHandler.GetSelectedTask)
			tasks.GET("/:id", taskHandler.GetTaskByID)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/toggle", taskHandler.ToggleTask)
			tasks.POST("/:id/complete", taskHandler.CompleteTask)
			tasks.POST("/:id/reopen", taskHandler.ReopenTask)
			tasks.POST("/:id/snooze", taskHandler.SnoozeTask)
			tasks.POST("/:id/select", taskHandler.SelectTask)
			tasks.POST("/:id/subtasks", taskHandler.AddSubTask)
			tasks.PATCH("/:id/subtasks/:subtaskId/toggle", taskHandler.ToggleSubTask)
			tasks.DELETE("/:id/subtasks/:subtaskId", taskHandler.RemoveSubTask)
			tasks.POST("/:id/attachments", taskHandler.AddAttachment)
		}

		// Note routes
		notes := api.Group("/notes")
		{
			notes.GET("", noteHandler.GetNotes)
			notes.POST("", noteHandler.CreateNote)
			notes.GET("/folders", noteHandler.GetFolders)
			notes.POST("/folders", noteHandler.CreateFolder)
			notes.PUT("/folders/:id", noteHandler.RenameFolder)
			notes.DELETE("/folders/:id", noteHandler.DeleteFolder)
			notes.GET("/:id", noteHandler.GetNoteByID)
			notes.PUT("/:id", noteHandler.UpdateNote)
			notes.DELETE("/:id", noteHandler.DeleteNote)
			notes.PATCH("/:id/pin", noteHandler.TogglePin)
			notes.POST("/:id/restore", noteHandler.RestoreNote)
			notes.DELETE("/:id/permanent", noteHandler.PurgeNote)
		}

		// Finance routes
		finance := api.Group("/finance")
		{
			finance.GET("/transactions", financeHandler.GetTransactions)
			finance.POST("/transactions", financeHandler.CreateTransaction)
			finance.GET("/transactions/:id", financeHandler.GetTransactionByID)
			finance.PUT("/transactions/:id", financeHandler.UpdateTransaction)
			finance.DELETE("/transactions/:id", financeHandler.DeleteTransaction)

			finance.GET("/accounts", financeHandler.GetAccounts)
			finance.POST("/accounts", financeHandler.CreateAccount)
			finance.DELETE("/accounts/:id", financeHandler.DeleteAccount)

			finance.GET("/categories", financeHandler.GetCategories)
			finance.POST("/categories", financeHandler.CreateCategory)
			finance.DELETE("/categories/:id", financeHandler.DeleteCategory)

			finance.GET("/budgets", financeHandler.GetBudgets)
			finance.POST("/budgets", financeHandler.SetBudget)
			finance.DELETE("/budgets/:id", financeHandler.DeleteBudget)

			finance.GET("/bills", financeHandler.GetBills)
			finance.POST("/bills", financeHandler.CreateBill)
			finance.PATCH("/bills/:id/paid", financeHandler.ToggleBillPaid)
			finance.DELETE("/bills/:id", financeHandler.DeleteBill)

			finance.GET("/goals", financeHandler.GetGoals)
			finance.POST("/goals", financeHandler.CreateGoal)
			finance.POST("/goals/:id/contribute", financeHandler.ContributeToGoal)
			finance.DELETE("/goals/:id", financeHandler.DeleteGoal)

			finance.GET("/summary", financeHandler.GetSummary)
		}
	}
}
