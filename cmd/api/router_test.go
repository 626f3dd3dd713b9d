package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	financeDelivery "planora-backend/internal/finance/delivery"
	noteDelivery "planora-backend/internal/note/delivery"
	"planora-backend/internal/notification"
	taskDelivery "planora-backend/internal/task/delivery"

	"github.com/gin-gonic/gin"
)

func newTestRouter(scheduler *notification.Scheduler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupRoutes(r, taskDelivery.NewTaskHandler(nil), noteDelivery.NewNoteHandler(nil), financeDelivery.NewFinanceHandler(nil), scheduler)
	return r
}

func TestHealthRoute(t *testing.T) {
	r := newTestRouter(notification.NewScheduler(notification.NewLogSender(), time.Minute))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestNotificationActionRoute(t *testing.T) {
	scheduler := notification.NewScheduler(notification.NewLogSender(), time.Minute)
	var gotAction, gotEntity string
	scheduler.OnAction(func(actionID, entityID string) {
		gotAction = actionID
		gotEntity = entityID
	})

	r := newTestRouter(scheduler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/notifications/task-1/actions/complete", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotAction != "complete" || gotEntity != "task-1" {
		t.Fatalf("action routed as (%q, %q), want (complete, task-1)", gotAction, gotEntity)
	}
}
