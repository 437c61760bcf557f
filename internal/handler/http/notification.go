package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/presensi-backend-go/internal/handler/http/response"
)

type NotificationHandler interface {
	GetMyNotifications(w http.ResponseWriter, r *http.Request)
}

type NotificationService interface {
	ListMyNotifications(ctx context.Context, employeeID string, limit int) ([]notification.Notification, error)
}

type notificationHandlerImpl struct {
	notificationService NotificationService
}

func NewNotificationHandler(svc NotificationService) NotificationHandler {
	return &notificationHandlerImpl{
		notificationService: svc,
	}
}

type notificationResponse struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// GetMyNotifications implements NotificationHandler.
func (h *notificationHandlerImpl) GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notifications, err := h.notificationService.ListMyNotifications(r.Context(), employeeID, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Category:  string(n.Category),
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}
	response.Success(w, out)
}
