package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/opspay/payroll-backend-go/internal/handler/http/response"
	notificationService "github.com/opspay/payroll-backend-go/internal/service/notification"
)

type NotificationHandler interface {
	ListForEmployee(w http.ResponseWriter, r *http.Request)
	MarkRead(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notificationService *notificationService.NotificationService
}

func NewNotificationHandler(svc *notificationService.NotificationService) NotificationHandler {
	return &notificationHandlerImpl{notificationService: svc}
}

type notificationResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

func (h *notificationHandlerImpl) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.notificationService.ListForEmployee(r.Context(), employeeID, unreadOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, notificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}

	response.Success(w, result)
}

func (h *notificationHandlerImpl) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.notificationService.MarkRead(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, nil)
}
