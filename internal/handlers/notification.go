package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/pilotage/micro/internal/auth"
	"github.com/pilotage/micro/internal/httpx"
	"github.com/pilotage/micro/internal/models"
)

type NotificationHandler struct{ DB *gorm.DB }

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{DB: db}
}

// List: GET /notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var notifs []models.Notification
	if err := h.DB.Where("user_id = ?", uid).Order("scheduled_at desc").Find(&notifs).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, notifs)
}

// MarkRead: POST /notifications/{id}/read, the only mutation notifications allow.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res := h.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, uid).
		Update("read_at", time.Now())
	if res.Error != nil {
		writeServiceError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "Notification non trouvée", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Notification lue"})
}
