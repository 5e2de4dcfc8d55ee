package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/store"
)

const dateLayout = "2006-01-02"

// ListDueReminders 기한이 된 대기 리마인더
// GET /api/reminders/due?until=2026-05-31 (기본: 오늘)
func (h *Handler) ListDueReminders(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	until := c.DefaultQuery("until", time.Now().Format(dateLayout))
	if _, err := time.Parse(dateLayout, until); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "until 은 YYYY-MM-DD 형식이어야 합니다"})
		return
	}

	due, err := h.store.ListDueReminders(c.Request.Context(), until)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "리마인더 조회 실패"})
		return
	}
	if due == nil {
		due = []model.DueReminder{}
	}
	c.JSON(http.StatusOK, gin.H{"items": due, "total": len(due), "until": until})
}

// CompleteReminder 연락 완료
// POST /api/reminders/:id/complete
func (h *Handler) CompleteReminder(c *gin.Context) {
	h.setReminderStatus(c, model.ReminderCompleted)
}

// SkipReminder 연락 건너뜀
// POST /api/reminders/:id/skip
func (h *Handler) SkipReminder(c *gin.Context) {
	h.setReminderStatus(c, model.ReminderSkipped)
}

func (h *Handler) setReminderStatus(c *gin.Context, status model.ReminderStatus) {
	if !h.requireStore(c) {
		return
	}

	id := c.Param("id")
	if err := h.store.SetReminderStatus(c.Request.Context(), id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "리마인더가 없습니다"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "리마인더 변경 실패"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}
