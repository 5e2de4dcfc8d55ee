package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/store"
)

// ListPatients 환자 기록 목록
// GET /api/patients?source_month=2026-02
func (h *Handler) ListPatients(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	patients, err := h.store.ListPatients(c.Request.Context(), c.Query("source_month"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "환자 목록 조회 실패"})
		return
	}
	if patients == nil {
		patients = []model.Patient{}
	}
	c.JSON(http.StatusOK, gin.H{"items": patients, "total": len(patients)})
}

// GetPatient 환자 기록과 리마인더
// GET /api/patients/:id
func (h *Handler) GetPatient(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	ctx := c.Request.Context()

	patient, err := h.store.GetPatient(ctx, c.Param("id"))
	if err != nil {
		h.respondPatientError(c, err, "환자 조회 실패")
		return
	}

	reminders, err := h.store.ListReminders(ctx, patient.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "리마인더 조회 실패"})
		return
	}
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	c.JSON(http.StatusOK, gin.H{"patient": patient, "reminders": reminders})
}

// LookupPatients 차트번호/보호자/동물 이름 검색
// GET /api/patients/lookup?q=겨울
func (h *Handler) LookupPatients(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	patients, err := h.store.LookupPatients(c.Request.Context(), c.Query("q"), store.DefaultLookupLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "환자 검색 실패"})
		return
	}
	if patients == nil {
		patients = []model.Patient{}
	}
	c.JSON(http.StatusOK, gin.H{"items": patients, "total": len(patients)})
}

// UpdatePatient 환자 기록 수정 후 대기 리마인더 재생성
// PATCH /api/patients/:id
func (h *Handler) UpdatePatient(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	ctx := c.Request.Context()

	var patch patientPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청 형식입니다"})
		return
	}

	patient, err := h.store.GetPatient(ctx, c.Param("id"))
	if err != nil {
		h.respondPatientError(c, err, "환자 조회 실패")
		return
	}
	if err := patch.apply(&patient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.store.UpdatePatient(ctx, patient.ID, patient)
	if err != nil {
		h.respondPatientError(c, err, "환자 수정 실패")
		return
	}

	created, err := h.coordinator.RefreshReminders(ctx, updated)
	if err != nil {
		h.logger.Error("리마인더 재생성 실패", zap.String("patient_id", updated.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "리마인더 재생성 실패"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"patient": updated, "reminders_created": created})
}

// DeletePatient 환자 기록과 리마인더 삭제
// DELETE /api/patients/:id
func (h *Handler) DeletePatient(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	id := c.Param("id")
	if err := h.store.DeletePatient(c.Request.Context(), id); err != nil {
		h.respondPatientError(c, err, "환자 삭제 실패")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (h *Handler) respondPatientError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "환자 기록이 없습니다"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "같은 차트번호와 내원일의 기록이 이미 있습니다"})
	default:
		h.logger.Error(message, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}

// requireStore 저장소가 없으면 503 을 보내고 false
func (h *Handler) requireStore(c *gin.Context) bool {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "데이터베이스가 연결되지 않았습니다"})
		return false
	}
	return true
}
