package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusResponse 시스템 상태
type StatusResponse struct {
	DBConnected         bool   `json:"db_connected"`
	CacheEnabled        bool   `json:"cache_enabled"`
	TotalPatients       int    `json:"total_patients"`
	TotalHealthCheckups int    `json:"total_health_checkups"`
	LastImportTime      string `json:"last_import_time"` // RFC3339, 이력이 없으면 ""
}

// GetStatus 시스템 상태 조회
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()
	resp := StatusResponse{CacheEnabled: h.cache.Enabled()}

	if h.store == nil || h.store.Ping(ctx) != nil {
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.DBConnected = true

	if n, err := h.store.CountPatients(ctx); err == nil {
		resp.TotalPatients = n
	} else {
		h.logger.Warn("환자 수 조회 실패", zap.Error(err))
	}
	if n, err := h.store.CountCheckups(ctx); err == nil {
		resp.TotalHealthCheckups = n
	} else {
		h.logger.Warn("건강검진 수 조회 실패", zap.Error(err))
	}
	if last, err := h.store.LastImportTime(ctx); err == nil && last != nil {
		resp.LastImportTime = last.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, resp)
}
