package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/store"
)

// UpdateSettingRequest 설정 변경 요청
type UpdateSettingRequest struct {
	Value string `json:"value"`
}

// 변경 가능한 설정과 값 검사
var settingValidators = map[string]func(string) bool{
	store.SettingFollowupThreshold: isPositiveInt,
}

func isPositiveInt(v string) bool {
	n, err := strconv.ParseInt(v, 10, 64)
	return err == nil && n > 0
}

// GetSettings 전체 설정 조회
// GET /api/settings
func (h *Handler) GetSettings(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	settings, err := h.store.AllSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "설정 조회 실패"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSetting 설정 한 개 변경
// PUT /api/settings/:key
func (h *Handler) UpdateSetting(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	key := c.Param("key")
	validate, ok := settingValidators[key]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "알 수 없는 설정: " + key})
		return
	}

	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청"})
		return
	}
	value := strings.TrimSpace(req.Value)
	if !validate(value) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "설정 값이 올바르지 않습니다: " + key})
		return
	}

	if err := h.store.SetSetting(c.Request.Context(), key, value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "설정 저장 실패"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}
