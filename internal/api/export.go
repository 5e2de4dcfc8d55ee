package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/exporter"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export 환자 기록과 연락 목록 엑셀 다운로드
// GET /api/export?source_month=2026-02&due_until=2026-05-31
func (h *Handler) Export(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}

	opts := exporter.ExportOptions{
		SourceMonth: c.Query("source_month"),
		DueUntil:    c.DefaultQuery("due_until", time.Now().Format(dateLayout)),
	}
	if _, err := time.Parse(dateLayout, opts.DueUntil); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "due_until 은 YYYY-MM-DD 형식이어야 합니다"})
		return
	}

	file, err := exporter.NewExporter(h.store).Export(c.Request.Context(), opts, nil)
	if err != nil {
		h.logger.Error("엑셀 내보내기 실패", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "엑셀 내보내기 실패"})
		return
	}
	defer file.Close()

	name := "cozyvet.xlsx"
	if opts.SourceMonth != "" {
		name = fmt.Sprintf("cozyvet_%s.xlsx", opts.SourceMonth)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := file.Write(c.Writer); err != nil {
		h.logger.Error("엑셀 전송 실패", zap.Error(err))
	}
}
