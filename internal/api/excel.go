package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/cache"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/importer"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/parser"
)

var errUploadTooLarge = errors.New("upload too large")

// upload 업로드된 엑셀 파일
type upload struct {
	Filename string
	Data     []byte
}

// readUpload multipart "file" 필드를 읽는다. 실패 시 응답까지 보낸다
func (h *Handler) readUpload(c *gin.Context) (*upload, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "업로드 파일(file)이 없습니다"})
		return nil, false
	}
	if fileHeader.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errUploadTooLarge.Error()})
		return nil, false
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "파일을 열 수 없습니다"})
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "파일을 읽을 수 없습니다"})
		return nil, false
	}
	if int64(len(data)) > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": errUploadTooLarge.Error()})
		return nil, false
	}
	return &upload{Filename: fileHeader.Filename, Data: data}, true
}

// parseCached 캐시를 먼저 보고 없으면 파싱 후 저장
func (h *Handler) parseCached(ctx context.Context, data []byte) (*model.ParseResult, error) {
	hash := importer.FileHash(data)

	result, err := h.cache.Get(ctx, hash, h.parser.Fingerprint())
	if err == nil {
		h.logger.Debug("파싱 캐시 적중", zap.String("hash", hash))
		return result, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		h.logger.Warn("파싱 캐시 조회 실패", zap.Error(err))
	}

	result, err = h.parser.Parse(data, nil)
	if err != nil {
		return nil, err
	}
	if err := h.cache.Set(ctx, hash, h.parser.Fingerprint(), result); err != nil {
		h.logger.Warn("파싱 캐시 저장 실패", zap.Error(err))
	}
	return result, nil
}

func (h *Handler) respondParseError(c *gin.Context, err error) {
	if errors.Is(err, parser.ErrInvalidWorkbook) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("엑셀 파싱 실패", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "엑셀 파싱 실패"})
}

func wantsStream(c *gin.Context) bool {
	v := c.Query("stream")
	return v == "1" || v == "true"
}

// Parse 엑셀 파싱
// POST /api/excel/parse (?stream=1 이면 SSE 진행 이벤트 후 result 이벤트)
func (h *Handler) Parse(c *gin.Context) {
	up, ok := h.readUpload(c)
	if !ok {
		return
	}

	if !wantsStream(c) {
		result, err := h.parseCached(c.Request.Context(), up.Data)
		if err != nil {
			h.respondParseError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	flusher, ok := beginSSE(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "스트리밍을 지원하지 않습니다"})
		return
	}

	// 진행 콜백은 파싱과 같은 고루틴에서 호출되므로 바로 써도 된다
	result, err := h.parser.Parse(up.Data, func(p parser.Progress) {
		writeSSE(c, flusher, sseEvent{Type: "progress", Data: p})
	})
	if err != nil {
		writeSSE(c, flusher, sseEvent{Type: "error", Message: err.Error()})
		return
	}
	writeSSE(c, flusher, sseEvent{Type: "result", Data: result})
}

// Preview 저장 전 미리보기
// POST /api/excel/preview
func (h *Handler) Preview(c *gin.Context) {
	up, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.parseCached(c.Request.Context(), up.Data)
	if err != nil {
		h.respondParseError(c, err)
		return
	}

	report, err := h.coordinator.Preview(c.Request.Context(), result)
	if err != nil {
		h.logger.Error("미리보기 실패", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "미리보기 실패"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Import 파싱 결과 저장
// POST /api/excel/import (form: file, mode=skip|overwrite; ?stream=1 이면 SSE)
func (h *Handler) Import(c *gin.Context) {
	mode, err := importer.ParseDuplicateMode(c.DefaultPostForm("mode", string(importer.DuplicateSkip)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	up, ok := h.readUpload(c)
	if !ok {
		return
	}

	if wantsStream(c) {
		flusher, ok := beginSSE(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "스트리밍을 지원하지 않습니다"})
			return
		}
		events := h.coordinator.ImportFile(c.Request.Context(), h.parser, importer.FileRequest{
			Data:     up.Data,
			Filename: up.Filename,
			Mode:     mode,
		})
		for event := range events {
			writeSSE(c, flusher, event)
		}
		return
	}

	result, err := h.parseCached(c.Request.Context(), up.Data)
	if err != nil {
		h.respondParseError(c, err)
		return
	}

	report, err := h.coordinator.Import(c.Request.Context(), result, importer.ImportOptions{
		Filename: up.Filename,
		FileHash: importer.FileHash(up.Data),
		Mode:     mode,
	})
	if err != nil {
		h.logger.Error("가져오기 실패", zap.String("filename", up.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("가져오기 실패: %v", err)})
		return
	}
	c.JSON(http.StatusOK, report)
}
