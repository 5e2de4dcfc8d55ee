package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// sseEvent 파싱 스트림 이벤트
type sseEvent struct {
	Type    string      `json:"type"` // progress/result/error
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// beginSSE SSE 응답 헤더 설정
func beginSSE(c *gin.Context) (http.Flusher, bool) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		return nil, false
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	return flusher, true
}

// writeSSE data: {json}\n\n
func writeSSE(c *gin.Context, flusher http.Flusher, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	flusher.Flush()
}
