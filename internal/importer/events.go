package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/parser"
)

// 진행 이벤트 종류
const (
	EventStart    = "start"
	EventProgress = "progress"
	EventInfo     = "info"
	EventDone     = "done"
	EventError    = "error"
)

// ProgressEvent 파일 가져오기 진행 이벤트
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/progress/info/done/error
	Message   string      `json:"message"` // 사람이 읽는 메시지
	Data      interface{} `json:"data"`    // parser.Progress, *ImportReport 등
	Timestamp time.Time   `json:"timestamp"`
}

// FileRequest 엑셀 파일 하나를 파싱하고 저장하는 요청
type FileRequest struct {
	Data     []byte
	Filename string
	Mode     DuplicateMode
}

// FileHash 파일 내용의 sha256 (hex)
func FileHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ImportFile 파싱부터 저장까지 진행하며 이벤트를 흘려보낸다. 마지막 이벤트는 done 또는 error
func (c *Coordinator) ImportFile(ctx context.Context, p *parser.Parser, req FileRequest) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImportFile(ctx, p, req, progressChan)
	}()

	return progressChan
}

func (c *Coordinator) doImportFile(ctx context.Context, p *parser.Parser, req FileRequest, progressChan chan<- ProgressEvent) {
	c.sendProgress(ctx, progressChan, ProgressEvent{
		Type:    EventStart,
		Message: "엑셀 가져오기 시작",
		Data: map[string]string{
			"filename": req.Filename,
			"mode":     string(req.Mode),
		},
	})

	parsed, err := p.Parse(req.Data, func(pr parser.Progress) {
		c.sendProgress(ctx, progressChan, ProgressEvent{
			Type:    EventProgress,
			Message: progressMessage(pr),
			Data:    pr,
		})
	})
	if err != nil {
		c.sendProgress(ctx, progressChan, ProgressEvent{
			Type:    EventError,
			Message: fmt.Sprintf("파일 해석 실패: %v", err),
		})
		return
	}

	c.sendProgress(ctx, progressChan, ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("환자 %d건, 건강검진 %d건, 경고 %d건", len(parsed.Patients), len(parsed.HealthCheckups), len(parsed.Warnings)),
		Data:    parsed.SheetSummaries,
	})

	report, err := c.Import(ctx, parsed, ImportOptions{
		Filename: req.Filename,
		FileHash: FileHash(req.Data),
		Mode:     req.Mode,
	})
	if err != nil {
		c.sendProgress(ctx, progressChan, ProgressEvent{
			Type:    EventError,
			Message: fmt.Sprintf("저장 실패: %v", err),
		})
		return
	}

	c.sendProgress(ctx, progressChan, ProgressEvent{
		Type:    EventDone,
		Message: "가져오기 완료",
		Data:    report,
	})
}

func progressMessage(pr parser.Progress) string {
	if pr.Sheet != "" {
		return fmt.Sprintf("%s (%d/%d) %d%%", pr.Sheet, pr.CurrentSheet, pr.TotalSheets, pr.Percent)
	}
	return fmt.Sprintf("%s %d%%", pr.Stage, pr.Percent)
}

// sendProgress 수신 측이 떠나면 (ctx 취소) 이벤트를 버린다
func (c *Coordinator) sendProgress(ctx context.Context, ch chan<- ProgressEvent, event ProgressEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case ch <- event:
	case <-ctx.Done():
		c.logger.Debug("진행 이벤트 폐기", zap.String("type", event.Type))
	}
}
