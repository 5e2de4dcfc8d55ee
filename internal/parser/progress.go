package parser

import "math"

// Stage 진행 단계
type Stage string

const (
	StageReading Stage = "reading"
	StageParsing Stage = "parsing"
	StageDone    Stage = "done"
)

// 단계별 고정 진행률
const (
	percentReadStart  = 5
	percentReadDone   = 15
	percentParseSpan  = 80
	percentParseLimit = 95
	percentComplete   = 100
)

// Progress 진행 이벤트
type Progress struct {
	Stage        Stage  `json:"stage"`
	Percent      int    `json:"percent"`
	CurrentSheet int    `json:"current_sheet"`
	TotalSheets  int    `json:"total_sheets"`
	Sheet        string `json:"sheet,omitempty"`
}

// ProgressFunc 진행 이벤트 수신 함수. 파싱과 같은 고루틴에서 동기 호출된다
type ProgressFunc func(Progress)

// reportProgress nil 이면 아무것도 하지 않음
func reportProgress(fn ProgressFunc, p Progress) {
	if fn == nil {
		return
	}
	if p.Percent < 0 {
		p.Percent = 0
	}
	if p.Percent > percentComplete {
		p.Percent = percentComplete
	}
	fn(p)
}

// sheetPercent current 번째(1-based) 시트를 시작할 때의 진행률
func sheetPercent(current, total int) int {
	if total == 0 {
		return percentComplete
	}
	p := percentReadDone + int(math.Round(float64(current)/float64(total)*percentParseSpan))
	return min(p, percentParseLimit)
}
