package parser

import (
	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
)

// Options 파서 옵션
type Options struct {
	// AllowMonthOnlySheets "3월" 같은 연도 없는 시트를 unknown-MM 으로 받아들인다
	AllowMonthOnlySheets bool
	// Logger 진단 로그. nil 이면 기록하지 않는다
	Logger *zap.Logger
}

// Parser 월별 내원 엑셀 파서
// 호출 간 공유 상태가 없으므로 여러 고루틴에서 동시에 써도 된다.
type Parser struct {
	opts   Options
	logger *zap.Logger
}

// NewParser 파서 생성
func NewParser(opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{opts: opts, logger: logger}
}

// Fingerprint 결과에 영향을 주는 옵션 요약. 캐시 키에 쓴다
func (p *Parser) Fingerprint() string {
	if p.opts.AllowMonthOnlySheets {
		return "m1"
	}
	return "m0"
}

// Parse 기본 옵션으로 워크북 바이트를 파싱
func Parse(data []byte, onProgress ProgressFunc) (*model.ParseResult, error) {
	return NewParser(Options{}).Parse(data, onProgress)
}

// Parse 워크북 바이트를 파싱. 워크북으로 열 수 없을 때만 에러를 돌려준다
func (p *Parser) Parse(data []byte, onProgress ProgressFunc) (*model.ParseResult, error) {
	reportProgress(onProgress, Progress{Stage: StageReading, Percent: percentReadStart})

	wb, err := OpenWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	reportProgress(onProgress, Progress{Stage: StageReading, Percent: percentReadDone})

	return p.ParseWorkbook(wb, onProgress), nil
}

type targetSheet struct {
	name        string
	sourceMonth string
}

// ParseWorkbook 열린 워크북의 대상 시트를 순서대로 파싱
func (p *Parser) ParseWorkbook(wb Workbook, onProgress ProgressFunc) *model.ParseResult {
	targets := p.selectSheets(wb.SheetNames())
	total := len(targets)

	reportProgress(onProgress, Progress{
		Stage:       StageParsing,
		Percent:     sheetPercentStart(total),
		TotalSheets: total,
	})

	result := model.NewParseResult()
	for i, target := range targets {
		current := i + 1
		reportProgress(onProgress, Progress{
			Stage:        StageParsing,
			Percent:      sheetPercent(current, total),
			CurrentSheet: current,
			TotalSheets:  total,
			Sheet:        target.name,
		})

		rows, err := wb.Rows(target.name)
		if err != nil {
			p.logger.Warn("시트 읽기 실패, 빈 시트로 처리", zap.String("sheet", target.name), zap.Error(err))
			rows = nil
		}
		p.parseSheet(target, rows, result)
	}

	reportProgress(onProgress, Progress{
		Stage:        StageDone,
		Percent:      percentComplete,
		CurrentSheet: total,
		TotalSheets:  total,
	})

	p.logger.Debug("파싱 완료",
		zap.Int("patients", len(result.Patients)),
		zap.Int("checkups", len(result.HealthCheckups)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result
}

func sheetPercentStart(total int) int {
	if total == 0 {
		return percentComplete
	}
	return percentReadDone
}

// selectSheets 이름이 정규화되는 시트만 남긴다
func (p *Parser) selectSheets(names []string) []targetSheet {
	targets := make([]targetSheet, 0, len(names))
	for _, name := range names {
		month, ok := normalizeSheetName(name, p.opts.AllowMonthOnlySheets)
		if !ok {
			p.logger.Debug("시트 건너뜀", zap.String("sheet", name))
			continue
		}
		targets = append(targets, targetSheet{name: name, sourceMonth: month})
	}
	return targets
}

// parseSheet 환자 영역과 건강검진 영역을 따로 추출해 result 에 누적
func (p *Parser) parseSheet(target targetSheet, rows [][]any, result *model.ParseResult) {
	warningsBefore := len(result.Warnings)

	layout := resolvePatientLayout(rows)
	if h, ok := layout.(headerLayout); ok {
		p.logger.Debug("환자 헤더 감지",
			zap.String("sheet", target.name),
			zap.Int("row", h.detection.RowIndex),
			zap.Any("columns", h.detection.Columns.Columns()),
		)
	} else {
		p.logger.Debug("환자 헤더 없음, 고정 컬럼 사용", zap.String("sheet", target.name))
	}

	patients, warnings := extractPatients(target.name, target.sourceMonth, rows, layout)
	result.Patients = append(result.Patients, patients...)
	result.Warnings = append(result.Warnings, warnings...)

	var checkupCount int
	if header, ok := resolveCheckupHeader(rows); ok {
		p.logger.Debug("건강검진 헤더 감지", zap.String("sheet", target.name), zap.Int("row", header.RowIndex))
		checkups, checkupWarnings := extractCheckups(target.name, target.sourceMonth, rows, header)
		result.HealthCheckups = append(result.HealthCheckups, checkups...)
		result.Warnings = append(result.Warnings, checkupWarnings...)
		checkupCount = len(checkups)
	}

	summary := model.SheetSummary{
		Sheet:        target.name,
		PatientCount: len(patients),
		CheckupCount: checkupCount,
		WarningCount: len(result.Warnings) - warningsBefore,
	}
	result.SheetSummaries = append(result.SheetSummaries, summary)

	p.logger.Debug("시트 처리 완료",
		zap.String("sheet", target.name),
		zap.String("source_month", target.sourceMonth),
		zap.String("layout", layout.name()),
		zap.Int("patients", summary.PatientCount),
		zap.Int("checkups", summary.CheckupCount),
		zap.Int("warnings", summary.WarningCount),
	)
}
