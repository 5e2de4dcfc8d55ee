package model

// ParseWarning 행 단위 데이터 품질 경고
type ParseWarning struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"` // 원본 시트 기준 1-based
	Message string `json:"message"`
}

// SheetSummary 처리된 시트별 집계
type SheetSummary struct {
	Sheet        string `json:"sheet"`
	PatientCount int    `json:"patient_count"`
	CheckupCount int    `json:"checkup_count"`
	WarningCount int    `json:"warning_count"`
}

// ParseResult 워크북 한 개의 파싱 결과
type ParseResult struct {
	Patients       []ParsedPatient `json:"patients"`
	HealthCheckups []ParsedCheckup `json:"health_checkups"`
	Warnings       []ParseWarning  `json:"warnings"`
	SheetSummaries []SheetSummary  `json:"sheet_summaries"`
}

// NewParseResult 빈 슬라이스로 초기화된 결과 (JSON 에서 null 대신 [])
func NewParseResult() *ParseResult {
	return &ParseResult{
		Patients:       []ParsedPatient{},
		HealthCheckups: []ParsedCheckup{},
		Warnings:       []ParseWarning{},
		SheetSummaries: []SheetSummary{},
	}
}
