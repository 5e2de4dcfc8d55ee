package parser

import (
	"strings"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
)

// DuplicateKeySeparator 중복 키 구분자
const DuplicateKeySeparator = "::"

// 경고 메시지
const (
	MsgMissingChartNumber   = "차트번호 누락"
	MsgMissingVisitDate     = "내원날짜 누락"
	MsgMissingOwnerName     = "보호자 성함 누락"
	MsgMissingPetName       = "동물 이름 누락"
	MsgMissingChartOrPet    = "동물 이름 누락 or 차트번호 누락"
	MsgMissingCheckupFields = "건강검진 필수값(보호자/동물 이름) 누락"
)

// ValidateRequired 환자 필수값 검사. 차트번호, 내원일, 보호자, 동물 이름 순서로 경고를 만든다
func ValidateRequired(sheet string, row int, p model.ParsedPatient) []model.ParseWarning {
	var warnings []model.ParseWarning
	add := func(msg string) {
		warnings = append(warnings, model.ParseWarning{Sheet: sheet, Row: row, Message: msg})
	}

	if p.ChartNumber == "" {
		add(MsgMissingChartNumber)
	}
	if p.VisitDate == "" {
		add(MsgMissingVisitDate)
	}
	if p.OwnerName == "" {
		add(MsgMissingOwnerName)
	}
	if p.PetName == "" {
		add(MsgMissingPetName)
	}
	return warnings
}

// MakeDuplicateKey chart_number::visit_date
// 빈 값도 그대로 이어 붙이므로 의미 있는 중복만 골라내려면 호출 측에서 빈 값을 걸러야 한다.
func MakeDuplicateKey(p model.ParsedPatient) string {
	return DuplicateKey(p.ChartNumber, p.VisitDate)
}

// DuplicateKey 저장된 기록과 비교할 때 쓰는 같은 형식의 키
func DuplicateKey(chartNumber, visitDate string) string {
	return chartNumber + DuplicateKeySeparator + visitDate
}

// HasDuplicateKey 차트번호와 내원일이 모두 있는지
func HasDuplicateKey(p model.ParsedPatient) bool {
	return p.ChartNumber != "" && p.VisitDate != ""
}

// CanonicalChartNumber "12706, 12707" 처럼 붙은 값에서 첫 번째 차트번호
func CanonicalChartNumber(chartNumber string) string {
	first, _, _ := strings.Cut(chartNumber, ",")
	return strings.TrimSpace(first)
}
