package parser

import (
	"fmt"
	"strings"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
)

// 시트당 처리 상한
const (
	maxPatientRows      = 500
	maxCheckupRows      = 100
	legacyFirstRow      = 3   // 1-based
	legacyLastRow       = 300 // 1-based, 포함
	checkupTailRows     = 100
	checkupMinScanStart = 100
	mostlyEmptyColumns  = 15
)

// legacyColumns 헤더가 없는 옛 양식의 고정 컬럼
var legacyColumns = newHeaderMap(map[string]int{
	"chart_number":     1,
	"visit_date":       2,
	"owner_name":       3,
	"pet_name":         4,
	"species":          5,
	"household_type":   6,
	"referral_source":  7,
	"department":       8,
	"residential_area": 9,
	"naver_booking":    10,
	"payment_amount":   11,
	"staff_in_charge":  12,
	"is_revisit":       14,
})

// patientLayout 시트마다 한 번 정해지는 환자 행 해석 방식
type patientLayout interface {
	name() string
	columns() HeaderMap
	// window 데이터 행 범위 [start, end), 0-based
	window(rowCount int) (start, end int)
	missingChartMessage(rowNumber int) string
}

// headerLayout 감지된 헤더 기준
type headerLayout struct {
	detection HeaderDetection
}

func (l headerLayout) name() string       { return "header" }
func (l headerLayout) columns() HeaderMap { return l.detection.Columns }

func (l headerLayout) window(rowCount int) (int, int) {
	start := l.detection.RowIndex + 1
	return start, min(rowCount, start+maxPatientRows)
}

func (l headerLayout) missingChartMessage(int) string { return MsgMissingChartOrPet }

// fixedLayout 헤더를 못 찾았을 때의 고정 인덱스 양식
type fixedLayout struct{}

func (fixedLayout) name() string       { return "fixed" }
func (fixedLayout) columns() HeaderMap { return legacyColumns }

func (fixedLayout) window(rowCount int) (int, int) {
	return legacyFirstRow - 1, min(legacyLastRow, rowCount)
}

func (fixedLayout) missingChartMessage(rowNumber int) string {
	return fmt.Sprintf("Row %d: %s", rowNumber, MsgMissingChartNumber)
}

// resolvePatientLayout 헤더가 있으면 headerLayout, 없으면 fixedLayout
func resolvePatientLayout(rows [][]any) patientLayout {
	if detection, ok := DetectHeader(rows, patientFields, patientRequiredFields, DefaultHeaderScanRows); ok {
		return headerLayout{detection: detection}
	}
	return fixedLayout{}
}

// checkupWindowStart 건강검진 헤더 탐색 시작 행
func checkupWindowStart(rowCount int) int {
	return max(checkupMinScanStart, rowCount-checkupTailRows)
}

// resolveCheckupHeader 시트 하단에서 건강검진 헤더를 찾는다. 없으면 ok=false
// 반환되는 RowIndex 는 시트 전체 기준이다.
func resolveCheckupHeader(rows [][]any) (HeaderDetection, bool) {
	start := checkupWindowStart(len(rows))
	if start >= len(rows) {
		return HeaderDetection{}, false
	}
	detection, ok := DetectHeader(rows[start:], checkupFields, checkupRequiredFields, DefaultHeaderScanRows)
	if !ok {
		return HeaderDetection{}, false
	}
	detection.RowIndex += start
	return detection, true
}

// isMostlyEmptyRow 앞쪽 15개 컬럼이 모두 비어 있는지
func isMostlyEmptyRow(row []any) bool {
	limit := min(mostlyEmptyColumns, len(row))
	for i := 0; i < limit; i++ {
		switch v := row[i].(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
		}
		return false
	}
	return true
}

// extractPatients 환자 행 추출. 경고는 생성 순서대로 warnings 에 덧붙는다
func extractPatients(sheet, sourceMonth string, rows [][]any, layout patientLayout) ([]model.ParsedPatient, []model.ParseWarning) {
	var (
		patients []model.ParsedPatient
		warnings []model.ParseWarning
	)
	cols := layout.columns()
	start, end := layout.window(len(rows))

	for rowIdx := start; rowIdx < end; rowIdx++ {
		row := rows[rowIdx]
		if isMostlyEmptyRow(row) {
			continue
		}
		rowNumber := rowIdx + 1

		if AsString(cols.Cell(row, "chart_number")) == "" {
			owner := AsString(cols.Cell(row, "owner_name"))
			pet := AsString(cols.Cell(row, "pet_name"))
			if owner != "" || pet != "" {
				warnings = append(warnings, model.ParseWarning{
					Sheet:   sheet,
					Row:     rowNumber,
					Message: layout.missingChartMessage(rowNumber),
				})
			}
			continue
		}

		patient := buildPatient(sourceMonth, rowNumber, row, cols)
		warnings = append(warnings, ValidateRequired(sheet, rowNumber, patient)...)
		patients = append(patients, patient)
	}

	return patients, warnings
}

// buildPatient 한 행을 환자 기록으로 변환
func buildPatient(sourceMonth string, rowNumber int, row []any, cols HeaderMap) model.ParsedPatient {
	payment := ParsePayment(cols.Cell(row, "payment_amount"))

	department := AsString(cols.Cell(row, "department"))
	if department == "" {
		department = model.DefaultDepartment
	}

	return model.ParsedPatient{
		ChartNumber:     AsString(cols.Cell(row, "chart_number")),
		VisitDate:       NormalizeDate(cols.Cell(row, "visit_date")),
		OwnerName:       AsString(cols.Cell(row, "owner_name")),
		PetName:         AsString(cols.Cell(row, "pet_name")),
		Species:         ToSpecies(cols.Cell(row, "species")),
		HouseholdType:   optionalString(cols.Cell(row, "household_type")),
		ReferralSource:  optionalString(cols.Cell(row, "referral_source")),
		Department:      department,
		ResidentialArea: optionalString(cols.Cell(row, "residential_area")),
		NaverBooking:    ToBooleanMarker(cols.Cell(row, "naver_booking")),
		PaymentAmount:   payment.Amount,
		PaymentStatus:   payment.Status,
		StaffInCharge:   optionalString(cols.Cell(row, "staff_in_charge")),
		IsRevisit:       ToRevisitMarker(cols.Cell(row, "is_revisit")),
		RevisitDate:     nil,
		SourceMonth:     sourceMonth,
		RowNumber:       rowNumber,
	}
}

// extractCheckups 건강검진 행 추출. 보호자/동물 이름 중 하나만 있으면 경고 후 버린다
func extractCheckups(sheet, sourceMonth string, rows [][]any, header HeaderDetection) ([]model.ParsedCheckup, []model.ParseWarning) {
	var (
		checkups []model.ParsedCheckup
		warnings []model.ParseWarning
	)
	cols := header.Columns
	start := header.RowIndex + 1
	end := min(len(rows), start+maxCheckupRows)

	for rowIdx := start; rowIdx < end; rowIdx++ {
		row := rows[rowIdx]
		owner := AsString(cols.Cell(row, "owner_name"))
		pet := AsString(cols.Cell(row, "pet_name"))
		if owner == "" && pet == "" {
			continue
		}
		rowNumber := rowIdx + 1

		checkup := buildCheckup(sourceMonth, rowNumber, row, cols)
		if checkup.OwnerName == "" || checkup.PetName == "" {
			warnings = append(warnings, model.ParseWarning{
				Sheet:   sheet,
				Row:     rowNumber,
				Message: MsgMissingCheckupFields,
			})
			continue
		}
		checkups = append(checkups, checkup)
	}

	return checkups, warnings
}

// buildCheckup 한 행을 건강검진 기록으로 변환
func buildCheckup(sourceMonth string, rowNumber int, row []any, cols HeaderMap) model.ParsedCheckup {
	return model.ParsedCheckup{
		OwnerName:      AsString(cols.Cell(row, "owner_name")),
		Contact:        optionalString(cols.Cell(row, "contact")),
		PetName:        AsString(cols.Cell(row, "pet_name")),
		Species:        ToSpecies(cols.Cell(row, "species")),
		BirthYear:      optionalInt(cols.Cell(row, "birth_year")),
		Sex:            optionalString(cols.Cell(row, "sex")),
		Weight:         ParseDecimalOrNull(cols.Cell(row, "weight")),
		CheckupType:    optionalString(cols.Cell(row, "checkup_type")),
		BaseCost:       ParseDigitsOrNull(cols.Cell(row, "base_cost")),
		AdditionalCost: ParseDigitsOrNull(cols.Cell(row, "additional_cost")),
		FinalCost:      ParseDigitsOrNull(cols.Cell(row, "final_cost")),
		Points:         ParseDigitsOrNull(cols.Cell(row, "points")),
		Notes:          optionalString(cols.Cell(row, "notes")),
		PreferredDate1: optionalDate(cols.Cell(row, "preferred_date_1")),
		PreferredDate2: optionalDate(cols.Cell(row, "preferred_date_2")),
		PreferredTime:  optionalString(cols.Cell(row, "preferred_time")),
		Concerns:       optionalString(cols.Cell(row, "concerns")),
		CompletionDate: optionalDate(cols.Cell(row, "completion_date")),
		ReviewStatus:   ToBooleanMarker(cols.Cell(row, "review_status")),
		SourceMonth:    sourceMonth,
		RowNumber:      rowNumber,
	}
}
