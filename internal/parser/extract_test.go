package parser

import (
	"testing"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
)

func patientHeaderRow() []any {
	return []any{"No", "차트번호", "내원일", "보호자 이름", "동물 이름", "축종", "세대", "내원경로", "진료과", "거주지", "네이버예약", "수납금액", "담당자", "비고", "재진"}
}

func TestExtractPatients_HeaderDriven(t *testing.T) {
	t.Parallel()

	rows := [][]any{
		{"2026년 2월 내원"},
		{},
		patientHeaderRow(),
		{1, "12706", "2026-02-10", "김OO", "겨울이", "강아지", "1인", "지인소개", "내과", "서울 마포", "O", "450,000", "박", "", "재진O"},
		{2, "12707", float64(46064), "이OO", "나비", "고양이", "", "", "", "", "", "입원", "", "", ""},
		{"", "", "", "", "", "", "", "", "", "", "", "", "", "", ""},
		{3, "", "", "최OO", "", "", "", "", "", "", "", "", "", "", ""},
		{4, "12708", "", "정OO", "", "", "", "", "", "", "", "", "", "", ""},
	}

	patients, warnings := extractPatients("2월", "2026-02", rows, resolvePatientLayout(rows))
	if len(patients) != 3 {
		t.Fatalf("patients: %d", len(patients))
	}

	p := patients[0]
	if p.ChartNumber != "12706" || p.VisitDate != "2026-02-10" || p.OwnerName != "김OO" || p.PetName != "겨울이" {
		t.Fatalf("first patient: %+v", p)
	}
	if p.Species != model.SpeciesDog || !p.NaverBooking || !p.IsRevisit {
		t.Fatalf("first patient markers: %+v", p)
	}
	if p.PaymentAmount == nil || *p.PaymentAmount != 450000 || p.PaymentStatus != model.PaymentPaid {
		t.Fatalf("first patient payment: %+v", p)
	}
	if p.HouseholdType == nil || *p.HouseholdType != "1인" || p.StaffInCharge == nil || *p.StaffInCharge != "박" {
		t.Fatalf("first patient optional fields: %+v", p)
	}
	if p.Department != "내과" || p.SourceMonth != "2026-02" || p.RowNumber != 4 || p.RevisitDate != nil {
		t.Fatalf("first patient meta: %+v", p)
	}

	p = patients[1]
	if p.VisitDate != "2026-02-11" || p.Species != model.SpeciesCat || p.PaymentStatus != model.PaymentHospitalized || p.PaymentAmount != nil {
		t.Fatalf("second patient: %+v", p)
	}
	if p.Department != model.DefaultDepartment || p.HouseholdType != nil || p.IsRevisit {
		t.Fatalf("second patient defaults: %+v", p)
	}

	// 7행: 차트번호 없음 + 보호자 있음 -> 경고 후 제외
	// 8행: 내원일, 동물 이름 누락 -> 검증 경고 2개, 기록은 유지
	want := []model.ParseWarning{
		{Sheet: "2월", Row: 7, Message: MsgMissingChartOrPet},
		{Sheet: "2월", Row: 8, Message: MsgMissingVisitDate},
		{Sheet: "2월", Row: 8, Message: MsgMissingPetName},
	}
	if len(warnings) != len(want) {
		t.Fatalf("warnings: %+v", warnings)
	}
	for i := range want {
		if warnings[i] != want[i] {
			t.Fatalf("warning %d: got %+v want %+v", i, warnings[i], want[i])
		}
	}
}

func TestExtractPatients_MissingChartRowExcluded(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 12)
	rows[2] = []any{"차트번호", "내원일", "보호자", "동물 이름"}
	rows[3] = []any{"12706", "2026-02-10", "김OO", "겨울이"}
	rows[9] = []any{"", "2026-02-12", "박OO", "초코"}

	patients, warnings := extractPatients("2026-02", "2026-02", rows, resolvePatientLayout(rows))
	if len(patients) != 1 || patients[0].ChartNumber != "12706" {
		t.Fatalf("patients: %+v", patients)
	}
	if len(warnings) != 1 || warnings[0].Row != 10 {
		t.Fatalf("warnings: %+v", warnings)
	}
}

func TestExtractPatients_FixedLayoutFallback(t *testing.T) {
	t.Parallel()

	row := func(chart, owner, pet string) []any {
		return []any{"", chart, "2026-02-10", owner, pet, "고양이", "", "", "피부과", "", "o", "30000", "", "", "o"}
	}
	rows := [][]any{
		{"내원 현황"},
		{"", "", "", "", ""},
		row("100", "김OO", "겨울이"),
		row("", "박OO", "초코"),
		row("", "", ""),
		row("101", "이OO", "나비"),
	}

	layout := resolvePatientLayout(rows)
	if layout.name() != "fixed" {
		t.Fatalf("expected fixed layout, got %s", layout.name())
	}

	patients, warnings := extractPatients("2026-02", "2026-02", rows, layout)
	if len(patients) != 2 {
		t.Fatalf("patients: %+v", patients)
	}
	if patients[0].RowNumber != 3 || patients[1].RowNumber != 6 {
		t.Fatalf("row numbers: %d %d", patients[0].RowNumber, patients[1].RowNumber)
	}
	if patients[0].Department != "피부과" || patients[0].Species != model.SpeciesCat || !patients[0].IsRevisit || !patients[0].NaverBooking {
		t.Fatalf("fixed columns: %+v", patients[0])
	}
	if len(warnings) != 1 || warnings[0].Row != 4 || warnings[0].Message != "Row 4: 차트번호 누락" {
		t.Fatalf("warnings: %+v", warnings)
	}
}

func TestExtractPatients_FixedLayoutRowCap(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 320)
	for i := range rows {
		rows[i] = []any{"", "C", "2026-02-10", "o", "p"}
	}
	patients, _ := extractPatients("s", "2026-02", rows, fixedLayout{})
	// 3..300 행
	if len(patients) != 298 {
		t.Fatalf("patients: %d", len(patients))
	}
	if patients[len(patients)-1].RowNumber != 300 {
		t.Fatalf("last row: %d", patients[len(patients)-1].RowNumber)
	}
}

func TestExtractPatients_HeaderRowCap(t *testing.T) {
	t.Parallel()

	rows := [][]any{{"차트번호", "내원일", "보호자", "동물 이름"}}
	for i := 0; i < 600; i++ {
		rows = append(rows, []any{"C", "2026-02-10", "o", "p"})
	}
	patients, _ := extractPatients("s", "2026-02", rows, resolvePatientLayout(rows))
	if len(patients) != maxPatientRows {
		t.Fatalf("patients: %d", len(patients))
	}
}

func TestIsMostlyEmptyRow(t *testing.T) {
	t.Parallel()

	if !isMostlyEmptyRow(nil) {
		t.Fatalf("nil row")
	}
	if !isMostlyEmptyRow([]any{"", " ", nil}) {
		t.Fatalf("blank row")
	}
	if isMostlyEmptyRow([]any{"", 0.0}) {
		t.Fatalf("zero is a value")
	}
	wide := make([]any, 20)
	for i := range wide {
		wide[i] = ""
	}
	wide[15] = "ignored"
	if !isMostlyEmptyRow(wide) {
		t.Fatalf("columns past 14 must not be checked")
	}
}

func checkupSheet(patientRows int) [][]any {
	rows := [][]any{{"차트번호", "내원일", "보호자", "동물 이름"}}
	for i := 0; i < patientRows; i++ {
		rows = append(rows, []any{"C", "2026-02-10", "o", "p"})
	}
	rows = append(rows,
		[]any{},
		[]any{"보호자", "연락처", "동물명", "축종", "체중", "기본비용", "최종비용", "포인트", "희망일1", "후기"},
		[]any{"김OO", "010-0000-0000", "겨울이", "강아지", "3.1kg", "150,000원", "0", "1,500", "2026-03-02", "O"},
		[]any{"박OO", "", "", "", "", "", "", "", "", ""},
		[]any{"", "", "", "", "", "", "", "", "", ""},
		[]any{"이OO", "", "나비", "고양이", "", "", "", "", "", ""},
	)
	return rows
}

func TestResolveCheckupHeader_TailWindow(t *testing.T) {
	t.Parallel()

	rows := checkupSheet(99)
	header, ok := resolveCheckupHeader(rows)
	if !ok {
		t.Fatalf("expected checkup header")
	}
	if header.RowIndex != 101 {
		t.Fatalf("header row: %d", header.RowIndex)
	}

	checkups, warnings := extractCheckups("2026-02", "2026-02", rows, header)
	if len(checkups) != 2 {
		t.Fatalf("checkups: %+v", checkups)
	}
	c := checkups[0]
	if c.OwnerName != "김OO" || c.PetName != "겨울이" || c.RowNumber != 103 || !c.ReviewStatus {
		t.Fatalf("checkup: %+v", c)
	}
	if c.Weight == nil || *c.Weight != 3.1 {
		t.Fatalf("weight: %v", c.Weight)
	}
	if c.BaseCost == nil || *c.BaseCost != 150000 || c.FinalCost == nil || *c.FinalCost != 0 || c.Points == nil || *c.Points != 1500 {
		t.Fatalf("costs: %+v", c)
	}
	if c.PreferredDate1 == nil || *c.PreferredDate1 != "2026-03-02" || c.PreferredDate2 != nil || c.AdditionalCost != nil {
		t.Fatalf("optional fields: %+v", c)
	}
	if checkups[1].Species != model.SpeciesCat {
		t.Fatalf("species: %+v", checkups[1])
	}
	if len(warnings) != 1 || warnings[0].Row != 104 || warnings[0].Message != MsgMissingCheckupFields {
		t.Fatalf("warnings: %+v", warnings)
	}
}

func TestResolveCheckupHeader_ShortSheet(t *testing.T) {
	t.Parallel()

	// 100행 미만 시트는 탐색 창이 비어 건강검진이 추출되지 않는다
	if _, ok := resolveCheckupHeader(checkupSheet(10)); ok {
		t.Fatalf("short sheet must not yield checkup header")
	}
}

func TestResolveCheckupHeader_HeaderAboveTail(t *testing.T) {
	t.Parallel()

	// 건강검진 헤더가 마지막 100행보다 위에 있으면 찾지 않는다
	rows := checkupSheet(99)
	for i := 0; i < 100; i++ {
		rows = append(rows, []any{})
	}
	if _, ok := resolveCheckupHeader(rows); ok {
		t.Fatalf("header outside tail window must be ignored")
	}
}
