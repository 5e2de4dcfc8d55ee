package exporter

import (
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
)

// Progress 내보내기 진행 상황. Sheet 는 방금 작성한 시트
type Progress struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
	Sheet   string `json:"sheet,omitempty"`
}

// ProgressFunc nil 이면 진행 상황을 보내지 않는다
type ProgressFunc func(Progress)

func (fn ProgressFunc) report(p Progress) {
	if fn == nil {
		return
	}
	p.Percent = min(max(p.Percent, 0), 100)
	fn(p)
}

// ReminderSheet 연락 목록 시트 이름. 월 시트 형식이 아니라서 다시 읽어도 건너뛴다
const ReminderSheet = "연락 목록"

// patientHeader 월 시트 헤더. 파서의 환자 헤더 사전과 같은 표현을 쓴다
var patientHeader = []any{
	"차트번호", "내원일", "보호자 이름", "동물 이름", "축종", "세대", "내원 경로",
	"진료과", "거주지", "네이버예약", "수납금액", "담당자", "재진",
}

var reminderHeader = []any{
	"예정일", "종류", "차트번호", "보호자 이름", "동물 이름", "내원일", "진료과", "템플릿",
}

// Source 내보낼 데이터
type Source interface {
	ListPatients(ctx context.Context, sourceMonth string) ([]model.Patient, error)
	ListDueReminders(ctx context.Context, until string) ([]model.DueReminder, error)
}

// Exporter 환자 기록과 연락 목록을 엑셀로 내보낸다
type Exporter struct {
	source Source
}

// NewExporter 내보내기 생성
func NewExporter(source Source) *Exporter {
	return &Exporter{source: source}
}

// ExportOptions 내보내기 옵션
type ExportOptions struct {
	SourceMonth string // 비어 있으면 전체 월
	DueUntil    string // YYYY-MM-DD, 비어 있으면 연락 목록 시트를 만들지 않는다
}

// Export 월별 환자 시트와 연락 목록 시트를 가진 워크북 생성
func (e *Exporter) Export(ctx context.Context, opts ExportOptions, progress ProgressFunc) (*excelize.File, error) {
	progress.report(Progress{Percent: 0, Stage: "환자 기록 조회"})
	patients, err := e.source.ListPatients(ctx, opts.SourceMonth)
	if err != nil {
		return nil, fmt.Errorf("환자 기록 조회 실패: %w", err)
	}

	var due []model.DueReminder
	if opts.DueUntil != "" {
		due, err = e.source.ListDueReminders(ctx, opts.DueUntil)
		if err != nil {
			return nil, fmt.Errorf("연락 목록 조회 실패: %w", err)
		}
	}

	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	byMonth := groupByMonth(patients)
	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	for i, month := range months {
		if err := writePatientSheet(f, month, byMonth[month], headerStyle); err != nil {
			_ = f.Close()
			return nil, err
		}
		progress.report(Progress{Percent: 10 + (i+1)*80/len(months), Stage: "시트 작성", Sheet: month})
	}

	if opts.DueUntil != "" {
		if err := writeReminderSheet(f, due, headerStyle); err != nil {
			_ = f.Close()
			return nil, err
		}
		progress.report(Progress{Percent: 95, Stage: "시트 작성", Sheet: ReminderSheet})
	}

	// 기본 시트는 다른 시트가 하나라도 있으면 지운다
	if len(f.GetSheetList()) > 1 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	progress.report(Progress{Percent: 100, Stage: "완료"})
	return f, nil
}

func groupByMonth(patients []model.Patient) map[string][]model.Patient {
	out := make(map[string][]model.Patient)
	for _, p := range patients {
		out[p.SourceMonth] = append(out[p.SourceMonth], p)
	}
	return out
}

func writePatientSheet(f *excelize.File, sheet string, patients []model.Patient, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("시트 생성 실패 (%s): %w", sheet, err)
	}
	if err := writeHeader(f, sheet, patientHeader, headerStyle); err != nil {
		return err
	}

	for i, p := range patients {
		row := []any{
			p.ChartNumber, p.VisitDate, p.OwnerName, p.PetName, speciesLabel(p.Species),
			deref(p.HouseholdType), deref(p.ReferralSource), p.Department, deref(p.ResidentialArea),
			marker(p.NaverBooking), paymentCell(p), deref(p.StaffInCharge), revisitLabel(p.IsRevisit),
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeReminderSheet(f *excelize.File, due []model.DueReminder, headerStyle int) error {
	if _, err := f.NewSheet(ReminderSheet); err != nil {
		return fmt.Errorf("시트 생성 실패 (%s): %w", ReminderSheet, err)
	}
	if err := writeHeader(f, ReminderSheet, reminderHeader, headerStyle); err != nil {
		return err
	}

	for i, d := range due {
		template := ""
		if d.MessageTemplateType != nil {
			template = string(*d.MessageTemplateType)
		}
		row := []any{
			d.DueDate, string(d.Type), d.ChartNumber, d.OwnerName, d.PetName, d.VisitDate, d.Department, template,
		}
		if err := setRow(f, ReminderSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []any, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s 시트 %d 행 쓰기 실패: %w", sheet, row, err)
	}
	return nil
}

func speciesLabel(s model.Species) string {
	if s == model.SpeciesCat {
		return "고양이"
	}
	return "강아지"
}

func revisitLabel(revisit bool) string {
	if revisit {
		return "재진O"
	}
	return "초진"
}

func marker(v bool) string {
	if v {
		return "O"
	}
	return ""
}

// paymentCell 입원 중이면 "입원중", 금액이 없으면 빈 칸
func paymentCell(p model.Patient) any {
	if p.PaymentStatus == model.PaymentHospitalized {
		return "입원중"
	}
	if p.PaymentAmount == nil {
		return ""
	}
	return *p.PaymentAmount
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
