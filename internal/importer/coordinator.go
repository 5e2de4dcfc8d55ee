package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/parser"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/reminder"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/store"
)

// ErrInvalidDuplicateMode skip/overwrite 이외의 값
var ErrInvalidDuplicateMode = errors.New("invalid duplicate mode")

// DuplicateMode 이미 저장된 환자 기록과 겹칠 때의 처리
type DuplicateMode string

const (
	DuplicateSkip      DuplicateMode = "skip"
	DuplicateOverwrite DuplicateMode = "overwrite"
)

// ParseDuplicateMode 문자열을 DuplicateMode 로
func ParseDuplicateMode(s string) (DuplicateMode, error) {
	switch DuplicateMode(s) {
	case DuplicateSkip, DuplicateOverwrite:
		return DuplicateMode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDuplicateMode, s)
	}
}

// 저장 시 문자열 길이 제한 (rune 기준)
const (
	maxHouseholdLen = 50
	maxReferralLen  = 100
	maxAreaLen      = 100
	maxStaffLen     = 50
)

// Repository 가져오기에 필요한 저장소 기능
type Repository interface {
	ExistingPatientKeys(ctx context.Context, chartNumbers, visitDates []string) ([]model.PatientKey, error)
	InsertPatients(ctx context.Context, patients []model.Patient) ([]model.Patient, error)
	UpdatePatient(ctx context.Context, id string, p model.Patient) (model.Patient, error)
	InsertCheckups(ctx context.Context, checkups []model.ParsedCheckup) (int, error)
	DeletePendingReminders(ctx context.Context, patientIDs []string) (int64, error)
	InsertReminders(ctx context.Context, reminders []model.Reminder) (int, error)
	FollowupThreshold(ctx context.Context, fallback int64) (int64, error)
	CreateImportLog(ctx context.Context, filename, fileHash, duplicateMode string) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, counts store.ImportCounts, status, errorMessage string) error
}

// Coordinator 파싱 결과를 저장소에 반영하는 가져오기 조정자
// repo 가 nil 이면 저장 없이 집계만 하는 dry run 으로 동작한다.
type Coordinator struct {
	repo      Repository
	logger    *zap.Logger
	threshold int64
}

// NewCoordinator 조정자 생성. threshold 는 설정이 없을 때 쓰는 기준 금액
func NewCoordinator(repo Repository, logger *zap.Logger, threshold int64) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = reminder.DefaultFollowupThreshold
	}
	return &Coordinator{repo: repo, logger: logger, threshold: threshold}
}

// ImportOptions 가져오기 옵션
type ImportOptions struct {
	Filename string
	FileHash string
	Mode     DuplicateMode
}

// ImportedCounts 반영된 건수
type ImportedCounts struct {
	Patients       int `json:"patients"`
	HealthCheckups int `json:"health_checkups"`
}

// PatientResult 환자 기록 처리 내역
type PatientResult struct {
	Inserted      int `json:"inserted"`
	Updated       int `json:"updated"`
	SkippedByMode int `json:"skipped_by_mode"`
}

// ImportReport 가져오기 결과
type ImportReport struct {
	DryRun               bool           `json:"dry_run"`
	DuplicateMode        DuplicateMode  `json:"duplicate_mode"`
	Imported             ImportedCounts `json:"imported"`
	PatientResult        PatientResult  `json:"patient_result"`
	DuplicateWithDBCount int            `json:"duplicate_with_db_count"`
	DuplicateInFileCount int            `json:"duplicate_in_file_count"`
	SkippedInvalidCount  int            `json:"skipped_invalid_count"`
	RemindersCreated     int            `json:"reminders_created"`
	SkippedWarnings      int            `json:"skipped_warnings"`
	ImportLogID          int64          `json:"import_log_id,omitempty"`
	DurationMs           int64          `json:"duration_ms"`
}

// PreviewReport 저장 전 미리보기
type PreviewReport struct {
	TotalPatients          int                  `json:"total_patients"`
	TotalHealthCheckups    int                  `json:"total_health_checkups"`
	Warnings               []model.ParseWarning `json:"warnings"`
	SheetSummaries         []model.SheetSummary `json:"sheet_summaries"`
	DuplicateCount         int                  `json:"duplicate_count"`
	InternalDuplicateCount int                  `json:"internal_duplicate_count"`
	DBConnected            bool                 `json:"db_connected"`
}

// Preview 파일 내부 중복과 저장소 중복을 센다
func (c *Coordinator) Preview(ctx context.Context, parsed *model.ParseResult) (*PreviewReport, error) {
	report := &PreviewReport{
		TotalPatients:          len(parsed.Patients),
		TotalHealthCheckups:    len(parsed.HealthCheckups),
		Warnings:               parsed.Warnings,
		SheetSummaries:         parsed.SheetSummaries,
		InternalDuplicateCount: countInternalDuplicates(parsed.Patients),
		DBConnected:            c.repo != nil,
	}
	if c.repo == nil {
		return report, nil
	}

	var candidates []model.Patient
	for _, p := range parsed.Patients {
		if parser.HasDuplicateKey(p) {
			candidates = append(candidates, toPatient(p))
		}
	}
	existing, err := c.existingByKey(ctx, candidates)
	if err != nil {
		return nil, err
	}
	for _, p := range candidates {
		if _, ok := existing[patientKey(p)]; ok {
			report.DuplicateCount++
		}
	}
	return report, nil
}

// Import 파싱 결과를 저장한다
func (c *Coordinator) Import(ctx context.Context, parsed *model.ParseResult, opts ImportOptions) (*ImportReport, error) {
	startTime := time.Now()
	if _, err := ParseDuplicateMode(string(opts.Mode)); err != nil {
		return nil, err
	}

	valid := filterRequired(parsed.Patients)
	patients, duplicateInFile := dedupeInFile(valid, opts.Mode)
	checkups := filterCheckups(parsed.HealthCheckups)

	report := &ImportReport{
		DuplicateMode:        opts.Mode,
		DuplicateInFileCount: duplicateInFile,
		SkippedInvalidCount:  len(parsed.Patients) - len(valid),
		SkippedWarnings:      len(parsed.Warnings),
	}

	if c.repo == nil {
		report.DryRun = true
		report.Imported = ImportedCounts{Patients: len(patients), HealthCheckups: len(checkups)}
		report.DurationMs = time.Since(startTime).Milliseconds()
		return report, nil
	}

	logID, err := c.repo.CreateImportLog(ctx, opts.Filename, opts.FileHash, string(opts.Mode))
	if err != nil {
		return nil, err
	}
	report.ImportLogID = logID

	if err := c.apply(ctx, patients, checkups, opts.Mode, report); err != nil {
		if logErr := c.repo.UpdateImportLog(ctx, logID, countsOf(report), store.ImportStatusFailed, err.Error()); logErr != nil {
			c.logger.Warn("가져오기 이력 갱신 실패", zap.Int64("import_log_id", logID), zap.Error(logErr))
		}
		return nil, err
	}

	if err := c.repo.UpdateImportLog(ctx, logID, countsOf(report), store.ImportStatusCompleted, ""); err != nil {
		return nil, err
	}
	report.DurationMs = time.Since(startTime).Milliseconds()

	c.logger.Info("가져오기 완료",
		zap.String("filename", opts.Filename),
		zap.String("mode", string(opts.Mode)),
		zap.Int("inserted", report.PatientResult.Inserted),
		zap.Int("updated", report.PatientResult.Updated),
		zap.Int("skipped_by_mode", report.PatientResult.SkippedByMode),
		zap.Int("checkups", report.Imported.HealthCheckups),
		zap.Int("reminders", report.RemindersCreated),
	)
	return report, nil
}

// apply 신규 저장, 덮어쓰기, 건강검진 저장, 리마인더 재생성
func (c *Coordinator) apply(ctx context.Context, patients []model.Patient, checkups []model.ParsedCheckup, mode DuplicateMode, report *ImportReport) error {
	existing, err := c.existingByKey(ctx, patients)
	if err != nil {
		return err
	}

	var toInsert, toUpdate []model.Patient
	for _, p := range patients {
		if _, ok := existing[patientKey(p)]; ok {
			toUpdate = append(toUpdate, p)
			continue
		}
		toInsert = append(toInsert, p)
	}
	report.DuplicateWithDBCount = len(toUpdate)

	inserted, err := c.repo.InsertPatients(ctx, toInsert)
	if err != nil {
		return fmt.Errorf("환자 신규 저장 실패: %w", err)
	}
	report.PatientResult.Inserted = len(inserted)

	var updated []model.Patient
	if mode == DuplicateOverwrite {
		for _, p := range toUpdate {
			key := existing[patientKey(p)]
			row, err := c.repo.UpdatePatient(ctx, key.ID, p)
			if err != nil {
				return fmt.Errorf("환자 업데이트 실패 (%s, %s): %w", p.ChartNumber, p.VisitDate, err)
			}
			updated = append(updated, row)
		}
	} else {
		report.PatientResult.SkippedByMode = len(toUpdate)
	}
	report.PatientResult.Updated = len(updated)
	report.Imported.Patients = len(inserted) + len(updated)

	n, err := c.repo.InsertCheckups(ctx, checkups)
	if err != nil {
		return fmt.Errorf("건강검진 저장 실패: %w", err)
	}
	report.Imported.HealthCheckups = n

	touched := append(inserted, updated...)
	created, err := c.rebuildReminders(ctx, touched)
	if err != nil {
		return err
	}
	report.RemindersCreated = created
	return nil
}

// RefreshReminders 수정된 환자 한 명의 대기 리마인더를 다시 만든다
// 완료/건너뜀 처리된 리마인더는 그대로 둔다. 저장소가 없으면 0.
func (c *Coordinator) RefreshReminders(ctx context.Context, p model.Patient) (int, error) {
	if c.repo == nil {
		return 0, nil
	}
	return c.rebuildReminders(ctx, []model.Patient{p})
}

// rebuildReminders 대상 환자의 대기 리마인더를 지우고 다시 만든다
func (c *Coordinator) rebuildReminders(ctx context.Context, touched []model.Patient) (int, error) {
	if len(touched) == 0 {
		return 0, nil
	}

	threshold, err := c.repo.FollowupThreshold(ctx, c.threshold)
	if err != nil {
		c.logger.Warn("기준 금액 조회 실패, 기본값 사용", zap.Error(err))
		threshold = c.threshold
	}

	ids := make([]string, 0, len(touched))
	for _, p := range touched {
		ids = append(ids, p.ID)
	}
	if _, err := c.repo.DeletePendingReminders(ctx, ids); err != nil {
		return 0, fmt.Errorf("대기 리마인더 삭제 실패: %w", err)
	}

	var reminders []model.Reminder
	for _, p := range touched {
		built, err := reminder.BuildForPatient(p, threshold)
		if err != nil {
			c.logger.Warn("리마인더 생성 건너뜀", zap.String("patient_id", p.ID), zap.Error(err))
			continue
		}
		reminders = append(reminders, built...)
	}

	n, err := c.repo.InsertReminders(ctx, reminders)
	if err != nil {
		// 리마인더 저장 실패는 가져오기 전체를 실패시키지 않는다
		c.logger.Warn("리마인더 저장 실패", zap.Error(err))
		return 0, nil
	}
	return n, nil
}

// existingByKey 저장소에 이미 있는 기록을 중복 키로 색인
func (c *Coordinator) existingByKey(ctx context.Context, patients []model.Patient) (map[string]model.PatientKey, error) {
	charts := make([]string, 0, len(patients))
	visits := make([]string, 0, len(patients))
	seenChart := make(map[string]bool)
	seenVisit := make(map[string]bool)
	for _, p := range patients {
		if !seenChart[p.ChartNumber] {
			seenChart[p.ChartNumber] = true
			charts = append(charts, p.ChartNumber)
		}
		if !seenVisit[p.VisitDate] {
			seenVisit[p.VisitDate] = true
			visits = append(visits, p.VisitDate)
		}
	}

	keys, err := c.repo.ExistingPatientKeys(ctx, charts, visits)
	if err != nil {
		return nil, fmt.Errorf("기존 환자 조회 실패: %w", err)
	}
	out := make(map[string]model.PatientKey, len(keys))
	for _, k := range keys {
		out[parser.DuplicateKey(k.ChartNumber, k.VisitDate)] = k
	}
	return out, nil
}

func countsOf(r *ImportReport) store.ImportCounts {
	return store.ImportCounts{
		InsertedPatients: r.PatientResult.Inserted,
		UpdatedPatients:  r.PatientResult.Updated,
		SkippedPatients:  r.PatientResult.SkippedByMode,
		InsertedCheckups: r.Imported.HealthCheckups,
		RemindersCreated: r.RemindersCreated,
		WarningCount:     r.SkippedWarnings,
	}
}
