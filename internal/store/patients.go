package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
)

// DefaultLookupLimit 검색 결과 기본 개수
const DefaultLookupLimit = 30

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const patientColumns = `id, chart_number, visit_date, owner_name, pet_name, species,
	household_type, referral_source, department, residential_area,
	naver_booking, payment_amount, payment_status, staff_in_charge,
	is_revisit, revisit_date, source_month, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (model.Patient, error) {
	var (
		p             model.Patient
		species       string
		paymentStatus string
		household     sql.NullString
		referral      sql.NullString
		area          sql.NullString
		staff         sql.NullString
		revisit       sql.NullString
		amount        sql.NullInt64
	)
	err := row.Scan(
		&p.ID, &p.ChartNumber, &p.VisitDate, &p.OwnerName, &p.PetName, &species,
		&household, &referral, &p.Department, &area,
		&p.NaverBooking, &amount, &paymentStatus, &staff,
		&p.IsRevisit, &revisit, &p.SourceMonth, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return model.Patient{}, err
	}
	p.Species = model.Species(species)
	p.PaymentStatus = model.PaymentStatus(paymentStatus)
	p.HouseholdType = nullStringPtr(household)
	p.ReferralSource = nullStringPtr(referral)
	p.ResidentialArea = nullStringPtr(area)
	p.StaffInCharge = nullStringPtr(staff)
	p.RevisitDate = nullStringPtr(revisit)
	if amount.Valid {
		v := amount.Int64
		p.PaymentAmount = &v
	}
	return p, nil
}

// ExistingPatientKeys 차트번호와 내원일 후보에 해당하는 저장 기록 키
func (s *Store) ExistingPatientKeys(ctx context.Context, chartNumbers, visitDates []string) ([]model.PatientKey, error) {
	if len(chartNumbers) == 0 || len(visitDates) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, chart_number, visit_date FROM patients
		WHERE chart_number IN (%s) AND visit_date IN (%s)
	`, placeholders(len(chartNumbers)), placeholders(len(visitDates)))
	args := append(stringArgs(chartNumbers), stringArgs(visitDates)...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing patients failed: %w", err)
	}
	defer rows.Close()

	var keys []model.PatientKey
	for rows.Next() {
		var k model.PatientKey
		if err := rows.Scan(&k.ID, &k.ChartNumber, &k.VisitDate); err != nil {
			return nil, fmt.Errorf("scan existing patient failed: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing patients failed: %w", err)
	}
	return keys, nil
}

// InsertPatients 새 환자 기록 일괄 저장. id 와 시각이 채워진 기록을 돌려준다
func (s *Store) InsertPatients(ctx context.Context, patients []model.Patient) ([]model.Patient, error) {
	if len(patients) == 0 {
		return nil, nil
	}

	out := make([]model.Patient, 0, len(patients))
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO patients (`+patientColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare insert patient failed: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, p := range patients {
			p.ID = uuid.New().String()
			p.CreatedAt = now
			p.UpdatedAt = now
			if _, err := stmt.ExecContext(ctx, patientArgs(p)...); err != nil {
				return fmt.Errorf("insert patient %s/%s failed: %w", p.ChartNumber, p.VisitDate, err)
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePatient 기존 기록을 덮어쓴다. created_at 은 유지
func (s *Store) UpdatePatient(ctx context.Context, id string, p model.Patient) (model.Patient, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE patients SET
			chart_number = ?, visit_date = ?, owner_name = ?, pet_name = ?, species = ?,
			household_type = ?, referral_source = ?, department = ?, residential_area = ?,
			naver_booking = ?, payment_amount = ?, payment_status = ?, staff_in_charge = ?,
			is_revisit = ?, revisit_date = ?, source_month = ?, updated_at = ?
		WHERE id = ?
	`,
		p.ChartNumber, p.VisitDate, p.OwnerName, p.PetName, string(p.Species),
		p.HouseholdType, p.ReferralSource, p.Department, p.ResidentialArea,
		p.NaverBooking, p.PaymentAmount, string(p.PaymentStatus), p.StaffInCharge,
		p.IsRevisit, p.RevisitDate, p.SourceMonth, now,
		id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Patient{}, fmt.Errorf("update patient %s: %w", id, ErrConflict)
		}
		return model.Patient{}, fmt.Errorf("update patient %s failed: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Patient{}, fmt.Errorf("update patient %s: %w", id, ErrNotFound)
	}
	return s.GetPatient(ctx, id)
}

// GetPatient id 로 조회
func (s *Store) GetPatient(ctx context.Context, id string) (model.Patient, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = ?`, id)
	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Patient{}, fmt.Errorf("patient %s: %w", id, ErrNotFound)
		}
		return model.Patient{}, fmt.Errorf("get patient %s failed: %w", id, err)
	}
	return p, nil
}

// ListPatients sourceMonth 가 비어 있으면 전체, 내원일 순
func (s *Store) ListPatients(ctx context.Context, sourceMonth string) ([]model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients`
	var args []any
	if sourceMonth != "" {
		query += ` WHERE source_month = ?`
		args = append(args, sourceMonth)
	}
	query += ` ORDER BY visit_date, chart_number`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list patients failed: %w", err)
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient failed: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePatient 환자 기록 삭제. 리마인더는 외래 키로 함께 지워진다
func (s *Store) DeletePatient(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete patient %s failed: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete patient %s: %w", id, ErrNotFound)
	}
	return nil
}

// LookupPatients 차트번호, 보호자 이름, 동물 이름 부분 일치 검색. 최근 내원 순
// q 가 비어 있으면 최근 기록을 limit 개까지 돌려준다.
func (s *Store) LookupPatients(ctx context.Context, q string, limit int) ([]model.Patient, error) {
	if limit <= 0 {
		limit = DefaultLookupLimit
	}

	query := `SELECT ` + patientColumns + ` FROM patients`
	var args []any
	if q = strings.TrimSpace(q); q != "" {
		pattern := "%" + likeEscaper.Replace(q) + "%"
		query += ` WHERE chart_number LIKE ? ESCAPE '\' OR owner_name LIKE ? ESCAPE '\' OR pet_name LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY visit_date DESC, chart_number LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup patients failed: %w", err)
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient failed: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountPatients 저장된 환자 기록 수
func (s *Store) CountPatients(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM patients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count patients failed: %w", err)
	}
	return n, nil
}

func patientArgs(p model.Patient) []any {
	return []any{
		p.ID, p.ChartNumber, p.VisitDate, p.OwnerName, p.PetName, string(p.Species),
		p.HouseholdType, p.ReferralSource, p.Department, p.ResidentialArea,
		p.NaverBooking, p.PaymentAmount, string(p.PaymentStatus), p.StaffInCharge,
		p.IsRevisit, p.RevisitDate, p.SourceMonth, p.CreatedAt, p.UpdatedAt,
	}
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
