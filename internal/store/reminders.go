package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
)

// DeletePendingReminders 환자들의 대기 중 리마인더 삭제, 삭제 건수 반환
func (s *Store) DeletePendingReminders(ctx context.Context, patientIDs []string) (int64, error) {
	if len(patientIDs) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf(`DELETE FROM reminders WHERE status = ? AND patient_id IN (%s)`, placeholders(len(patientIDs)))
	args := append([]any{string(model.ReminderPending)}, stringArgs(patientIDs)...)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete pending reminders failed: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// InsertReminders 리마인더 일괄 저장
func (s *Store) InsertReminders(ctx context.Context, reminders []model.Reminder) (int, error) {
	if len(reminders) == 0 {
		return 0, nil
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO reminders (id, patient_id, type, due_date, status, completed_at, message_template_type, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare insert reminder failed: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, r := range reminders {
			var template *string
			if r.MessageTemplateType != nil {
				t := string(*r.MessageTemplateType)
				template = &t
			}
			_, err := stmt.ExecContext(ctx,
				uuid.New().String(), r.PatientID, string(r.Type), r.DueDate, string(r.Status), r.CompletedAt, template, now,
			)
			if err != nil {
				return fmt.Errorf("insert reminder for %s failed: %w", r.PatientID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(reminders), nil
}

const reminderColumns = `r.id, r.patient_id, r.type, r.due_date, r.status, r.completed_at, r.message_template_type, r.created_at`

func scanReminder(row rowScanner, extra ...any) (model.Reminder, error) {
	var (
		r           model.Reminder
		typ, status string
		completedAt sql.NullTime
		template    sql.NullString
	)
	dest := append([]any{&r.ID, &r.PatientID, &typ, &r.DueDate, &status, &completedAt, &template, &r.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return model.Reminder{}, err
	}
	r.Type = model.ReminderType(typ)
	r.Status = model.ReminderStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	if template.Valid {
		t := model.TemplateType(template.String)
		r.MessageTemplateType = &t
	}
	return r, nil
}

// ListReminders 환자별 리마인더, 예정일 순
func (s *Store) ListReminders(ctx context.Context, patientID string) ([]model.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders r WHERE r.patient_id = ? ORDER BY r.due_date, r.type
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list reminders failed: %w", err)
	}
	defer rows.Close()

	var out []model.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder failed: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListDueReminders until(YYYY-MM-DD) 까지 예정된 대기 리마인더와 환자 정보
func (s *Store) ListDueReminders(ctx context.Context, until string) ([]model.DueReminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reminderColumns+`, p.chart_number, p.owner_name, p.pet_name, p.visit_date, p.department
		FROM reminders r
		JOIN patients p ON p.id = r.patient_id
		WHERE r.status = ? AND r.due_date <= ?
		ORDER BY r.due_date, p.chart_number, r.type
	`, string(model.ReminderPending), until)
	if err != nil {
		return nil, fmt.Errorf("list due reminders failed: %w", err)
	}
	defer rows.Close()

	var out []model.DueReminder
	for rows.Next() {
		var d model.DueReminder
		r, err := scanReminder(rows, &d.ChartNumber, &d.OwnerName, &d.PetName, &d.VisitDate, &d.Department)
		if err != nil {
			return nil, fmt.Errorf("scan due reminder failed: %w", err)
		}
		d.Reminder = r
		out = append(out, d)
	}
	return out, rows.Err()
}

// SetReminderStatus 리마인더 처리 상태 변경. completed 이면 처리 시각을 남긴다
func (s *Store) SetReminderStatus(ctx context.Context, id string, status model.ReminderStatus) error {
	var completedAt *time.Time
	if status == model.ReminderCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE reminders SET status = ?, completed_at = ? WHERE id = ?
	`, string(status), completedAt, id)
	if err != nil {
		return fmt.Errorf("update reminder status failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
