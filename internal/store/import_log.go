package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ImportLogStatus 가져오기 상태
const (
	ImportStatusProcessing = "processing"
	ImportStatusCompleted  = "completed"
	ImportStatusFailed     = "failed"
)

// ImportCounts 가져오기 결과 집계
type ImportCounts struct {
	InsertedPatients int
	UpdatedPatients  int
	SkippedPatients  int
	InsertedCheckups int
	RemindersCreated int
	WarningCount     int
}

// CreateImportLog 가져오기 이력 생성, id 반환
func (s *Store) CreateImportLog(ctx context.Context, filename, fileHash, duplicateMode string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO import_logs (filename, file_hash, duplicate_mode, status)
		VALUES (?, ?, ?, ?)
	`, filename, fileHash, duplicateMode, ImportStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 가져오기 이력 완료 처리
func (s *Store) UpdateImportLog(ctx context.Context, id int64, counts ImportCounts, status, errorMessage string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE import_logs SET
			inserted_patients = ?,
			updated_patients = ?,
			skipped_patients = ?,
			inserted_checkups = ?,
			reminders_created = ?,
			warning_count = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, counts.InsertedPatients, counts.UpdatedPatients, counts.SkippedPatients,
		counts.InsertedCheckups, counts.RemindersCreated, counts.WarningCount,
		status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// LastImportTime 마지막으로 완료된 가져오기 시각, 없으면 nil
func (s *Store) LastImportTime(ctx context.Context) (*time.Time, error) {
	var completed sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT completed_at FROM import_logs
		WHERE status = ? AND completed_at IS NOT NULL
		ORDER BY completed_at DESC, id DESC LIMIT 1
	`, ImportStatusCompleted).Scan(&completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query last import failed: %w", err)
	}
	if !completed.Valid {
		return nil, nil
	}
	t := completed.Time
	return &t, nil
}
