package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// SettingFollowupThreshold 고액 안부 메시지 기준 금액 설정 키
const SettingFollowupThreshold = "followup_threshold"

// GetSetting 병원 설정값 조회
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM hospital_settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("setting %s: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("get setting %s failed: %w", key, err)
	}
	return value, nil
}

// SetSetting 병원 설정값 저장
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hospital_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %s failed: %w", key, err)
	}
	return nil
}

// AllSettings 전체 설정
func (s *Store) AllSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM hospital_settings`)
	if err != nil {
		return nil, fmt.Errorf("list settings failed: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// FollowupThreshold 설정된 기준 금액. 없거나 숫자가 아니면 fallback
func (s *Store) FollowupThreshold(ctx context.Context, fallback int64) (int64, error) {
	value, err := s.GetSetting(ctx, SettingFollowupThreshold)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fallback, nil
		}
		return 0, err
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return fallback, nil
	}
	return n, nil
}
