package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
)

// InsertCheckups 건강검진 기록 일괄 저장, 저장 건수 반환
func (s *Store) InsertCheckups(ctx context.Context, checkups []model.ParsedCheckup) (int, error) {
	if len(checkups) == 0 {
		return 0, nil
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO health_checkups (
				id, owner_name, contact, pet_name, species, birth_year, sex, weight,
				checkup_type, base_cost, additional_cost, final_cost, points, notes,
				preferred_date_1, preferred_date_2, preferred_time, concerns,
				completion_date, review_status, source_month
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare insert checkup failed: %w", err)
		}
		defer stmt.Close()

		for _, c := range checkups {
			_, err := stmt.ExecContext(ctx,
				uuid.New().String(), c.OwnerName, c.Contact, c.PetName, string(c.Species), c.BirthYear, c.Sex, c.Weight,
				c.CheckupType, c.BaseCost, c.AdditionalCost, c.FinalCost, c.Points, c.Notes,
				c.PreferredDate1, c.PreferredDate2, c.PreferredTime, c.Concerns,
				c.CompletionDate, c.ReviewStatus, c.SourceMonth,
			)
			if err != nil {
				return fmt.Errorf("insert checkup %s/%s failed: %w", c.OwnerName, c.PetName, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(checkups), nil
}

// CountCheckups 저장된 건강검진 기록 수
func (s *Store) CountCheckups(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM health_checkups`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count checkups failed: %w", err)
	}
	return n, nil
}
