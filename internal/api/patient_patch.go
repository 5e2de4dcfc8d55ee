package api

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/reminder"
)

// nullableString 필드가 빠진 경우와 null 로 온 경우를 구분한다
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

type nullableInt struct {
	Set   bool
	Value *int64
}

func (n *nullableInt) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// patientPatch PATCH /api/patients/:id 요청 본문. 보낸 필드만 바뀐다
type patientPatch struct {
	ChartNumber     *string              `json:"chart_number"`
	VisitDate       *string              `json:"visit_date"`
	OwnerName       *string              `json:"owner_name"`
	PetName         *string              `json:"pet_name"`
	Species         *model.Species       `json:"species"`
	Department      *string              `json:"department"`
	HouseholdType   nullableString       `json:"household_type"`
	ReferralSource  nullableString       `json:"referral_source"`
	ResidentialArea nullableString       `json:"residential_area"`
	NaverBooking    *bool                `json:"naver_booking"`
	PaymentAmount   nullableInt          `json:"payment_amount"`
	PaymentStatus   *model.PaymentStatus `json:"payment_status"`
	StaffInCharge   nullableString       `json:"staff_in_charge"`
	IsRevisit       *bool                `json:"is_revisit"`
	RevisitDate     nullableString       `json:"revisit_date"`
	SourceMonth     *string              `json:"source_month"`
}

var (
	errEmptyField       = errors.New("필수 항목은 비울 수 없습니다")
	errInvalidSpecies   = errors.New("species 는 dog 또는 cat 이어야 합니다")
	errInvalidPayment   = errors.New("payment_status 는 paid 또는 hospitalized 이어야 합니다")
	errInvalidVisitDate = errors.New("visit_date 는 YYYY-MM-DD 형식이어야 합니다")
	errInvalidRevisit   = errors.New("revisit_date 는 날짜 형식이어야 합니다")
)

// apply 검증 후 p 에 반영
func (patch patientPatch) apply(p *model.Patient) error {
	for _, v := range []*string{patch.ChartNumber, patch.VisitDate, patch.OwnerName, patch.PetName, patch.Department, patch.SourceMonth} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return errEmptyField
		}
	}
	if patch.Species != nil && *patch.Species != model.SpeciesDog && *patch.Species != model.SpeciesCat {
		return errInvalidSpecies
	}
	if patch.PaymentStatus != nil && *patch.PaymentStatus != model.PaymentPaid && *patch.PaymentStatus != model.PaymentHospitalized {
		return errInvalidPayment
	}
	if patch.VisitDate != nil {
		if _, err := reminder.PlusDays(*patch.VisitDate, 0); err != nil {
			return errInvalidVisitDate
		}
	}
	if patch.RevisitDate.Value != nil && *patch.RevisitDate.Value != "" {
		if _, err := reminder.PlusDays(*patch.RevisitDate.Value, 0); err != nil {
			return errInvalidRevisit
		}
	}

	setString(&p.ChartNumber, patch.ChartNumber)
	setString(&p.VisitDate, patch.VisitDate)
	setString(&p.OwnerName, patch.OwnerName)
	setString(&p.PetName, patch.PetName)
	setString(&p.Department, patch.Department)
	setString(&p.SourceMonth, patch.SourceMonth)
	if patch.Species != nil {
		p.Species = *patch.Species
	}
	if patch.PaymentStatus != nil {
		p.PaymentStatus = *patch.PaymentStatus
	}
	if patch.NaverBooking != nil {
		p.NaverBooking = *patch.NaverBooking
	}
	if patch.IsRevisit != nil {
		p.IsRevisit = *patch.IsRevisit
	}
	setNullable(&p.HouseholdType, patch.HouseholdType)
	setNullable(&p.ReferralSource, patch.ReferralSource)
	setNullable(&p.ResidentialArea, patch.ResidentialArea)
	setNullable(&p.StaffInCharge, patch.StaffInCharge)
	setNullable(&p.RevisitDate, patch.RevisitDate)
	if patch.PaymentAmount.Set {
		p.PaymentAmount = patch.PaymentAmount.Value
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// setNullable 빈 문자열은 null 로 저장
func setNullable(dst **string, v nullableString) {
	if !v.Set {
		return
	}
	if v.Value == nil || strings.TrimSpace(*v.Value) == "" {
		*dst = nil
		return
	}
	s := strings.TrimSpace(*v.Value)
	*dst = &s
}
