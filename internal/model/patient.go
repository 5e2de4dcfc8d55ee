package model

import "time"

// Species 축종
type Species string

const (
	SpeciesDog Species = "dog"
	SpeciesCat Species = "cat"
)

// PaymentStatus 수납 상태
type PaymentStatus string

const (
	PaymentPaid         PaymentStatus = "paid"
	PaymentHospitalized PaymentStatus = "hospitalized" // 입원 중, 금액 미확정
)

// DefaultDepartment 진료과가 비어 있을 때 사용하는 값
const DefaultDepartment = "기타"

// ParsedPatient 월별 시트에서 추출한 내원 기록
type ParsedPatient struct {
	ChartNumber     string        `json:"chart_number"` // 쉼표로 여러 개가 붙을 수 있음, 첫 토큰이 대표값
	VisitDate       string        `json:"visit_date"`   // YYYY-MM-DD, 해석 실패 시 ""
	OwnerName       string        `json:"owner_name"`
	PetName         string        `json:"pet_name"`
	Species         Species       `json:"species"`
	HouseholdType   *string       `json:"household_type"`
	ReferralSource  *string       `json:"referral_source"`
	Department      string        `json:"department"`
	ResidentialArea *string       `json:"residential_area"`
	NaverBooking    bool          `json:"naver_booking"`
	PaymentAmount   *int64        `json:"payment_amount"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	StaffInCharge   *string       `json:"staff_in_charge"`
	IsRevisit       bool          `json:"is_revisit"`
	RevisitDate     *string       `json:"revisit_date"` // 파싱 단계에서는 항상 null
	SourceMonth     string        `json:"source_month"`
	RowNumber       int           `json:"row_number"` // 원본 시트 기준 1-based
}

// Patient 저장된 환자 내원 기록
type Patient struct {
	ID              string        `json:"id"`
	ChartNumber     string        `json:"chart_number"`
	VisitDate       string        `json:"visit_date"`
	OwnerName       string        `json:"owner_name"`
	PetName         string        `json:"pet_name"`
	Species         Species       `json:"species"`
	HouseholdType   *string       `json:"household_type"`
	ReferralSource  *string       `json:"referral_source"`
	Department      string        `json:"department"`
	ResidentialArea *string       `json:"residential_area"`
	NaverBooking    bool          `json:"naver_booking"`
	PaymentAmount   *int64        `json:"payment_amount"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	StaffInCharge   *string       `json:"staff_in_charge"`
	IsRevisit       bool          `json:"is_revisit"`
	RevisitDate     *string       `json:"revisit_date"`
	SourceMonth     string        `json:"source_month"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// PatientKey 중복 판정에 쓰는 저장 기록의 최소 정보
type PatientKey struct {
	ID          string `json:"id"`
	ChartNumber string `json:"chart_number"`
	VisitDate   string `json:"visit_date"`
}
