package model

// ParsedCheckup 시트 하단의 건강검진 프로모션 기록
type ParsedCheckup struct {
	OwnerName      string   `json:"owner_name"`
	Contact        *string  `json:"contact"`
	PetName        string   `json:"pet_name"`
	Species        Species  `json:"species"`
	BirthYear      *int     `json:"birth_year"`
	Sex            *string  `json:"sex"`
	Weight         *float64 `json:"weight"` // kg, 소수점 유지
	CheckupType    *string  `json:"checkup_type"`
	BaseCost       *int64   `json:"base_cost"`
	AdditionalCost *int64   `json:"additional_cost"`
	FinalCost      *int64   `json:"final_cost"`
	Points         *int64   `json:"points"`
	Notes          *string  `json:"notes"`
	PreferredDate1 *string  `json:"preferred_date_1"`
	PreferredDate2 *string  `json:"preferred_date_2"`
	PreferredTime  *string  `json:"preferred_time"`
	Concerns       *string  `json:"concerns"`
	CompletionDate *string  `json:"completion_date"`
	ReviewStatus   bool     `json:"review_status"`
	SourceMonth    string   `json:"source_month"`
	RowNumber      int      `json:"row_number"`
}
