package model

import "time"

// ReminderType 리마인더 종류
type ReminderType string

const (
	ReminderRevisitD1  ReminderType = "revisit_d1"  // 재진 하루 전
	ReminderFollowup3M ReminderType = "followup_3m" // 내원 후 90일
	ReminderFollowup6M ReminderType = "followup_6m" // 내원 후 180일
)

// ReminderStatus 리마인더 상태
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderCompleted ReminderStatus = "completed"
	ReminderSkipped   ReminderStatus = "skipped"
)

// TemplateType 메시지 템플릿 종류
type TemplateType string

const (
	TemplateRevisitReminder TemplateType = "revisit_reminder"
	TemplateFollowupHigh3M  TemplateType = "followup_high_3m"
	TemplateFollowupLow3M   TemplateType = "followup_low_3m"
	TemplateFollowupHigh6M  TemplateType = "followup_high_6m"
	TemplateFollowupLow6M   TemplateType = "followup_low_6m"
)

// Reminder 환자별 연락 일정
type Reminder struct {
	ID                  string         `json:"id"`
	PatientID           string         `json:"patient_id"`
	Type                ReminderType   `json:"type"`
	DueDate             string         `json:"due_date"` // YYYY-MM-DD
	Status              ReminderStatus `json:"status"`
	CompletedAt         *time.Time     `json:"completed_at"`
	MessageTemplateType *TemplateType  `json:"message_template_type"`
	CreatedAt           time.Time      `json:"created_at"`
}

// DueReminder 연락 목록 한 줄. 리마인더와 대상 환자 정보
type DueReminder struct {
	Reminder
	ChartNumber string `json:"chart_number"`
	OwnerName   string `json:"owner_name"`
	PetName     string `json:"pet_name"`
	VisitDate   string `json:"visit_date"`
	Department  string `json:"department"`
}
