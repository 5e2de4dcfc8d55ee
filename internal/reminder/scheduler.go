package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
)

// DefaultFollowupThreshold 고액/일반 안부 메시지를 가르는 기본 수납 금액
const DefaultFollowupThreshold int64 = 300000

const (
	dateLayout      = "2006-01-02"
	followup3MDays  = 90
	followup6MDays  = 180
	revisitLeadDays = -1
)

// PlusDays YYYY-MM-DD 날짜에 days 를 더한다. 시각이 붙은 값은 날짜 부분만 쓴다
func PlusDays(date string, days int) (string, error) {
	if len(date) > len(dateLayout) {
		date = date[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.AddDate(0, 0, days).Format(dateLayout), nil
}

// ChooseFollowupTemplate 수납 금액과 개월 수(3/6)로 안부 템플릿 선택
func ChooseFollowupTemplate(paymentAmount *int64, months int, threshold int64) model.TemplateType {
	var amount int64
	if paymentAmount != nil {
		amount = *paymentAmount
	}
	high := amount >= threshold

	if months == 3 {
		if high {
			return model.TemplateFollowupHigh3M
		}
		return model.TemplateFollowupLow3M
	}
	if high {
		return model.TemplateFollowupHigh6M
	}
	return model.TemplateFollowupLow6M
}

// BuildForPatient 환자 한 명의 대기 리마인더 생성
// 재진 예정일이 있으면 하루 전 알림, 재진 환자가 아니고 수납 금액이 있으면 3/6개월 안부 알림.
func BuildForPatient(p model.Patient, threshold int64) ([]model.Reminder, error) {
	if threshold <= 0 {
		threshold = DefaultFollowupThreshold
	}
	var reminders []model.Reminder

	if p.RevisitDate != nil && *p.RevisitDate != "" {
		due, err := PlusDays(*p.RevisitDate, revisitLeadDays)
		if err != nil {
			return nil, fmt.Errorf("patient %s revisit date: %w", p.ID, err)
		}
		reminders = append(reminders, newReminder(p.ID, model.ReminderRevisitD1, due, model.TemplateRevisitReminder))
	}

	if p.IsRevisit || p.PaymentAmount == nil {
		return reminders, nil
	}

	due3, err := PlusDays(p.VisitDate, followup3MDays)
	if err != nil {
		return nil, fmt.Errorf("patient %s visit date: %w", p.ID, err)
	}
	due6, err := PlusDays(p.VisitDate, followup6MDays)
	if err != nil {
		return nil, fmt.Errorf("patient %s visit date: %w", p.ID, err)
	}

	reminders = append(reminders,
		newReminder(p.ID, model.ReminderFollowup3M, due3, ChooseFollowupTemplate(p.PaymentAmount, 3, threshold)),
		newReminder(p.ID, model.ReminderFollowup6M, due6, ChooseFollowupTemplate(p.PaymentAmount, 6, threshold)),
	)
	return reminders, nil
}

func newReminder(patientID string, typ model.ReminderType, dueDate string, template model.TemplateType) model.Reminder {
	return model.Reminder{
		PatientID:           patientID,
		Type:                typ,
		DueDate:             dueDate,
		Status:              model.ReminderPending,
		MessageTemplateType: &template,
	}
}
