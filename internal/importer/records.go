package importer

import (
	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/parser"
)

// filterRequired 저장에 필요한 값이 모두 있는 기록만 남긴다
func filterRequired(patients []model.ParsedPatient) []model.ParsedPatient {
	out := make([]model.ParsedPatient, 0, len(patients))
	for _, p := range patients {
		if parser.CanonicalChartNumber(p.ChartNumber) == "" || p.VisitDate == "" || p.OwnerName == "" || p.PetName == "" || p.Department == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// filterCheckups 보호자와 동물 이름이 있는 건강검진만 남긴다
func filterCheckups(checkups []model.ParsedCheckup) []model.ParsedCheckup {
	out := make([]model.ParsedCheckup, 0, len(checkups))
	for _, c := range checkups {
		if c.OwnerName == "" || c.PetName == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// dedupeInFile 파일 내부 중복 제거. 처음 등장한 순서를 유지한다.
// overwrite 는 마지막 값을, skip 은 처음 값을 남긴다.
func dedupeInFile(patients []model.ParsedPatient, mode DuplicateMode) ([]model.Patient, int) {
	index := make(map[string]int, len(patients))
	out := make([]model.Patient, 0, len(patients))
	duplicates := 0

	for _, raw := range patients {
		p := toPatient(raw)
		key := patientKey(p)
		if i, ok := index[key]; ok {
			duplicates++
			if mode == DuplicateOverwrite {
				out[i] = p
			}
			continue
		}
		index[key] = len(out)
		out = append(out, p)
	}
	return out, duplicates
}

// countInternalDuplicates 두 구성요소가 모두 있는 키 중 반복 등장한 횟수
// 저장 시와 같은 대표 차트번호 키를 쓴다.
func countInternalDuplicates(patients []model.ParsedPatient) int {
	seen := make(map[string]bool, len(patients))
	count := 0
	for _, p := range patients {
		chart := parser.CanonicalChartNumber(p.ChartNumber)
		if chart == "" || p.VisitDate == "" {
			continue
		}
		key := parser.DuplicateKey(chart, p.VisitDate)
		if seen[key] {
			count++
			continue
		}
		seen[key] = true
	}
	return count
}

// toPatient 저장 형태로 변환. 차트번호는 대표값으로 줄이고 자유 입력 값은 길이를 자른다.
func toPatient(p model.ParsedPatient) model.Patient {
	return model.Patient{
		ChartNumber:     parser.CanonicalChartNumber(p.ChartNumber),
		VisitDate:       p.VisitDate,
		OwnerName:       p.OwnerName,
		PetName:         p.PetName,
		Species:         p.Species,
		HouseholdType:   truncatePtr(p.HouseholdType, maxHouseholdLen),
		ReferralSource:  truncatePtr(p.ReferralSource, maxReferralLen),
		Department:      p.Department,
		ResidentialArea: truncatePtr(p.ResidentialArea, maxAreaLen),
		NaverBooking:    p.NaverBooking,
		PaymentAmount:   p.PaymentAmount,
		PaymentStatus:   p.PaymentStatus,
		StaffInCharge:   truncatePtr(p.StaffInCharge, maxStaffLen),
		IsRevisit:       p.IsRevisit,
		RevisitDate:     p.RevisitDate,
		SourceMonth:     p.SourceMonth,
	}
}

func patientKey(p model.Patient) string {
	return parser.DuplicateKey(p.ChartNumber, p.VisitDate)
}

func truncatePtr(s *string, limit int) *string {
	if s == nil {
		return nil
	}
	v := truncateRunes(*s, limit)
	return &v
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
