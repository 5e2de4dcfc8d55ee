package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// copySheetMarker 직원들이 복사용으로 남겨 둔 시트 표시
const copySheetMarker = "복사용"

var (
	sheetNameISO       = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	sheetNameShortYear = regexp.MustCompile(`^(\d{2})년\s*(\d{1,2})월$`)
	sheetNameLongYear  = regexp.MustCompile(`^(\d{4})년\s*(\d{1,2})월$`)
	sheetNameMonthOnly = regexp.MustCompile(`^(\d{1,2})월$`)
)

// NormalizeSheetName 시트 이름을 YYYY-MM 으로 정규화
// 대상 시트가 아니면 ok=false. "M월" 처럼 연도가 없는 이름은 거부한다.
func NormalizeSheetName(name string) (string, bool) {
	return normalizeSheetName(name, false)
}

// normalizeSheetName allowMonthOnly 가 true 이면 "3월" 을 "unknown-03" 으로 받아들인다
func normalizeSheetName(name string, allowMonthOnly bool) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if strings.Contains(trimmed, copySheetMarker) {
		return "", false
	}

	if sheetNameISO.MatchString(trimmed) {
		return trimmed, true
	}

	if m := sheetNameShortYear.FindStringSubmatch(trimmed); m != nil {
		return formatSourceMonth("20"+m[1], m[2]), true
	}

	if m := sheetNameLongYear.FindStringSubmatch(trimmed); m != nil {
		return formatSourceMonth(m[1], m[2]), true
	}

	if allowMonthOnly {
		if m := sheetNameMonthOnly.FindStringSubmatch(trimmed); m != nil {
			return formatSourceMonth("unknown", m[1]), true
		}
	}

	return "", false
}

func formatSourceMonth(year, month string) string {
	m, _ := strconv.Atoi(month)
	return fmt.Sprintf("%s-%02d", year, m)
}
