package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
)

const (
	catMarker          = "고양"
	hospitalizedMarker = "입원"
	revisitMarker      = "재진o"

	// excelEpochOffset 1899-12-30 과 1970-01-01 사이의 일수
	excelEpochOffset = 25569
	isoDate          = "2006-01-02"
)

// 문자열 날짜 해석에 시도하는 레이아웃
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"2006.1.2",
	"2006. 1. 2.",
	"2006. 1. 2",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006.01.02 15:04",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

var koreanDatePattern = regexp.MustCompile(`^(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일`)

var decimalPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Payment 수납 셀 해석 결과
type Payment struct {
	Amount *int64
	Status model.PaymentStatus
}

// AsString 셀 값을 문자열로 변환 (nil 은 "")
func AsString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return NormalizeText(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(isoDate)
	default:
		return NormalizeText(fmt.Sprint(v))
	}
}

// ToSpecies 축종 판정. "고양" 이 들어 있으면 고양이, 그 외(빈 값 포함)는 모두 개로 본다
func ToSpecies(cell any) model.Species {
	if strings.Contains(AsString(cell), catMarker) {
		return model.SpeciesCat
	}
	return model.SpeciesDog
}

// ToBooleanMarker O/X 표시 칸 해석
func ToBooleanMarker(cell any) bool {
	return strings.ToUpper(AsString(cell)) == "O"
}

// ToRevisitMarker 재진 칸 해석: "재진O" 를 포함하거나 단독 "O" 이면 재진
func ToRevisitMarker(cell any) bool {
	text := strings.ToLower(AsString(cell))
	return strings.Contains(text, revisitMarker) || text == "o"
}

// NormalizeDate 셀 값을 YYYY-MM-DD 로 변환, 실패 시 ""
func NormalizeDate(cell any) string {
	switch v := cell.(type) {
	case float64:
		return excelSerialToISO(v)
	case float32:
		return excelSerialToISO(float64(v))
	case int:
		return excelSerialToISO(float64(v))
	case int64:
		return excelSerialToISO(float64(v))
	case time.Time:
		return v.Format(isoDate)
	case string:
		return parseDateString(NormalizeText(v))
	default:
		return ""
	}
}

func excelSerialToISO(serial float64) string {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return ""
	}
	ms := math.Round((serial - excelEpochOffset) * 86400 * 1000)
	return time.UnixMilli(int64(ms)).UTC().Format(isoDate)
}

func parseDateString(text string) string {
	if text == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format(isoDate)
		}
	}
	if m := koreanDatePattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date 는 2월 30일을 3월로 넘기므로 되돌려 비교
		if t.Month() == time.Month(month) && t.Day() == day {
			return t.Format(isoDate)
		}
	}
	return ""
}

// ParsePayment 수납 칸 해석
// 빈 값은 {nil, paid}, "입원" 포함은 {nil, hospitalized}, 그 외 숫자만 추려 금액으로 본다
func ParsePayment(cell any) Payment {
	text := AsString(cell)
	if text == "" {
		return Payment{Status: model.PaymentPaid}
	}
	if strings.Contains(text, hospitalizedMarker) {
		return Payment{Status: model.PaymentHospitalized}
	}
	return Payment{Amount: parseDigits(text), Status: model.PaymentPaid}
}

// ParseDigitsOrNull 숫자만 추려 정수로 변환, 남는 숫자가 없으면 nil
func ParseDigitsOrNull(cell any) *int64 {
	return parseDigits(AsString(cell))
}

func parseDigits(text string) *int64 {
	digits := onlyDigits(text)
	if digits == "" {
		return nil
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// ParseDecimalOrNull 소수점을 살려 숫자로 변환 ("3.1kg" -> 3.1), 숫자가 없으면 nil
func ParseDecimalOrNull(cell any) *float64 {
	switch v := cell.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return &v
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	}
	text := strings.ReplaceAll(AsString(cell), ",", "")
	match := decimalPattern.FindString(text)
	if match == "" {
		return nil
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &f
}

// optionalString 빈 문자열을 nil 로
func optionalString(cell any) *string {
	text := AsString(cell)
	if text == "" {
		return nil
	}
	return &text
}

// optionalDate 날짜로 해석되지 않으면 nil
func optionalDate(cell any) *string {
	date := NormalizeDate(cell)
	if date == "" {
		return nil
	}
	return &date
}

// optionalInt 정수 칸(출생연도 등)
func optionalInt(cell any) *int {
	n := ParseDigitsOrNull(cell)
	if n == nil || *n > math.MaxInt32 {
		return nil
	}
	v := int(*n)
	return &v
}
