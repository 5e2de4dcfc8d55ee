package parser

import "strings"

// 헤더 판정 기준: 필수 필드 2개 이상 + 전체 매핑 3개 이상
const (
	DefaultHeaderScanRows = 20
	minRequiredMatches    = 2
	minMappedFields       = 3
)

// FieldKeywords 논리 필드와 헤더 키워드 목록
type FieldKeywords struct {
	Field    string
	Keywords []string
}

// FieldDictionary 순서가 있는 필드 사전. 앞에 있는 필드가 먼저 매칭된다
type FieldDictionary []FieldKeywords

// patientFields 환자 헤더 키워드
var patientFields = FieldDictionary{
	{"chart_number", []string{"차트번호", "차트no", "차트 번호", "chart"}},
	{"visit_date", []string{"내원일", "내원 일자", "내원일자", "날짜", "visit"}},
	{"owner_name", []string{"보호자 이름", "보호자이름", "보호자명", "보호자", "owner"}},
	{"pet_name", []string{"동물 이름", "동물이름", "환자이름", "환자명", "동물명", "pet name"}},
	{"species", []string{"축종", "종류", "species"}},
	{"household_type", []string{"세대", "세대유형", "마리수", "household"}},
	{"referral_source", []string{"내원 경로", "내원경로", "유입경로", "referral"}},
	{"department", []string{"진료과", "진료 과목", "진료과목", "department"}},
	{"residential_area", []string{"거주지", "거주 지역", "area"}},
	{"naver_booking", []string{"네이버예약", "네이버", "naver"}},
	{"payment_amount", []string{"수납금액", "수납", "금액", "결제", "payment"}},
	{"staff_in_charge", []string{"담당자", "담당", "staff"}},
	{"is_revisit", []string{"재진", "재방문", "revisit"}},
}

// checkupFields 건강검진 헤더 키워드
var checkupFields = FieldDictionary{
	{"owner_name", []string{"보호자", "보호자명", "보호자 이름"}},
	{"contact", []string{"연락처", "전화번호", "핸드폰", "contact"}},
	{"pet_name", []string{"동물 이름", "동물이름", "환자명", "동물명"}},
	{"species", []string{"종", "축종", "종류"}},
	{"birth_year", []string{"출생연도", "출생", "생년", "birth"}},
	{"sex", []string{"성별", "sex"}},
	{"weight", []string{"체중", "몸무게", "weight"}},
	{"checkup_type", []string{"검진유형", "검진 유형", "유형", "type"}},
	{"base_cost", []string{"기본비용", "기본 비용", "base"}},
	{"additional_cost", []string{"추가비용", "추가 비용", "additional"}},
	{"final_cost", []string{"최종비용", "최종 비용", "final"}},
	{"points", []string{"포인트", "적립", "points"}},
	{"notes", []string{"비고", "메모", "notes"}},
	{"preferred_date_1", []string{"희망일1", "희망 일자1", "preferred1"}},
	{"preferred_date_2", []string{"희망일2", "희망 일자2", "preferred2"}},
	{"preferred_time", []string{"희망시간", "시간", "time"}},
	{"concerns", []string{"관심사항", "관심", "concerns"}},
	{"completion_date", []string{"완료일", "검진완료", "completion"}},
	{"review_status", []string{"후기", "리뷰", "review"}},
}

// patientRequiredFields 환자 헤더 판정용 필수 필드
var patientRequiredFields = []string{"chart_number", "owner_name", "pet_name", "visit_date"}

// checkupRequiredFields 건강검진 헤더 판정용 필수 필드
var checkupRequiredFields = []string{"owner_name", "pet_name"}

// HeaderMap 필드명 -> 0-based 컬럼 인덱스. 생성 후 변경하지 않는다
type HeaderMap struct {
	columns map[string]int
}

func newHeaderMap(columns map[string]int) HeaderMap {
	return HeaderMap{columns: columns}
}

// Index 필드의 컬럼 위치
func (m HeaderMap) Index(field string) (int, bool) {
	idx, ok := m.columns[field]
	return idx, ok
}

// Len 매핑된 필드 수
func (m HeaderMap) Len() int {
	return len(m.columns)
}

// Columns 매핑 복사본
func (m HeaderMap) Columns() map[string]int {
	out := make(map[string]int, len(m.columns))
	for k, v := range m.columns {
		out[k] = v
	}
	return out
}

// Cell 행에서 필드 값을 꺼낸다. 매핑이 없거나 행이 짧으면 nil
func (m HeaderMap) Cell(row []any, field string) any {
	idx, ok := m.columns[field]
	if !ok {
		return nil
	}
	return cellAt(row, idx)
}

// HeaderDetection 헤더 감지 결과
type HeaderDetection struct {
	RowIndex int // 스캔한 행 배열 기준 0-based
	Columns  HeaderMap
}

// DetectHeader 상위 maxScanRows 행에서 처음으로 헤더 조건을 만족하는 행을 찾는다
// 각 셀은 사전 순서대로 첫 번째로 포함 매칭된 필드 하나에만 배정된다.
func DetectHeader(rows [][]any, dict FieldDictionary, required []string, maxScanRows int) (HeaderDetection, bool) {
	if maxScanRows <= 0 {
		maxScanRows = DefaultHeaderScanRows
	}
	limit := min(maxScanRows, len(rows))

	for rowIdx := 0; rowIdx < limit; rowIdx++ {
		columns := matchHeaderRow(rows[rowIdx], dict)

		requiredMatched := 0
		for _, field := range required {
			if _, ok := columns[field]; ok {
				requiredMatched++
			}
		}

		if requiredMatched >= minRequiredMatches && len(columns) >= minMappedFields {
			return HeaderDetection{RowIndex: rowIdx, Columns: newHeaderMap(columns)}, true
		}
	}

	return HeaderDetection{}, false
}

func matchHeaderRow(row []any, dict FieldDictionary) map[string]int {
	columns := make(map[string]int)
	for colIdx, cell := range row {
		text := strings.ToLower(AsString(cell))
		if text == "" {
			continue
		}
		for _, entry := range dict {
			if _, mapped := columns[entry.Field]; mapped {
				continue
			}
			if containsKeyword(text, entry.Keywords) {
				columns[entry.Field] = colIdx
				break
			}
		}
	}
	return columns
}

func containsKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func cellAt(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}
