package parser

import (
	"reflect"
	"strings"
	"testing"
)

func TestDetectHeader_FirstAcceptableRowWins(t *testing.T) {
	t.Parallel()

	rows := [][]any{
		{"2월 내원 현황"},
		{},
		{"No", "차트번호", "내원일", "보호자 이름", "동물 이름", "축종"},
		{"", "차트번호", "내원일", "보호자", "동물이름"},
	}

	got, ok := DetectHeader(rows, patientFields, patientRequiredFields, DefaultHeaderScanRows)
	if !ok {
		t.Fatalf("expected header")
	}
	if got.RowIndex != 2 {
		t.Fatalf("header row: %d", got.RowIndex)
	}
	want := map[string]int{"chart_number": 1, "visit_date": 2, "owner_name": 3, "pet_name": 4, "species": 5}
	for field, idx := range want {
		if gotIdx, ok := got.Columns.Index(field); !ok || gotIdx != idx {
			t.Fatalf("%s: got (%d, %v), want %d", field, gotIdx, ok, idx)
		}
	}
	if got.Columns.Len() != len(want) {
		t.Fatalf("unexpected mapping: %v", got.Columns.Columns())
	}
}

func TestDetectHeader_Thresholds(t *testing.T) {
	t.Parallel()

	// 필수 2개, 전체 2개 -> 불가
	rows := [][]any{{"차트번호", "보호자"}}
	if _, ok := DetectHeader(rows, patientFields, patientRequiredFields, 20); ok {
		t.Fatalf("two mapped fields must not be accepted")
	}

	// 필수 1개, 전체 3개 -> 불가
	rows = [][]any{{"차트번호", "축종", "진료과"}}
	if _, ok := DetectHeader(rows, patientFields, patientRequiredFields, 20); ok {
		t.Fatalf("one required field must not be accepted")
	}

	// 필수 2개, 전체 3개 -> 가능
	rows = [][]any{{"차트번호", "보호자", "진료과"}}
	if _, ok := DetectHeader(rows, patientFields, patientRequiredFields, 20); !ok {
		t.Fatalf("expected acceptance")
	}
}

func TestDetectHeader_ScanWindow(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 25)
	rows[21] = []any{"차트번호", "내원일", "보호자", "동물 이름"}
	if _, ok := DetectHeader(rows, patientFields, patientRequiredFields, 20); ok {
		t.Fatalf("row beyond scan window must be ignored")
	}
	if got, ok := DetectHeader(rows, patientFields, patientRequiredFields, 30); !ok || got.RowIndex != 21 {
		t.Fatalf("wider window: got (%d, %v)", got.RowIndex, ok)
	}
}

func TestDetectHeader_CellAttributedToFirstField(t *testing.T) {
	t.Parallel()

	// "보호자 연락처" 는 owner_name 키워드가 먼저 매칭되어 contact 로 가지 않는다
	rows := [][]any{{"보호자 연락처", "동물명", "체중", "연락처"}}
	got, ok := DetectHeader(rows, checkupFields, checkupRequiredFields, 20)
	if !ok {
		t.Fatalf("expected header")
	}
	if idx, _ := got.Columns.Index("owner_name"); idx != 0 {
		t.Fatalf("owner_name: %d", idx)
	}
	if idx, _ := got.Columns.Index("contact"); idx != 3 {
		t.Fatalf("contact: %d", idx)
	}
}

func TestDetectHeader_FirstMatchPerFieldKept(t *testing.T) {
	t.Parallel()

	rows := [][]any{{"Chart", "보호자", "동물 이름", "CHART NO"}}
	got, ok := DetectHeader(rows, patientFields, patientRequiredFields, 20)
	if !ok {
		t.Fatalf("expected header")
	}
	if idx, _ := got.Columns.Index("chart_number"); idx != 0 {
		t.Fatalf("chart_number should keep first column, got %d", idx)
	}
}

func TestHeaderMap_ColumnsIsCopy(t *testing.T) {
	t.Parallel()

	m := newHeaderMap(map[string]int{"owner_name": 1})
	cols := m.Columns()
	cols["owner_name"] = 9
	if idx, _ := m.Index("owner_name"); idx != 1 {
		t.Fatalf("header map mutated through copy")
	}
	if m.Cell([]any{"a"}, "owner_name") != nil {
		t.Fatalf("short row must yield nil")
	}
}

func TestDetectHeader_DictionariesUnchanged(t *testing.T) {
	t.Parallel()

	snapshot := func(dict FieldDictionary) map[string]string {
		out := make(map[string]string, len(dict))
		for _, f := range dict {
			out[f.Field] = strings.Join(f.Keywords, "|")
		}
		return out
	}
	beforePatient := snapshot(patientFields)
	beforeCheckup := snapshot(checkupFields)
	required := strings.Join(patientRequiredFields, "|")

	rows := [][]any{{"차트번호", "내원일", "보호자", "동물 이름", "축종"}}
	for i := 0; i < 3; i++ {
		if _, ok := DetectHeader(rows, patientFields, patientRequiredFields, 20); !ok {
			t.Fatalf("expected header on pass %d", i)
		}
		DetectHeader(rows, checkupFields, checkupRequiredFields, 20)
	}

	if !reflect.DeepEqual(beforePatient, snapshot(patientFields)) || !reflect.DeepEqual(beforeCheckup, snapshot(checkupFields)) {
		t.Fatalf("field dictionaries changed during detection")
	}
	if got := strings.Join(patientRequiredFields, "|"); got != required {
		t.Fatalf("required fields changed: %s", got)
	}
}
