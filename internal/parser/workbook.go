package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidWorkbook 바이트가 엑셀 워크북이 아님
var ErrInvalidWorkbook = errors.New("invalid workbook")

// Workbook 시트 이름과 행 배열을 제공하는 워크북
type Workbook interface {
	// SheetNames 파일에 저장된 순서의 원본 시트 이름
	SheetNames() []string
	// Rows 행 x 열 원시 값. 빈 셀은 ""
	Rows(sheet string) ([][]any, error)
}

// ExcelWorkbook excelize 로 읽은 워크북
type ExcelWorkbook struct {
	file *excelize.File
}

// OpenWorkbook 메모리의 xlsx 바이트를 연다
func OpenWorkbook(data []byte) (*ExcelWorkbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	return &ExcelWorkbook{file: f}, nil
}

// SheetNames 시트 목록
func (w *ExcelWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Rows 셀 서식을 적용하지 않은 원시 값으로 읽는다
// 날짜 셀은 일련번호(float64)로, 숫자 셀은 float64 로, 그 외는 문자열로 돌려준다.
func (w *ExcelWorkbook) Rows(sheet string) ([][]any, error) {
	raw, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	rows := make([][]any, len(raw))
	for r, cells := range raw {
		row := make([]any, len(cells))
		for c, text := range cells {
			row[c] = w.typedValue(sheet, r, c, text)
		}
		rows[r] = row
	}
	return rows, nil
}

func (w *ExcelWorkbook) typedValue(sheet string, r, c int, text string) any {
	if text == "" {
		return ""
	}
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return text
	}

	axis, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return text
	}
	cellType, err := w.file.GetCellType(sheet, axis)
	if err != nil {
		return text
	}
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return text
	case excelize.CellTypeBool:
		return text == "1" || text == "TRUE"
	default:
		return num
	}
}

// Close 내부 파일 핸들 정리
func (w *ExcelWorkbook) Close() error {
	return w.file.Close()
}

// RowsWorkbook 이미 행 배열을 가진 호출자를 위한 메모리 워크북
type RowsWorkbook struct {
	names  []string
	sheets map[string][][]any
}

// NewRowsWorkbook 빈 메모리 워크북
func NewRowsWorkbook() *RowsWorkbook {
	return &RowsWorkbook{sheets: make(map[string][][]any)}
}

// AddSheet 시트 추가. 같은 이름이면 행을 교체한다
func (w *RowsWorkbook) AddSheet(name string, rows [][]any) *RowsWorkbook {
	if _, exists := w.sheets[name]; !exists {
		w.names = append(w.names, name)
	}
	w.sheets[name] = rows
	return w
}

// SheetNames 추가한 순서
func (w *RowsWorkbook) SheetNames() []string {
	out := make([]string, len(w.names))
	copy(out, w.names)
	return out
}

// Rows 시트 행
func (w *RowsWorkbook) Rows(sheet string) ([][]any, error) {
	rows, ok := w.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}
	return rows, nil
}
