package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/cache"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/importer"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
	"github.com/Mingyu-Song-0519/cozy-vet/internal/parser"
)

func workbookBytes(t *testing.T) []byte {
	t.Helper()
	return sheetBytes(t, "26년 2월")
}

func sheetBytes(t *testing.T, sheet string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))

	rows := [][]any{
		{"No", "차트번호", "내원일", "보호자 이름", "동물 이름", "축종", "진료과", "수납금액"},
		{1, "12706", "2026-02-10", "김OO", "겨울이", "강아지", "내과", 450000},
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseWithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	parseCache := cache.NewParseCache(cache.NewRedisClient(cache.RedisOptions{Addr: mr.Addr()}), time.Minute, zap.NewNop())
	defer parseCache.Close()

	data := workbookBytes(t)
	p := parser.NewParser(parser.Options{})

	first, err := parseWithCache(context.Background(), parseCache, p, data, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, first.Patients, 1)
	assert.Equal(t, "2026-02", first.Patients[0].SourceMonth)
	assert.True(t, mr.Exists(cache.Key(importer.FileHash(data), p.Fingerprint())))

	second, err := parseWithCache(context.Background(), parseCache, p, data, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseWithCache_OptionsDoNotShareEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	parseCache := cache.NewParseCache(cache.NewRedisClient(cache.RedisOptions{Addr: mr.Addr()}), time.Minute, zap.NewNop())
	defer parseCache.Close()

	data := sheetBytes(t, "3월")
	monthOnly := parser.NewParser(parser.Options{AllowMonthOnlySheets: true})
	strict := parser.NewParser(parser.Options{})

	lenient, err := parseWithCache(context.Background(), parseCache, monthOnly, data, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, lenient.Patients, 1)
	assert.Equal(t, "unknown-03", lenient.Patients[0].SourceMonth)

	fromCache, err := parseWithCache(context.Background(), parseCache, strict, data, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, fromCache.Patients)
	assert.Empty(t, fromCache.SheetSummaries)

	hash := importer.FileHash(data)
	assert.True(t, mr.Exists(cache.Key(hash, "m1")))
	assert.True(t, mr.Exists(cache.Key(hash, "m0")))
}

func TestParseWithCache_Disabled(t *testing.T) {
	parseCache := cache.NewParseCache(nil, 0, nil)

	result, err := parseWithCache(context.Background(), parseCache, parser.NewParser(parser.Options{}), workbookBytes(t), zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, result.Patients, 1)

	_, err = parseWithCache(context.Background(), parseCache, parser.NewParser(parser.Options{}), []byte("broken"), zap.NewNop())
	assert.ErrorIs(t, err, parser.ErrInvalidWorkbook)
}

func TestWriteJSON_File(t *testing.T) {
	out := filepath.Join(t.TempDir(), "result.json")
	result := model.NewParseResult()

	require.NoError(t, writeJSON(result, out, true))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"patients\": []")

	var decoded model.ParseResult
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Empty(t, decoded.Patients)
}
