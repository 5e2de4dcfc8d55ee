package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
)

func setupTestCache(t *testing.T) (*miniredis.Miniredis, *ParseCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedisClient(RedisOptions{Addr: mr.Addr()})
	require.NotNil(t, client)

	c := NewParseCache(client, time.Minute, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func sampleResult() *model.ParseResult {
	amount := int64(450000)
	result := model.NewParseResult()
	result.Patients = []model.ParsedPatient{{
		ChartNumber:   "12706",
		VisitDate:     "2026-02-10",
		OwnerName:     "김OO",
		PetName:       "겨울이",
		Species:       model.SpeciesDog,
		Department:    "내과",
		PaymentAmount: &amount,
		PaymentStatus: model.PaymentPaid,
		SourceMonth:   "2026-02",
		RowNumber:     4,
	}}
	result.SheetSummaries = []model.SheetSummary{{Sheet: "2026-02", PatientCount: 1}}
	return result
}

func TestParseCache_SetGet(t *testing.T) {
	mr, c := setupTestCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "abc", "m0")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "abc", "m0", sampleResult()))
	assert.True(t, mr.Exists("cozyvet:parse:abc:m0"))

	got, err := c.Get(ctx, "abc", "m0")
	require.NoError(t, err)
	assert.Equal(t, sampleResult(), got)
}

func TestParseCache_VariantsAreSeparate(t *testing.T) {
	mr, c := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc", "m1", sampleResult()))
	assert.True(t, mr.Exists("cozyvet:parse:abc:m1"))

	_, err := c.Get(ctx, "abc", "m0")
	assert.ErrorIs(t, err, ErrMiss)

	got, err := c.Get(ctx, "abc", "m1")
	require.NoError(t, err)
	assert.Len(t, got.Patients, 1)
}

func TestParseCache_TTL(t *testing.T) {
	mr, c := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc", "m0", sampleResult()))
	assert.Equal(t, time.Minute, mr.TTL(Key("abc", "m0")))

	mr.FastForward(2 * time.Minute)
	_, err := c.Get(ctx, "abc", "m0")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestParseCache_CorruptEntry(t *testing.T) {
	mr, c := setupTestCache(t)

	require.NoError(t, mr.Set(Key("abc", "m0"), "{not json"))
	_, err := c.Get(context.Background(), "abc", "m0")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestParseCache_Disabled(t *testing.T) {
	c := NewParseCache(NewRedisClient(RedisOptions{}), 0, nil)
	ctx := context.Background()

	assert.False(t, c.Enabled())
	assert.NoError(t, c.Set(ctx, "abc", "m0", sampleResult()))
	_, err := c.Get(ctx, "abc", "m0")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}
