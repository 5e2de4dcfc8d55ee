package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mingyu-Song-0519/cozy-vet/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "cozyvet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func strPtr(s string) *string { return &s }
func intPtr(n int64) *int64 { return &n }

func samplePatient(chart, visit string) model.Patient {
	return model.Patient{
		ChartNumber:   chart,
		VisitDate:     visit,
		OwnerName:     "김OO",
		PetName:       "겨울이",
		Species:       model.SpeciesDog,
		HouseholdType: strPtr("1인"),
		Department:    "내과",
		PaymentAmount: intPtr(450000),
		PaymentStatus: model.PaymentPaid,
		SourceMonth:   "2026-02",
	}
}

func TestPatients_InsertLookupUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	inserted, err := st.InsertPatients(ctx, []model.Patient{
		samplePatient("12706", "2026-02-10"),
		samplePatient("12707", "2026-02-11"),
	})
	require.NoError(t, err)
	require.Len(t, inserted, 2)
	assert.NotEmpty(t, inserted[0].ID)
	assert.NotEqual(t, inserted[0].ID, inserted[1].ID)

	keys, err := st.ExistingPatientKeys(ctx, []string{"12706", "99999"}, []string{"2026-02-10", "2026-02-11"})
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, inserted[0].ID, keys[0].ID)

	got, err := st.GetPatient(ctx, inserted[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got.HouseholdType)
	assert.Equal(t, "1인", *got.HouseholdType)
	require.NotNil(t, got.PaymentAmount)
	assert.Equal(t, int64(450000), *got.PaymentAmount)
	assert.Nil(t, got.ReferralSource)
	assert.Nil(t, got.RevisitDate)

	changed := samplePatient("12706", "2026-02-10")
	changed.PaymentAmount = nil
	changed.PaymentStatus = model.PaymentHospitalized
	changed.IsRevisit = true
	updated, err := st.UpdatePatient(ctx, inserted[0].ID, changed)
	require.NoError(t, err)
	assert.Nil(t, updated.PaymentAmount)
	assert.Equal(t, model.PaymentHospitalized, updated.PaymentStatus)
	assert.True(t, updated.IsRevisit)

	_, err = st.UpdatePatient(ctx, "missing", changed)
	assert.True(t, errors.Is(err, ErrNotFound))

	n, err := st.CountPatients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	listed, err := st.ListPatients(ctx, "2026-02")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestPatients_UniqueChartAndVisit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.InsertPatients(ctx, []model.Patient{samplePatient("12706", "2026-02-10")})
	require.NoError(t, err)

	_, err = st.InsertPatients(ctx, []model.Patient{
		samplePatient("12708", "2026-02-12"),
		samplePatient("12706", "2026-02-10"),
	})
	require.Error(t, err)

	// 트랜잭션이 롤백되어 12708 도 남지 않는다
	n, err := st.CountPatients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPatients_UpdateConflict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	inserted, err := st.InsertPatients(ctx, []model.Patient{
		samplePatient("12706", "2026-02-10"),
		samplePatient("12707", "2026-02-11"),
	})
	require.NoError(t, err)

	_, err = st.UpdatePatient(ctx, inserted[1].ID, samplePatient("12706", "2026-02-10"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPatients_LookupAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	second := samplePatient("12707", "2026-02-11")
	second.OwnerName = "이OO"
	second.PetName = "나비"
	inserted, err := st.InsertPatients(ctx, []model.Patient{samplePatient("12706", "2026-02-10"), second})
	require.NoError(t, err)

	all, err := st.LookupPatients(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "12707", all[0].ChartNumber, "recent visits first")

	byPet, err := st.LookupPatients(ctx, "나비", 10)
	require.NoError(t, err)
	require.Len(t, byPet, 1)
	assert.Equal(t, inserted[1].ID, byPet[0].ID)

	byChart, err := st.LookupPatients(ctx, "2706", 10)
	require.NoError(t, err)
	require.Len(t, byChart, 1)
	assert.Equal(t, "12706", byChart[0].ChartNumber)

	wildcard, err := st.LookupPatients(ctx, "%", 10)
	require.NoError(t, err)
	assert.Empty(t, wildcard)

	limited, err := st.LookupPatients(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = st.InsertReminders(ctx, []model.Reminder{
		{PatientID: inserted[0].ID, Type: model.ReminderFollowup3M, DueDate: "2026-05-11", Status: model.ReminderPending},
	})
	require.NoError(t, err)

	require.NoError(t, st.DeletePatient(ctx, inserted[0].ID))
	assert.ErrorIs(t, st.DeletePatient(ctx, inserted[0].ID), ErrNotFound)

	_, err = st.GetPatient(ctx, inserted[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	left, err := st.ListReminders(ctx, inserted[0].ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestReminders_ReplacePending(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	patients, err := st.InsertPatients(ctx, []model.Patient{samplePatient("12706", "2026-02-10")})
	require.NoError(t, err)
	id := patients[0].ID

	tmpl := model.TemplateFollowupHigh3M
	n, err := st.InsertReminders(ctx, []model.Reminder{
		{PatientID: id, Type: model.ReminderFollowup3M, DueDate: "2026-05-11", Status: model.ReminderPending, MessageTemplateType: &tmpl},
		{PatientID: id, Type: model.ReminderFollowup6M, DueDate: "2026-08-09", Status: model.ReminderCompleted},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	deleted, err := st.DeletePendingReminders(ctx, []string{id})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	left, err := st.ListReminders(ctx, id)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, model.ReminderCompleted, left[0].Status)
	assert.Nil(t, left[0].MessageTemplateType)
}

func TestReminders_DueAndStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	patients, err := st.InsertPatients(ctx, []model.Patient{samplePatient("12706", "2026-02-10")})
	require.NoError(t, err)
	id := patients[0].ID

	_, err = st.InsertReminders(ctx, []model.Reminder{
		{PatientID: id, Type: model.ReminderFollowup3M, DueDate: "2026-05-11", Status: model.ReminderPending},
		{PatientID: id, Type: model.ReminderFollowup6M, DueDate: "2026-08-09", Status: model.ReminderPending},
	})
	require.NoError(t, err)

	due, err := st.ListDueReminders(ctx, "2026-06-01")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "12706", due[0].ChartNumber)
	assert.Equal(t, "겨울이", due[0].PetName)
	assert.Equal(t, model.ReminderFollowup3M, due[0].Type)

	require.NoError(t, st.SetReminderStatus(ctx, due[0].ID, model.ReminderCompleted))
	due, err = st.ListDueReminders(ctx, "2026-06-01")
	require.NoError(t, err)
	assert.Empty(t, due)

	all, err := st.ListReminders(ctx, id)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.ReminderCompleted, all[0].Status)
	assert.NotNil(t, all[0].CompletedAt)

	err = st.SetReminderStatus(ctx, "missing", model.ReminderSkipped)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettings_FollowupThreshold(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	threshold, err := st.FollowupThreshold(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(300000), threshold)

	require.NoError(t, st.SetSetting(ctx, SettingFollowupThreshold, "500000"))
	threshold, err = st.FollowupThreshold(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), threshold)

	require.NoError(t, st.SetSetting(ctx, SettingFollowupThreshold, "abc"))
	threshold, err = st.FollowupThreshold(ctx, 300000)
	require.NoError(t, err)
	assert.Equal(t, int64(300000), threshold)

	_, err = st.GetSetting(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	all, err := st.AllSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", all[SettingFollowupThreshold])
}

func TestImportLog_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	last, err := st.LastImportTime(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	id, err := st.CreateImportLog(ctx, "2026-02.xlsx", "abc", "skip")
	require.NoError(t, err)
	require.NoError(t, st.UpdateImportLog(ctx, id, ImportCounts{InsertedPatients: 3}, ImportStatusCompleted, ""))

	last, err = st.LastImportTime(ctx)
	require.NoError(t, err)
	assert.NotNil(t, last)
}

func TestCheckups_Insert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)

	weight := 3.1
	n, err := st.InsertCheckups(ctx, []model.ParsedCheckup{
		{OwnerName: "김OO", PetName: "겨울이", Species: model.SpeciesDog, Weight: &weight, SourceMonth: "2026-02"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := st.CountCheckups(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExistingPatientKeys_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewWithDB(db)
	mock.ExpectQuery(`SELECT id, chart_number, visit_date FROM patients`).
		WithArgs("12706", "2026-02-10").
		WillReturnError(errors.New("database is locked"))

	_, err = st.ExistingPatientKeys(context.Background(), []string{"12706"}, []string{"2026-02-10"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query existing patients failed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExistingPatientKeys_Scan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewWithDB(db)
	rows := sqlmock.NewRows([]string{"id", "chart_number", "visit_date"}).
		AddRow("p1", "12706", "2026-02-10")
	mock.ExpectQuery(`SELECT id, chart_number, visit_date FROM patients`).
		WithArgs("12706", "12707", "2026-02-10").
		WillReturnRows(rows)

	keys, err := st.ExistingPatientKeys(context.Background(), []string{"12706", "12707"}, []string{"2026-02-10"})
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, model.PatientKey{ID: "p1", ChartNumber: "12706", VisitDate: "2026-02-10"}, keys[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
