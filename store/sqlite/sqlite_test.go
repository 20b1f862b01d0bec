package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilakshan/pli-leaderboard/audit"
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/model"
	"github.com/vilakshan/pli-leaderboard/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestConfigBackend_SaveThenLoadRoundTrips(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	meta := config.DocMeta{SchemaVersion: 1, Version: 1, Status: config.StatusActive, UpdatedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), UpdatedBy: "admin"}
	require.NoError(t, s.SaveActive(ctx, config.MetricLumpsum, meta, []byte(`{"x":1}`)))

	raw, got, found, err := s.LoadActive(ctx, config.MetricLumpsum)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"x":1}`, string(raw))
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, "admin", got.UpdatedBy)
}

func TestConfigBackend_LoadActive_MissingReturnsNotFound(t *testing.T) {
	s := newStore(t)
	_, _, found, err := s.LoadActive(context.Background(), config.MetricSip)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestConfigBackend_ArchiveRoundTrips(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	entry := config.ArchiveEntry{
		Metric: config.MetricInsurance, Version: 1, ArchivedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		ReplacedBy: 2, ChangeReason: "quarterly review", ConfigSnapshot: `{"a":1}`,
	}
	require.NoError(t, s.AppendArchive(ctx, entry))

	list, err := s.ListArchive(ctx, config.MetricInsurance, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "quarterly review", list[0].ChangeReason)
}

func TestIdentityDirectory_UpsertAndLookupByName(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	rm := model.RM{EmployeeID: "E100", DisplayName: "A. Sharma", IsActive: true, Profile: "MF"}
	require.NoError(t, s.Upsert(ctx, rm))

	got, found, err := s.LookupByName(ctx, "a. sharma")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.EntityID("E100"), got.EmployeeID)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAumSource_UpsertAndRowsForMonth(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	month := model.NewMonth(2026, time.April)

	require.NoError(t, s.UpsertAum(ctx, month, "A. Sharma", model.NewRupees(5_000_000)))
	rows, err := s.RowsForMonth(ctx, month)
	require.NoError(t, err)
	require.Contains(t, rows, "A. Sharma")
	assert.True(t, rows["A. Sharma"].Equal(model.NewRupees(5_000_000)))
}

func TestAdjustmentStore_CreateGetApprove(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	month := model.NewMonth(2026, time.April)

	a := model.Adjustment{ID: "adj-1", EmployeeID: "E100", Month: month, Value: 10, Type: model.AdjustmentPoints, Status: model.AdjustmentPending}
	require.NoError(t, s.Create(ctx, a))

	got, found, err := s.Get(ctx, "adj-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.AdjustmentPending, got.Status)

	require.NoError(t, s.SetStatus(ctx, "adj-1", model.AdjustmentApproved, "manager-1"))
	got, _, err = s.Get(ctx, "adj-1")
	require.NoError(t, err)
	assert.Equal(t, model.AdjustmentApproved, got.Status)
	assert.Equal(t, "manager-1", got.ActedBy)

	list, err := s.ListForMonth(ctx, "E100", month)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestSink_UpsertPublic_IsIdempotentOnRerun(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	month := model.NewMonth(2026, time.April)

	row := model.PublicRow{EmployeeID: "E100", PeriodMonth: month, TotalPointsPublic: model.NewPoints(10)}
	require.NoError(t, s.UpsertPublic(ctx, []model.PublicRow{row}))
	row.TotalPointsPublic = model.NewPoints(20)
	require.NoError(t, s.UpsertPublic(ctx, []model.PublicRow{row}))

	rows, err := s.PublicForMonth(ctx, month)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].TotalPointsPublic.Equal(model.NewPoints(20)))
}

func TestAuditWriter_WritesToMetricSpecificTable(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	month := model.NewMonth(2026, time.April)

	rec := audit.Record{
		Metric: config.MetricSip, EmployeeID: "E100", Month: month,
		Mode: config.AuditFull, Payload: []byte(`{}`), WrittenAt: time.Date(2026, 4, 30, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Write(ctx, rec))
}
