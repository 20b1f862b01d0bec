package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vilakshan/pli-leaderboard/model"
)

type fakeSink struct {
	publicRows []model.PublicRow
}

func (f *fakeSink) UpsertLumpsum(ctx context.Context, rows []model.LumpsumRow) error { return nil }
func (f *fakeSink) UpsertSip(ctx context.Context, rows []model.SipRow) error         { return nil }
func (f *fakeSink) UpsertInsurance(ctx context.Context, rows []model.InsuranceRow) error { return nil }
func (f *fakeSink) UpsertReferral(ctx context.Context, rows []model.ReferralRow) error   { return nil }
func (f *fakeSink) UpsertLeaderCredits(ctx context.Context, credits []model.LeaderCredit) error {
	return nil
}
func (f *fakeSink) UpsertPublic(ctx context.Context, rows []model.PublicRow) error {
	f.publicRows = rows
	return nil
}

func TestRunMonth_MFLumpsumPointsComesFromSipScorer(t *testing.T) {
	month := model.NewMonth(2026, time.May)
	rm := model.RM{EmployeeID: "E1", DisplayName: "Test RM", IsActive: true}

	lumpsumRow := model.LumpsumRow{OutputHeader: model.OutputHeader{EmployeeID: "E1"}}
	lumpsumRow.PointsTotal = model.NewPoints(100) // raw Lumpsum output; not reflected into mf_lumpsum_points directly

	sipRow := model.SipRow{OutputHeader: model.OutputHeader{EmployeeID: "E1"}}
	sipRow.LumpsumPoints = model.NewPoints(25)

	scorers := Scorers{
		RunLumpsum:   func(ctx context.Context, m model.Month) ([]model.LumpsumRow, error) { return []model.LumpsumRow{lumpsumRow}, nil },
		RunInsurance: func(ctx context.Context, m model.Month) ([]model.InsuranceRow, []model.LeaderCredit, error) { return nil, nil, nil },
		RunSip: func(ctx context.Context, m model.Month, lumpsumByRM map[model.EntityID]model.LumpsumRow) ([]model.SipRow, error) {
			return []model.SipRow{sipRow}, nil
		},
		RunReferral:     func(ctx context.Context, m model.Month) ([]model.ReferralRow, error) { return nil, nil },
		LoadAdjustments: func(ctx context.Context, m model.Month) (map[model.EntityID][]model.Adjustment, error) { return nil, nil },
		LoadRMs:         func(ctx context.Context) ([]model.RM, error) { return []model.RM{rm}, nil },
	}

	sink := &fakeSink{}
	o := New(scorers, sink, zerolog.Nop())
	require.NoError(t, o.RunMonth(context.Background(), month))

	require.Len(t, sink.publicRows, 1)
	assert.True(t, sink.publicRows[0].MFLumpsumPoints.Equal(model.NewPoints(25)))
}
