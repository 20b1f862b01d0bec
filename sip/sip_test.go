package sip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/model"
)

func TestIngest_FiltersIneligibleAndUnapproved(t *testing.T) {
	month := model.NewMonth(2026, time.May)
	win := model.ResolveWindow(month, model.RangeMonth, model.FYApril, nil)

	eligible := model.SipTransaction{
		RMName: "RM1", TransactionType: model.SipTx, TransactionFor: model.SipRegistration,
		Amount: 5000, ReconciliationStatus: model.ReconReconciled,
		Validations: []model.Validation{{Status: model.ValidationApproved, ValidatedAt: month.Start().AddDate(0, 0, 5)}},
	}
	mismatched := eligible
	mismatched.ReconciliationStatus = model.ReconMismatch

	rows := Ingest(eligible, win)
	assert.Len(t, rows, 1)
	assert.Equal(t, 5000.0, rows[0].Amount)

	assert.Empty(t, Ingest(mismatched, win))
}

func baseInput() ScoreInput {
	return ScoreInput{
		RM:       model.RM{EmployeeID: "E1", DisplayName: "Test RM", IsActive: true},
		Month:    model.NewMonth(2026, time.May),
		AumStart: model.NewRupees(5000000),
		AumFound: true,
		Cfg:      config.DefaultSipConfig(),
	}
}

func TestScore_NetsRegistrationsAgainstCancellations(t *testing.T) {
	in := baseInput()
	in.EffectiveRows = []model.EffectiveSipRow{
		{Type: model.SipTx, For: model.SipRegistration, Amount: 30000},
		{Type: model.SipTx, For: model.SipCancellation, Amount: 10000},
	}
	row, streak := Score(in)
	assert.True(t, row.NetSipCore.Equal(model.NewRupees(20000)))
	assert.Equal(t, 1, streak)
	assert.False(t, row.GateApplied)
}

func TestScore_LumpsumGateWithholdsPositiveSipPoints(t *testing.T) {
	in := baseInput()
	in.EffectiveRows = []model.EffectiveSipRow{
		{Type: model.SipTx, For: model.SipRegistration, Amount: 10000},
	}
	in.Gate = LumpsumGateInput{Available: true, GrowthPct: -5.0, NetPurchase: model.NewRupees(-100000), Rate: 0.01}
	row, _ := Score(in)
	assert.True(t, row.GateApplied)
	assert.True(t, row.SipPoints.IsZero())
	assert.True(t, row.LumpsumPoints.IsNegative(), "lumpsum-points reflection follows the concurrent Lumpsum row's rate regardless of the gate")
}

// TestScore_GateZeroesPointsAndTierFallsToT0 reproduces spec scenario S3:
// a gated RM with positive net SIP but a concurrent Lumpsum slab rate of
// zero ends up with total_points = 0 and therefore tier T0, even though
// net SIP alone would clear several higher tiers.
func TestScore_GateZeroesPointsAndTierFallsToT0(t *testing.T) {
	in := baseInput()
	in.Cfg.Coefficients.SipBaseBps = 125
	in.EffectiveRows = []model.EffectiveSipRow{
		{Type: model.SipTx, For: model.SipRegistration, Amount: 200000},
	}
	in.Gate = LumpsumGateInput{Available: true, GrowthPct: -5.0, NetPurchase: model.NewRupees(-500000), Rate: 0}
	row, _ := Score(in)
	assert.True(t, row.GateApplied)
	assert.True(t, row.SipPoints.IsZero())
	assert.True(t, row.LumpsumPoints.IsZero())
	assert.True(t, row.PointsTotal.IsZero())
	assert.Equal(t, "T0", row.Tier)
}

func TestScore_NegativeNetSipIncursPenalty(t *testing.T) {
	in := baseInput()
	in.EffectiveRows = []model.EffectiveSipRow{
		{Type: model.SipTx, For: model.SipCancellation, Amount: 30000},
	}
	row, streak := Score(in)
	assert.True(t, row.NetSipCore.IsNegative())
	assert.Equal(t, 0, streak)
	assert.True(t, row.RateBps < 0, "penalty bps outweighs any bonus ladder when net SIP is negative")
}
