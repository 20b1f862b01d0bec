package lumpsum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/model"
)

func baseInput() ScoreInput {
	cfg := config.DefaultLumpsumConfig()
	return ScoreInput{
		RM:       model.RM{EmployeeID: "E1", DisplayName: "Test RM", IsActive: true},
		Month:    model.NewMonth(2026, time.May),
		AumStart: model.NewRupees(10000000),
		AumFound: true,
		Cfg:      cfg,
	}
}

func TestScore_PlainPurchaseHitsLowestRateSlab(t *testing.T) {
	in := baseInput()
	in.Transactions = []model.LumpsumTransaction{
		{RMName: "Test RM", Amount: 10000, Type: model.TxPurchase, SchemeName: "Equity Growth"},
	}
	row, _ := Score(in)

	assert.True(t, row.NetPurchase.Equal(model.NewRupees(10000)))
	assert.InDelta(t, 0.1, row.GrowthPct, 1e-9)
	assert.Equal(t, 0.0006, row.Rate)
	assert.Equal(t, 1.0, row.Multiplier)
	assert.False(t, row.Flags.MissingAUM)
}

// TestScore_PositiveMonthSeparatesBaseAndFinalIncentive reproduces spec
// scenario S1: base_incentive is the pre-multiplier rate application,
// final_incentive layers the meeting multiplier on top of it, and the
// two must remain distinct fields on the output row.
func TestScore_PositiveMonthSeparatesBaseAndFinalIncentive(t *testing.T) {
	in := baseInput()
	in.MeetingCount = 6
	in.Transactions = []model.LumpsumTransaction{
		{RMName: "Test RM", Amount: 500000, Type: model.TxPurchase},
		{RMName: "Test RM", Amount: 100000, Type: model.TxSwitchIn},
		{RMName: "Test RM", Amount: 200000, Type: model.TxRedemption},
	}
	row, _ := Score(in)

	assert.True(t, row.NetPurchase.Equal(model.NewRupees(420000)))
	assert.InDelta(t, 4.20, row.GrowthPct, 1e-9)
	assert.Equal(t, 0.0015, row.Rate)
	assert.Equal(t, 1.05, row.Multiplier)
	assert.True(t, row.BaseIncentive.Equal(model.NewRupees(630)), "base_incentive must be pre-multiplier")
	assert.True(t, row.FinalIncentive.Equal(model.NewRupees(661.50)), "final_incentive applies the meeting multiplier on top of base_incentive")
}

func TestScore_BlacklistedCategoryZeroWeighted(t *testing.T) {
	in := baseInput()
	in.Transactions = []model.LumpsumTransaction{
		{RMName: "Test RM", Amount: 10000, Type: model.TxPurchase, SubCategory: "Liquid Fund", SchemeName: "XYZ Liquid"},
	}
	row, _ := Score(in)
	assert.True(t, row.NetPurchase.IsZero(), "blacklisted purchase category carries zero weight")
	assert.Equal(t, 10000.0, row.Raw.Purchase, "raw bucket still reflects the unweighted transaction")
}

func TestScore_NegativeNetPurchaseIncursPenalty(t *testing.T) {
	in := baseInput()
	in.Transactions = []model.LumpsumTransaction{
		{RMName: "Test RM", Amount: 200000, Type: model.TxRedemption},
	}
	row, _ := Score(in)
	assert.True(t, row.NetPurchase.IsNegative())
	assert.True(t, row.PenaltyRupees.IsPositive())
	assert.True(t, row.FinalIncentive.IsZero() || row.FinalIncentive.IsPositive())
}

func TestScore_MissingAUMFlagsRow(t *testing.T) {
	in := baseInput()
	in.AumFound = false
	in.AumStart = model.ZeroRupees()
	row, _ := Score(in)
	assert.True(t, row.Flags.MissingAUM)
	assert.Equal(t, 0.0, row.GrowthPct)
}

func TestScore_MeetingMultiplierSteps(t *testing.T) {
	in := baseInput()
	in.MeetingCount = 12
	in.Transactions = []model.LumpsumTransaction{
		{RMName: "Test RM", Amount: 10000, Type: model.TxPurchase},
	}
	row, _ := Score(in)
	assert.Equal(t, 1.075, row.Multiplier)
}
