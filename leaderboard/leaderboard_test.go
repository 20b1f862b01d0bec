package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vilakshan/pli-leaderboard/model"
)

func TestAggregate_SumsAcrossMetrics(t *testing.T) {
	month := model.NewMonth(2026, time.May)
	lumpsum := &model.LumpsumRow{OutputHeader: model.OutputHeader{ConfigHash: "h1", SchemaVersion: 1}}
	lumpsum.PointsTotal = model.NewPoints(999) // raw Lumpsum output; not what feeds mf_lumpsum_points
	sipRow := &model.SipRow{}
	sipRow.SipPoints = model.NewPoints(50)
	sipRow.LumpsumPoints = model.NewPoints(100) // SIP scorer is authoritative for the Lumpsum-points reflection
	insRow := &model.InsuranceRow{}
	insRow.PointsTotal = model.NewPoints(20)

	row := Aggregate(RowInputs{
		RM: model.RM{EmployeeID: "E1", DisplayName: "Test RM", IsActive: true}, Month: month,
		Lumpsum: lumpsum, Sip: sipRow, Insurance: insRow,
		Referrals: []model.ReferralRow{{Points: model.NewPoints(10)}},
	})

	assert.True(t, row.TotalPointsPublic.Equal(model.NewPoints(180)))
	assert.True(t, row.PayoutEligible)
	assert.Equal(t, "h1", row.ConfigHash)
}

func TestAggregate_ApprovedAdjustmentsOnlyFoldIn(t *testing.T) {
	month := model.NewMonth(2026, time.May)
	row := Aggregate(RowInputs{
		RM: model.RM{EmployeeID: "E1", IsActive: true}, Month: month,
		Adjustments: []model.Adjustment{
			{Value: 5, Status: model.AdjustmentApproved},
			{Value: 100, Status: model.AdjustmentPending},
		},
	})
	assert.True(t, row.AdjTotal.Equal(model.NewPoints(5)))
	assert.Len(t, row.Adjustments, 1)
}

func TestAggregate_InactiveBeyondGateLosesPayoutEligibility(t *testing.T) {
	since := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	row := Aggregate(RowInputs{
		RM:    model.RM{EmployeeID: "E1", IsActive: false, InactiveSince: &since},
		Month: model.NewMonth(2026, time.May),
	})
	assert.False(t, row.PayoutEligible)
}

func TestBuildMFLeaderCredit_IsTwentyPercentOfMFPoints(t *testing.T) {
	month := model.NewMonth(2026, time.May)
	rm := model.RM{EmployeeID: "E1"}
	credit := BuildMFLeaderCredit(rm, month, model.NewPoints(500))
	assert.Equal(t, model.BucketMutualFund, credit.Bucket)
	assert.Equal(t, model.EntityID("E1"), credit.Source)
	assert.True(t, credit.ExpectedCredit.Equal(model.NewPoints(100)))
}

func TestReconcileLeaderCredits_ShortfallNotReconciled(t *testing.T) {
	credits := []model.LeaderCredit{{Source: "E2", ExpectedCredit: model.NewPoints(20)}}
	actual := map[model.EntityID]model.Points{"E2": model.NewPoints(10)}
	out := ReconcileLeaderCredits(credits, actual)
	assert.False(t, out[0].Reconciled)
	assert.True(t, out[0].CreditedAmount.Equal(model.NewPoints(10)))
}
