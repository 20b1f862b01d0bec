package referral

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/model"
)

func TestScore_SelfSourced(t *testing.T) {
	rows := Score(Input{
		LeadID: "L1", ReferralType: "insurance",
		Converter: model.RM{EmployeeID: "E1", IsActive: true},
		Month:     model.NewMonth(2026, time.May),
		Cfg:       config.DefaultReferralConfig(),
	})
	assert.Len(t, rows, 1)
	assert.Equal(t, model.ScenarioSelfSourced, rows[0].Scenario)
	assert.True(t, rows[0].Points.Equal(model.NewPoints(100.0)))
}

func TestScore_FamilyHeadPenaltyLeaves30Pct(t *testing.T) {
	rows := Score(Input{
		LeadID: "L1", ReferralType: "insurance", Converter: model.RM{EmployeeID: "E1", IsActive: true},
		SameFamilyHeadAsExisting: true,
		Month: model.NewMonth(2026, time.May), Cfg: config.DefaultReferralConfig(),
	})
	assert.True(t, rows[0].Points.Equal(model.NewPoints(30.0)))
}

func TestScore_InvestmentUsesDistinctPointTable(t *testing.T) {
	rows := Score(Input{
		LeadID: "L4", ReferralType: "investment",
		Converter: model.RM{EmployeeID: "E1", IsActive: true},
		Month:     model.NewMonth(2026, time.May),
		Cfg:       config.DefaultReferralConfig(),
	})
	assert.Len(t, rows, 1)
	assert.True(t, rows[0].Points.Equal(model.NewPoints(200.0)))
}

func TestScore_ReferredLeadCreditsBothParties(t *testing.T) {
	referrer := model.RM{EmployeeID: "E2", IsActive: true}
	rows := Score(Input{
		LeadID: "L2", Converter: model.RM{EmployeeID: "E1", IsActive: true},
		Referrer: &referrer, Month: model.NewMonth(2026, time.May), Cfg: config.DefaultReferralConfig(),
	})
	assert.Len(t, rows, 2)
}

func TestScore_IndependentGatingDropsOnlyIneligibleParty(t *testing.T) {
	since := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	referrer := model.RM{EmployeeID: "E2", IsActive: false, InactiveSince: &since}
	rows := Score(Input{
		LeadID: "L3", Converter: model.RM{EmployeeID: "E1", IsActive: true},
		Referrer: &referrer, Month: model.NewMonth(2026, time.May), Cfg: config.DefaultReferralConfig(),
	})
	assert.Len(t, rows, 1)
	assert.Equal(t, model.ScenarioConverterOnly, rows[0].Scenario)
}
