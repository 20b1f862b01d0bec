package insurance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/model"
)

func TestClassifyPolicy_FreshHasNoRenewalDate(t *testing.T) {
	p := model.InsurancePolicy{
		PolicyStart:     time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		PolicyEnd:       time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		ThisYearPremium: model.Float(30000),
	}
	d := ClassifyPolicy(p, model.NewMonth(2026, time.January))
	assert.Equal(t, model.ClassFresh, d.Classification)
	assert.Equal(t, 30000.0, d.FreshPremiumEligible)
	assert.Equal(t, 1, d.TermYears)
}

func TestClassifyPolicy_PortabilityWithNoRenewalDateReclassifiesToFresh(t *testing.T) {
	p := model.InsurancePolicy{
		PolicyType:      "Health Portability",
		ThisYearPremium: model.Float(80000),
	}
	d := ClassifyPolicy(p, model.NewMonth(2026, time.May))
	assert.Equal(t, model.ClassFresh, d.Classification)
	assert.Equal(t, 80000.0, d.FreshPremiumEligible)
}

func TestClassifyPolicy_PortabilityWithRenewalDateSplitsOnPremium(t *testing.T) {
	renewalDate := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	withUpsell := model.InsurancePolicy{
		PolicyType:      "Portability",
		RenewalDate:     &renewalDate,
		ThisYearPremium: model.Float(50000),
		LastYearPremium: model.Float(40000),
	}
	d := ClassifyPolicy(withUpsell, model.NewMonth(2026, time.May))
	assert.Equal(t, model.ClassRenewalWithUpsell, d.Classification)

	withoutUpsell := model.InsurancePolicy{
		PolicyType:      "Portability",
		RenewalDate:     &renewalDate,
		ThisYearPremium: model.Float(40000),
	}
	d = ClassifyPolicy(withoutUpsell, model.NewMonth(2026, time.May))
	assert.Equal(t, model.ClassRenewalWithoutUpsell, d.Classification)
}

// TestClassifyPolicy_HealthWithNoRenewalDateIsStillRenewal covers spec.md
// §4.6 step 3's data-quality branch: Health/GPA policies routinely arrive
// with no renewal_date even though they are renewals, so that absence must
// not fall through to the generic "no renewal_date means fresh" rule.
func TestClassifyPolicy_HealthWithNoRenewalDateIsStillRenewal(t *testing.T) {
	p := model.InsurancePolicy{
		PolicyType:      "Health",
		ThisYearPremium: model.Float(45000),
		LastYearPremium: model.Float(30000),
	}
	d := ClassifyPolicy(p, model.NewMonth(2026, time.May))
	assert.True(t, d.Classification.IsRenewal())
	assert.NotEqual(t, model.ClassFresh, d.Classification)
}

func TestClassifyPolicy_ConversionStatusSubstringDrivesFallbackClassification(t *testing.T) {
	renewal := model.InsurancePolicy{
		PolicyType:       "GMC",
		ConversionStatus: "Renewal - Existing Client",
		ThisYearPremium:  model.Float(20000),
	}
	d := ClassifyPolicy(renewal, model.NewMonth(2026, time.May))
	assert.True(t, d.Classification.IsRenewal())

	fresh := model.InsurancePolicy{
		PolicyType:       "GMC",
		ConversionStatus: "Fresh Business",
		ThisYearPremium:  model.Float(20000),
	}
	d = ClassifyPolicy(fresh, model.NewMonth(2026, time.May))
	assert.Equal(t, model.ClassFresh, d.Classification)
}

func TestClassifyPolicy_RenewalWithUpsell(t *testing.T) {
	renewalDate := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	p := model.InsurancePolicy{
		RenewalDate:     &renewalDate,
		ThisYearPremium: model.Float(40000),
		LastYearPremium: model.Float(30000),
	}
	d := ClassifyPolicy(p, model.NewMonth(2026, time.May))
	assert.Equal(t, model.ClassRenewalWithUpsell, d.Classification)
	assert.True(t, d.Classification.IsRenewal())
}

func TestScorePolicy_FreshPremiumPointsScaleWithSlab(t *testing.T) {
	cfg := config.DefaultInsuranceConfig()
	p := model.InsurancePolicy{PolicyType: "Term", ThisYearPremium: model.Float(60000)}
	d := ClassifyPolicy(p, model.NewMonth(2026, time.May))
	row := ScorePolicy(d, 2.0, 0, model.RM{EmployeeID: "E1"}, cfg)
	assert.Greater(t, row.BasePoints, 0.0)
	assert.Greater(t, row.TotalPoints, 0.0)
}

func TestAggregate_PayoutSlabFollowsPointTotal(t *testing.T) {
	cfg := config.DefaultInsuranceConfig()
	policies := []model.PolicyScoreRow{
		{BasePoints: 80, WeightFactor: 1.0, TotalPoints: 80, Derived: model.DerivedPolicy{Classification: model.ClassFresh, FreshPremiumEligible: 50000}},
	}
	row, credit := Aggregate(AggregateInput{
		RM: model.RM{EmployeeID: "E1", DisplayName: "Test RM"}, Month: model.NewMonth(2026, time.May),
		Policies: policies, Cfg: cfg,
	})
	assert.Equal(t, "silver", row.PayoutSlabLabel)
	assert.True(t, row.PayoutAmount.IsPositive())
	assert.Equal(t, model.BucketInsurance, credit.Bucket)
}

func TestAggregate_StreakBonusPaysOnHattrickMonth(t *testing.T) {
	cfg := config.DefaultInsuranceConfig()
	policies := []model.PolicyScoreRow{
		{TotalPoints: 10, Derived: model.DerivedPolicy{Classification: model.ClassFresh, FreshPremiumEligible: 350000}},
	}
	row, _ := Aggregate(AggregateInput{
		RM: model.RM{EmployeeID: "E1"}, Month: model.NewMonth(2026, time.May),
		Policies: policies, Cfg: cfg,
		PrevStreak: model.StreakState{PositiveMonths: 2},
	})
	assert.Equal(t, cfg.Options.StreakMonthlyBonus+cfg.Options.HattrickBonus, row.PointsBonus)
}
