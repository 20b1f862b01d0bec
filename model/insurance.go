package model

import "time"

// PolicyClassification is the derived fresh/renewal split (spec.md §3.4,
// §4.6 step 3).
type PolicyClassification string

const (
	ClassFresh                     PolicyClassification = "fresh"
	ClassRenewal                   PolicyClassification = "renewal"
	ClassRenewalWithUpsell         PolicyClassification = "renewal_with_upsell"
	ClassRenewalWithoutUpsell      PolicyClassification = "renewal_without_upsell"
)

func (c PolicyClassification) IsRenewal() bool {
	return c == ClassRenewal || c == ClassRenewalWithUpsell || c == ClassRenewalWithoutUpsell
}

type ProcessingUser struct {
	ID   string
	Name string
}

// InsurancePolicy is the raw record ingested per spec.md §3.4.
type InsurancePolicy struct {
	LeadID            string
	PolicyNumber      string
	ConversionDate    time.Time
	PolicyStart       time.Time
	PolicyEnd         time.Time
	RenewalDate       *time.Time
	ThisYearPremium   OptFloat
	LastYearPremium   OptFloat
	PolicyType        string
	ConversionStatus  string
	ProcessingUser    ProcessingUser
	DirectAssociate   string
	EldestMemberDOB   *time.Time
	ReferralFeeAmount OptFloat
	HasDeductible     bool
}

// DerivedPolicy holds the fields spec.md §3.4 calls "Derived".
type DerivedPolicy struct {
	Policy             InsurancePolicy
	Classification     PolicyClassification
	DaysToRenewal      OptInt
	TermYears          int
	FreshPremiumEligible float64
	PeriodMonth        Month
}

// PolicyScoreRow is one scored policy line (one row of
// Insurance_Policy_Scoring, spec.md §6.1).
type PolicyScoreRow struct {
	Derived       DerivedPolicy
	BasePoints    float64
	UpsellPoints  float64
	WeightFactor  float64
	TotalPoints   float64
	EmployeeID    EntityID
	EmployeeName  string
}
