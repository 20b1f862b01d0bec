package model

// ReferralLead is a raw converted lead as it arrives from the referral
// extract (spec.md §3.4/§4.7 inputs): a converter always exists, a
// referrer only when someone else sourced the lead for them.
type ReferralLead struct {
	LeadID                   string
	ReferralType             string // "insurance" | "investment"
	ConverterEmployeeID      EntityID
	ReferrerEmployeeID       *EntityID
	SameFamilyHeadAsExisting bool
	Month                    Month
}
