package config

import "fmt"

// DefaultDocument builds the built-in Document[T] for a metric, used when
// the store holds no active row yet (spec.md §4.1 "Get falls back to the
// compiled-in default and marks the response as such").
func DefaultDocument(m Metric) (any, error) {
	switch m {
	case MetricLumpsum:
		return Document[LumpsumConfig]{Schema: string(MetricLumpsum), SchemaVersion: 1, Version: 0, Status: StatusActive, Options: DefaultLumpsumConfig()}, nil
	case MetricSip:
		return Document[SipConfig]{Schema: string(MetricSip), SchemaVersion: 1, Version: 0, Status: StatusActive, Options: DefaultSipConfig()}, nil
	case MetricInsurance:
		return Document[InsuranceConfig]{Schema: string(MetricInsurance), SchemaVersion: 1, Version: 0, Status: StatusActive, Options: DefaultInsuranceConfig()}, nil
	case MetricReferral:
		return Document[ReferralConfig]{Schema: string(MetricReferral), SchemaVersion: 1, Version: 0, Status: StatusActive, Options: DefaultReferralConfig()}, nil
	default:
		return nil, fmt.Errorf("config: unknown metric %q", m)
	}
}
