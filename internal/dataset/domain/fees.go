package domain

import "strings"

// FeeSchedule resolves the monthly fee of a member. An explicit fee always
// wins; otherwise the membership type default applies, then the fallback.
type FeeSchedule struct {
	defaults map[string]float64
	fallback float64
}

func NewFeeSchedule(defaults map[string]float64, fallback float64) FeeSchedule {
	normalized := make(map[string]float64, len(defaults))
	for name, fee := range defaults {
		normalized[strings.ToLower(strings.TrimSpace(name))] = fee
	}
	return FeeSchedule{defaults: normalized, fallback: fallback}
}

func (f FeeSchedule) ForType(membershipType string) float64 {
	if fee, ok := f.defaults[strings.ToLower(strings.TrimSpace(membershipType))]; ok {
		return fee
	}
	return f.fallback
}

func (f FeeSchedule) Resolve(m Member) float64 {
	if m.MonthlyFee != nil {
		return *m.MonthlyFee
	}
	return f.ForType(m.MembershipType)
}

func (f FeeSchedule) Fallback() float64 {
	return f.fallback
}
