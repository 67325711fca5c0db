// Package formula holds the derived-metric formulas shared by the report
// engine and the export formatter.
package formula

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const daysPerMonth = 30

const (
	TenureUnder3   = "0-3 months"
	Tenure3To6     = "3-6 months"
	Tenure6To12    = "6-12 months"
	TenureOver12   = "12+ months"
	RiskHigh       = "High"
	RiskMedium     = "Medium"
	RiskLow        = "Low"
	EngageInactive = "Inactive (0 visits)"
	EngageLow      = "Low (1-4 visits)"
	EngageMedium   = "Medium (5-11 visits)"
	EngageHigh     = "High (12+ visits)"
)

// TenureGroups is the fixed display order of tenure buckets.
var TenureGroups = []string{TenureUnder3, Tenure3To6, Tenure6To12, TenureOver12}

// RiskLevels is the fixed display order of risk levels, highest first.
var RiskLevels = []string{RiskHigh, RiskMedium, RiskLow}

// EngagementLevels is the fixed display order of engagement buckets.
var EngagementLevels = []string{EngageInactive, EngageLow, EngageMedium, EngageHigh}

// Round rounds half away from zero to the given number of places.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func Round1(v float64) float64 { return Round(v, 1) }

func Round2(v float64) float64 { return Round(v, 2) }

// Percent returns num/den*100 rounded to 1dp, or 0 when den is 0.
func Percent(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return Round1(100 * float64(num) / float64(den))
}

// PerMember returns num/den rounded to 1dp, or nil when den is 0.
func PerMember(num, den int) *float64 {
	if den == 0 {
		return nil
	}
	v := Round1(float64(num) / float64(den))
	return &v
}

// Mean returns the 2dp average, or 0 for an empty input.
func Mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return Round2(sum / float64(n))
}

// DaysBetween is the fractional number of days from -> to.
func DaysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}

// WholeDaysSince truncates the elapsed days toward zero.
func WholeDaysSince(t, now time.Time) int {
	return int(DaysBetween(t, now))
}

// MonthsBetween counts fractional 30-day months.
func MonthsBetween(from, to time.Time) float64 {
	return DaysBetween(from, to) / daysPerMonth
}

// TenureMonths is floor(days_since_join / 30) for non-negative tenure.
func TenureMonths(join, now time.Time) int {
	return int(DaysBetween(join, now) / daysPerMonth)
}

func TenureBucket(months int) string {
	switch {
	case months < 3:
		return TenureUnder3
	case months < 6:
		return Tenure3To6
	case months < 12:
		return Tenure6To12
	default:
		return TenureOver12
	}
}

// RiskLevel classifies days since the last check-in; nil means the member
// never checked in.
func RiskLevel(daysSinceCheckin *int) string {
	switch {
	case daysSinceCheckin == nil || *daysSinceCheckin > 30:
		return RiskHigh
	case *daysSinceCheckin > 14:
		return RiskMedium
	default:
		return RiskLow
	}
}

// AtRisk reports whether a member belongs on the at-risk list.
func AtRisk(daysSinceCheckin *int) bool {
	return daysSinceCheckin == nil || *daysSinceCheckin > 7
}

func EngagementLevel(visits int) string {
	switch {
	case visits <= 0:
		return EngageInactive
	case visits < 5:
		return EngageLow
	case visits < 12:
		return EngageMedium
	default:
		return EngageHigh
	}
}

// WindowStartDays is the calendar day n days before now, at 00:00 UTC.
func WindowStartDays(now time.Time, n int) time.Time {
	return startOfDay(now.UTC().AddDate(0, 0, -n))
}

// WindowStartMonths is the calendar day n months before now, at 00:00 UTC.
func WindowStartMonths(now time.Time, n int) time.Time {
	return startOfDay(now.UTC().AddDate(0, -n, 0))
}

// InWindow reports whether t is at or after start.
func InWindow(t, start time.Time) bool {
	return !t.Before(start)
}

func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

var weekdays = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeekdayName maps 0=Sunday .. 6=Saturday.
func WeekdayName(day int) string {
	if day < 0 || day >= len(weekdays) {
		return ""
	}
	return weekdays[day]
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
