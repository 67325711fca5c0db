package formula

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestRiskLevel(t *testing.T) {
	cases := []struct {
		name string
		days *int
		want string
	}{
		{name: "never checked in", days: nil, want: RiskHigh},
		{name: "31 days", days: intPtr(31), want: RiskHigh},
		{name: "30 days", days: intPtr(30), want: RiskMedium},
		{name: "15 days", days: intPtr(15), want: RiskMedium},
		{name: "14 days", days: intPtr(14), want: RiskLow},
		{name: "today", days: intPtr(0), want: RiskLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RiskLevel(tc.days))
		})
	}
}

func TestAtRiskThreshold(t *testing.T) {
	assert.True(t, AtRisk(nil))
	assert.True(t, AtRisk(intPtr(8)))
	assert.False(t, AtRisk(intPtr(7)))
}

func TestTenureBucketBoundaries(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, Tenure3To6, TenureBucket(TenureMonths(now.AddDate(0, 0, -90), now)))
	assert.Equal(t, TenureUnder3, TenureBucket(TenureMonths(now.AddDate(0, 0, -89), now)))
	assert.Equal(t, Tenure6To12, TenureBucket(6))
	assert.Equal(t, Tenure6To12, TenureBucket(11))
	assert.Equal(t, TenureOver12, TenureBucket(12))
	assert.Equal(t, TenureUnder3, TenureBucket(0))
}

func TestZeroDenominators(t *testing.T) {
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.Nil(t, PerMember(3, 0))
	assert.Equal(t, 0.0, Mean(10, 0))
}

func TestPercentAndRounding(t *testing.T) {
	assert.Equal(t, 33.3, Percent(1, 3))
	assert.Equal(t, 66.7, Percent(2, 3))
	assert.Equal(t, 100.0, Percent(4, 4))
	assert.Equal(t, 2.68, Round2(2.675))
	assert.Equal(t, -0.2, Round1(-0.15))

	avg := PerMember(7, 2)
	require.NotNil(t, avg)
	assert.Equal(t, 3.5, *avg)
}

func TestEngagementLevel(t *testing.T) {
	assert.Equal(t, EngageInactive, EngagementLevel(0))
	assert.Equal(t, EngageLow, EngagementLevel(1))
	assert.Equal(t, EngageLow, EngagementLevel(4))
	assert.Equal(t, EngageMedium, EngagementLevel(5))
	assert.Equal(t, EngageMedium, EngagementLevel(11))
	assert.Equal(t, EngageHigh, EngagementLevel(12))
}

func TestWindows(t *testing.T) {
	now := time.Date(2024, 8, 31, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), WindowStartDays(now, 30))
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), WindowStartMonths(now, 6))
	assert.True(t, InWindow(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), WindowStartDays(now, 30)))
	assert.False(t, InWindow(time.Date(2024, 7, 31, 23, 59, 59, 0, time.UTC), WindowStartDays(now, 30)))
}

func TestDaysSinceTruncates(t *testing.T) {
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 10, WholeDaysSince(now.Add(-(10*24+23)*time.Hour), now))
	assert.Equal(t, "2024-06", MonthKey(now))
	assert.Equal(t, "Sunday", WeekdayName(0))
	assert.Equal(t, "Saturday", WeekdayName(6))
}
