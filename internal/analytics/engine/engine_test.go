package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/smallbiznis/churnlytics/internal/analytics/domain"
	"github.com/smallbiznis/churnlytics/internal/analytics/formula"
	"github.com/smallbiznis/churnlytics/internal/config"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var now = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func newEngine() *Engine {
	return FromConfig(config.DefaultMembershipConfig())
}

func daysAgo(n int) *time.Time {
	t := now.AddDate(0, 0, -n)
	return &t
}

func fee(v float64) *float64 { return &v }

func member(id, typ, loc string, joinedDaysAgo int, active bool) dataset.Member {
	return dataset.Member{
		MemberID:       id,
		MembershipType: typ,
		Location:       loc,
		JoinDate:       daysAgo(joinedDaysAgo),
		SignupDate:     daysAgo(joinedDaysAgo),
		IsActive:       active,
	}
}

func checkin(id, memberID string, at time.Time) dataset.Checkin {
	return dataset.Checkin{CheckinID: id, MemberID: memberID, CheckinDate: at, Location: "Downtown"}
}

func TestSingleNewMemberScenario(t *testing.T) {
	a := member("A", "Premium", "Downtown", 90, true)
	a.MonthlyFee = fee(50)
	snap := dataset.Snapshot{Members: []dataset.Member{a}}
	e := newEngine()

	overview := e.Overview(snap, now)
	assert.Equal(t, 100.0, overview.RetentionRate)
	assert.Equal(t, 0.0, overview.ChurnRate)
	assert.Equal(t, 50.0, overview.MRR)

	report := e.AtRiskMembers(snap, now)
	require.Len(t, report.AtRiskMembers, 1)
	got := report.AtRiskMembers[0]
	assert.Equal(t, "A", got.MemberID)
	assert.Nil(t, got.DaysSinceCheckin)
	assert.Equal(t, formula.RiskHigh, got.RiskLevel)
	require.NotNil(t, got.MonthsMember)
	assert.Equal(t, 3.0, *got.MonthsMember)
	require.NotNil(t, got.AvgCheckinsPerMonth)
	assert.Equal(t, 0.0, *got.AvgCheckinsPerMonth)

	churn := e.ChurnAnalysis(snap, now)
	require.Len(t, churn.ChurnByTenure, 1)
	assert.Equal(t, formula.Tenure3To6, churn.ChurnByTenure[0].TenureGroup)
}

func TestRevenueMonthlyTrendOrdering(t *testing.T) {
	snap := dataset.Snapshot{Sales: []dataset.Sale{
		{ID: 3, Date: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), Amount: 150, Type: "Membership", Location: "Uptown"},
		{ID: 1, Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Amount: 100, Type: "Membership", Location: "Downtown"},
		{ID: 2, Date: time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), Amount: 50, Type: "Retail", Location: "Downtown"},
	}}

	revenue := newEngine().Revenue(snap, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	want := []domain.MonthlyRevenue{
		{Month: "2024-01", Revenue: 100, TransactionCount: 1},
		{Month: "2024-02", Revenue: 200, TransactionCount: 2},
	}
	if diff := cmp.Diff(want, revenue.MonthlyRevenueTrend); diff != "" {
		t.Fatalf("monthly revenue mismatch (-want +got):\n%s", diff)
	}

	wantTypes := []domain.TypeRevenue{
		{Type: "Membership", TotalRevenue: 250, TransactionCount: 2, AvgTransaction: 125},
		{Type: "Retail", TotalRevenue: 50, TransactionCount: 1, AvgTransaction: 50},
	}
	if diff := cmp.Diff(wantTypes, revenue.RevenueByType); diff != "" {
		t.Fatalf("revenue by type mismatch (-want +got):\n%s", diff)
	}
}

func TestRevenueExcludesSalesOlderThanTwelveMonths(t *testing.T) {
	snap := dataset.Snapshot{Sales: []dataset.Sale{
		{ID: 1, Date: now.AddDate(-1, 0, -1), Amount: 10, Type: "Retail"},
		{ID: 2, Date: now.AddDate(0, -1, 0), Amount: 20, Type: "Retail"},
	}}
	revenue := newEngine().Revenue(snap, now)
	require.Len(t, revenue.MonthlyRevenueTrend, 1)
	assert.Equal(t, 20.0, revenue.MonthlyRevenueTrend[0].Revenue)
	require.Len(t, revenue.RevenueByType, 1)
	assert.Equal(t, 30.0, revenue.RevenueByType[0].TotalRevenue)
}

func TestOverviewCountsAndTrend(t *testing.T) {
	churned := member("C", "Basic", "Uptown", 200, false)
	churned.CancellationDate = daysAgo(10)
	inconsistent := member("D", "Family", "Uptown", 20, true)
	inconsistent.CancellationDate = daysAgo(5)
	noCancel := member("E", "Basic", "Downtown", 400, false)
	tour := true
	withTour := member("B", "Premium", "Downtown", 40, true)
	withTour.TourScheduled = &tour

	snap := dataset.Snapshot{
		Members: []dataset.Member{withTour, churned, inconsistent, noCancel},
		Checkins: []dataset.Checkin{
			checkin("1", "B", now.AddDate(0, 0, -1)),
			checkin("2", "B", now.AddDate(0, 0, -2)),
			checkin("3", "ghost", now.AddDate(0, 0, -2)),
		},
	}

	overview := newEngine().Overview(snap, now)

	assert.Equal(t, 4, overview.TotalMembers)
	assert.Equal(t, 2, overview.ActiveMembers)
	assert.Equal(t, 2, overview.ChurnedMembers)
	assert.Equal(t, formula.Round2(49.99+79.99), overview.MRR)
	assert.Equal(t, 50.0, overview.RetentionRate)
	// cancellations in the last 30 days (C and D) over active members
	assert.Equal(t, 100.0, overview.ChurnRate)
	assert.Equal(t, 3, overview.TotalCheckins)
	assert.Equal(t, 2, overview.UniqueMembersCheckedIn)
	assert.Equal(t, domain.DataQuality{ActiveWithCancellation: 1, ChurnedWithoutCancellation: 1}, overview.DataQuality)

	want := []domain.LocationStat{
		{Location: "Downtown", TotalMembers: 2, ActiveMembers: 1, ChurnedMembers: 1, ToursScheduled: 1, AvgMonthlyFee: formula.Round2((49.99 + 29.99) / 2)},
		{Location: "Uptown", TotalMembers: 2, ActiveMembers: 1, ChurnedMembers: 1, AvgMonthlyFee: formula.Round2((29.99 + 79.99) / 2)},
	}
	if diff := cmp.Diff(want, overview.LocationStats); diff != "" {
		t.Fatalf("location stats mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, overview.SignupTrend, 2)
	assert.Equal(t, "2024-06", overview.SignupTrend[0].Month)
	assert.Equal(t, "2024-05", overview.SignupTrend[1].Month)
}

func TestOverviewEmptyStore(t *testing.T) {
	overview := newEngine().Overview(dataset.Snapshot{}, now)
	assert.Equal(t, 0.0, overview.RetentionRate)
	assert.Equal(t, 0.0, overview.ChurnRate)
	assert.NotNil(t, overview.LocationStats)
	assert.NotNil(t, overview.SignupTrend)
}

func TestChurnAnalysisGroupsAndOrdering(t *testing.T) {
	cancelled := func(m dataset.Member, d int) dataset.Member {
		m.CancellationDate = daysAgo(d)
		return m
	}
	pt := member("P", "Premium", "Uptown", 10, true)
	pt.HasPersonalTraining = true

	snap := dataset.Snapshot{Members: []dataset.Member{
		cancelled(member("1", "Basic", "Downtown", 400, false), 40),
		cancelled(member("2", "Basic", "Downtown", 200, false), 400),
		member("3", "Basic", "Downtown", 100, true),
		member("4", "Premium", "Uptown", 30, true),
		pt,
	}}

	churn := newEngine().ChurnAnalysis(snap, now)

	require.Len(t, churn.ChurnByMembership, 2)
	assert.Equal(t, "Basic", churn.ChurnByMembership[0].MembershipType)
	assert.Equal(t, 66.7, churn.ChurnByMembership[0].ChurnRate)
	assert.Equal(t, 0.0, churn.ChurnByMembership[1].ChurnRate)

	assert.Equal(t, "Downtown", churn.ChurnByLocation[0].Location)
	assert.Equal(t, 3, churn.ChurnByLocation[0].TotalMembers)

	groups := make([]string, 0, len(churn.ChurnByTenure))
	for _, g := range churn.ChurnByTenure {
		groups = append(groups, g.TenureGroup)
	}
	assert.Equal(t, []string{formula.TenureUnder3, formula.Tenure3To6, formula.Tenure6To12, formula.TenureOver12}, groups)

	require.Len(t, churn.PTImpact, 2)
	assert.False(t, churn.PTImpact[0].HasPT)
	assert.True(t, churn.PTImpact[1].HasPT)

	require.Len(t, churn.MonthlyTrend, 1)
	assert.Equal(t, formula.MonthKey(*daysAgo(40)), churn.MonthlyTrend[0].Month)
}

func TestAtRiskCapAndSummaryScope(t *testing.T) {
	var members []dataset.Member
	for i := 0; i < 105; i++ {
		members = append(members, member(fmt.Sprintf("N%03d", i), "Basic", "Downtown", 60, true))
	}
	members = append(members,
		member("R1", "Basic", "Downtown", 60, true),
		member("R2", "Basic", "Downtown", 60, true),
		member("R3", "Basic", "Downtown", 60, true),
	)
	snap := dataset.Snapshot{
		Members: members,
		Checkins: []dataset.Checkin{
			checkin("c1", "R1", now.AddDate(0, 0, -20)),
			checkin("c2", "R2", now.AddDate(0, 0, -3)),
			checkin("c3", "R3", now.AddDate(0, 0, -45)),
		},
	}
	e := newEngine()

	report := e.AtRiskMembers(snap, now)
	assert.Len(t, report.AtRiskMembers, AtRiskLimit)
	assert.Equal(t, "N000", report.AtRiskMembers[0].MemberID)
	assert.Equal(t, []domain.RiskCount{
		{RiskLevel: formula.RiskHigh, Count: 106},
		{RiskLevel: formula.RiskMedium, Count: 1},
		{RiskLevel: formula.RiskLow, Count: 1},
	}, report.RiskSummary)

	candidates := e.AtRiskCandidates(snap, now)
	require.Len(t, candidates, 107)
	assert.Equal(t, "R3", candidates[105].MemberID)
	assert.Equal(t, 45, *candidates[105].DaysSinceCheckin)
	assert.Equal(t, "R1", candidates[106].MemberID)
	assert.Equal(t, formula.RiskMedium, candidates[106].RiskLevel)
}

func TestEngagementPatternsAndDistribution(t *testing.T) {
	base := time.Date(2024, 6, 23, 9, 15, 0, 0, time.UTC) // Sunday
	var checkins []dataset.Checkin
	for i := 0; i < 12; i++ {
		checkins = append(checkins, checkin(fmt.Sprintf("h%d", i), "HIGH", base.Add(time.Duration(i)*time.Minute)))
	}
	checkins = append(checkins,
		checkin("l1", "LOW", base.AddDate(0, 0, 1).Add(9*time.Hour)),
		checkin("old", "LOW", now.AddDate(0, 0, -45)),
		checkin("orphan", "ghost", base),
	)
	snap := dataset.Snapshot{
		Members: []dataset.Member{
			member("HIGH", "Basic", "Downtown", 100, true),
			member("LOW", "Basic", "Downtown", 100, true),
			member("IDLE", "Basic", "Uptown", 100, true),
			member("GONE", "Basic", "Uptown", 100, false),
		},
		Checkins: checkins,
	}

	engagement := newEngine().Engagement(snap, now)

	assert.Equal(t, []domain.HourCount{{Hour: 9, CheckinCount: 13}, {Hour: 18, CheckinCount: 1}}, engagement.HourlyPattern)
	assert.Equal(t, []domain.DayCount{{DayOfWeek: "Sunday", CheckinCount: 13}, {DayOfWeek: "Monday", CheckinCount: 1}}, engagement.DailyPattern)

	require.Len(t, engagement.LocationEngagement, 2)
	downtown := engagement.LocationEngagement[0]
	assert.Equal(t, "Downtown", downtown.Location)
	assert.Equal(t, 2, downtown.ActiveMembers)
	assert.Equal(t, 13, downtown.TotalCheckins)
	require.NotNil(t, downtown.AvgVisitsPerMember)
	assert.Equal(t, 6.5, *downtown.AvgVisitsPerMember)

	assert.Equal(t, []domain.EngagementBucket{
		{EngagementLevel: formula.EngageInactive, MemberCount: 1},
		{EngagementLevel: formula.EngageLow, MemberCount: 1},
		{EngagementLevel: formula.EngageMedium, MemberCount: 0},
		{EngagementLevel: formula.EngageHigh, MemberCount: 1},
	}, engagement.EngagementDistribution)
}

func TestLifetimeValueSkipsUnknownCancellation(t *testing.T) {
	active := member("A", "Premium", "Downtown", 60, true)
	active.MonthlyFee = fee(30)
	churned := member("B", "Premium", "Downtown", 90, false)
	churned.MonthlyFee = fee(30)
	churned.CancellationDate = daysAgo(30)
	unknown := member("C", "Basic", "Downtown", 90, false)

	revenue := newEngine().Revenue(dataset.Snapshot{Members: []dataset.Member{active, churned, unknown}}, now)

	require.Len(t, revenue.LTVByMembership, 2)
	assert.Equal(t, "Premium", revenue.LTVByMembership[0].MembershipType)
	require.NotNil(t, revenue.LTVByMembership[0].AvgLTV)
	assert.Equal(t, 60.0, *revenue.LTVByMembership[0].AvgLTV)
	assert.Equal(t, "Basic", revenue.LTVByMembership[1].MembershipType)
	assert.Equal(t, 1, revenue.LTVByMembership[1].MemberCount)
	assert.Nil(t, revenue.LTVByMembership[1].AvgLTV)

	assert.Equal(t, 30.0, revenue.CurrentMRR)
	assert.Equal(t, 1, revenue.ActivePayingMembers)
}

func TestSalesFunnelRates(t *testing.T) {
	lead := func(source string, scheduled, completed, converted bool) dataset.Lead {
		return dataset.Lead{
			Date:              now.AddDate(0, -1, 0),
			LeadSource:        source,
			Location:          "Downtown",
			TourScheduled:     scheduled,
			TourCompleted:     completed,
			ConvertedToMember: converted,
		}
	}
	snap := dataset.Snapshot{
		Leads: []dataset.Lead{
			lead("Web", true, true, true),
			lead("Web", true, true, false),
			lead("Referral", true, false, false),
			lead("Referral", false, false, false),
		},
		Sales: []dataset.Sale{
			{ID: 1, Date: now, Amount: 10, Product: "Towel"},
			{ID: 2, Date: now, Amount: 15.5, Product: "Towel"},
		},
	}

	funnel := newEngine().SalesFunnel(snap, now)

	assert.Equal(t, domain.SalesTotals{TotalSales: 2, TotalRevenue: 25.5, TotalProducts: 1}, funnel.SalesTotals)
	assert.Equal(t, domain.FunnelOverview{
		TotalLeads:         4,
		ToursScheduled:     3,
		ToursCompleted:     2,
		Conversions:        1,
		TourScheduleRate:   75,
		TourCompletionRate: 66.7,
		ConversionRate:     50,
		OverallConversion:  25,
	}, funnel.FunnelOverview)
	require.Len(t, funnel.BySource, 2)
	assert.Equal(t, "Web", funnel.BySource[0].LeadSource)
	require.Len(t, funnel.MonthlyTrend, 1)
	assert.Equal(t, 25.0, funnel.MonthlyTrend[0].ConversionRate)

	empty := newEngine().SalesFunnel(dataset.Snapshot{}, now)
	assert.Equal(t, domain.FunnelOverview{}, empty.FunnelOverview)
}

func TestLocationComparison(t *testing.T) {
	pt := member("A", "Premium", "Downtown", 100, true)
	pt.HasPersonalTraining = true
	snap := dataset.Snapshot{
		Members: []dataset.Member{
			pt,
			member("B", "Basic", "Downtown", 100, false),
			member("C", "Basic", "Uptown", 100, true),
		},
		Checkins: []dataset.Checkin{
			checkin("1", "A", now.AddDate(0, 0, -1)),
			checkin("2", "A", now.AddDate(0, 0, -2)),
			checkin("3", "B", now.AddDate(0, 0, -2)),
			checkin("4", "ghost", now.AddDate(0, 0, -2)),
		},
		Sales: []dataset.Sale{
			{ID: 1, Date: now, Amount: 20, Location: "Uptown"},
			{ID: 2, Date: now, Amount: 25, Location: "Uptown"},
		},
	}

	cmpReport := newEngine().LocationComparison(snap, now)

	assert.Equal(t, []domain.LocationKeyMetrics{
		{Location: "Downtown", TotalMembers: 2, ActiveMembers: 1, RetentionRate: 50, MRR: 49.99, PTMembers: 1, PTAttachmentRate: 50},
		{Location: "Uptown", TotalMembers: 1, ActiveMembers: 1, RetentionRate: 100, MRR: 29.99},
	}, cmpReport.KeyMetrics)

	require.Len(t, cmpReport.Engagement, 2)
	assert.Equal(t, 2, cmpReport.Engagement[0].TotalCheckins)
	assert.Equal(t, 1, cmpReport.Engagement[0].UniqueVisitors)
	assert.Equal(t, 0, cmpReport.Engagement[1].TotalCheckins)
	require.NotNil(t, cmpReport.Engagement[1].AvgVisitsPerMember)
	assert.Equal(t, 0.0, *cmpReport.Engagement[1].AvgVisitsPerMember)

	assert.Equal(t, []domain.LocationSales{{Location: "Uptown", TotalRevenue: 45, Transactions: 2, AvgTransaction: 22.5}}, cmpReport.Revenue)
}
