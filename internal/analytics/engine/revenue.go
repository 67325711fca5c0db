package engine

import (
	"sort"
	"time"

	"github.com/smallbiznis/churnlytics/internal/analytics/domain"
	"github.com/smallbiznis/churnlytics/internal/analytics/formula"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
)

type ltvAgg struct {
	members int
	sum     float64
	valued  int
}

func (e *Engine) Revenue(snap dataset.Snapshot, now time.Time) domain.Revenue {
	now = now.UTC()
	trendStart := formula.WindowStartMonths(now, 12)

	monthly := make(map[string]*salesCounter)
	byType := make(map[string]*salesCounter)
	byLocation := make(map[string]*salesCounter)
	for _, s := range snap.Sales {
		if formula.InWindow(s.Date.UTC(), trendStart) {
			counterFor(monthly, formula.MonthKey(s.Date)).add(s)
		}
		counterFor(byType, s.Type).add(s)
		counterFor(byLocation, s.Location).add(s)
	}

	out := domain.Revenue{
		MonthlyRevenueTrend: make([]domain.MonthlyRevenue, 0, len(monthly)),
		RevenueByType:       make([]domain.TypeRevenue, 0, len(byType)),
		RevenueByLocation:   make([]domain.LocationRevenue, 0, len(byLocation)),
	}
	for _, month := range sortedKeys(monthly) {
		c := monthly[month]
		out.MonthlyRevenueTrend = append(out.MonthlyRevenueTrend, domain.MonthlyRevenue{
			Month:            month,
			Revenue:          formula.Round2(c.revenue),
			TransactionCount: c.count,
		})
	}
	for _, name := range sortedKeys(byType) {
		c := byType[name]
		out.RevenueByType = append(out.RevenueByType, domain.TypeRevenue{
			Type:             name,
			TotalRevenue:     formula.Round2(c.revenue),
			TransactionCount: c.count,
			AvgTransaction:   formula.Mean(c.revenue, c.count),
		})
	}
	for _, name := range sortedKeys(byLocation) {
		c := byLocation[name]
		out.RevenueByLocation = append(out.RevenueByLocation, domain.LocationRevenue{
			Location:         name,
			TotalRevenue:     formula.Round2(c.revenue),
			TransactionCount: c.count,
		})
	}

	ltv := make(map[string]*ltvAgg)
	var mrr float64
	for _, m := range snap.Members {
		agg := counterFor(ltv, m.MembershipType)
		agg.members++
		if value, ok := e.lifetimeValue(m, now); ok {
			agg.sum += value
			agg.valued++
		}
		if m.IsActive {
			mrr += e.fees.Resolve(m)
			out.ActivePayingMembers++
		}
	}
	out.CurrentMRR = formula.Round2(mrr)

	out.LTVByMembership = make([]domain.MembershipLTV, 0, len(ltv))
	for _, name := range sortedKeys(ltv) {
		agg := ltv[name]
		row := domain.MembershipLTV{MembershipType: name, MemberCount: agg.members}
		if agg.valued > 0 {
			avg := formula.Round2(agg.sum / float64(agg.valued))
			row.AvgLTV = &avg
		}
		out.LTVByMembership = append(out.LTVByMembership, row)
	}
	sort.SliceStable(out.LTVByMembership, func(i, j int) bool {
		a, b := out.LTVByMembership[i].AvgLTV, out.LTVByMembership[j].AvgLTV
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})

	return out
}

// lifetimeValue is fee x months of membership: up to now for active members,
// up to the cancellation date for churned ones. Churned members without a
// cancellation date, and members without a join date, have no value.
func (e *Engine) lifetimeValue(m dataset.Member, now time.Time) (float64, bool) {
	joined, ok := m.Joined()
	if !ok {
		return 0, false
	}
	end := now
	if m.Churned() {
		if m.CancellationDate == nil {
			return 0, false
		}
		end = m.CancellationDate.UTC()
	}
	return e.fees.Resolve(m) * formula.MonthsBetween(joined, end), true
}
