package engine

import (
	"time"

	"github.com/smallbiznis/churnlytics/internal/analytics/domain"
	"github.com/smallbiznis/churnlytics/internal/analytics/formula"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
)

type memberLocationAgg struct {
	total  int
	active int
	mrr    float64
	pt     int
}

func (e *Engine) LocationComparison(snap dataset.Snapshot, now time.Time) domain.LocationComparison {
	now = now.UTC()

	members := make(map[string]*memberLocationAgg)
	for _, m := range snap.Members {
		loc := counterFor(members, m.Location)
		loc.total++
		if m.IsActive {
			loc.active++
			loc.mrr += e.fees.Resolve(m)
		}
		if m.HasPersonalTraining {
			loc.pt++
		}
	}

	out := domain.LocationComparison{
		KeyMetrics: make([]domain.LocationKeyMetrics, 0, len(members)),
	}
	for _, name := range sortedKeys(members) {
		loc := members[name]
		out.KeyMetrics = append(out.KeyMetrics, domain.LocationKeyMetrics{
			Location:         name,
			TotalMembers:     loc.total,
			ActiveMembers:    loc.active,
			RetentionRate:    formula.Percent(loc.active, loc.total),
			MRR:              formula.Round2(loc.mrr),
			PTMembers:        loc.pt,
			PTAttachmentRate: formula.Percent(loc.pt, loc.total),
		})
	}

	visits := e.activeVisits(snap, formula.WindowStartDays(now, 30))
	out.Engagement = make([]domain.LocationCheckins, 0, len(visits))
	for _, name := range sortedKeys(visits) {
		loc := visits[name]
		out.Engagement = append(out.Engagement, domain.LocationCheckins{
			Location:           name,
			TotalCheckins:      loc.checkins,
			UniqueVisitors:     loc.visitors,
			AvgVisitsPerMember: formula.PerMember(loc.checkins, loc.members),
		})
	}

	sales := make(map[string]*salesCounter)
	for _, s := range snap.Sales {
		counterFor(sales, s.Location).add(s)
	}
	out.Revenue = make([]domain.LocationSales, 0, len(sales))
	for _, name := range sortedKeys(sales) {
		c := sales[name]
		out.Revenue = append(out.Revenue, domain.LocationSales{
			Location:       name,
			TotalRevenue:   formula.Round2(c.revenue),
			Transactions:   c.count,
			AvgTransaction: formula.Mean(c.revenue, c.count),
		})
	}

	return out
}
