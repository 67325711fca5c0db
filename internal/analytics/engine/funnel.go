package engine

import (
	"sort"
	"time"

	"github.com/smallbiznis/churnlytics/internal/analytics/domain"
	"github.com/smallbiznis/churnlytics/internal/analytics/formula"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
)

func (e *Engine) SalesFunnel(snap dataset.Snapshot, now time.Time) domain.SalesFunnel {
	now = now.UTC()
	trendStart := formula.WindowStartMonths(now, 6)

	var out domain.SalesFunnel

	products := make(map[string]struct{})
	var revenue float64
	for _, s := range snap.Sales {
		revenue += s.Amount
		products[s.Product] = struct{}{}
	}
	out.SalesTotals = domain.SalesTotals{
		TotalSales:    len(snap.Sales),
		TotalRevenue:  formula.Round2(revenue),
		TotalProducts: len(products),
	}

	bySource := make(map[string]*conversionCounter)
	byLocation := make(map[string]*conversionCounter)
	monthly := make(map[string]*conversionCounter)
	f := &out.FunnelOverview
	for _, l := range snap.Leads {
		f.TotalLeads++
		if l.TourScheduled {
			f.ToursScheduled++
		}
		if l.TourCompleted {
			f.ToursCompleted++
		}
		if l.ConvertedToMember {
			f.Conversions++
		}
		counterFor(bySource, l.LeadSource).add(l)
		counterFor(byLocation, l.Location).add(l)
		if formula.InWindow(l.Date.UTC(), trendStart) {
			counterFor(monthly, formula.MonthKey(l.Date)).add(l)
		}
	}
	f.TourScheduleRate = formula.Percent(f.ToursScheduled, f.TotalLeads)
	f.TourCompletionRate = formula.Percent(f.ToursCompleted, f.ToursScheduled)
	f.ConversionRate = formula.Percent(f.Conversions, f.ToursCompleted)
	f.OverallConversion = formula.Percent(f.Conversions, f.TotalLeads)

	out.BySource = make([]domain.SourcePerformance, 0, len(bySource))
	for _, name := range sortedKeys(bySource) {
		c := bySource[name]
		out.BySource = append(out.BySource, domain.SourcePerformance{
			LeadSource:     name,
			Leads:          c.leads,
			Conversions:    c.conversions,
			ConversionRate: formula.Percent(c.conversions, c.leads),
		})
	}
	sort.SliceStable(out.BySource, func(i, j int) bool {
		return out.BySource[i].ConversionRate > out.BySource[j].ConversionRate
	})

	out.ByLocation = make([]domain.LocationPerformance, 0, len(byLocation))
	for _, name := range sortedKeys(byLocation) {
		c := byLocation[name]
		out.ByLocation = append(out.ByLocation, domain.LocationPerformance{
			Location:       name,
			Leads:          c.leads,
			Conversions:    c.conversions,
			ConversionRate: formula.Percent(c.conversions, c.leads),
		})
	}

	out.MonthlyTrend = make([]domain.FunnelMonth, 0, len(monthly))
	for _, month := range sortedKeys(monthly) {
		c := monthly[month]
		out.MonthlyTrend = append(out.MonthlyTrend, domain.FunnelMonth{
			Month:          month,
			Leads:          c.leads,
			Conversions:    c.conversions,
			ConversionRate: formula.Percent(c.conversions, c.leads),
		})
	}

	return out
}
