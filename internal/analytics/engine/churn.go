package engine

import (
	"sort"
	"time"

	"github.com/smallbiznis/churnlytics/internal/analytics/domain"
	"github.com/smallbiznis/churnlytics/internal/analytics/formula"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
)

func (e *Engine) ChurnAnalysis(snap dataset.Snapshot, now time.Time) domain.ChurnAnalysis {
	now = now.UTC()
	trendStart := formula.WindowStartMonths(now, 12)

	byType := make(map[string]*churnCounter)
	byLocation := make(map[string]*churnCounter)
	byTenure := make(map[string]*churnCounter)
	var withPT, withoutPT churnCounter
	cancellations := make(map[string]int)

	for _, m := range snap.Members {
		counterFor(byType, m.MembershipType).add(m)
		counterFor(byLocation, m.Location).add(m)
		if m.HasPersonalTraining {
			withPT.add(m)
		} else {
			withoutPT.add(m)
		}
		if joined, ok := m.Joined(); ok {
			counterFor(byTenure, formula.TenureBucket(formula.TenureMonths(joined, now))).add(m)
		}
		if m.CancellationDate != nil && formula.InWindow(m.CancellationDate.UTC(), trendStart) {
			cancellations[formula.MonthKey(*m.CancellationDate)]++
		}
	}

	out := domain.ChurnAnalysis{
		ChurnByMembership: make([]domain.MembershipChurn, 0, len(byType)),
		ChurnByLocation:   make([]domain.LocationChurn, 0, len(byLocation)),
		ChurnByTenure:     make([]domain.TenureChurn, 0, len(formula.TenureGroups)),
		PTImpact:          make([]domain.PTChurn, 0, 2),
		MonthlyTrend:      make([]domain.ChurnMonth, 0, len(cancellations)),
	}

	for _, name := range sortedKeys(byType) {
		c := byType[name]
		out.ChurnByMembership = append(out.ChurnByMembership, domain.MembershipChurn{
			MembershipType: name,
			Total:          c.total,
			Churned:        c.churned,
			ChurnRate:      formula.Percent(c.churned, c.total),
		})
	}
	sort.SliceStable(out.ChurnByMembership, func(i, j int) bool {
		return out.ChurnByMembership[i].ChurnRate > out.ChurnByMembership[j].ChurnRate
	})

	for _, name := range sortedKeys(byLocation) {
		c := byLocation[name]
		out.ChurnByLocation = append(out.ChurnByLocation, domain.LocationChurn{
			Location:     name,
			TotalMembers: c.total,
			Churned:      c.churned,
			ChurnRate:    formula.Percent(c.churned, c.total),
		})
	}
	sort.SliceStable(out.ChurnByLocation, func(i, j int) bool {
		return out.ChurnByLocation[i].TotalMembers > out.ChurnByLocation[j].TotalMembers
	})

	for _, group := range formula.TenureGroups {
		c, ok := byTenure[group]
		if !ok {
			continue
		}
		out.ChurnByTenure = append(out.ChurnByTenure, domain.TenureChurn{
			TenureGroup: group,
			Total:       c.total,
			Churned:     c.churned,
			ChurnRate:   formula.Percent(c.churned, c.total),
		})
	}

	for _, group := range []struct {
		hasPT bool
		c     churnCounter
	}{{false, withoutPT}, {true, withPT}} {
		if group.c.total == 0 {
			continue
		}
		out.PTImpact = append(out.PTImpact, domain.PTChurn{
			HasPT:     group.hasPT,
			Total:     group.c.total,
			Churned:   group.c.churned,
			ChurnRate: formula.Percent(group.c.churned, group.c.total),
		})
	}

	for _, month := range sortedKeys(cancellations) {
		out.MonthlyTrend = append(out.MonthlyTrend, domain.ChurnMonth{Month: month, ChurnedCount: cancellations[month]})
	}

	return out
}
