package engine

import (
	"sort"
	"time"

	"github.com/smallbiznis/churnlytics/internal/analytics/domain"
	"github.com/smallbiznis/churnlytics/internal/analytics/formula"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
)

const signupTrendMonths = 6

type locationAgg struct {
	total   int
	active  int
	churned int
	tours   int
	fees    float64
}

func (e *Engine) Overview(snap dataset.Snapshot, now time.Time) domain.Overview {
	now = now.UTC()
	churnStart := formula.WindowStartDays(now, 30)
	signupStart := formula.WindowStartMonths(now, signupTrendMonths)

	var (
		out          domain.Overview
		mrr          float64
		recentChurns int
		locations    = make(map[string]*locationAgg)
		signups      = make(map[string]int)
	)

	for _, m := range snap.Members {
		out.TotalMembers++
		fee := e.fees.Resolve(m)
		loc := counterFor(locations, m.Location)
		loc.total++
		loc.fees += fee
		if m.TourScheduled != nil && *m.TourScheduled {
			loc.tours++
		}

		if m.IsActive {
			out.ActiveMembers++
			loc.active++
			mrr += fee
			if m.CancellationDate != nil {
				out.DataQuality.ActiveWithCancellation++
			}
		} else {
			out.ChurnedMembers++
			loc.churned++
			if m.CancellationDate == nil {
				out.DataQuality.ChurnedWithoutCancellation++
			}
		}

		if m.CancellationDate != nil && formula.InWindow(m.CancellationDate.UTC(), churnStart) {
			recentChurns++
		}

		joined, ok := m.Joined()
		if !ok {
			out.DataQuality.MembersWithoutJoinDate++
			continue
		}
		if formula.InWindow(joined, signupStart) {
			signups[formula.MonthKey(joined)]++
		}
	}

	out.MRR = formula.Round2(mrr)
	out.RetentionRate = formula.Percent(out.ActiveMembers, out.TotalMembers)
	out.ChurnRate = formula.Percent(recentChurns, out.ActiveMembers)

	visitors := make(map[string]struct{})
	for _, c := range snap.Checkins {
		visitors[c.MemberID] = struct{}{}
	}
	out.TotalCheckins = len(snap.Checkins)
	out.UniqueMembersCheckedIn = len(visitors)

	out.LocationStats = make([]domain.LocationStat, 0, len(locations))
	for _, name := range sortedKeys(locations) {
		loc := locations[name]
		out.LocationStats = append(out.LocationStats, domain.LocationStat{
			Location:       name,
			TotalMembers:   loc.total,
			ActiveMembers:  loc.active,
			ChurnedMembers: loc.churned,
			ToursScheduled: loc.tours,
			AvgMonthlyFee:  formula.Mean(loc.fees, loc.total),
		})
	}

	months := sortedKeys(signups)
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	if len(months) > signupTrendMonths {
		months = months[:signupTrendMonths]
	}
	out.SignupTrend = make([]domain.SignupMonth, 0, len(months))
	for _, month := range months {
		out.SignupTrend = append(out.SignupTrend, domain.SignupMonth{Month: month, Signups: signups[month]})
	}

	return out
}
