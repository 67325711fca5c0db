package engine

import (
	"time"

	"github.com/smallbiznis/churnlytics/internal/analytics/domain"
	"github.com/smallbiznis/churnlytics/internal/analytics/formula"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
)

type visitAgg struct {
	members  int
	checkins int
	visitors int
}

func (e *Engine) Engagement(snap dataset.Snapshot, now time.Time) domain.Engagement {
	now = now.UTC()
	windowStart := formula.WindowStartDays(now, 30)

	var hours [24]int
	var days [7]int
	for _, c := range snap.Checkins {
		at := c.CheckinDate.UTC()
		if !formula.InWindow(at, windowStart) {
			continue
		}
		hours[at.Hour()]++
		days[int(at.Weekday())]++
	}

	out := domain.Engagement{
		HourlyPattern:          make([]domain.HourCount, 0, 24),
		DailyPattern:           make([]domain.DayCount, 0, 7),
		EngagementDistribution: make([]domain.EngagementBucket, 0, len(formula.EngagementLevels)),
	}
	for hour, count := range hours {
		if count > 0 {
			out.HourlyPattern = append(out.HourlyPattern, domain.HourCount{Hour: hour, CheckinCount: count})
		}
	}
	for day, count := range days {
		if count > 0 {
			out.DailyPattern = append(out.DailyPattern, domain.DayCount{DayOfWeek: formula.WeekdayName(day), CheckinCount: count})
		}
	}

	locations := e.activeVisits(snap, windowStart)
	out.LocationEngagement = make([]domain.LocationEngagement, 0, len(locations))
	for _, name := range sortedKeys(locations) {
		loc := locations[name]
		out.LocationEngagement = append(out.LocationEngagement, domain.LocationEngagement{
			Location:           name,
			ActiveMembers:      loc.members,
			TotalCheckins:      loc.checkins,
			AvgVisitsPerMember: formula.PerMember(loc.checkins, loc.members),
		})
	}

	index := indexCheckins(snap.Checkins, windowStart)
	levels := make(map[string]int, len(formula.EngagementLevels))
	for _, m := range snap.Members {
		if !m.IsActive {
			continue
		}
		visits := 0
		if stats, ok := index[m.MemberID]; ok {
			visits = stats.window
		}
		levels[formula.EngagementLevel(visits)]++
	}
	for _, level := range formula.EngagementLevels {
		out.EngagementDistribution = append(out.EngagementDistribution, domain.EngagementBucket{
			EngagementLevel: level,
			MemberCount:     levels[level],
		})
	}

	return out
}

// activeVisits groups active members by location with their check-ins in
// the window. Check-ins of unknown members never join a location.
func (e *Engine) activeVisits(snap dataset.Snapshot, windowStart time.Time) map[string]*visitAgg {
	index := indexCheckins(snap.Checkins, windowStart)
	locations := make(map[string]*visitAgg)
	for _, m := range snap.Members {
		if !m.IsActive {
			continue
		}
		loc := counterFor(locations, m.Location)
		loc.members++
		if stats, ok := index[m.MemberID]; ok && stats.window > 0 {
			loc.checkins += stats.window
			loc.visitors++
		}
	}
	return locations
}
