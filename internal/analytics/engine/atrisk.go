package engine

import (
	"sort"
	"time"

	"github.com/smallbiznis/churnlytics/internal/analytics/domain"
	"github.com/smallbiznis/churnlytics/internal/analytics/formula"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
)

// AtRiskLimit caps the list returned by AtRiskMembers.
const AtRiskLimit = 100

// AtRiskMembers returns the capped at-risk list together with a risk
// summary over every active member.
func (e *Engine) AtRiskMembers(snap dataset.Snapshot, now time.Time) domain.AtRiskReport {
	rows := e.activeRiskRows(snap, now)

	counts := make(map[string]int, len(formula.RiskLevels))
	for _, row := range rows {
		counts[row.RiskLevel]++
	}
	summary := make([]domain.RiskCount, 0, len(formula.RiskLevels))
	for _, level := range formula.RiskLevels {
		summary = append(summary, domain.RiskCount{RiskLevel: level, Count: counts[level]})
	}

	candidates := filterAtRisk(rows)
	if len(candidates) > AtRiskLimit {
		candidates = candidates[:AtRiskLimit]
	}

	return domain.AtRiskReport{
		AtRiskMembers: candidates,
		RiskSummary:   summary,
	}
}

// AtRiskCandidates is the uncapped, sorted at-risk list.
func (e *Engine) AtRiskCandidates(snap dataset.Snapshot, now time.Time) []domain.AtRiskMember {
	return filterAtRisk(e.activeRiskRows(snap, now))
}

func (e *Engine) activeRiskRows(snap dataset.Snapshot, now time.Time) []domain.AtRiskMember {
	now = now.UTC()
	index := indexCheckins(snap.Checkins, now)

	rows := make([]domain.AtRiskMember, 0, len(snap.Members))
	for _, m := range snap.Members {
		if !m.IsActive {
			continue
		}
		row := domain.AtRiskMember{
			MemberID:            m.MemberID,
			Location:            m.Location,
			MembershipType:      m.MembershipType,
			HasPersonalTraining: m.HasPersonalTraining,
			MonthlyFee:          e.fees.Resolve(m),
		}

		if stats, ok := index[m.MemberID]; ok {
			last := stats.last
			days := formula.WholeDaysSince(last, now)
			row.TotalCheckins = stats.total
			row.LastCheckin = &last
			row.DaysSinceCheckin = &days
		}
		row.RiskLevel = formula.RiskLevel(row.DaysSinceCheckin)

		if joined, ok := m.Joined(); ok {
			months := formula.MonthsBetween(joined, now)
			rounded := formula.Round2(months)
			row.MonthsMember = &rounded
			if months != 0 {
				avg := formula.Round1(float64(row.TotalCheckins) / months)
				row.AvgCheckinsPerMonth = &avg
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// filterAtRisk keeps members with no check-in or more than 7 days since the
// last one, longest absence first; members who never checked in lead.
func filterAtRisk(rows []domain.AtRiskMember) []domain.AtRiskMember {
	out := make([]domain.AtRiskMember, 0, len(rows))
	for _, row := range rows {
		if formula.AtRisk(row.DaysSinceCheckin) {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DaysSinceCheckin, out[j].DaysSinceCheckin
		switch {
		case a == nil && b == nil:
			return out[i].MemberID < out[j].MemberID
		case a == nil:
			return true
		case b == nil:
			return false
		case *a != *b:
			return *a > *b
		default:
			return out[i].MemberID < out[j].MemberID
		}
	})
	return out
}
