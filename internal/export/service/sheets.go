package service

import (
	"time"

	"github.com/smallbiznis/churnlytics/internal/analytics/engine"
	"github.com/smallbiznis/churnlytics/internal/analytics/formula"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
	"github.com/smallbiznis/churnlytics/internal/export/workbook"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

var memberHeader = []string{
	"member_id", "membership_type", "location", "join_date", "signup_date", "monthly_fee",
	"has_personal_training", "is_active", "cancellation_date", "tour_scheduled",
}

func overviewSheets(snap dataset.Snapshot) []workbook.Sheet {
	active := 0
	rows := make([][]any, 0, len(snap.Members))
	for _, m := range snap.Members {
		if m.IsActive {
			active++
		}
		rows = append(rows, memberRow(m, floatCell(m.MonthlyFee)))
	}
	return []workbook.Sheet{
		{Name: "Members", Header: memberHeader, Rows: rows},
		{Name: "Summary", Header: []string{"Metric", "Value"}, Rows: [][]any{
			{"Total Members", len(snap.Members)},
			{"Active Members", active},
			{"Total Check-ins", len(snap.Checkins)},
		}},
	}
}

// atRiskSheets lists every at-risk candidate with the engine's risk level and
// totals count and monthly fee per level.
func atRiskSheets(e *engine.Engine, snap dataset.Snapshot, now time.Time) []workbook.Sheet {
	joined := make(map[string]*time.Time, len(snap.Members))
	for _, m := range snap.Members {
		if at, ok := m.Joined(); ok {
			joined[m.MemberID] = &at
		}
	}

	candidates := e.AtRiskCandidates(snap, now)
	type levelTotal struct {
		members int
		revenue float64
	}
	totals := make(map[string]*levelTotal, len(formula.RiskLevels))

	rows := make([][]any, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []any{
			c.MemberID,
			c.MembershipType,
			c.Location,
			dateCell(joined[c.MemberID], dateLayout),
			c.MonthlyFee,
			dateCell(c.LastCheckin, dateTimeLayout),
			intCell(c.DaysSinceCheckin),
			c.TotalCheckins,
			c.RiskLevel,
		})
		t, ok := totals[c.RiskLevel]
		if !ok {
			t = &levelTotal{}
			totals[c.RiskLevel] = t
		}
		t.members++
		t.revenue += c.MonthlyFee
	}

	summary := make([][]any, 0, len(totals))
	for _, level := range formula.RiskLevels {
		if t, ok := totals[level]; ok {
			summary = append(summary, []any{level, t.members, formula.Round2(t.revenue)})
		}
	}

	return []workbook.Sheet{
		{
			Name: "At-Risk Members",
			Header: []string{
				"member_id", "membership_type", "location", "join_date", "monthly_fee",
				"last_checkin", "days_since_checkin", "total_checkins", "risk_level",
			},
			Rows: rows,
		},
		{Name: "Summary", Header: []string{"Risk Level", "Member Count", "Revenue at Risk"}, Rows: summary},
	}
}

func churnSheets(snap dataset.Snapshot, now time.Time) []workbook.Sheet {
	type visits struct {
		total int
		last  time.Time
	}
	byMember := make(map[string]*visits)
	for _, c := range snap.Checkins {
		v, ok := byMember[c.MemberID]
		if !ok {
			v = &visits{}
			byMember[c.MemberID] = v
		}
		at := c.CheckinDate.UTC()
		v.total++
		if v.total == 1 || at.After(v.last) {
			v.last = at
		}
	}

	byType := make(map[string]int)
	byLocation := make(map[string]int)
	rows := make([][]any, 0)
	for _, m := range snap.Members {
		if !m.Churned() {
			continue
		}
		byType[m.MembershipType]++
		byLocation[m.Location]++

		row := memberRow(m, floatCell(m.MonthlyFee))
		var last *time.Time
		total := 0
		if v, ok := byMember[m.MemberID]; ok {
			total = v.total
			last = &v.last
		}
		var tenure any
		if joined, ok := m.Joined(); ok {
			tenure = formula.TenureBucket(formula.TenureMonths(joined, now))
		}
		rows = append(rows, append(row, total, dateCell(last, dateTimeLayout), tenure))
	}

	header := append(append([]string{}, memberHeader...), "total_checkins", "last_checkin", "tenure_group")
	return []workbook.Sheet{
		{Name: "Churned Members", Header: header, Rows: rows},
		{Name: "Churn by Type", Header: []string{"membership_type", "churned_count"}, Rows: countRows(byType)},
		{Name: "Churn by Location", Header: []string{"location", "churned_count"}, Rows: countRows(byLocation)},
	}
}

func revenueSheets(e *engine.Engine, snap dataset.Snapshot) []workbook.Sheet {
	type feeTotal struct {
		sum   float64
		count int
	}
	byType := make(map[string]*feeTotal)
	byLocation := make(map[string]*feeTotal)
	add := func(m map[string]*feeTotal, key string, fee float64) {
		t, ok := m[key]
		if !ok {
			t = &feeTotal{}
			m[key] = t
		}
		t.sum += fee
		t.count++
	}

	var mrr float64
	active := 0
	rows := make([][]any, 0)
	for _, m := range snap.Members {
		if !m.IsActive {
			continue
		}
		fee := e.Fees().Resolve(m)
		mrr += fee
		active++
		add(byType, m.MembershipType, fee)
		add(byLocation, m.Location, fee)
		rows = append(rows, memberRow(m, fee))
	}

	group := func(m map[string]*feeTotal) [][]any {
		out := make([][]any, 0, len(m))
		for _, key := range sortedKeys(m) {
			t := m[key]
			out = append(out, []any{key, formula.Round2(t.sum), formula.Mean(t.sum, t.count), t.count})
		}
		return out
	}

	return []workbook.Sheet{
		{Name: "Active Members", Header: memberHeader, Rows: rows},
		{Name: "Revenue by Type", Header: []string{"Membership Type", "Total Revenue", "Avg Revenue", "Member Count"}, Rows: group(byType)},
		{Name: "Revenue by Location", Header: []string{"Location", "Total Revenue", "Avg Revenue", "Member Count"}, Rows: group(byLocation)},
		{Name: "Summary", Header: []string{"Metric", "Value"}, Rows: [][]any{
			{"Total MRR", formula.Round2(mrr)},
			{"Active Members", active},
			{"Avg Revenue/Member", formula.Mean(mrr, active)},
		}},
	}
}

func memberRow(m dataset.Member, fee any) []any {
	var tour any
	if m.TourScheduled != nil {
		tour = boolCell(*m.TourScheduled)
	}
	return []any{
		m.MemberID,
		m.MembershipType,
		m.Location,
		dateCell(m.JoinDate, dateLayout),
		dateCell(m.SignupDate, dateLayout),
		fee,
		boolCell(m.HasPersonalTraining),
		boolCell(m.IsActive),
		dateCell(m.CancellationDate, dateLayout),
		tour,
	}
}

func countRows(counts map[string]int) [][]any {
	out := make([][]any, 0, len(counts))
	for _, key := range sortedKeys(counts) {
		out = append(out, []any{key, counts[key]})
	}
	return out
}

func dateCell(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(layout)
}

func floatCell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func intCell(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolCell(v bool) int {
	if v {
		return 1
	}
	return 0
}
