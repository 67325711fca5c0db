// Package engine computes every report as a pure function of a dataset
// snapshot and a reference time. Nothing here reads a clock or a database.
package engine

import (
	"sort"
	"time"

	"github.com/smallbiznis/churnlytics/internal/config"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
)

type Engine struct {
	fees dataset.FeeSchedule
}

func New(fees dataset.FeeSchedule) *Engine {
	return &Engine{fees: fees}
}

// Fees exposes the schedule used to resolve missing monthly fees.
func (e *Engine) Fees() dataset.FeeSchedule {
	return e.fees
}

type checkinStats struct {
	total  int
	window int
	last   time.Time
}

// indexCheckins aggregates check-ins per member. window counts check-ins at
// or after windowStart.
func indexCheckins(checkins []dataset.Checkin, windowStart time.Time) map[string]*checkinStats {
	index := make(map[string]*checkinStats)
	for _, c := range checkins {
		stats, ok := index[c.MemberID]
		if !ok {
			stats = &checkinStats{}
			index[c.MemberID] = stats
		}
		at := c.CheckinDate.UTC()
		stats.total++
		if !at.Before(windowStart) {
			stats.window++
		}
		if stats.total == 1 || at.After(stats.last) {
			stats.last = at
		}
	}
	return index
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type churnCounter struct {
	total   int
	churned int
}

func (c *churnCounter) add(m dataset.Member) {
	c.total++
	if m.Churned() {
		c.churned++
	}
}

type conversionCounter struct {
	leads       int
	conversions int
}

func (c *conversionCounter) add(l dataset.Lead) {
	c.leads++
	if l.ConvertedToMember {
		c.conversions++
	}
}

type salesCounter struct {
	revenue float64
	count   int
}

func (c *salesCounter) add(s dataset.Sale) {
	c.revenue += s.Amount
	c.count++
}

func counterFor[V any](m map[string]*V, key string) *V {
	v, ok := m[key]
	if !ok {
		v = new(V)
		m[key] = v
	}
	return v
}

// FromConfig builds an engine from the current membership fee defaults.
func FromConfig(cfg config.MembershipConfig) *Engine {
	return New(dataset.NewFeeSchedule(cfg.DefaultFees, cfg.FallbackFee))
}
