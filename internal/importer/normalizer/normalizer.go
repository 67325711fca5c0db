// Package normalizer maps uploaded batches onto the canonical dataset
// columns and converts them into typed rows.
package normalizer

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
	"github.com/smallbiznis/churnlytics/internal/importer/domain"
	"github.com/smallbiznis/churnlytics/pkg/apperror"
)

// Members canonicalises a member batch. Exactly one of join_date and
// signup_date is copied into the other; absent columns get defaults.
func Members(batch domain.Batch, fees dataset.FeeSchedule) (domain.Batch, error) {
	hasJoin, hasSignup := batch.Has("join_date"), batch.Has("signup_date")
	switch {
	case hasJoin && !hasSignup:
		batch = batch.Copy("join_date", "signup_date")
	case hasSignup && !hasJoin:
		batch = batch.Copy("signup_date", "join_date")
	case !hasJoin && !hasSignup:
		return domain.Batch{}, apperror.Validation("missing required column: join_date or signup_date")
	}

	if err := requireColumns(batch, "member_id", "membership_type", "location"); err != nil {
		return domain.Batch{}, err
	}

	if !batch.Has("has_personal_training") {
		batch = batch.Constant("has_personal_training", "0")
	}
	if !batch.Has("is_active") {
		batch = batch.Constant("is_active", "1")
	}
	if !batch.Has("monthly_fee") {
		typeIdx := batch.Index("membership_type")
		batch = batch.WithColumn("monthly_fee", func(row []string) string {
			return formatFee(fees.ForType(row[typeIdx]))
		})
	}
	return batch, nil
}

// Checkins canonicalises a check-in batch, accepting checkin_datetime as an
// alias of checkin_date.
func Checkins(batch domain.Batch) (domain.Batch, error) {
	if batch.Has("checkin_datetime") && !batch.Has("checkin_date") {
		batch = batch.Copy("checkin_datetime", "checkin_date")
	}
	if err := requireColumns(batch, "member_id", "checkin_date", "location"); err != nil {
		return domain.Batch{}, err
	}
	return batch, nil
}

func Sales(batch domain.Batch) (domain.Batch, error) {
	if err := requireColumns(batch, "date", "amount"); err != nil {
		return domain.Batch{}, err
	}
	return batch, nil
}

func Leads(batch domain.Batch) (domain.Batch, error) {
	if err := requireColumns(batch, "date"); err != nil {
		return domain.Batch{}, err
	}
	return batch, nil
}

func ToMembers(batch domain.Batch) ([]dataset.Member, error) {
	return convert(batch, func(r row) (dataset.Member, error) {
		var (
			m   dataset.Member
			err error
		)
		if m.MemberID, err = r.required("member_id"); err != nil {
			return m, err
		}
		m.MembershipType = r.str("membership_type")
		m.Location = r.str("location")
		if m.JoinDate, err = r.date("join_date"); err != nil {
			return m, err
		}
		if m.SignupDate, err = r.date("signup_date"); err != nil {
			return m, err
		}
		if m.JoinDate == nil && m.SignupDate == nil {
			return m, apperror.Validation("row %d: join_date or signup_date is required", r.line)
		}
		if m.MonthlyFee, err = r.float("monthly_fee"); err != nil {
			return m, err
		}
		if m.IsActive, err = r.boolean("is_active", true); err != nil {
			return m, err
		}
		if m.HasPersonalTraining, err = r.boolean("has_personal_training", false); err != nil {
			return m, err
		}
		if m.CancellationDate, err = r.date("cancellation_date"); err != nil {
			return m, err
		}
		if m.TourScheduled, err = r.optionalBool("tour_scheduled"); err != nil {
			return m, err
		}
		return m, nil
	})
}

// ToCheckins converts check-in rows; rows without a checkin_id get a
// generated one.
func ToCheckins(batch domain.Batch, node *snowflake.Node) ([]dataset.Checkin, error) {
	return convert(batch, func(r row) (dataset.Checkin, error) {
		var (
			c   dataset.Checkin
			err error
		)
		c.CheckinID = r.str("checkin_id")
		if c.CheckinID == "" {
			c.CheckinID = node.Generate().String()
		}
		if c.MemberID, err = r.required("member_id"); err != nil {
			return c, err
		}
		if c.CheckinDate, err = r.requiredDate("checkin_date"); err != nil {
			return c, err
		}
		c.Location = r.str("location")
		if c.DurationMinutes, err = r.integer("checkin_duration_minutes"); err != nil {
			return c, err
		}
		return c, nil
	})
}

func ToSales(batch domain.Batch, node *snowflake.Node) ([]dataset.Sale, error) {
	return convert(batch, func(r row) (dataset.Sale, error) {
		s := dataset.Sale{
			ID:       node.Generate(),
			Type:     r.str("type"),
			Location: r.str("location"),
			Product:  r.str("product"),
		}
		var err error
		if s.Date, err = r.requiredDate("date"); err != nil {
			return s, err
		}
		if _, err = r.required("amount"); err != nil {
			return s, err
		}
		amount, err := r.float("amount")
		if err != nil {
			return s, err
		}
		s.Amount = *amount
		return s, nil
	})
}

func ToLeads(batch domain.Batch, node *snowflake.Node) ([]dataset.Lead, error) {
	return convert(batch, func(r row) (dataset.Lead, error) {
		l := dataset.Lead{
			ID:         node.Generate(),
			LeadSource: r.str("lead_source"),
			Location:   r.str("location"),
		}
		var err error
		if l.Date, err = r.requiredDate("date"); err != nil {
			return l, err
		}
		if l.TourScheduled, err = r.boolean("tour_scheduled", false); err != nil {
			return l, err
		}
		if l.TourCompleted, err = r.boolean("tour_completed", false); err != nil {
			return l, err
		}
		if l.ConvertedToMember, err = r.boolean("converted_to_member", false); err != nil {
			return l, err
		}
		return l, nil
	})
}

func convert[T any](batch domain.Batch, fn func(row) (T, error)) ([]T, error) {
	out := make([]T, 0, len(batch.Rows))
	for i, cells := range batch.Rows {
		item, err := fn(row{batch: batch, cells: cells, line: domain.RowNumber(i)})
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func requireColumns(batch domain.Batch, columns ...string) error {
	var missing []string
	for _, col := range columns {
		if !batch.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return apperror.Validation("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
