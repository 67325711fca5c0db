package normalizer

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
	"github.com/smallbiznis/churnlytics/internal/importer/domain"
	"github.com/smallbiznis/churnlytics/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fees = dataset.NewFeeSchedule(map[string]float64{
	"Premium": 49.99,
	"Basic":   29.99,
	"Family":  79.99,
	"Monthly": 39.99,
	"Annual":  399.99,
}, 39.99)

func newNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func TestMembersSynthesizesSignupDate(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"member_id", "membership_type", "location", "join_date"},
		Rows:    [][]string{{"M1", "Premium", "Downtown", "2024-01-15"}},
	}

	out, err := Members(batch, fees)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", out.Cell(out.Rows[0], "signup_date"))
	assert.Equal(t, "1", out.Cell(out.Rows[0], "is_active"))
	assert.Equal(t, "0", out.Cell(out.Rows[0], "has_personal_training"))
	assert.Equal(t, "49.99", out.Cell(out.Rows[0], "monthly_fee"))

	// the input batch is not modified
	assert.Len(t, batch.Columns, 4)
}

func TestMembersSynthesizesJoinDate(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"member_id", "membership_type", "location", "signup_date"},
		Rows:    [][]string{{"M1", "Basic", "Uptown", "2024-02-20"}},
	}

	out, err := Members(batch, fees)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-20", out.Cell(out.Rows[0], "join_date"))
}

func TestMembersRequiresAJoinColumn(t *testing.T) {
	batch := domain.Batch{Columns: []string{"member_id", "membership_type", "location"}}

	_, err := Members(batch, fees)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "join_date or signup_date")
}

func TestMembersRequiresColumns(t *testing.T) {
	batch := domain.Batch{Columns: []string{"member_id", "join_date"}}

	_, err := Members(batch, fees)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "membership_type, location")
}

func TestMembersFeeDefaultsOnlyWhenColumnAbsent(t *testing.T) {
	absent := domain.Batch{
		Columns: []string{"member_id", "membership_type", "location", "join_date"},
		Rows: [][]string{
			{"M1", "Family", "A", "2024-01-01"},
			{"M2", "Student", "A", "2024-01-01"},
		},
	}
	out, err := Members(absent, fees)
	require.NoError(t, err)
	assert.Equal(t, "79.99", out.Cell(out.Rows[0], "monthly_fee"))
	assert.Equal(t, "39.99", out.Cell(out.Rows[1], "monthly_fee"))

	present := domain.Batch{
		Columns: []string{"member_id", "membership_type", "location", "join_date", "monthly_fee", "is_active"},
		Rows:    [][]string{{"M1", "Family", "A", "2024-01-01", "", "0"}},
	}
	out, err = Members(present, fees)
	require.NoError(t, err)
	members, err := ToMembers(out)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Nil(t, members[0].MonthlyFee)
	assert.False(t, members[0].IsActive)
}

func TestToMembers(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"member_id", "membership_type", "location", "join_date", "monthly_fee", "has_personal_training", "is_active", "cancellation_date"},
		Rows: [][]string{
			{"M1", "Premium", "Downtown", "2024-01-15", "49.99", "1", "0", "2024-06-01 00:00:00"},
		},
	}
	out, err := Members(batch, fees)
	require.NoError(t, err)

	members, err := ToMembers(out)
	require.NoError(t, err)
	require.Len(t, members, 1)

	m := members[0]
	assert.Equal(t, "M1", m.MemberID)
	require.NotNil(t, m.JoinDate)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *m.JoinDate)
	require.NotNil(t, m.SignupDate)
	require.NotNil(t, m.MonthlyFee)
	assert.Equal(t, 49.99, *m.MonthlyFee)
	assert.True(t, m.HasPersonalTraining)
	assert.False(t, m.IsActive)
	require.NotNil(t, m.CancellationDate)
	assert.Nil(t, m.TourScheduled)
}

func TestToMembersReportsRowAndColumn(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"member_id", "membership_type", "location", "join_date"},
		Rows: [][]string{
			{"M1", "Basic", "A", "2024-01-01"},
			{"M2", "Basic", "A", "not-a-date"},
		},
	}
	_, err := ToMembers(batch)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), `"join_date"`)
}

func TestToMembersRejectsBadBoolean(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"member_id", "join_date", "is_active"},
		Rows:    [][]string{{"M1", "2024-01-01", "maybe"}},
	}
	_, err := ToMembers(batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid boolean")
}

func TestCheckinsAcceptsDatetimeAlias(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"member_id", "checkin_datetime", "location"},
		Rows:    [][]string{{"M1", "2024-01-15 08:30:00", "Downtown"}},
	}
	out, err := Checkins(batch)
	require.NoError(t, err)

	checkins, err := ToCheckins(out, newNode(t))
	require.NoError(t, err)
	require.Len(t, checkins, 1)
	assert.NotEmpty(t, checkins[0].CheckinID)
	assert.Equal(t, time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC), checkins[0].CheckinDate)
	assert.Nil(t, checkins[0].DurationMinutes)
}

func TestCheckinsRequiresColumns(t *testing.T) {
	_, err := Checkins(domain.Batch{Columns: []string{"member_id", "location"}})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "checkin_date")
}

func TestToCheckinsKeepsIDsAndDuration(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"checkin_id", "member_id", "checkin_date", "location", "checkin_duration_minutes"},
		Rows: [][]string{
			{"C1", "M1", "2024-01-15 08:30:00", "A", "60"},
			{"C2", "M1", "2024-01-16", "A", "45.0"},
		},
	}
	checkins, err := ToCheckins(batch, newNode(t))
	require.NoError(t, err)
	require.Len(t, checkins, 2)
	assert.Equal(t, "C1", checkins[0].CheckinID)
	require.NotNil(t, checkins[1].DurationMinutes)
	assert.Equal(t, 45, *checkins[1].DurationMinutes)

	batch.Rows[1][4] = "45.5"
	_, err = ToCheckins(batch, newNode(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid integer")
}

func TestToCheckinsRequiresDate(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"member_id", "checkin_date", "location"},
		Rows:    [][]string{{"M1", "", "A"}},
	}
	_, err := ToCheckins(batch, newNode(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestToSalesAndLeads(t *testing.T) {
	node := newNode(t)

	sales, err := ToSales(domain.Batch{
		Columns: []string{"date", "amount", "type", "location", "product"},
		Rows:    [][]string{{"2024-03-01", "120.50", "Retail", "A", "Shake"}},
	}, node)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 120.5, sales[0].Amount)
	assert.NotZero(t, sales[0].ID)

	leads, err := ToLeads(domain.Batch{
		Columns: []string{"date", "lead_source", "location", "tour_scheduled", "tour_completed", "converted_to_member"},
		Rows:    [][]string{{"2024-03-02", "Referral", "A", "True", "1", ""}},
	}, node)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.True(t, leads[0].TourScheduled)
	assert.True(t, leads[0].TourCompleted)
	assert.False(t, leads[0].ConvertedToMember)
	assert.NotEqual(t, sales[0].ID, leads[0].ID)
}

func TestSalesRequiresAmount(t *testing.T) {
	_, err := Sales(domain.Batch{Columns: []string{"date"}})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestToMembersRequiresAJoinDatePerRow(t *testing.T) {
	batch := domain.Batch{
		Columns: []string{"member_id", "membership_type", "location", "join_date"},
		Rows: [][]string{
			{"M1", "Premium", "Downtown", "2024-01-15"},
			{"M2", "Premium", "Downtown", ""},
		},
		Source: domain.SourceCSV,
	}
	out, err := Members(batch, fees)
	require.NoError(t, err)

	_, err = ToMembers(out)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "join_date or signup_date is required")
}

func TestToMembersNumericDates(t *testing.T) {
	tests := []struct {
		name   string
		source domain.Source
		value  string
		want   time.Time
		ok     bool
	}{
		{name: "csv compact date", source: domain.SourceCSV, value: "20240115"},
		{name: "csv year only", source: domain.SourceCSV, value: "2024"},
		{name: "csv serial", source: domain.SourceCSV, value: "45306"},
		{name: "spreadsheet serial", source: domain.SourceSpreadsheet, value: "45306", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "spreadsheet text date", source: domain.SourceSpreadsheet, value: "2024-01-15", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), ok: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			batch := domain.Batch{
				Columns: []string{"member_id", "membership_type", "location", "join_date"},
				Rows:    [][]string{{"M1", "Premium", "Downtown", tc.value}},
				Source:  tc.source,
			}
			out, err := Members(batch, fees)
			require.NoError(t, err)

			members, err := ToMembers(out)
			if !tc.ok {
				require.Error(t, err)
				assert.True(t, apperror.IsValidation(err))
				assert.Contains(t, err.Error(), "invalid date")
				return
			}
			require.NoError(t, err)
			require.Len(t, members, 1)
			require.NotNil(t, members[0].JoinDate)
			assert.Equal(t, tc.want, *members[0].JoinDate)
			assert.Equal(t, tc.want, *members[0].SignupDate)
		})
	}
}

func TestParseDateMonthFirst(t *testing.T) {
	parsed, ok := parseDate("03/04/2024", false)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), parsed)

	_, ok = parseDate("15/01/2024", false)
	assert.False(t, ok)
}
