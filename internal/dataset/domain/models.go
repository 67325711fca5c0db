package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Member struct {
	MemberID            string     `gorm:"column:member_id;primaryKey" json:"member_id"`
	MembershipType      string     `gorm:"column:membership_type" json:"membership_type"`
	Location            string     `gorm:"column:location;index" json:"location"`
	JoinDate            *time.Time `gorm:"column:join_date" json:"join_date"`
	SignupDate          *time.Time `gorm:"column:signup_date" json:"signup_date"`
	MonthlyFee          *float64   `gorm:"column:monthly_fee" json:"monthly_fee"`
	IsActive            bool       `gorm:"column:is_active;not null" json:"is_active"`
	HasPersonalTraining bool       `gorm:"column:has_personal_training;not null" json:"has_personal_training"`
	CancellationDate    *time.Time `gorm:"column:cancellation_date" json:"cancellation_date"`
	TourScheduled       *bool      `gorm:"column:tour_scheduled" json:"tour_scheduled"`
}

func (Member) TableName() string { return "members" }

// Joined returns the canonical join date: join_date when present, else
// signup_date.
func (m Member) Joined() (time.Time, bool) {
	if m.JoinDate != nil {
		return m.JoinDate.UTC(), true
	}
	if m.SignupDate != nil {
		return m.SignupDate.UTC(), true
	}
	return time.Time{}, false
}

// Churned reports whether the member is no longer active.
func (m Member) Churned() bool {
	return !m.IsActive
}

type Checkin struct {
	CheckinID       string    `gorm:"column:checkin_id;primaryKey" json:"checkin_id"`
	MemberID        string    `gorm:"column:member_id;not null;index" json:"member_id"`
	CheckinDate     time.Time `gorm:"column:checkin_date;not null;index" json:"checkin_date"`
	Location        string    `gorm:"column:location" json:"location"`
	DurationMinutes *int      `gorm:"column:checkin_duration_minutes" json:"checkin_duration_minutes"`
}

func (Checkin) TableName() string { return "checkins" }

type Sale struct {
	ID       snowflake.ID `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Date     time.Time    `gorm:"column:date;not null;index" json:"date"`
	Amount   float64      `gorm:"column:amount;not null" json:"amount"`
	Type     string       `gorm:"column:type" json:"type"`
	Location string       `gorm:"column:location" json:"location"`
	Product  string       `gorm:"column:product" json:"product"`
}

func (Sale) TableName() string { return "sales" }

type Lead struct {
	ID                snowflake.ID `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Date              time.Time    `gorm:"column:date;not null;index" json:"date"`
	LeadSource        string       `gorm:"column:lead_source" json:"lead_source"`
	Location          string       `gorm:"column:location" json:"location"`
	TourScheduled     bool         `gorm:"column:tour_scheduled;not null" json:"tour_scheduled"`
	TourCompleted     bool         `gorm:"column:tour_completed;not null" json:"tour_completed"`
	ConvertedToMember bool         `gorm:"column:converted_to_member;not null" json:"converted_to_member"`
}

func (Lead) TableName() string { return "leads" }

// ImportBatch records one successful file import.
type ImportBatch struct {
	ID           snowflake.ID   `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Entity       string         `gorm:"column:entity;not null" json:"entity"`
	Mode         WriteMode      `gorm:"column:mode;not null" json:"mode"`
	Filename     string         `gorm:"column:filename" json:"filename"`
	RowsImported int            `gorm:"column:rows_imported;not null" json:"rows_imported"`
	ColumnNames  datatypes.JSON `gorm:"column:column_names" json:"column_names"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (ImportBatch) TableName() string { return "import_batches" }
