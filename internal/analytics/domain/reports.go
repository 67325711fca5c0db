package domain

import "time"

type Overview struct {
	TotalMembers           int            `json:"total_members"`
	ActiveMembers          int            `json:"active_members"`
	ChurnedMembers         int            `json:"churned_members"`
	MRR                    float64        `json:"mrr"`
	RetentionRate          float64        `json:"retention_rate"`
	ChurnRate              float64        `json:"churn_rate"`
	TotalCheckins          int            `json:"total_checkins"`
	UniqueMembersCheckedIn int            `json:"unique_members_checked_in"`
	LocationStats          []LocationStat `json:"location_stats"`
	SignupTrend            []SignupMonth  `json:"signup_trend"`
	DataQuality            DataQuality    `json:"data_quality"`
}

type LocationStat struct {
	Location       string  `json:"location"`
	TotalMembers   int     `json:"total_members"`
	ActiveMembers  int     `json:"active_members"`
	ChurnedMembers int     `json:"churned_members"`
	ToursScheduled int     `json:"tours_scheduled"`
	AvgMonthlyFee  float64 `json:"avg_monthly_fee"`
}

type SignupMonth struct {
	Month   string `json:"month"`
	Signups int    `json:"signups"`
}

// DataQuality counts rows whose is_active flag and cancellation date
// disagree, plus rows without any join date. They are reported, not fixed.
type DataQuality struct {
	ActiveWithCancellation     int `json:"active_with_cancellation_date"`
	ChurnedWithoutCancellation int `json:"churned_without_cancellation_date"`
	MembersWithoutJoinDate     int `json:"members_without_join_date"`
}

type ChurnAnalysis struct {
	ChurnByMembership []MembershipChurn `json:"churn_by_membership"`
	ChurnByLocation   []LocationChurn   `json:"churn_by_location"`
	ChurnByTenure     []TenureChurn     `json:"churn_by_tenure"`
	PTImpact          []PTChurn         `json:"pt_impact"`
	MonthlyTrend      []ChurnMonth      `json:"monthly_trend"`
}

type MembershipChurn struct {
	MembershipType string  `json:"membership_type"`
	Total          int     `json:"total"`
	Churned        int     `json:"churned"`
	ChurnRate      float64 `json:"churn_rate"`
}

type LocationChurn struct {
	Location     string  `json:"location"`
	TotalMembers int     `json:"total_members"`
	Churned      int     `json:"churned"`
	ChurnRate    float64 `json:"churn_rate"`
}

type TenureChurn struct {
	TenureGroup string  `json:"tenure_group"`
	Total       int     `json:"total"`
	Churned     int     `json:"churned"`
	ChurnRate   float64 `json:"churn_rate"`
}

type PTChurn struct {
	HasPT     bool    `json:"has_pt"`
	Total     int     `json:"total"`
	Churned   int     `json:"churned"`
	ChurnRate float64 `json:"churn_rate"`
}

type ChurnMonth struct {
	Month        string `json:"month"`
	ChurnedCount int    `json:"churned_count"`
}

type AtRiskReport struct {
	AtRiskMembers []AtRiskMember `json:"at_risk_members"`
	RiskSummary   []RiskCount    `json:"risk_summary"`
}

type AtRiskMember struct {
	MemberID            string     `json:"member_id"`
	Location            string     `json:"location"`
	MembershipType      string     `json:"membership_type"`
	HasPersonalTraining bool       `json:"has_personal_training"`
	MonthlyFee          float64    `json:"monthly_fee"`
	MonthsMember        *float64   `json:"months_member"`
	TotalCheckins       int        `json:"total_checkins"`
	LastCheckin         *time.Time `json:"last_checkin"`
	DaysSinceCheckin    *int       `json:"days_since_checkin"`
	RiskLevel           string     `json:"risk_level"`
	AvgCheckinsPerMonth *float64   `json:"avg_checkins_per_month"`
}

type RiskCount struct {
	RiskLevel string `json:"risk_level"`
	Count     int    `json:"count"`
}

type Engagement struct {
	HourlyPattern          []HourCount          `json:"hourly_pattern"`
	DailyPattern           []DayCount           `json:"daily_pattern"`
	LocationEngagement     []LocationEngagement `json:"location_engagement"`
	EngagementDistribution []EngagementBucket   `json:"engagement_distribution"`
}

type HourCount struct {
	Hour         int `json:"hour"`
	CheckinCount int `json:"checkin_count"`
}

type DayCount struct {
	DayOfWeek    string `json:"day_of_week"`
	CheckinCount int    `json:"checkin_count"`
}

type LocationEngagement struct {
	Location           string   `json:"location"`
	ActiveMembers      int      `json:"active_members"`
	TotalCheckins      int      `json:"total_checkins"`
	AvgVisitsPerMember *float64 `json:"avg_visits_per_member"`
}

type EngagementBucket struct {
	EngagementLevel string `json:"engagement_level"`
	MemberCount     int    `json:"member_count"`
}

type Revenue struct {
	MonthlyRevenueTrend []MonthlyRevenue  `json:"monthly_revenue_trend"`
	RevenueByType       []TypeRevenue     `json:"revenue_by_type"`
	RevenueByLocation   []LocationRevenue `json:"revenue_by_location"`
	LTVByMembership     []MembershipLTV   `json:"ltv_by_membership"`
	CurrentMRR          float64           `json:"current_mrr"`
	ActivePayingMembers int               `json:"active_paying_members"`
}

type MonthlyRevenue struct {
	Month            string  `json:"month"`
	Revenue          float64 `json:"revenue"`
	TransactionCount int     `json:"transaction_count"`
}

type TypeRevenue struct {
	Type             string  `json:"type"`
	TotalRevenue     float64 `json:"total_revenue"`
	TransactionCount int     `json:"transaction_count"`
	AvgTransaction   float64 `json:"avg_transaction"`
}

type LocationRevenue struct {
	Location         string  `json:"location"`
	TotalRevenue     float64 `json:"total_revenue"`
	TransactionCount int     `json:"transaction_count"`
}

type MembershipLTV struct {
	MembershipType string   `json:"membership_type"`
	MemberCount    int      `json:"member_count"`
	AvgLTV         *float64 `json:"avg_ltv"`
}

type SalesFunnel struct {
	SalesTotals    SalesTotals           `json:"sales_totals"`
	FunnelOverview FunnelOverview        `json:"funnel_overview"`
	BySource       []SourcePerformance   `json:"by_source"`
	ByLocation     []LocationPerformance `json:"by_location"`
	MonthlyTrend   []FunnelMonth         `json:"monthly_trend"`
}

type SalesTotals struct {
	TotalSales    int     `json:"total_sales"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalProducts int     `json:"total_products"`
}

type FunnelOverview struct {
	TotalLeads         int     `json:"total_leads"`
	ToursScheduled     int     `json:"tours_scheduled"`
	ToursCompleted     int     `json:"tours_completed"`
	Conversions        int     `json:"conversions"`
	TourScheduleRate   float64 `json:"tour_schedule_rate"`
	TourCompletionRate float64 `json:"tour_completion_rate"`
	ConversionRate     float64 `json:"conversion_rate"`
	OverallConversion  float64 `json:"overall_conversion"`
}

type SourcePerformance struct {
	LeadSource     string  `json:"lead_source"`
	Leads          int     `json:"leads"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
}

type LocationPerformance struct {
	Location       string  `json:"location"`
	Leads          int     `json:"leads"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
}

type FunnelMonth struct {
	Month          string  `json:"month"`
	Leads          int     `json:"leads"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
}

type LocationComparison struct {
	KeyMetrics []LocationKeyMetrics `json:"key_metrics"`
	Engagement []LocationCheckins   `json:"engagement"`
	Revenue    []LocationSales      `json:"revenue"`
}

type LocationKeyMetrics struct {
	Location         string  `json:"location"`
	TotalMembers     int     `json:"total_members"`
	ActiveMembers    int     `json:"active_members"`
	RetentionRate    float64 `json:"retention_rate"`
	MRR              float64 `json:"mrr"`
	PTMembers        int     `json:"pt_members"`
	PTAttachmentRate float64 `json:"pt_attachment_rate"`
}

type LocationCheckins struct {
	Location           string   `json:"location"`
	TotalCheckins      int      `json:"total_checkins"`
	UniqueVisitors     int      `json:"unique_visitors"`
	AvgVisitsPerMember *float64 `json:"avg_visits_per_member"`
}

type LocationSales struct {
	Location       string  `json:"location"`
	TotalRevenue   float64 `json:"total_revenue"`
	Transactions   int     `json:"transactions"`
	AvgTransaction float64 `json:"avg_transaction"`
}
