package service

import (
	"github.com/smallbiznis/churnlytics/internal/export/domain"
	"github.com/smallbiznis/churnlytics/internal/export/workbook"
)

var templates = map[domain.Template]struct {
	name  string
	sheet workbook.Sheet
}{
	domain.TemplateMembers: {
		name: "member_import_template.xlsx",
		sheet: workbook.Sheet{
			Name:   "Sheet1",
			Header: []string{"member_id", "membership_type", "location", "join_date", "monthly_fee", "has_personal_training", "is_active"},
			Rows: [][]any{
				{"M00001", "Premium", "Location A", "2024-01-15", 49.99, 1, 1},
				{"M00002", "Basic", "Location B", "2024-02-20", 29.99, 0, 1},
			},
		},
	},
	domain.TemplateCheckins: {
		name: "checkin_import_template.xlsx",
		sheet: workbook.Sheet{
			Name:   "Sheet1",
			Header: []string{"checkin_id", "member_id", "checkin_date", "location", "checkin_duration_minutes"},
			Rows: [][]any{
				{"C00001", "M00001", "2024-01-15 08:30:00", "Location A", 60},
				{"C00002", "M00002", "2024-01-15 09:15:00", "Location B", 45},
			},
		},
	},
}
