package domain

import (
	"context"
	"strings"

	"github.com/smallbiznis/churnlytics/pkg/apperror"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

type Kind string

const (
	KindOverview      Kind = "overview"
	KindAtRisk        Kind = "at-risk"
	KindChurnAnalysis Kind = "churn-analysis"
	KindRevenue       Kind = "revenue"
)

// Prefix is the download name prefix of the report.
func (k Kind) Prefix() string {
	switch k {
	case KindOverview:
		return "overview_report"
	case KindAtRisk:
		return "at_risk_members"
	case KindChurnAnalysis:
		return "churn_analysis"
	case KindRevenue:
		return "revenue_report"
	default:
		return "report"
	}
}

func ParseKind(value string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(value))); k {
	case KindOverview, KindAtRisk, KindChurnAnalysis, KindRevenue:
		return k, nil
	default:
		return "", apperror.Validation("unknown export %q", value)
	}
}

type Template string

const (
	TemplateMembers  Template = "members"
	TemplateCheckins Template = "checkins"
)

func ParseTemplate(value string) (Template, error) {
	switch t := Template(strings.ToLower(strings.TrimSpace(value))); t {
	case TemplateMembers, TemplateCheckins:
		return t, nil
	default:
		return "", apperror.Validation("unknown template %q", value)
	}
}

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Service interface {
	Export(ctx context.Context, kind Kind) (File, error)
	OverviewPDF(ctx context.Context) (File, error)
	Template(ctx context.Context, template Template) (File, error)
}
