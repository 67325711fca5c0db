package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/smallbiznis/churnlytics/internal/analytics/engine"
	"github.com/smallbiznis/churnlytics/internal/clock"
	"github.com/smallbiznis/churnlytics/internal/config"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
	"github.com/smallbiznis/churnlytics/internal/export/domain"
	"github.com/smallbiznis/churnlytics/internal/export/pdf"
	"github.com/smallbiznis/churnlytics/internal/export/workbook"
	obsmetrics "github.com/smallbiznis/churnlytics/internal/observability/metrics"
	"github.com/smallbiznis/churnlytics/pkg/apperror"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const timestampLayout = "20060102_150405"

type Params struct {
	fx.In

	Reader  dataset.Reader
	Log     *zap.Logger
	Clock   clock.Clock
	Fees    *config.MembershipConfigHolder
	PDF     pdf.Provider
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	reader  dataset.Reader
	log     *zap.Logger
	clock   clock.Clock
	fees    *config.MembershipConfigHolder
	pdf     pdf.Provider
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		reader:  p.Reader,
		log:     p.Log.Named("export.service"),
		clock:   p.Clock,
		fees:    p.Fees,
		pdf:     p.PDF,
		metrics: p.Metrics,
	}
}

func (s *Service) Export(ctx context.Context, kind domain.Kind) (domain.File, error) {
	now := s.clock.Now()

	var sheets []workbook.Sheet
	switch kind {
	case domain.KindOverview:
		snap, err := dataset.LoadSnapshot(ctx, s.reader, dataset.TableMembers|dataset.TableCheckins)
		if err != nil {
			return domain.File{}, err
		}
		sheets = overviewSheets(snap)
	case domain.KindAtRisk:
		snap, err := dataset.LoadSnapshot(ctx, s.reader, dataset.TableMembers|dataset.TableCheckins)
		if err != nil {
			return domain.File{}, err
		}
		sheets = atRiskSheets(s.engine(), snap, now)
	case domain.KindChurnAnalysis:
		snap, err := dataset.LoadSnapshot(ctx, s.reader, dataset.TableMembers|dataset.TableCheckins)
		if err != nil {
			return domain.File{}, err
		}
		sheets = churnSheets(snap, now)
	case domain.KindRevenue:
		snap, err := dataset.LoadSnapshot(ctx, s.reader, dataset.TableMembers)
		if err != nil {
			return domain.File{}, err
		}
		sheets = revenueSheets(s.engine(), snap)
	default:
		return domain.File{}, apperror.Validation("unknown export %q", kind)
	}

	data, err := workbook.Render(sheets...)
	if err != nil {
		s.log.Error("failed to render export", zap.String("kind", string(kind)), zap.Error(err))
		return domain.File{}, err
	}

	s.metrics.RecordExport(ctx, string(kind), "xlsx")
	return domain.File{
		Name:        timestamped(kind.Prefix(), now, "xlsx"),
		ContentType: domain.ContentTypeXLSX,
		Data:        data,
	}, nil
}

func (s *Service) OverviewPDF(ctx context.Context) (domain.File, error) {
	now := s.clock.Now()
	snap, err := dataset.LoadSnapshot(ctx, s.reader, dataset.TableMembers|dataset.TableCheckins)
	if err != nil {
		return domain.File{}, err
	}
	overview := s.engine().Overview(snap, now)

	data := pdf.OverviewData{
		Title:       "Churnlytics Overview",
		GeneratedAt: now.UTC().Format("2006-01-02 15:04 MST"),
		Metrics: []pdf.Metric{
			{Label: "Total Members", Value: strconv.Itoa(overview.TotalMembers)},
			{Label: "Active Members", Value: strconv.Itoa(overview.ActiveMembers)},
			{Label: "Churned Members", Value: strconv.Itoa(overview.ChurnedMembers)},
			{Label: "MRR", Value: money(overview.MRR)},
			{Label: "Retention Rate", Value: percent(overview.RetentionRate)},
			{Label: "Churn Rate (30d)", Value: percent(overview.ChurnRate)},
			{Label: "Total Check-ins", Value: strconv.Itoa(overview.TotalCheckins)},
			{Label: "Members Checked In", Value: strconv.Itoa(overview.UniqueMembersCheckedIn)},
		},
	}
	for _, loc := range overview.LocationStats {
		data.Locations = append(data.Locations, pdf.LocationRow{
			Location:      loc.Location,
			TotalMembers:  strconv.Itoa(loc.TotalMembers),
			ActiveMembers: strconv.Itoa(loc.ActiveMembers),
			Churned:       strconv.Itoa(loc.ChurnedMembers),
			AvgMonthlyFee: money(loc.AvgMonthlyFee),
		})
	}

	r, err := s.pdf.GenerateOverview(ctx, data)
	if err != nil {
		s.log.Error("failed to render overview pdf", zap.Error(err))
		return domain.File{}, apperror.Processing("render overview pdf", err)
	}
	if r == nil {
		return domain.File{}, apperror.Processing("render overview pdf", fmt.Errorf("pdf provider returned no document"))
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return domain.File{}, apperror.Processing("render overview pdf", err)
	}

	s.metrics.RecordExport(ctx, string(domain.KindOverview), "pdf")
	return domain.File{
		Name:        timestamped(domain.KindOverview.Prefix(), now, "pdf"),
		ContentType: domain.ContentTypePDF,
		Data:        body,
	}, nil
}

func (s *Service) Template(ctx context.Context, template domain.Template) (domain.File, error) {
	tpl, ok := templates[template]
	if !ok {
		return domain.File{}, apperror.Validation("unknown template %q", template)
	}
	data, err := workbook.Render(tpl.sheet)
	if err != nil {
		return domain.File{}, err
	}
	s.metrics.RecordExport(ctx, "template_"+string(template), "xlsx")
	return domain.File{Name: tpl.name, ContentType: domain.ContentTypeXLSX, Data: data}, nil
}

func (s *Service) engine() *engine.Engine {
	if s.fees == nil {
		return engine.FromConfig(config.DefaultMembershipConfig())
	}
	return engine.FromConfig(s.fees.Get())
}

func timestamped(prefix string, now time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format(timestampLayout), ext)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
