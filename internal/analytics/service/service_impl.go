package service

import (
	"context"
	"time"

	"github.com/smallbiznis/churnlytics/internal/analytics/domain"
	"github.com/smallbiznis/churnlytics/internal/analytics/engine"
	"github.com/smallbiznis/churnlytics/internal/clock"
	"github.com/smallbiznis/churnlytics/internal/config"
	dataset "github.com/smallbiznis/churnlytics/internal/dataset/domain"
	obsmetrics "github.com/smallbiznis/churnlytics/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Reader  dataset.Reader
	Log     *zap.Logger
	Clock   clock.Clock
	Fees    *config.MembershipConfigHolder
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	reader  dataset.Reader
	log     *zap.Logger
	clock   clock.Clock
	fees    *config.MembershipConfigHolder
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		reader:  p.Reader,
		log:     p.Log.Named("analytics.service"),
		clock:   p.Clock,
		fees:    p.Fees,
		metrics: p.Metrics,
	}
}

func (s *Service) Overview(ctx context.Context) (domain.Overview, error) {
	return compute(ctx, s, "overview", dataset.TableMembers|dataset.TableCheckins, (*engine.Engine).Overview)
}

func (s *Service) ChurnAnalysis(ctx context.Context) (domain.ChurnAnalysis, error) {
	return compute(ctx, s, "churn_analysis", dataset.TableMembers, (*engine.Engine).ChurnAnalysis)
}

func (s *Service) AtRiskMembers(ctx context.Context) (domain.AtRiskReport, error) {
	return compute(ctx, s, "at_risk_members", dataset.TableMembers|dataset.TableCheckins, (*engine.Engine).AtRiskMembers)
}

func (s *Service) Engagement(ctx context.Context) (domain.Engagement, error) {
	return compute(ctx, s, "engagement", dataset.TableMembers|dataset.TableCheckins, (*engine.Engine).Engagement)
}

func (s *Service) Revenue(ctx context.Context) (domain.Revenue, error) {
	return compute(ctx, s, "revenue", dataset.TableMembers|dataset.TableSales, (*engine.Engine).Revenue)
}

func (s *Service) SalesFunnel(ctx context.Context) (domain.SalesFunnel, error) {
	return compute(ctx, s, "sales_funnel", dataset.TableSales|dataset.TableLeads, (*engine.Engine).SalesFunnel)
}

func (s *Service) LocationComparison(ctx context.Context) (domain.LocationComparison, error) {
	return compute(ctx, s, "location_comparison", dataset.TableMembers|dataset.TableCheckins|dataset.TableSales, (*engine.Engine).LocationComparison)
}

func (s *Service) engine() *engine.Engine {
	if s.fees == nil {
		return engine.FromConfig(config.DefaultMembershipConfig())
	}
	return engine.FromConfig(s.fees.Get())
}

// compute loads only the tables a report reads, then runs it against the
// current clock.
func compute[T any](ctx context.Context, s *Service, report string, tables dataset.Table, fn func(*engine.Engine, dataset.Snapshot, time.Time) T) (T, error) {
	var zero T
	start := time.Now()

	snap, err := dataset.LoadSnapshot(ctx, s.reader, tables)
	if err != nil {
		s.log.Error("failed to load snapshot", zap.String("report", report), zap.Error(err))
		s.metrics.RecordReport(ctx, report, "error", time.Since(start))
		return zero, err
	}

	result := fn(s.engine(), snap, s.clock.Now())
	s.metrics.RecordReport(ctx, report, "ok", time.Since(start))
	s.log.Debug("report computed",
		zap.String("report", report),
		zap.Int("members", len(snap.Members)),
		zap.Int("checkins", len(snap.Checkins)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}
