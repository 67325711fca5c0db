package domain

import "context"

// Service computes each report fresh from the current store contents.
type Service interface {
	Overview(ctx context.Context) (Overview, error)
	ChurnAnalysis(ctx context.Context) (ChurnAnalysis, error)
	AtRiskMembers(ctx context.Context) (AtRiskReport, error)
	Engagement(ctx context.Context) (Engagement, error)
	Revenue(ctx context.Context) (Revenue, error)
	SalesFunnel(ctx context.Context) (SalesFunnel, error)
	LocationComparison(ctx context.Context) (LocationComparison, error)
}
