package pdf

import (
	"context"
	"io"
)

type Provider interface {
	GenerateOverview(ctx context.Context, data OverviewData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateOverview(ctx context.Context, data OverviewData) (io.Reader, error) {
	return nil, nil
}
