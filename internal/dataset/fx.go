package dataset

import (
	"github.com/smallbiznis/churnlytics/internal/dataset/domain"
	"github.com/smallbiznis/churnlytics/internal/dataset/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("dataset.repository",
	fx.Provide(repository.Provide),
	fx.Provide(
		func(r domain.Repository) domain.Reader { return r },
		func(r domain.Repository) domain.Writer { return r },
	),
)
