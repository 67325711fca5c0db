package export

import (
	"github.com/smallbiznis/churnlytics/internal/export/pdf"
	"github.com/smallbiznis/churnlytics/internal/export/service"
	"go.uber.org/fx"
)

var Module = fx.Module("export.service",
	fx.Provide(pdf.New),
	fx.Provide(service.New),
)
