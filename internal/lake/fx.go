package lake

import (
	"github.com/smallbiznis/posbridge/internal/lake/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lake.store",
	fx.Provide(service.New),
)
