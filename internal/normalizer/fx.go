package normalizer

import (
	"github.com/smallbiznis/posbridge/internal/normalizer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("normalizer.service",
	fx.Provide(service.New),
)
