package loader

import (
	"github.com/smallbiznis/posbridge/internal/loader/service"
	"go.uber.org/fx"
)

var Module = fx.Module("loader.service",
	fx.Provide(service.New),
)
