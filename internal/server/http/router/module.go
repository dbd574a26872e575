package router

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module builds the gin engine with request logs under the "http" logger name.
var Module = fx.Module("http",
	fx.Decorate(func(l *zap.Logger) *zap.Logger { return l.Named("http") }),
	fx.Provide(Setup),
)
