package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/flashrent/internal/adapter/delegation"
	"github.com/polkiloo/flashrent/internal/app"
	"github.com/polkiloo/flashrent/internal/config"
	"github.com/polkiloo/flashrent/internal/logger"
	"github.com/polkiloo/flashrent/internal/metrics"
	"github.com/polkiloo/flashrent/internal/pkg/auth"
	"github.com/polkiloo/flashrent/internal/pkg/lock"
	"github.com/polkiloo/flashrent/internal/server/http/handlers"
	"github.com/polkiloo/flashrent/internal/server/http/router"
	"github.com/polkiloo/flashrent/internal/storage/postgres"
	"github.com/polkiloo/flashrent/internal/usecase"
)

// Module composes the whole service. opts are appended last so tests can replace values.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		delegation.Module,
		lock.Module,
		metrics.Module,
		usecase.Module,
		fx.Provide(
			func(s *postgres.Storage) app.HealthChecker { return s },
			func(c *metrics.Collector) app.IntakeRecorder { return c },
			func(f *app.FlashRentFacade) handlers.FlashRentFacade { return f },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
