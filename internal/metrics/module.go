package metrics

import (
	"go.uber.org/fx"

	"github.com/polkiloo/flashrent/internal/usecase"
)

// Module provides the metrics collector and binds it as the pipeline recorder.
var Module = fx.Provide(
	New,
	func(c *Collector) usecase.Recorder { return c },
)
