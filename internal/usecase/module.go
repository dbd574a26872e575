package usecase

import "go.uber.org/fx"

// Module provides the flash-rent pipeline to the fx container.
var Module = fx.Provide(
	NewConfigProvider,
	NewUnitCalculator,
	NewOrderNumberGenerator,
	NewResourceDelegator,
	NewOrderCreator,
	NewOrderUpdater,
)
