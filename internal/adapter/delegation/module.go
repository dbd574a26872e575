package delegation

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/flashrent/internal/config"
	"github.com/polkiloo/flashrent/internal/usecase"
)

// Module exposes the delegation client as the pipeline's energy granter.
var Module = fx.Provide(newGranter)

type granterParams struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func newGranter(p granterParams) (usecase.EnergyGranter, error) {
	return NewHTTPClient(p.Config.DelegationAddress, p.Config.DelegationTimeout, p.Logger)
}
