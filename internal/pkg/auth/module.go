package auth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/flashrent/internal/config"
)

// Module provides API key verification via fx.
var Module = fx.Provide(newKeyVerifier)

type verifierParams struct {
	fx.In

	Config *config.Config
}

func newKeyVerifier(p verifierParams) KeyVerifier {
	return NewBcryptVerifier(p.Config.APIKeyHash)
}
