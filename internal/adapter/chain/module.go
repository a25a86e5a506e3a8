package chain

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/payneu/gateway/internal/config"
)

// Module exposes the chain gateway to the fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newGateway(p gatewayParams) (Gateway, error) {
	return NewEthGateway(p.Ctx, Config{
		RPCURL:        p.Config.ChainRPCAddress,
		PrivateKeyHex: p.Config.ChainPrivateKey,
	}, p.Logger)
}
