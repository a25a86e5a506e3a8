package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/payneu/gateway/internal/adapter/chain"
	"github.com/payneu/gateway/internal/adapter/directory"
	"github.com/payneu/gateway/internal/config"
	"github.com/payneu/gateway/internal/domain/repository"
)

type paymentParams struct {
	fx.In

	Directory directory.Client
	Chain     chain.Gateway
	Factory   repository.Factory
	Config    *config.Config
	Logger    *slog.Logger
}

func newPaymentUseCase(p paymentParams) *PaymentUseCase {
	return NewPaymentUseCase(
		p.Directory,
		p.Chain,
		p.Factory.Attempts(),
		NewAddresses(p.Config),
		p.Config.ConfirmationDepth,
		p.Logger,
	)
}

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewInvoiceUseCase,
	NewTokenUseCase,
	newPaymentUseCase,
)
