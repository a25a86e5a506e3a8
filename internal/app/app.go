package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/payneu/gateway/internal/adapter/chain"
	"github.com/payneu/gateway/internal/config"
	"github.com/payneu/gateway/internal/usecase"
	"github.com/payneu/gateway/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newGatewayFacade,
		newHTTPServer,
		newConfirmationWatcher,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Auth     *usecase.AuthUseCase
	Invoices *usecase.InvoiceUseCase
	Tokens   *usecase.TokenUseCase
	Payments *usecase.PaymentUseCase
	Chain    chain.Gateway
}

func newGatewayFacade(p facadeParams) *GatewayFacade {
	return NewGatewayFacade(p.Auth, p.Invoices, p.Tokens, p.Payments, p.Chain)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *GatewayFacade
	Config *config.Config
	Logger *slog.Logger
}

func newConfirmationWatcher(p workerParams) *worker.ConfirmationWatcher {
	return worker.NewConfirmationWatcher(
		p.Facade,
		p.Config.ConfirmPollInterval,
		p.Config.MaxAttemptsBatch,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.ConfirmationWatcher
	Chain      chain.Gateway
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := p.Chain.Ping(ctx); err != nil {
				p.Logger.Warn("chain rpc not reachable yet", slog.String("error", err.Error()))
			}
			p.Logger.Info("starting payment gateway", slog.String("addr", p.Server.Addr))
			p.Worker.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Worker.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("payment gateway stopped")
			return nil
		},
	})
}
