package di

import (
	"github.com/payneu/gateway/internal/adapter/chain"
	"github.com/payneu/gateway/internal/adapter/directory"
	"github.com/payneu/gateway/internal/app"
	"github.com/payneu/gateway/internal/config"
	"github.com/payneu/gateway/internal/logger"
	"github.com/payneu/gateway/internal/pkg/auth"
	"github.com/payneu/gateway/internal/server/http/handlers"
	"github.com/payneu/gateway/internal/server/http/router"
	"github.com/payneu/gateway/internal/storage/postgres"
	"github.com/payneu/gateway/internal/usecase"
	"go.uber.org/fx"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		directory.Module,
		chain.Module,
		usecase.Module,
		fx.Provide(func(facade *app.GatewayFacade) handlers.GatewayFacade { return facade }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
