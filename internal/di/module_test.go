package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/payneu/gateway/internal/adapter/chain"
	"github.com/payneu/gateway/internal/adapter/directory"
	"github.com/payneu/gateway/internal/app"
	"github.com/payneu/gateway/internal/config"
	"github.com/payneu/gateway/internal/domain/repository"
	"github.com/payneu/gateway/internal/storage/postgres"
	"github.com/payneu/gateway/internal/test"
	"go.uber.org/fx"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:          ":0",
		DatabaseURI:         "postgres://stub",
		DirectoryAddress:    "http://localhost",
		ChainRPCAddress:     "http://localhost:8545",
		JWTSecret:           "secret",
		ConfirmationDepth:   2,
		ConfirmPollInterval: time.Millisecond,
		WorkerPoolSize:      1,
		ShutdownTimeout:     time.Millisecond,
		MaxAttemptsBatch:    1,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	userRepo := test.NewUserRepositoryStub()
	attemptRepo := &test.AttemptRepositoryStub{}
	factory := &test.RepositoryFactoryStub{UserRepo: userRepo, AttemptRepo: attemptRepo}

	var facade *app.GatewayFacade
	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return context.Background() }),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(fx.Annotate(factory, fx.As(new(repository.Factory)))),
			fx.Replace(fx.Annotate(userRepo, fx.As(new(repository.UserRepository)))),
			fx.Replace(fx.Annotate(attemptRepo, fx.As(new(repository.AttemptRepository)))),
			fx.Replace(fx.Annotate(test.DirectoryClientStub{}, fx.As(new(directory.Client)))),
			fx.Replace(fx.Annotate(test.ChainGatewayStub{}, fx.As(new(chain.Gateway)))),
		),
		fx.Populate(&facade),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected gateway facade instance")
	}
}
