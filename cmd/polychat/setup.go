package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/polychat/polychat/internal/config"
	"github.com/polychat/polychat/internal/providers/llm"
	"github.com/polychat/polychat/internal/providers/registry"
	"github.com/polychat/polychat/internal/service/chat"
	"github.com/polychat/polychat/internal/service/memory"
	"github.com/polychat/polychat/internal/service/router"
	"github.com/polychat/polychat/internal/storage/sqlite"
	httptransport "github.com/polychat/polychat/internal/transport/http"
	"github.com/polychat/polychat/pkg/log"
	"github.com/polychat/polychat/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	providersCfg := config.NewProvidersConfig(ctx)

	// 2. Storage
	if err := os.MkdirAll(appCfg.RuntimePath, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create runtime directory")
	}
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))
	turnsRepo := sqlite.NewTurnsRepo(db)

	// 3. Session memory
	mem := memory.NewManager(appCfg, turnsRepo)

	// 4. Provider catalog and routing
	reg := registry.NewRegistry(providersCfg)
	dispatcher := llm.NewHTTPDispatcher(time.Duration(appCfg.RequestTimeout) * time.Second)
	rt := router.NewRouter(reg, dispatcher)

	// 5. Chat engine
	engine := chat.NewEngine(mem, rt, reg)

	// 6. Transport
	services = append(services, httptransport.NewServer(appCfg.ListenAddr, engine))

	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
