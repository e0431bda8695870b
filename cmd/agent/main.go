package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/frostline-games/support-agent/internal/agent"
	httptransport "github.com/frostline-games/support-agent/internal/api/http"
	"github.com/frostline-games/support-agent/internal/api/http/handlers"
	"github.com/frostline-games/support-agent/internal/auth"
	"github.com/frostline-games/support-agent/internal/classifier"
	"github.com/frostline-games/support-agent/internal/config"
	"github.com/frostline-games/support-agent/internal/connector"
	"github.com/frostline-games/support-agent/internal/events"
	"github.com/frostline-games/support-agent/internal/knowledge"
	"github.com/frostline-games/support-agent/internal/notify"
	"github.com/frostline-games/support-agent/internal/observability"
	"github.com/frostline-games/support-agent/internal/persistence"
	"github.com/frostline-games/support-agent/internal/report"
	"github.com/frostline-games/support-agent/internal/repository"
	"github.com/frostline-games/support-agent/internal/scheduler"
	"github.com/frostline-games/support-agent/internal/triage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration:\n%v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcherWithLogger(logger)

	var (
		caseRepo   repository.CaseRepository
		digestRepo repository.DigestRepository
		inbox      connector.InboxConnector
		kb         knowledge.KnowledgeBase
		watermarks scheduler.WatermarkStore
		pg         *persistence.Postgres
		rds        *persistence.Redis
	)

	if cfg.MockMode() {
		logger.Info("running in mock mode")
		caseRepo = repository.NewMemoryCaseRepository()
		digestRepo = repository.NewMemoryDigestRepository()
		inbox = connector.NewMockConnector()
		kb = knowledge.NewStaticKB()
		watermarks = scheduler.NewMemoryWatermarkStore()
	} else {
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		rds = persistence.NewRedis(cfg.Redis, logger)
		defer rds.Close()

		caseRepo = repository.NewCaseRepository(pg.PoolHandle())
		digestRepo = repository.NewDigestRepository(pg.PoolHandle())
		inbox = connector.NewBackendConnector(cfg.Connector, logger)
		kb = knowledge.NewCachedKB(knowledge.NewStaticKB(), rds.Client, logger)
		watermarks = scheduler.NewRedisWatermarkStore(rds.Client, cfg.Connector.Channel)
	}

	var notifier notify.Notifier
	if cfg.Notifier.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notifier.WebhookURL, logger)
	} else {
		notifier = notify.NewLogNotifier(logger)
	}
	notify.Register(dispatcher, notifier)

	var remote classifier.Classifier
	var trends report.TrendAnalyzer
	if cfg.Classifier.RemoteEnabled() {
		remoteClassifier := classifier.NewRemoteClassifier(cfg.Classifier)
		remote = remoteClassifier
		trends = remoteClassifier
	}

	triageSvc := triage.NewService(
		remote,
		classifier.NewKeywordClassifier(),
		triage.NewPolicy(cfg.Classifier.ConfidenceThreshold),
		cfg.Classifier.FallbackEnabled,
		logger,
		metrics,
	)

	orch := agent.NewOrchestrator(inbox, caseRepo, kb, triageSvc, dispatcher, logger, metrics)
	digestSvc := report.NewService(caseRepo, digestRepo, notifier, trends, logger)

	pollLoop := scheduler.NewLoop("poll", cfg.Scheduler.PollInterval(), func(loopCtx context.Context) error {
		mark, err := watermarks.Load(loopCtx)
		if err != nil {
			return err
		}
		next, err := orch.RunPoll(loopCtx, mark)
		if err != nil {
			return err
		}
		if next != mark {
			return watermarks.Save(loopCtx, next)
		}
		return nil
	}, logger)

	rescanLoop := scheduler.NewLoop("rescan", cfg.Scheduler.RescanInterval(), func(loopCtx context.Context) error {
		return orch.RunRescan(loopCtx, time.Now().UnixMilli())
	}, logger)

	pollLoop.Start(ctx)
	rescanLoop.Start(ctx)

	var digestLoop *scheduler.Loop
	if cfg.Scheduler.DigestEnabled {
		digestLoop = scheduler.NewLoop("digest", cfg.Scheduler.DigestInterval(), func(loopCtx context.Context) error {
			end := time.Now().UnixMilli()
			start := end - cfg.Scheduler.DigestInterval().Milliseconds()
			_, err := digestSvc.RunDigest(loopCtx, start, end)
			return err
		}, logger)
		digestLoop.Start(ctx)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rds),
		Auth:           handlers.NewAuthHandler(tokens, cfg.Auth.AdminKey),
		Stats:          handlers.NewStatsHandler(caseRepo, metrics),
		Cases:          handlers.NewCasesHandler(caseRepo),
		Digests:        handlers.NewDigestsHandler(digestRepo),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	pollLoop.Stop()
	rescanLoop.Stop()
	if digestLoop != nil {
		digestLoop.Stop()
	}
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
