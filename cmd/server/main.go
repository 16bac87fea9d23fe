package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/simhub/backend/api/handler"
	"github.com/simhub/backend/internal/config"
	"github.com/simhub/backend/internal/infrastructure/monitor"
	"github.com/simhub/backend/internal/infrastructure/outbox"
	pgInfra "github.com/simhub/backend/internal/infrastructure/postgres"
	redisInfra "github.com/simhub/backend/internal/infrastructure/redis"
	"github.com/simhub/backend/internal/mail"
	"github.com/simhub/backend/internal/middleware"
	"github.com/simhub/backend/internal/router"
	"github.com/simhub/backend/internal/services"
	"github.com/simhub/backend/internal/services/lifecycle"
	"github.com/simhub/backend/pkg/httpcontext"
	"github.com/simhub/backend/pkg/logger"
	"github.com/simhub/backend/pkg/password"
	"github.com/simhub/backend/pkg/token"
	"github.com/simhub/backend/repository/postgres"
	redisRepo "github.com/simhub/backend/repository/redis"
	authUC "github.com/simhub/backend/usecase/auth"
	catalogUC "github.com/simhub/backend/usecase/catalog"
	discountUC "github.com/simhub/backend/usecase/discount"
	orderUC "github.com/simhub/backend/usecase/order"
	profileUC "github.com/simhub/backend/usecase/profile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	outboxStore, err := outbox.Open(cfg.Outbox.Path, "outbox")
	if err != nil {
		zapLogger.Fatal("failed to open outbox store", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, redisClient, outboxStore, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	issuer, err := token.New(token.Config{
		AccessSecret:    cfg.JWT.AccessSecret,
		AccessLifetime:  cfg.JWT.AccessLifetime,
		RefreshSecret:   cfg.JWT.RefreshSecret,
		RefreshLifetime: cfg.JWT.RefreshLifetime,
	})
	if err != nil {
		zapLogger.Fatal("token issuer init failed", zap.Error(err))
	}
	hasher := password.NewHasher(password.DefaultParams())

	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	variantRepo := postgres.NewVariantRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	discountRepo := postgres.NewDiscountRepository(pool)

	var catalogCache catalogUC.Cache
	if cfg.Cache.Enabled {
		catalogCache = redisRepo.NewCatalogCache(redisClient, cfg.Cache.ProductTTL)
	}

	mailSender := mail.NewSender(mail.Config{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
	})

	dispatcher := services.NewOutboxDispatcher(outboxStore, mailSender, zapLogger, services.DispatcherConfig{
		Interval:   cfg.Outbox.DrainInterval,
		BatchSize:  cfg.Outbox.BatchSize,
		MaxRetries: cfg.Outbox.MaxRetry,
	})
	dispatcher.Start()
	manager.Register("outbox_dispatcher", func(ctx context.Context) error {
		dispatcher.Stop(ctx)
		return nil
	})

	reaper := services.NewSessionReaper(sessionRepo, zapLogger, services.ReaperConfig{
		Interval:  cfg.Sessions.PurgeInterval,
		Retention: cfg.Sessions.PurgeRetention,
	})
	reaper.Start()
	manager.Register("session_reaper", func(ctx context.Context) error {
		reaper.Stop(ctx)
		return nil
	})

	notifier := services.NewOutboxNotifier(outboxStore, zapLogger)

	authUseCase := authUC.New(userRepo, sessionRepo, hasher, issuer, zapLogger)
	profileUseCase := profileUC.New(userRepo, hasher, zapLogger)
	catalogUseCase := catalogUC.New(productRepo, categoryRepo, variantRepo, catalogCache, zapLogger)
	discountUseCase := discountUC.New(discountRepo, zapLogger)
	orderUseCase := orderUC.New(orderRepo, variantRepo, discountUseCase, notifier, orderUC.QRConfig{
		BankBin:       cfg.VietQR.BankBin,
		AccountNumber: cfg.VietQR.AccountNumber,
		AccountName:   cfg.VietQR.AccountName,
		TemplateID:    cfg.VietQR.TemplateID,
	}, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	secureCookies := cfg.Environment != "development"

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, userRepo, issuer, ctxAdapter, zapLogger, secureCookies),
		Profile:  apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Catalog:  apiHandler.NewCatalogHandler(catalogUseCase, ctxAdapter, zapLogger),
		Order:    apiHandler.NewOrderHandler(orderUseCase, ctxAdapter, zapLogger),
		Discount: apiHandler.NewDiscountHandler(discountUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(issuer, zapLogger)
	adminMiddleware := middleware.RequireRole("admin")
	r := router.New(handlers, authMiddleware, adminMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
