package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcosting "github.com/feedlot/backend/internal/application/costing"
	appfinance "github.com/feedlot/backend/internal/application/finance"
	appreport "github.com/feedlot/backend/internal/application/report"
	"github.com/feedlot/backend/internal/domain/costing"
	"github.com/feedlot/backend/internal/domain/finance"
	"github.com/feedlot/backend/internal/domain/livestock"
	"github.com/feedlot/backend/internal/domain/report"
	"github.com/feedlot/backend/internal/domain/shared"
	"github.com/feedlot/backend/internal/infrastructure/config"
	"github.com/feedlot/backend/internal/infrastructure/event"
	"github.com/feedlot/backend/internal/infrastructure/lock"
	"github.com/feedlot/backend/internal/infrastructure/logger"
	"github.com/feedlot/backend/internal/infrastructure/migration"
	"github.com/feedlot/backend/internal/infrastructure/persistence"
	"github.com/feedlot/backend/internal/infrastructure/persistence/memory"
	"github.com/feedlot/backend/internal/infrastructure/scheduler"
	"github.com/feedlot/backend/internal/interfaces/http/handler"
	"github.com/feedlot/backend/internal/interfaces/http/middleware"
	"github.com/feedlot/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Feedlot Cost Engine API
//	@version		1.0
//	@description	Cost allocation, bank reconciliation and income statements for feedlot operations

//	@host		localhost:8080
//	@BasePath	/api/v1

const version = "1.0.0"

// stores groups the repositories and transaction scopes of one storage backend
type stores struct {
	costingScope appcosting.TransactionScope
	financeScope appfinance.TransactionScope
	lots         livestock.LotRepository
	links        livestock.PenLotLinkRepository
	losses       livestock.NonCashLossRepository
	accounts     finance.FinancialAccountRepository
	statements   report.IncomeStatementRepository
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting feedlot cost engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("lock", cfg.Lock.Backend),
	)

	middleware.SetupValidator()

	checks := make(map[string]handler.Pinger)
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))

	// Storage backend
	var st stores
	switch cfg.Storage.Backend {
	case "database":
		db := openDatabase(cfg, log)
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
		checks["database"] = db
		eventBus.Subscribe(persistence.NewGormEventLog(db.DB))
		st = stores{
			costingScope: persistence.NewGormCostingTransactionScope(db.DB),
			financeScope: persistence.NewGormFinanceTransactionScope(db.DB),
			lots:         persistence.NewGormLotRepository(db.DB),
			links:        persistence.NewGormPenLotLinkRepository(db.DB),
			losses:       persistence.NewGormNonCashLossRepository(db.DB),
			accounts:     persistence.NewGormFinancialAccountRepository(db.DB),
			statements:   persistence.NewGormIncomeStatementRepository(db.DB),
		}
	default:
		log.Warn("Using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		st = stores{
			costingScope: store.CostingScope(),
			financeScope: store.FinanceScope(),
			lots:         store.Lots(),
			links:        store.Links(),
			losses:       store.Losses(),
			accounts:     store.Accounts(),
			statements:   store.IncomeStatements(),
		}
	}

	// Lock backend
	var locker shared.Locker = lock.NewKeyedLocker()
	if cfg.Lock.Backend == "redis" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := lock.Connect(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		locker = lock.NewRedisLocker(client, lock.RedisLockerConfig{
			TTL:   cfg.Lock.TTL,
			Retry: cfg.Lock.Retry,
		}, log)
		log.Info("Redis locks enabled", zap.String("addr", cfg.Redis.Addr()))
	}

	clock := shared.ClockFunc(time.Now)
	policy := cfg.Engine.ReportPolicy()
	valuation := appcosting.LossValuation{
		CarcassYieldPercent: policy.CarcassYieldPercent,
		KgPerArroba:         policy.KgPerArroba,
	}

	// Application services
	lotService := appcosting.NewLotService(st.costingScope, locker, eventBus, log)
	allocationService := appcosting.NewAllocationService(
		st.costingScope,
		costing.NewProportionalAllocator(costing.WithRoundingPlaces(cfg.Engine.RoundingPlaces)),
		locker, eventBus, clock, valuation, log,
	)
	indirectService := appcosting.NewIndirectCostService(
		st.costingScope,
		costing.NewRateioEngine(costing.WithRateioRoundingPlaces(cfg.Engine.RoundingPlaces)),
		locker, eventBus, clock, log,
	)
	matcher := finance.NewMatcher(
		finance.WithMinScore(cfg.Engine.Match.MinScore),
		finance.WithAutoAcceptScore(cfg.Engine.Match.AutoAcceptScore),
		finance.WithEpsilon(cfg.Engine.EpsilonDecimal()),
	)
	reconciliationService := appfinance.NewReconciliationService(
		st.financeScope, matcher, locker, eventBus, clock, cfg.Scheduler.BatchConcurrency, log,
	)
	incomeStatementService := appreport.NewIncomeStatementService(
		st.lots, st.links, st.losses, st.accounts, st.statements,
		report.NewGenerator(report.WithPolicy(policy)), log,
	)

	// Nightly reconciliation batch
	var schedule handler.BatchSchedule
	var reconcileScheduler *scheduler.ReconcileScheduler
	if cfg.Scheduler.Enabled {
		reconcileScheduler, err = scheduler.NewReconcileScheduler(scheduler.ReconcileSchedulerConfig{
			Enabled:        true,
			CronSchedule:   cfg.Scheduler.ReconcileCron,
			BatchTimeout:   cfg.Scheduler.BatchTimeout,
			BankAccountRef: cfg.Scheduler.BankAccountRef,
		}, reconciliationService, log)
		if err != nil {
			log.Fatal("Failed to create reconciliation scheduler", zap.Error(err))
		}
		reconcileScheduler.Start()
		schedule = reconcileScheduler
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	engine.Use(
		logger.RequestID(),
		logger.AccessLog(log, r.BasePath()+"/system/ping", r.BasePath()+"/system/ready"),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsCfg),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	r.Register(router.Routes(router.Handlers{
		System:         handler.NewSystemHandler(cfg.App.Name, version, checks),
		Lots:           handler.NewLotHandler(lotService),
		Allocations:    handler.NewAllocationHandler(allocationService),
		IndirectCosts:  handler.NewIndirectCostHandler(indirectService),
		Reconciliation: handler.NewReconciliationHandler(reconciliationService, schedule),
		Reports:        handler.NewReportHandler(incomeStatementService),
	})...)
	routes := r.Setup()
	log.Info("Routes mounted", zap.String("base_path", r.BasePath()), zap.Int("count", len(routes)))
	for _, ri := range routes {
		log.Debug("Route", zap.String("method", ri.Method), zap.String("path", ri.Path))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if reconcileScheduler != nil {
		if err := reconcileScheduler.Stop(ctx); err != nil {
			log.Warn("Reconciliation batch still running at shutdown", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// openDatabase connects with a zap-backed gorm logger and brings the schema
// up to date: SQL migrations on postgres, auto-migration on sqlite
func openDatabase(cfg *config.Config, log *zap.Logger) *persistence.Database {
	gormLog := logger.NewGormLogger(log, logger.GormConfig{
		Level:         logger.MapGormLogLevel(cfg.Log.SQLLevel),
		SlowThreshold: cfg.Log.SlowQuery,
	})
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	if db.Driver() == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to auto-migrate sqlite schema", zap.Error(err))
		}
		return db
	}

	sqlDB, err := db.SQL()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB", zap.Error(err))
	}
	m, err := migration.New(sqlDB, migration.SourceFS(""), log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	// m is not closed: closing it closes sqlDB too
	if err := m.Up(); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}
	return db
}
