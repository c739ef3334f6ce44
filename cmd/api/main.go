package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	metrics "github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/mailchimp"
	"github.com/xavierca1/ligue-leads/internal/infra/lock"
	"github.com/xavierca1/ligue-leads/internal/infra/mail"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
	"github.com/xavierca1/ligue-leads/internal/infra/worker"
	"github.com/xavierca1/ligue-leads/internal/scoring"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

const recalculationLockKey = "leads:recalculate"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.Database.URL)
	if err != nil {
		log.Fatalf("❌ database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("❌ migrate: %v", err)
	}

	// 1. Repositories and scoring
	leadRepo := database.NewLeadRepository(db)
	companyRepo := database.NewCompanyRepository(db)
	scorer := scoring.NewScorer(leadRepo)
	scoreMetrics := metrics.NewScoreMetrics()

	// 2. Recalculation lock
	var runLock usecase.RunLock = lock.NewLocalLock()
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		runLock = lock.NewRedisLock(rdb, recalculationLockKey, cfg.Recalculation.LockTTL)
	} else {
		log.Println("⚠️ REDIS_ADDR not set, recalculation lock is process-local")
	}

	// 3. Alerts
	var alerts usecase.AlertSender
	if cfg.Mail.Host != "" {
		alerts = mail.NewEmailSender(
			cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From, cfg.Mail.AppURL,
		)
	}

	// 4. Sync queue
	var producer queue.QueueProducerInterface
	var rabbitMQ *queue.RabbitMQ
	if cfg.RabbitMQ.Host != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
		if err != nil {
			log.Fatalf("❌ rabbitmq: %v", err)
		}
		defer rabbitMQ.Close()
		producer = queue.NewProducer(rabbitMQ.Ch)
	} else {
		log.Println("⚠️ RABBITMQ_HOST not set, lead sync is disabled")
	}

	// 5. Use cases
	saveLeadUC := usecase.NewSaveLeadUseCase(leadRepo, companyRepo, scorer, alerts, scoreMetrics)
	leadUC := usecase.NewLeadUseCase(leadRepo)
	companyUC := usecase.NewCompanyUseCase(companyRepo, leadRepo)
	recalculateUC := usecase.NewRecalculateScoresUseCase(leadRepo, scorer, runLock, scoreMetrics)
	applyTagUC := usecase.NewApplyTagUseCase(leadRepo)
	syncLeadsUC := usecase.NewSyncLeadsUseCase(leadRepo, producer)

	// 6. Handlers
	leadHandler := handlers.NewLeadHandler(saveLeadUC, leadUC)
	defer leadHandler.Close()
	companyHandler := handlers.NewCompanyHandler(companyUC)
	bulkHandler := handlers.NewBulkHandler(recalculateUC, applyTagUC, syncLeadsUC)

	var broker handlers.BrokerConn
	if rabbitMQ != nil {
		broker = rabbitMQ.Conn
	}
	var redisPinger handlers.RedisPinger
	if rdb != nil {
		redisPinger = rdb
	}
	healthHandler := handlers.NewHealthHandler(db, broker, redisPinger, cfg.Version)

	// 7. Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(metrics.Metrics)

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/leads", func(r chi.Router) {
		r.Get("/", leadHandler.List)
		r.Post("/", leadHandler.Create)
		r.Post("/recalculate", bulkHandler.Recalculate)
		r.Post("/tags", bulkHandler.ApplyTag)
		r.Post("/sync", bulkHandler.Sync)
		r.Get("/{email}", leadHandler.Get)
		r.Put("/{email}", leadHandler.Update)
		r.Delete("/{email}", leadHandler.Delete)
	})

	r.Route("/companies", func(r chi.Router) {
		r.Get("/", companyHandler.List)
		r.Post("/", companyHandler.Create)
		r.Get("/{domain}", companyHandler.Get)
		r.Put("/{domain}", companyHandler.Update)
		r.Delete("/{domain}", companyHandler.Delete)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("🔥 ligue-leads %s listening on %s", cfg.Version, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if rabbitMQ != nil {
		syncWorker := queue.NewWorker(
			rabbitMQ.Ch,
			mailchimp.NewClient(cfg.Mailchimp.APIKey, cfg.Mailchimp.ListID),
			kommo.NewClient(cfg.Kommo.BaseURL, cfg.Kommo.Token, cfg.Kommo.StatusID),
		)
		syncWorker.Metrics = scoreMetrics
		g.Go(func() error {
			return syncWorker.Start(gctx, queue.QueueName)
		})
	}

	if cfg.Recalculation.Interval > 0 {
		recalcWorker := worker.NewRecalculationWorker(recalculateUC, cfg.Recalculation.Interval)
		g.Go(func() error {
			recalcWorker.Start(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("❌ shutdown: %v", err)
	}
	log.Println("👋 ligue-leads stopped")
}
