package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vacancydesk/backend/internal/auth"
	"github.com/vacancydesk/backend/internal/config"
	"github.com/vacancydesk/backend/internal/ingest"
	"github.com/vacancydesk/backend/internal/listing"
	"github.com/vacancydesk/backend/internal/logger"
	"github.com/vacancydesk/backend/internal/metrics"
	"github.com/vacancydesk/backend/internal/middleware"
	"github.com/vacancydesk/backend/internal/models"
	"github.com/vacancydesk/backend/internal/store"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.SetupDefault(os.Stdout)
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}

	// ── MinIO ────────────────────────────────────────────────
	minioStore, err := store.NewMinioStore(ctx, store.MinioOptions{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		log.Fatalf("minio connect: %v", err)
	}

	// ── Components ───────────────────────────────────────────
	collector := metrics.NewCollector()
	codec := auth.NewTokenCodec(cfg.JWTSecret)
	authHandler := auth.NewHandler(pgStore, codec, cfg.AdminSetupToken, cfg.IsProduction(), collector)
	listingService := listing.NewService(mongoStore, collector)
	listingHandler := listing.NewHandler(mongoStore, listingService, minioStore, collector)
	runner := ingest.NewRunner()
	ingestHandler := ingest.NewHandler(runner, cfg.CronSecret)

	requireAdmin := middleware.RequireAuth(codec, models.RoleAdmin)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(collector.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", collector.Handler())
	r.Get("/cron/daily", ingestHandler.Daily)

	// Auth routes (public)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// Listing routes (public reads, admin writes)
	r.Route("/api/jobs", func(r chi.Router) {
		r.Get("/", listingHandler.List)
		r.Get("/latest", listingHandler.Latest)
		r.Get("/counts/{field}", listingHandler.Counts)
		r.Get("/slug/{slug}", listingHandler.GetBySlug)
		r.Get("/{id}/notification", listingHandler.DownloadNotification)

		r.With(requireAdmin).Post("/", listingHandler.Create)
		r.With(requireAdmin).Put("/{id}", listingHandler.Update)
		r.With(requireAdmin).Delete("/{id}", listingHandler.Delete)
	})

	// Admin namespace
	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/setup", authHandler.AdminSetup)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/stats", listingHandler.Stats)
			r.Get("/jobs", listingHandler.List)
			r.Post("/jobs", listingHandler.Create)
			r.Put("/jobs/{id}", listingHandler.Update)
			r.Delete("/jobs/{id}", listingHandler.Delete)
			r.Post("/jobs/{id}/notification", listingHandler.UploadNotification)
		})
	})

	// ── In-process cron (optional) ───────────────────────────
	if cfg.CronSchedule != "" {
		scheduler := ingest.NewScheduler(runner, cfg.CronSchedule)
		if err := scheduler.Start(ctx); err != nil {
			log.Fatalf("scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Backend listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
