package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"mathmotion/internal/cache"
	"mathmotion/internal/config"
	"mathmotion/internal/database"
	"mathmotion/internal/geo"
	"mathmotion/internal/handlers"
	"mathmotion/internal/logging"
	"mathmotion/internal/metrics"
	authmw "mathmotion/internal/middleware"
	"mathmotion/internal/repository"
	"mathmotion/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisCache := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	defer redisCache.Close()
	// Admin sessions live in redis, so it has to be up.
	if err := redisCache.Ping(ctx); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	m := metrics.Registry("mathmotion")

	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	estimateRepo := repository.NewEstimateRepository(db)
	contractRepo := repository.NewContractRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	store, err := storage.New(cfg.UploadPath, cfg.SignSecret, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	storage.StartJanitor(ctx, store, projectRepo, settingsRepo, cfg.JanitorHour)

	detector := geo.New(cfg.GeoAPIURL, redisCache, logger)
	sessions := handlers.NewAdminSessions(redisCache, adminRepo)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	adminAuthHandler := handlers.NewAdminAuthHandler(adminRepo, userRepo, sessions, cfg.JWTSecret, logger)
	estimateHandler := handlers.NewEstimateHandler(estimateRepo, m, logger)
	requestHandler := handlers.NewRequestHandler(projectRepo, m, logger)
	dashboardHandler := handlers.NewDashboardHandler(projectRepo, estimateRepo, userRepo, notificationRepo, store)
	supportHandler := handlers.NewSupportHandler(messageRepo, notificationRepo, m, logger)
	contractHandler := handlers.NewContractHandler(contractRepo)
	reviewHandler := handlers.NewReviewHandler(reviewRepo)
	geoHandler := handlers.NewGeoHandler(detector)
	fileHandler := handlers.NewFileHandler(store, logger)
	adminHandler := handlers.NewAdminHandler(projectRepo, userRepo, adminRepo, contractRepo,
		reviewRepo, estimateRepo, settingsRepo, notificationRepo, store, m, logger)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(authmw.Instrument(m))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Static files (public)
	fileServer := http.FileServer(http.Dir(cfg.StaticPath))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// Signed downloads; the signature is the only gate.
	r.Get("/files/*", fileHandler.Serve)

	// Public API
	r.Post("/api/auth/signup", authHandler.Signup)
	r.Post("/api/auth/signin", authHandler.Signin)
	r.Post("/api/estimates", estimateHandler.Create)
	r.Post("/api/contracts", contractHandler.Create)
	r.Get("/api/testimonials", reviewHandler.ListApproved)
	r.Get("/api/geo/currency", geoHandler.Currency)

	// Client API
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(cfg.JWTSecret))

		r.Post("/api/auth/signout", authHandler.Signout)
		r.Get("/api/auth/session", authHandler.Session)
		r.Put("/api/auth/profile", authHandler.UpdateProfile)

		r.Post("/api/requests/validate", requestHandler.Validate)
		r.Post("/api/requests", requestHandler.Submit)

		r.Get("/api/projects", dashboardHandler.ListProjects)
		r.Get("/api/projects/{id}", dashboardHandler.GetProject)
		r.Post("/api/projects/{id}/pin", dashboardHandler.Pin)
		r.Delete("/api/projects/{id}/pin", dashboardHandler.Unpin)
		r.Get("/api/projects/{id}/download", dashboardHandler.Download)
		r.Get("/api/estimates", dashboardHandler.ListEstimates)

		r.Get("/api/notifications", dashboardHandler.ListNotifications)
		r.Put("/api/notifications/{id}/read", dashboardHandler.MarkNotificationRead)
		r.Put("/api/notifications/read-all", dashboardHandler.MarkAllNotificationsRead)

		r.Get("/api/support/messages", supportHandler.ListMessages)
		r.Post("/api/support/messages", supportHandler.SendMessage)
	})

	// Admin auth (public)
	r.Post("/admin/api/login", adminAuthHandler.Login)
	r.Post("/admin/api/setup", adminAuthHandler.Setup)

	// Admin API
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAdmin(cfg.JWTSecret, sessions))

		r.Post("/admin/api/logout", adminAuthHandler.Logout)
		r.Get("/admin/api/session", adminAuthHandler.Session)

		r.Get("/admin/api/projects", adminHandler.ListProjects)
		r.Get("/admin/api/projects/{id}", adminHandler.GetProject)
		r.Put("/admin/api/projects/{id}/status", adminHandler.UpdateStatus)
		r.Put("/admin/api/projects/{id}/price", adminHandler.SetFinalPrice)
		r.Put("/admin/api/projects/{id}/notes", adminHandler.UpdateNotes)
		r.Put("/admin/api/projects/{id}/assign", adminHandler.Assign)
		r.Post("/admin/api/projects/{id}/deliverable", adminHandler.UploadDeliverable)
		r.Get("/admin/api/projects/{id}/files", adminHandler.ListFiles)
		r.Put("/admin/api/projects/{id}/files/{fileId}/current", adminHandler.SetCurrentFile)
		r.Delete("/admin/api/projects/{id}/files/{fileId}", adminHandler.DeleteFile)

		r.Get("/admin/api/clients", adminHandler.ListClients)
		r.Get("/admin/api/payments", adminHandler.ListPayments)
		r.Get("/admin/api/estimates", adminHandler.ListEstimates)

		r.Get("/admin/api/contracts", adminHandler.ListContracts)
		r.Put("/admin/api/contracts/{id}/status", adminHandler.UpdateContractStatus)

		r.Get("/admin/api/testimonials", adminHandler.ListReviews)
		r.Post("/admin/api/testimonials", adminHandler.CreateReview)
		r.Put("/admin/api/testimonials/{id}", adminHandler.UpdateReview)
		r.Put("/admin/api/testimonials/{id}/approve", adminHandler.SetReviewApproved)
		r.Put("/admin/api/testimonials/{id}/verify", adminHandler.SetReviewVerified)
		r.Delete("/admin/api/testimonials/{id}", adminHandler.DeleteReview)

		r.Get("/admin/api/settings", adminHandler.GetSettings)
		r.Put("/admin/api/settings", adminHandler.SaveSettings)

		r.Get("/admin/api/team", adminHandler.ListTeam)
		r.Post("/admin/api/team", adminHandler.CreateTeamMember)
		r.Put("/admin/api/team/{id}/active", adminHandler.SetTeamMemberActive)

		r.Get("/admin/api/support/threads", supportHandler.ListThreads)
		r.Get("/admin/api/support/threads/{userId}", supportHandler.GetThread)
		r.Post("/admin/api/support/threads/{userId}/reply", supportHandler.Reply)
	})

	r.NotFound(handlers.NotFound)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		srv.Shutdown(context.Background())
	}()

	logger.Info("server starting", "addr", addr, "uploads", cfg.UploadPath)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
