package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nightPassAPI/handlers"
	"nightPassAPI/internal/access"
	"nightPassAPI/internal/config"
	"nightPassAPI/internal/notification"
	"nightPassAPI/internal/qr"
	"nightPassAPI/internal/sse"
	"nightPassAPI/internal/workers"
	"nightPassAPI/middleware"
	"nightPassAPI/services"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("PRETTY_LOGS") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	qrKey, err := base64.StdEncoding.DecodeString(cfg.QRSecretKey)
	if err != nil {
		log.Fatal().Err(err).Msg("QR_SECRET_KEY is not valid base64")
	}
	codec, err := qr.NewCodec(qrKey)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid QR key")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse database URL")
	}
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create connection pool")
	}
	defer func() {
		log.Info().Msg("closing database connection pool")
		dbPool.Close()
	}()
	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	log.Info().Msg("connected to database")

	// Services
	notifier := notification.NewService(dbPool)
	fcmService, err := notification.NewFCMService(cfg.FCMServiceAccountJSON, cfg.FCMCredentialsFile)
	if err != nil {
		log.Warn().Err(err).Msg("could not initialize FCM, staff push disabled")
	} else {
		notifier.SetPushProvider(fcmService)
		log.Info().Msg("FCM push provider initialized")
	}

	clubService := services.NewClubService(dbPool)
	eventService := services.NewEventService(dbPool)
	menuService := services.NewMenuService(dbPool)
	authService := services.NewAuthService(dbPool)
	policy := access.NewPolicy(clubService)
	checkoutService := services.NewCheckoutService(dbPool, codec, clubService, eventService)
	validationService := services.NewValidationService(dbPool, codec, policy, clubService, eventService)

	registry := sse.NewRegistry()
	transactionService := services.NewTransactionService(dbPool, registry, notifier)

	middleware.InitPrometheus()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, notifier, []byte(cfg.JWTSecret))
	clubHandler := handlers.NewClubHandler(clubService, eventService)
	menuHandler := handlers.NewMenuHandler(menuService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	validationHandler := handlers.NewValidationHandler(validationService)
	wompiHandler := handlers.NewWompiHandler(transactionService, cfg.WompiEventsSecret, cfg.WompiStrict)
	sseHandler := handlers.NewSSEHandler(registry, transactionService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()
	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass, promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "nightpass-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/wompi", wompiHandler.HandleWompiWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER (public storefront)
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	api.HandleFunc("/clubs", clubHandler.GetClubs).Methods("GET")
	api.HandleFunc("/clubs/{id}", clubHandler.GetClub).Methods("GET")
	api.HandleFunc("/clubs/{id}/events", clubHandler.GetClubEvents).Methods("GET")
	api.HandleFunc("/clubs/{id}/menu", menuHandler.GetClubMenu).Methods("GET")
	api.HandleFunc("/clubs/{id}/tickets", checkoutHandler.GetClubTickets).Methods("GET")
	api.HandleFunc("/events/{id}", clubHandler.GetEvent).Methods("GET")

	api.HandleFunc("/checkout/tickets", checkoutHandler.CheckoutTicket).Methods("POST")
	api.HandleFunc("/checkout/menu", checkoutHandler.CheckoutMenu).Methods("POST")
	api.HandleFunc("/purchases/{id}/qr", checkoutHandler.TicketQR).Methods("GET")
	api.HandleFunc("/purchases/{id}/menu-qr", checkoutHandler.BundledMenuQR).Methods("GET")
	api.HandleFunc("/orders/{id}/qr", checkoutHandler.MenuQR).Methods("GET")

	api.HandleFunc("/transactions/{reference}", transactionHandler.GetTransaction).Methods("GET")
	api.HandleFunc("/transactions/{reference}/events", sseHandler.StreamTransaction).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (STAFF JWT)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.StaffAuthMiddleware([]byte(cfg.JWTSecret)))

	protected.HandleFunc("/validate/ticket", validationHandler.ValidateTicket).Methods("POST")
	protected.HandleFunc("/validate/menu", validationHandler.ValidateMenu).Methods("POST")
	protected.HandleFunc("/staff/register-device", authHandler.RegisterDevice).Methods("POST")

	stopCleanup := workers.StartCartCleanup(dbPool,
		time.Duration(cfg.CartTTLMinutes)*time.Minute,
		time.Duration(cfg.CartSweepMinutes)*time.Minute)
	defer stopCleanup()

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 0, // SSE streams outlive any fixed write deadline
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("error starting server")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server shutdown complete")
}
