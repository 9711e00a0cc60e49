package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourorg/staffdesk/internal/handler"
	"github.com/yourorg/staffdesk/internal/infrastructure/logger"
	"github.com/yourorg/staffdesk/internal/infrastructure/redis"
	"github.com/yourorg/staffdesk/internal/observability/metrics"
	"github.com/yourorg/staffdesk/internal/observability/tracing"
	"github.com/yourorg/staffdesk/internal/repository"
	"github.com/yourorg/staffdesk/internal/security"
	"github.com/yourorg/staffdesk/internal/security/audit"
	"github.com/yourorg/staffdesk/internal/security/auth"
	"github.com/yourorg/staffdesk/internal/security/middleware"
	"github.com/yourorg/staffdesk/internal/security/ratelimit"
	"github.com/yourorg/staffdesk/internal/service"
	"github.com/yourorg/staffdesk/internal/worker"
	"github.com/yourorg/staffdesk/pkg/config"
	"github.com/yourorg/staffdesk/pkg/database"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting staffdesk server", slog.String("environment", cfg.Environment))

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless OTEL_EXPORTER_OTLP_ENDPOINT is set)
	shutdownTracing, err := tracing.Init(ctx, log, "staffdesk", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	// 4. Connect to Postgres and run migrations
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Initialize Redis; directory listings fall back to uncached reads
	// when it is unavailable
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, directory cache disabled", slog.String("error", err.Error()))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var dirCache service.DirectoryCache
	if redisClient != nil {
		dirCache = redisClient
	}

	// 6. Initialize repositories
	db := pool.GetDB()
	userRepo := repository.NewPostgresUserRepository(db, log)
	entryRepo := repository.NewPostgresWorkEntryRepository(db, log)
	payrollRepo := repository.NewPostgresPayrollRepository(db, log)
	contactRepo := repository.NewPostgresContactRepository(db, log)

	// 7. Security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "staffdesk")
	authz := security.NewAuthorizationService(log)
	rateLimiter := ratelimit.NewLimiter(cfg.AuthRateLimitMax, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 8. Initialize services
	authService := service.NewAuthService(userRepo, tokenManager, cfg.TokenTTL, log)
	worksheetService := service.NewWorksheetService(entryRepo, authz, log)
	payrollService := service.NewPayrollService(userRepo, payrollRepo, cfg.PaymentsPageSize, log)
	staffService := service.NewStaffService(userRepo, payrollRepo, dirCache, cfg.DirectoryCacheTTL, log)
	contactService := service.NewContactService(contactRepo, log)

	// 9. Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	worksheetHandler := handler.NewWorksheetHandler(worksheetService, log)
	payrollHandler := handler.NewPayrollHandler(payrollService, staffService, auditLogger, log)
	staffHandler := handler.NewStaffHandler(staffService, auditLogger, log)
	contactHandler := handler.NewContactHandler(contactService, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient, log)

	authenticated := middleware.Authenticate(tokenManager, log)
	protect := func(perm security.Permission, h http.HandlerFunc) http.Handler {
		return authenticated(middleware.RequirePermission(authz, perm)(h))
	}
	throttled := middleware.RateLimitAuth(rateLimiter, cfg.AuthRateLimitMax, log)

	// 10. Setup HTTP routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", healthHandler.Root)
	mux.HandleFunc("GET /healthz", healthHandler.Live)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("POST /register", throttled(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /login", throttled(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /contact", throttled(http.HandlerFunc(contactHandler.Submit)))
	mux.Handle("GET /contact", protect(security.PermViewMessages, contactHandler.List))

	mux.Handle("POST /work-sheets", protect(security.PermAddWorksheet, worksheetHandler.Add))
	mux.Handle("GET /work-sheets", protect(security.PermListWorksheets, worksheetHandler.List))
	mux.Handle("PATCH /work-sheets/{id}", protect(security.PermEditWorksheet, worksheetHandler.Update))
	mux.Handle("DELETE /work-sheets/{id}", protect(security.PermDeleteWorksheet, worksheetHandler.Delete))

	mux.Handle("GET /payments", protect(security.PermViewOwnPayments, payrollHandler.ListOwnPayments))

	mux.Handle("GET /employee-list", protect(security.PermListEmployees, staffHandler.ListEmployees))
	mux.Handle("GET /employee-details/{id}", protect(security.PermViewEmployeeDetails, staffHandler.Details))
	mux.Handle("GET /all-employee-list", protect(security.PermListVerifiedStaff, staffHandler.ListVerifiedStaff))

	mux.Handle("POST /payroll", protect(security.PermRequestPayroll, payrollHandler.Request))
	mux.Handle("GET /payroll", protect(security.PermListPayroll, payrollHandler.ListRequests))
	mux.Handle("PATCH /payroll/{id}/pay", protect(security.PermPayPayroll, payrollHandler.Pay))

	mux.Handle("PATCH /users/{id}/verify", protect(security.PermToggleVerified, payrollHandler.ToggleVerified))
	mux.Handle("PATCH /users/{id}/fire", protect(security.PermFireUser, staffHandler.Fire))
	mux.Handle("PATCH /users/{id}/make-hr", protect(security.PermPromoteUser, staffHandler.MakeHR))
	mux.Handle("PATCH /users/{id}/salary", protect(security.PermAdjustSalary, staffHandler.AdjustSalary))

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> CORS; otelhttp wraps the whole chain
	rootHandler := otelhttp.NewHandler(
		withRequestID(metrics.HTTPMetricsMiddleware(handlerWithCORS), log),
		"staffdesk",
	)

	// 11. Start stats worker in background
	statsWorker := worker.NewStatsWorker(userRepo, payrollRepo, log, cfg.StatsInterval)
	go statsWorker.Start(ctx)

	// 12. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("auth_rate_limit", cfg.AuthRateLimitMax),
		slog.String("rate_limit_window", "1m"),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // stop stats worker
	rateLimiter.Stop()
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
