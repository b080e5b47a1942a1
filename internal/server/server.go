package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/uppath-hq/apiserver/config"
	"github.com/uppath-hq/apiserver/internal/db"
	"github.com/uppath-hq/apiserver/internal/handlers"
	"github.com/uppath-hq/apiserver/internal/services"
	"github.com/uppath-hq/apiserver/internal/storage"
	"github.com/uppath-hq/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server: it opens the database, runs the idempotent
// schema bootstrap, wires the repositories and services, and registers
// the routes.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.NewSchemaManager(dbConn, log).EnsureSchema(ctx); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	allocator := store.NewIDAllocator(log)
	companyRepo := store.NewCompanyRepository(dbConn, allocator, log)
	userRepo := store.NewUserRepository(dbConn, allocator, log)
	dashboardRepo := store.NewDashboardRepository(dbConn)

	companyService := services.NewCompanyService(companyRepo)
	userService := services.NewUserService(userRepo)
	dashboardService := services.NewDashboardService(dashboardRepo)

	archive, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	var reportService *services.ReportService
	if archive != nil {
		if err := archive.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, err
		}
		log.Info("report archive ready", "bucket", archive.Bucket())
		reportService = services.NewReportService(dashboardService, archive)
	}

	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		jwtSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	}
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	authMiddleware := handlers.RequireAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/companies", func(r chi.Router) {
		handlers.CompanyRouter(r, companyService, userService, authMiddleware)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, authMiddleware)
	})
	router.Route("/dashboard", func(r chi.Router) {
		handlers.DashboardRouter(r, dashboardService, reportService, authMiddleware)
	})
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, jwtSecret)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
