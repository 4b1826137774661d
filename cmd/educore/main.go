package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/educore-erp/educore-erp/internal/app"
	"github.com/educore-erp/educore-erp/internal/auth"
	"github.com/educore-erp/educore-erp/internal/dashboard"
	"github.com/educore-erp/educore-erp/internal/education"
	"github.com/educore-erp/educore-erp/internal/erpnext"
	"github.com/educore-erp/educore-erp/internal/partners"
	"github.com/educore-erp/educore-erp/internal/rbac"
	"github.com/educore-erp/educore-erp/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	client := erpnext.NewClient(erpnext.Config{
		BaseURL:      cfg.ERPNextBaseURL,
		APIKey:       cfg.ERPNextAPIKey,
		APISecret:    cfg.ERPNextAPISecret,
		Username:     cfg.ERPNextUsername,
		Password:     cfg.ERPNextPassword,
		Timeout:      cfg.ERPNextTimeout,
		ProbeTimeout: cfg.ERPNextProbeTimeout,
	}, logger)

	rbacService := rbac.NewService(rbac.DefaultConfig())
	resolver := rbac.NewStaticResolver()

	sessions := auth.NewSessionStore(cfg.SessionSecret, cfg.IsProduction(), resolver, logger)
	authService := auth.NewService(logger, client, sessions, resolver)
	authHandler := auth.NewHandler(logger, authService, sessions, templates)

	proxyHandler := erpnext.NewHandler(logger, client)

	educationService := education.NewService(client)
	educationHandler := education.NewHandler(logger, educationService, rbacService, sessions, templates)

	partnersService := partners.NewService(client)
	partnersHandler := partners.NewHandler(logger, partnersService, rbacService, sessions, templates)

	dashboardService := dashboard.NewService(logger, educationService, partnersService)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, rbacService, sessions, templates, client)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		AuthService:      authService,
		AuthHandler:      authHandler,
		ProxyHandler:     proxyHandler,
		EducationHandler: educationHandler,
		PartnersHandler:  partnersHandler,
		DashboardHandler: dashboardHandler,
		RBACMiddleware:   rbac.Middleware{Service: rbacService, Logger: logger},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
