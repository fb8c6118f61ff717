package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucidata/hr-core-go/internal/app"
	"github.com/lucidata/hr-core-go/internal/config"
	appHTTP "github.com/lucidata/hr-core-go/internal/handler/http"
	"github.com/lucidata/hr-core-go/internal/pkg/cron"
	"github.com/lucidata/hr-core-go/internal/pkg/jwt"
	"github.com/lucidata/hr-core-go/internal/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := app.OpenRepositories(ctx, cfg, true)
	if err != nil {
		fmt.Println("Error opening record store:", err)
		return
	}
	defer repos.Close()

	fileStorage, err := storage.NewLocalStorage(cfg.Files.BasePath, cfg.Files.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize local storage:", err)
	}

	services := app.NewServices(cfg, repos, fileStorage)
	defer services.Stop()

	jwtService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		log.Fatal("Failed to initialize JWT service:", err)
	}

	scheduler := cron.NewScheduler()
	cron.NewDocumentJobs(services.Document, services.Notification, cfg.Documents.ScanInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Env:            cfg.App.Env,
		AllowedOrigins: []string{cfg.App.FrontendURL},
		LogLevel:       cfg.SlogLevel(),
		UploadsDir:     cfg.Files.BasePath,
	}, jwtService, appHTTP.Handlers{
		Employee:     appHTTP.NewEmployeeHandler(services.Employee),
		Document:     appHTTP.NewDocumentHandler(services.Document),
		Workflow:     appHTTP.NewWorkflowHandler(services.Workflow),
		Feedback:     appHTTP.NewFeedbackHandler(services.Feedback),
		Admin:        appHTTP.NewAdminHandler(services.Audit, services.SettingsSvc),
		Notification: appHTTP.NewNotificationHandler(services.Notification),
		SelfService:  appHTTP.NewSelfServiceHandler(services.Document, services.Workflow),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
