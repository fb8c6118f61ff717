package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lucidata/hr-core-go/internal/config"
	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/document"
	"github.com/lucidata/hr-core-go/internal/domain/employee"
	"github.com/lucidata/hr-core-go/internal/domain/feedback"
	"github.com/lucidata/hr-core-go/internal/domain/notification"
	"github.com/lucidata/hr-core-go/internal/domain/settings"
	"github.com/lucidata/hr-core-go/internal/domain/workflow"
	"github.com/lucidata/hr-core-go/internal/pkg/database"
	"github.com/lucidata/hr-core-go/internal/pkg/sse"
	"github.com/lucidata/hr-core-go/internal/pkg/storage"
	"github.com/lucidata/hr-core-go/internal/repository/postgresql"
	"github.com/lucidata/hr-core-go/internal/repository/sqlite"
	auditService "github.com/lucidata/hr-core-go/internal/service/audit"
	documentService "github.com/lucidata/hr-core-go/internal/service/document"
	employeeService "github.com/lucidata/hr-core-go/internal/service/employee"
	feedbackService "github.com/lucidata/hr-core-go/internal/service/feedback"
	"github.com/lucidata/hr-core-go/internal/service/file"
	notificationService "github.com/lucidata/hr-core-go/internal/service/notification"
	settingsService "github.com/lucidata/hr-core-go/internal/service/settings"
	workflowService "github.com/lucidata/hr-core-go/internal/service/workflow"
)

// Repositories is one record store behind the domain interfaces.
type Repositories struct {
	Tx           database.Transactor
	Employee     employee.EmployeeRepository
	Document     document.Repository
	Workflow     workflow.Repository
	Feedback     feedback.Repository
	Audit        audit.Repository
	Notification notification.Repository
	Settings     settings.Repository

	close func()
}

func (r Repositories) Close() {
	if r.close != nil {
		r.close()
	}
}

// OpenRepositories opens the store named by cfg.Storage.Driver and, when
// migrate is set, applies pending schema migrations.
func OpenRepositories(ctx context.Context, cfg *config.Config, migrate bool) (Repositories, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return Repositories{}, fmt.Errorf("connect postgres: %w", err)
		}
		if migrate {
			if err := database.MigratePostgreSQL(ctx, db); err != nil {
				db.Close()
				return Repositories{}, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		return PostgresRepositories(db), nil

	case config.StorageDriverSQLite:
		db, err := database.NewSQLiteDB(cfg.Storage.SQLitePath)
		if err != nil {
			return Repositories{}, fmt.Errorf("open sqlite: %w", err)
		}
		if migrate {
			if err := database.MigrateSQLite(ctx, db); err != nil {
				db.Close()
				return Repositories{}, fmt.Errorf("migrate sqlite: %w", err)
			}
		}
		repos := SQLiteRepositories(db)
		repos.close = func() { db.Close() }
		return repos, nil
	}
	return Repositories{}, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}

func PostgresRepositories(db *database.DB) Repositories {
	return Repositories{
		Tx:           postgresql.NewTransactor(db),
		Employee:     postgresql.NewEmployeeRepository(db),
		Document:     postgresql.NewDocumentRepository(db),
		Workflow:     postgresql.NewWorkflowRepository(db),
		Feedback:     postgresql.NewFeedbackRepository(db),
		Audit:        postgresql.NewAuditRepository(db),
		Notification: postgresql.NewNotificationRepository(db),
		Settings:     postgresql.NewSettingsRepository(db),
		close:        db.Close,
	}
}

func SQLiteRepositories(db *sql.DB) Repositories {
	return Repositories{
		Tx:           sqlite.NewTransactor(db),
		Employee:     sqlite.NewEmployeeRepository(db),
		Document:     sqlite.NewDocumentRepository(db),
		Workflow:     sqlite.NewWorkflowRepository(db),
		Feedback:     sqlite.NewFeedbackRepository(db),
		Audit:        sqlite.NewAuditRepository(db),
		Notification: sqlite.NewNotificationRepository(db),
		Settings:     sqlite.NewSettingsRepository(db),
	}
}

// Services is the application layer built over one set of repositories.
type Services struct {
	Settings     *settingsService.Provider
	SettingsSvc  settings.SettingsService
	Audit        audit.AuditService
	Employee     employee.EmployeeService
	Document     document.DocumentService
	Workflow     workflow.WorkflowService
	Feedback     feedback.FeedbackService
	Notification notification.Service
}

// NewServices wires every service. Call Stop when done so queued
// notifications are flushed.
func NewServices(cfg *config.Config, repos Repositories, fileStorage storage.FileStorage) Services {
	defaults := settings.Settings{
		WarnDays:   cfg.Documents.WarnDays,
		AuditActor: cfg.Audit.Actor,
	}
	provider := settingsService.NewProvider(repos.Settings, defaults)
	auditSvc := auditService.NewAuditService(repos.Audit, provider)
	hub := sse.NewHub()
	notifSvc := notificationService.NewNotificationService(repos.Notification, hub, notificationService.Config{})
	fileSvc := file.NewFileService(fileStorage)

	return Services{
		Settings:     provider,
		SettingsSvc:  settingsService.NewSettingsService(provider, repos.Settings, auditSvc),
		Audit:        auditSvc,
		Employee:     employeeService.NewEmployeeService(repos.Tx, repos.Employee, auditSvc),
		Document:     documentService.NewDocumentService(repos.Document, fileSvc, provider, auditSvc),
		Workflow:     workflowService.NewWorkflowService(repos.Workflow, fileSvc, auditSvc, notifSvc),
		Feedback:     feedbackService.NewFeedbackService(repos.Feedback, auditSvc),
		Notification: notifSvc,
	}
}

func (s Services) Stop() {
	s.Notification.Stop()
	slog.Debug("Services stopped")
}
