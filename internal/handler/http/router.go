package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lucidata/hr-core-go/internal/domain/user"
	"github.com/lucidata/hr-core-go/internal/handler/http/middleware"
	"github.com/lucidata/hr-core-go/internal/pkg/jwt"
)

type RouterConfig struct {
	Env            string
	AllowedOrigins []string
	LogLevel       slog.Level
	// UploadsDir is served under /uploads when set.
	UploadsDir string
}

type Handlers struct {
	Employee     EmployeeHandler
	Document     DocumentHandler
	Workflow     WorkflowHandler
	Feedback     FeedbackHandler
	Admin        AdminHandler
	Notification NotificationHandler
	SelfService  SelfServiceHandler
}

func NewRouter(cfg RouterConfig, jwtService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "lucidata-hr"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	}

	ja := jwtService.JWTAuth()
	auth := middleware.AuthRequired(jwtService)
	perm := middleware.RequirePermission

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot send headers, so the stream also accepts ?jwt=
		r.With(jwtauth.Verify(ja, jwtauth.TokenFromHeader, jwtauth.TokenFromQuery), auth).
			Get("/notifications/stream", h.Notification.Stream)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))
			r.Use(jwtauth.Verifier(ja))
			r.Use(auth)

			r.Route("/employees", func(r chi.Router) {
				r.With(perm(user.PermissionEmployeeView)).Get("/", h.Employee.ListEmployees)
				r.With(perm(user.PermissionEmployeeView)).Get("/org-chart", h.Employee.OrgChart)
				r.With(perm(user.PermissionEmployeeView)).Get("/stats", h.Employee.Stats)
				r.With(perm(user.PermissionEmployeeView)).Get("/{id}", h.Employee.GetEmployee)

				r.Group(func(r chi.Router) {
					r.Use(perm(user.PermissionEmployeeManage))
					r.Post("/", h.Employee.CreateEmployee)
					r.Put("/{id}", h.Employee.UpdateEmployee)
					r.Delete("/{id}", h.Employee.DeleteEmployee)
				})
			})

			r.Route("/documents", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(perm(user.PermissionDocumentView))
					r.Get("/", h.Document.List)
					r.Get("/expiring", h.Document.Expiring)
					r.Get("/{id}", h.Document.Get)
				})
				r.Group(func(r chi.Router) {
					r.Use(perm(user.PermissionDocumentManage))
					r.Post("/", h.Document.Create)
					r.Put("/{id}", h.Document.Update)
					r.Delete("/{id}", h.Document.Delete)
				})
			})

			r.Route("/workflows", func(r chi.Router) {
				r.With(perm(user.PermissionWorkflowView)).Get("/", h.Workflow.List)
				r.With(perm(user.PermissionWorkflowView)).Get("/{id}", h.Workflow.Get)
				r.With(perm(user.PermissionWorkflowManage)).Post("/", h.Workflow.Create)
				r.With(perm(user.PermissionSelfCreate)).Post("/{id}/submit", h.Workflow.Submit)
				r.With(perm(user.PermissionSelfCreate)).Delete("/{id}", h.Workflow.Delete)
				r.With(perm(user.PermissionWorkflowDecide)).Post("/{id}/decisions", h.Workflow.Decide)
				r.With(perm(user.PermissionWorkflowComment)).Post("/{id}/comments", h.Workflow.Comment)
				r.With(perm(user.PermissionSelfCreate)).Post("/{id}/attachments", h.Workflow.Attach)
			})

			r.Route("/feedback", func(r chi.Router) {
				r.With(perm(user.PermissionFeedbackSubmit)).Post("/", h.Feedback.Submit)
				r.With(perm(user.PermissionFeedbackView)).Get("/", h.Feedback.List)
				r.With(perm(user.PermissionFeedbackView)).Get("/dashboard", h.Feedback.Dashboard)
				r.With(perm(user.PermissionFeedbackManage)).Put("/{id}/analysis", h.Feedback.RecordAnalysis)
			})

			r.With(perm(user.PermissionAuditView)).Get("/audit", h.Admin.ListAudit)

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.Admin.GetSettings)
				r.With(perm(user.PermissionSettingsManage)).Put("/", h.Admin.UpdateSettings)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
				r.Delete("/{id}", h.Notification.Delete)
			})

			r.Route("/me", func(r chi.Router) {
				r.Use(middleware.RequireEmployeeLink)
				r.Use(perm(user.PermissionSelfView))
				r.Get("/documents", h.SelfService.MyDocuments)
				r.Get("/workflows", h.SelfService.MyWorkflows)
				r.With(perm(user.PermissionSelfCreate)).Post("/workflows", h.SelfService.CreateMyWorkflow)
			})
		})
	})
	return r
}
