package rest

import (
	"log/slog"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/leaveflow/internal/auth"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/department"
	"github.com/frahmantamala/leaveflow/internal/employee"
	"github.com/frahmantamala/leaveflow/internal/entitlement"
	"github.com/frahmantamala/leaveflow/internal/leave"
	"github.com/frahmantamala/leaveflow/internal/stats"
	"github.com/frahmantamala/leaveflow/internal/transport/middleware"
	"github.com/frahmantamala/leaveflow/internal/transport/swagger"
)

type Handlers struct {
	Health        *HealthHandler
	Auth          *auth.Handler
	Authorization *auth.Authorization
	Employee      *employee.Handler
	Department    *department.Handler
	Leave         *leave.Handler
	Stats         *stats.Handler
	Entitlement   *entitlement.Handler
	// OpenAPI is served at /openapi.yml when set.
	OpenAPI *swagger.Document
}

// RegisterAllRoutes mounts the API under /api/v1. Everything except health
// probes, the auth endpoints and the API docs requires a bearer token.
func RegisterAllRoutes(router chi.Router, h Handlers, allowedOrigins []string, logger *slog.Logger) {
	router.Use(middleware.ContextLogger(logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORS(allowedOrigins))

	if h.OpenAPI != nil {
		router.Get("/openapi.yml", h.OpenAPI.ServeHTTP)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", h.Health.Ping)
		r.Get("/health", h.Health.Health)

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Auth.Register)
			ar.Post("/login", h.Auth.Login)
			ar.Post("/forgot-password", h.Auth.ForgotPassword)
			ar.Post("/reset-password", h.Auth.ResetPassword)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/me", h.Employee.GetCurrentEmployee)
			pr.Get("/departments", h.Department.ListDepartments)

			pr.Route("/leaves", func(lr chi.Router) {
				lr.Post("/", h.Leave.CreateLeave)
				lr.Get("/mine", h.Leave.ListMyLeaves)
			})

			pr.Route("/manager/leaves", func(mr chi.Router) {
				mr.With(h.Authorization.Require(identity.CapViewDepartmentLeaves)).Get("/", h.Leave.ListScopedLeaves)
				mr.Group(func(dr chi.Router) {
					dr.Use(h.Authorization.Require(identity.CapDecideLeave))
					dr.Post("/{id}/approve", h.Leave.ApproveLeave)
					dr.Post("/{id}/reject", h.Leave.RejectLeave)
				})
			})

			pr.Route("/hr", func(hr chi.Router) {
				hr.With(h.Authorization.Require(identity.CapViewAllLeaves)).Get("/leaves", h.Leave.ListScopedLeaves)
				hr.With(h.Authorization.Require(identity.CapViewStatistics)).Get("/statistics", h.Stats.GetStatistics)
				hr.With(h.Authorization.Require(identity.CapManageDepartments)).Post("/departments", h.Department.CreateDepartment)
				hr.With(h.Authorization.Require(identity.CapRecompute)).Post("/entitlements/recompute", h.Entitlement.Recompute)

				hr.Route("/employees", func(er chi.Router) {
					er.Use(h.Authorization.Require(identity.CapManageEmployees))
					er.Get("/", h.Employee.ListEmployees)
					er.Post("/", h.Employee.CreateEmployee)
					er.Get("/by-department", h.Employee.ListByDepartment)
					er.Put("/{id}/role", h.Employee.UpdateRole)
					er.Put("/{id}/department", h.Employee.UpdateDepartment)
					er.Put("/{id}/hire-date", h.Employee.UpdateHireDate)
					er.Delete("/{id}", h.Employee.DeleteEmployee)
					er.With(h.Authorization.Require(identity.CapViewAllLeaves)).Get("/{id}/leave-status", h.Leave.GetEmployeeLeaveStatus)
				})
			})
		})
	})
}
