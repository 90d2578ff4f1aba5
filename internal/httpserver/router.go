package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"rolegate/internal/auth"
	"rolegate/internal/httpserver/handlers"
	"rolegate/internal/metrics"
	"rolegate/internal/rbac"
	"rolegate/internal/store"
)

func NewRouter(svc *auth.Service, engine *rbac.Engine, st store.Store, lg *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Use(metrics.Instrument)

	r.Post("/v1/auth/register", handlers.Register(svc, lg))
	r.Post("/v1/auth/login", handlers.Login(svc, lg))
	r.Post("/v1/auth/refresh", handlers.Refresh(svc, lg))
	r.Post("/v1/auth/password-reset", handlers.PasswordResetRequest(svc, lg))
	r.Post("/v1/auth/verify-email", handlers.VerifyEmail(svc, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.Bearer(svc.Codec()))
		protected.Get("/v1/me", handlers.Me(svc, lg))
		protected.Get("/v1/me/permissions", handlers.MyPermissions(engine, st, lg))
		protected.Post("/v1/auth/password", handlers.ChangePassword(svc, lg))
		protected.Get("/v1/logs", handlers.MyActivity(engine, st, lg))

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequirePermission(engine, st, "users:manage_roles"))
			admin.Get("/v1/admin/users", handlers.ListUsers(st, lg))
			admin.Post("/v1/admin/users", handlers.AdminCreateUser(svc, lg))
			admin.Patch("/v1/admin/users/{id}", handlers.UpdateUser(st, lg))
			admin.Delete("/v1/admin/users/{id}", handlers.DeleteUser(st, lg))
			admin.Post("/v1/admin/users/{id}/roles/{role}", handlers.AssignRole(engine, st, lg))
			admin.Delete("/v1/admin/users/{id}/roles/{role}", handlers.RemoveRole(engine, st, lg))
			admin.Get("/v1/admin/roles", handlers.ListRoles(st, lg))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}
