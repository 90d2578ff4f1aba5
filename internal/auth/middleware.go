package auth

import (
	"net/http"
	"strings"

	"rolegate/internal/rbac"
	"rolegate/internal/store"
)

// Bearer verifies the Authorization access token and stores the
// subject user ID on the request context. Verification is stateless;
// no store lookup happens here.
func Bearer(codec *TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			userID, err := codec.VerifyAccessToken(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), userID)))
		})
	}
}

// RequirePermission loads the authenticated user and checks a single
// permission through the RBAC engine. Mount inside a Bearer group.
func RequirePermission(engine *rbac.Engine, st store.Store, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := st.FindUserByID(r.Context(), Subject(r.Context()))
			if err != nil {
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}
			ok, err := engine.HasPermission(r.Context(), u, permission)
			if err != nil {
				http.Error(w, "authorization check failed", http.StatusInternalServerError)
				return
			}
			if !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits only holders of the admin or super_admin role.
func RequireAdmin(engine *rbac.Engine, st store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := st.FindUserByID(r.Context(), Subject(r.Context()))
			if err != nil {
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}
			ok, err := engine.IsAdmin(r.Context(), u)
			if err != nil {
				http.Error(w, "authorization check failed", http.StatusInternalServerError)
				return
			}
			if !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
