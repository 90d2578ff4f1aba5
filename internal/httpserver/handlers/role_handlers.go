package handlers

import (
	"net/http"
	"sort"

	"go.uber.org/zap"

	"rolegate/internal/auth"
	"rolegate/internal/rbac"
	"rolegate/internal/store"
)

func ListRoles(st store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roles, err := st.ListRoles(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, roles)
	}
}

// MyPermissions returns the caller's effective permission set, sorted
// for stable output.
func MyPermissions(engine *rbac.Engine, st store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := st.FindUserByID(r.Context(), auth.Subject(r.Context()))
		if err != nil {
			respondErr(w, err)
			return
		}
		perms, err := engine.PermissionsOf(r.Context(), u)
		if err != nil {
			respondErr(w, err)
			return
		}
		names := make([]string, 0, len(perms))
		for name := range perms {
			names = append(names, name)
		}
		sort.Strings(names)
		roles, err := engine.RolesOf(r.Context(), u)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, map[string]any{"roles": roles, "permissions": names})
	}
}
