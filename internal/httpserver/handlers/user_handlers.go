package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"rolegate/internal/auth"
	"rolegate/internal/rbac"
	"rolegate/internal/store"
)

func ListUsers(st store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := st.ListUsers(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, users)
	}
}

func AdminCreateUser(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		u, err := svc.Register(r.Context(), auth.RegisterParams{
			Email:     req.Email,
			Username:  req.Username,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			respondErr(w, err)
			return
		}
		respondCreated(w, map[string]any{"id": u.ID})
	}
}

func UpdateUser(st store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			FirstName *string `json:"first_name"`
			LastName  *string `json:"last_name"`
			IsActive  *bool   `json:"is_active"`
		}
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		u, err := st.FindUserByID(r.Context(), id)
		if err != nil {
			respondErr(w, err)
			return
		}
		if req.FirstName != nil {
			u.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			u.LastName = *req.LastName
		}
		if req.IsActive != nil {
			u.IsActive = *req.IsActive
		}
		if err := st.UpdateUser(r.Context(), u); err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, map[string]any{"updated": true})
	}
}

// DeleteUser soft-deletes: the row keeps its deletion timestamp and is
// excluded from every authentication path from then on.
func DeleteUser(st store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := st.SoftDeleteUser(r.Context(), id); err != nil {
			respondErr(w, err)
			return
		}
		lg.Infow("user soft-deleted", "user_id", id)
		respondJSON(w, map[string]any{"deleted": true})
	}
}

func AssignRole(engine *rbac.Engine, st store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		roleName := chi.URLParam(r, "role")
		u, err := st.FindUserByID(r.Context(), id)
		if err != nil {
			respondErr(w, err)
			return
		}
		var assignedBy *string
		if sub := auth.Subject(r.Context()); sub != "" {
			assignedBy = &sub
		}
		if err := engine.AssignRole(r.Context(), u, roleName, assignedBy); err != nil {
			respondErr(w, err)
			return
		}
		lg.Infow("role assigned", "user_id", id, "role", roleName)
		respondJSON(w, map[string]any{"assigned": true})
	}
}

func RemoveRole(engine *rbac.Engine, st store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		roleName := chi.URLParam(r, "role")
		u, err := st.FindUserByID(r.Context(), id)
		if err != nil {
			respondErr(w, err)
			return
		}
		if err := engine.RemoveRole(r.Context(), u, roleName); err != nil {
			respondErr(w, err)
			return
		}
		lg.Infow("role removed", "user_id", id, "role", roleName)
		respondJSON(w, map[string]any{"removed": true})
	}
}
