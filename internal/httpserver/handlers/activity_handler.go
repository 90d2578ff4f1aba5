package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"rolegate/internal/auth"
	"rolegate/internal/rbac"
	"rolegate/internal/store"
)

// MyActivity returns recent audit entries. Regular users see their own;
// admins can pass ?all=1 to see recent entries for everyone.
func MyActivity(engine *rbac.Engine, st store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.Subject(r.Context())
		if r.URL.Query().Get("all") == "1" {
			u, err := st.FindUserByID(r.Context(), uid)
			if err == nil {
				if ok, _ := engine.IsAdmin(r.Context(), u); ok {
					logs, err := st.ListAllActivity(r.Context(), 200)
					if err != nil {
						respondErr(w, err)
						return
					}
					respondJSON(w, logs)
					return
				}
			}
		}
		logs, err := st.ListActivity(r.Context(), uid, 200)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, logs)
	}
}
