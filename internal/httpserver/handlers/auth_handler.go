package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"rolegate/internal/auth"
	"rolegate/internal/models"
)

type registerReq struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,max=100"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type userResp struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
	CreatedAt  string `json:"created_at"`
}

func toUserResp(u *models.User) userResp {
	return userResp{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func Register(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
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
		respondCreated(w, toUserResp(u))
	}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Login(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, pair, err := svc.Login(r.Context(), req.Email, req.Password, auth.LoginMeta{
			IPAddress: r.RemoteAddr,
			UserAgent: r.UserAgent(),
		})
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, pair)
	}
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func Refresh(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		pair, err := svc.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, pair)
	}
}

func Me(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.CurrentUser(r.Context(), bearerToken(r))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, toUserResp(u))
	}
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

func ChangePassword(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req changePasswordReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		u, err := svc.CurrentUser(r.Context(), bearerToken(r))
		if err != nil {
			respondErr(w, err)
			return
		}
		if err := svc.ChangePassword(r.Context(), u, req.OldPassword, req.NewPassword); err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, map[string]any{"changed": true})
	}
}

type passwordResetReq struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetRequest always answers 200 so the endpoint cannot be
// used to probe which emails exist.
func PasswordResetRequest(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passwordResetReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		svc.RequestPasswordReset(r.Context(), req.Email)
		respondJSON(w, map[string]any{"ok": true})
	}
}

type verifyEmailReq struct {
	Token string `json:"token" validate:"required"`
}

func VerifyEmail(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyEmailReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := svc.VerifyEmail(r.Context(), req.Token); err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, map[string]any{"verified": true})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && h[:7] == "Bearer " {
		return h[7:]
	}
	return ""
}
