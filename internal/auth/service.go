package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rolegate/internal/models"
	"rolegate/internal/store"
)

const minPasswordLen = 8

const resetTokenTTL = time.Hour

// Service orchestrates registration, authentication, password changes
// and token issuance. It owns no state beyond its collaborators; every
// call is an independent unit of work against the store.
type Service struct {
	store           store.Store
	hasher          Hasher
	codec           *TokenCodec
	requireVerified bool
	log             *zap.SugaredLogger
}

func NewService(st store.Store, hasher Hasher, codec *TokenCodec, requireVerified bool, lg *zap.SugaredLogger) *Service {
	return &Service{store: st, hasher: hasher, codec: codec, requireVerified: requireVerified, log: lg}
}

// Codec exposes the token codec for middleware wiring.
func (s *Service) Codec() *TokenCodec { return s.codec }

type RegisterParams struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// TokenPair is an access/refresh token pair plus the access lifetime
// reported to clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register creates a new account. Fails with ErrWeakPassword under 8
// characters and store.ErrDuplicateIdentity when the email or username
// is taken — whether caught by the pre-check or by the unique
// constraint when two registrations race.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*models.User, error) {
	if len(p.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	if _, err := s.store.FindUserByEmail(ctx, p.Email); err == nil {
		return nil, store.ErrDuplicateIdentity
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if _, err := s.store.FindUserByUsername(ctx, p.Username); err == nil {
		return nil, store.ErrDuplicateIdentity
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        p.Email,
		Username:     p.Username,
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		IsActive:     true,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.InsertUser(ctx, u); err != nil {
		return nil, err
	}
	s.recordActivity(ctx, u.ID, "register", nil)
	s.log.Infow("user registered", "user_id", u.ID, "email", u.Email)
	return u, nil
}

// Authenticate verifies email+password. Unknown email, wrong password,
// and inactive or deleted accounts all fail with the same
// ErrInvalidCredentials. On success last_login is updated.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if s.requireVerified && !u.IsVerified {
		return nil, ErrInvalidCredentials
	}
	now := time.Now()
	u.LastLogin = &now
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// LoginMeta carries transport metadata recorded on the session.
type LoginMeta struct {
	IPAddress string
	UserAgent string
}

// Login authenticates and issues a token pair, recording a session and
// an audit entry. Session records are audit data only; they are never
// consulted when tokens are verified.
func (s *Service) Login(ctx context.Context, email, password string, meta LoginMeta) (*models.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokenPair(u.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	sess := &models.Session{
		UserID:    u.ID,
		Token:     pair.RefreshToken,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		ExpiresAt: time.Now().Add(s.codec.refreshTTL),
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		s.log.Warnw("session record failed", "user_id", u.ID, "error", err)
	}
	s.recordActivity(ctx, u.ID, "login", map[string]string{"ip": meta.IPAddress})
	s.log.Infow("user authenticated", "user_id", u.ID)
	return u, pair, nil
}

// ChangePassword overwrites the stored hash after verifying the old
// password. Length is only checked at registration; this mirrors the
// upstream contract.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error {
	ok, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return err
	}
	s.recordActivity(ctx, user.ID, "password_change", nil)
	s.log.Infow("password changed", "user_id", user.ID)
	return nil
}

func (s *Service) IssueTokenPair(userID string) (TokenPair, error) {
	access, err := s.codec.IssueAccessToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.IssueRefreshToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is echoed back unchanged — no rotation.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := s.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return TokenPair{}, ErrInvalidToken
	}
	access, err := s.codec.IssueAccessToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
	}, nil
}

// CurrentUser resolves an access token to its account. Fails with
// ErrUnauthenticated on any token problem, ErrNotFound when the
// account is gone (soft-deleted included), and ErrForbidden when it is
// deactivated.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	userID, err := s.codec.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	u, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrForbidden
	}
	return u, nil
}

// RequestPasswordReset generates and stores a reset token for the
// account, if one exists. It always reports success so callers cannot
// probe which emails are registered. Delivery is external.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) {
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return
	}
	t := &models.PasswordResetToken{
		UserID:    u.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(resetTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := s.store.CreatePasswordResetToken(ctx, t); err != nil {
		s.log.Warnw("reset token store failed", "user_id", u.ID, "error", err)
		return
	}
	s.recordActivity(ctx, u.ID, "password_reset_request", nil)
}

// VerifyEmail consumes a verification token and marks the account
// verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.store.ConsumeEmailVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	u, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	now := time.Now()
	u.IsVerified = true
	u.VerifiedAt = &now
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return err
	}
	s.recordActivity(ctx, u.ID, "email_verified", nil)
	return nil
}

func (s *Service) recordActivity(ctx context.Context, userID, action string, meta map[string]string) {
	entry := &models.ActivityLog{
		UserID:    userID,
		Action:    action,
		CreatedAt: time.Now(),
	}
	if meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			entry.Metadata = models.JSONB(b)
		}
	}
	if err := s.store.RecordActivity(ctx, entry); err != nil {
		s.log.Warnw("activity record failed", "user_id", userID, "action", action, "error", err)
	}
}
