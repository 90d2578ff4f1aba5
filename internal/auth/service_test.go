package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"rolegate/internal/models"
	"rolegate/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Gorm) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	st := store.NewGorm(db)
	require.NoError(t, st.AutoMigrate())

	codec := NewTokenCodec(testSecret, time.Hour, 24*time.Hour)
	svc := NewService(st, NewHasher(bcrypt.MinCost), codec, false, zap.NewNop().Sugar())
	return svc, st
}

func registerAlice(t *testing.T, svc *Service) *models.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterParams{
		Email:    "alice@x.com",
		Username: "alice",
		Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func TestRegister_ThenAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u := registerAlice(t, svc)
	assert.NotEmpty(t, u.ID)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsVerified)
	assert.NotEqual(t, "password123", u.PasswordHash)

	got, err := svc.Authenticate(ctx, "alice@x.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.LastLogin, "authenticate must update last_login")
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterParams{
		Email:    "short@x.com",
		Username: "short",
		Password: "seven77",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegister_DuplicateEmailAndUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registerAlice(t, svc)

	_, err := svc.Register(ctx, RegisterParams{Email: "alice@x.com", Username: "other", Password: "password123"})
	assert.ErrorIs(t, err, store.ErrDuplicateIdentity)

	_, err = svc.Register(ctx, RegisterParams{Email: "other@x.com", Username: "alice", Password: "password123"})
	assert.ErrorIs(t, err, store.ErrDuplicateIdentity)
}

func TestAuthenticate_OpaqueFailures(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	u := registerAlice(t, svc)

	// Wrong password and unknown email fail identically.
	_, wrongPw := svc.Authenticate(ctx, "alice@x.com", "nope")
	_, unknown := svc.Authenticate(ctx, "ghost@x.com", "password123")
	assert.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPw, unknown)

	// Deactivated account: same opaque failure, even with the right
	// password.
	u.IsActive = false
	require.NoError(t, st.UpdateUser(ctx, u))
	_, inactive := svc.Authenticate(ctx, "alice@x.com", "password123")
	assert.ErrorIs(t, inactive, ErrInvalidCredentials)

	// Soft-deleted account too.
	u.IsActive = true
	require.NoError(t, st.UpdateUser(ctx, u))
	require.NoError(t, st.SoftDeleteUser(ctx, u.ID))
	_, deleted := svc.Authenticate(ctx, "alice@x.com", "password123")
	assert.ErrorIs(t, deleted, ErrInvalidCredentials)
}

func TestChangePassword_Scenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u := registerAlice(t, svc)

	assert.ErrorIs(t, svc.ChangePassword(ctx, u, "wrong-old", "newpass123"), ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(ctx, u, "password123", "newpass123"))

	_, err := svc.Authenticate(ctx, "alice@x.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "old password must stop working")

	got, err := svc.Authenticate(ctx, "alice@x.com", "newpass123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestIssueTokenPair_AndCurrentUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u := registerAlice(t, svc)
	pair, err := svc.IssueTokenPair(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	got, err := svc.CurrentUser(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// A refresh token is not an access credential.
	_, err = svc.CurrentUser(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCurrentUser_DeletedAndInactive(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	u := registerAlice(t, svc)
	pair, err := svc.IssueTokenPair(u.ID)
	require.NoError(t, err)

	u.IsActive = false
	require.NoError(t, st.UpdateUser(ctx, u))
	_, err = svc.CurrentUser(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, st.SoftDeleteUser(ctx, u.ID))
	_, err = svc.CurrentUser(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefresh_ReusesRefreshToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u := registerAlice(t, svc)
	pair, err := svc.IssueTokenPair(u.ID)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken, "refresh token is echoed, not rotated")

	got, err := svc.CurrentUser(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _ := newTestService(t)

	u := registerAlice(t, svc)
	pair, err := svc.IssueTokenPair(u.ID)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestRefresh_DeletedUser(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	u := registerAlice(t, svc)
	pair, err := svc.IssueTokenPair(u.ID)
	require.NoError(t, err)

	require.NoError(t, st.SoftDeleteUser(ctx, u.ID))
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogin_RecordsSessionAndActivity(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	u := registerAlice(t, svc)
	_, pair, err := svc.Login(ctx, "alice@x.com", "password123", LoginMeta{IPAddress: "10.0.0.1", UserAgent: "test-agent"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	var sess models.Session
	require.NoError(t, st.DB().First(&sess, "user_id = ?", u.ID).Error)
	assert.Equal(t, "10.0.0.1", sess.IPAddress)
	assert.Equal(t, "test-agent", sess.UserAgent)

	logs, err := st.ListActivity(ctx, u.ID, 10)
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Contains(t, actions, "register")
	assert.Contains(t, actions, "login")
}

func TestRequestPasswordReset_NoEnumeration(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	u := registerAlice(t, svc)

	// Unknown email: no panic, no observable difference for the caller.
	svc.RequestPasswordReset(ctx, "ghost@x.com")
	svc.RequestPasswordReset(ctx, "alice@x.com")

	var count int64
	require.NoError(t, st.DB().Model(&models.PasswordResetToken{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestVerifyEmail(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	u := registerAlice(t, svc)
	tok := &models.EmailVerificationToken{
		UserID:    u.ID,
		Token:     "verify-token",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, st.CreateEmailVerificationToken(ctx, tok))

	require.NoError(t, svc.VerifyEmail(ctx, "verify-token"))

	got, err := st.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	require.NotNil(t, got.VerifiedAt)

	assert.ErrorIs(t, svc.VerifyEmail(ctx, "verify-token"), ErrInvalidToken)
	assert.ErrorIs(t, svc.VerifyEmail(ctx, "bogus"), ErrInvalidToken)
}

// blindStore defeats the duplicate pre-check so the unique constraint
// is the only race-breaker, the way two concurrent registrations can
// both pass the pre-check before either inserts.
type blindStore struct {
	store.Store
}

func (b blindStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, store.ErrNotFound
}

func (b blindStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, store.ErrNotFound
}

func TestRegister_RaceLoserGetsDuplicateIdentity(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	registerAlice(t, svc)

	raced := NewService(blindStore{Store: st}, NewHasher(bcrypt.MinCost),
		NewTokenCodec(testSecret, time.Hour, time.Hour), false, zap.NewNop().Sugar())

	// The pre-check sees nothing, so the insert hits the unique
	// constraint; that must surface as DuplicateIdentity, not as a
	// fatal storage error.
	_, err := raced.Register(ctx, RegisterParams{
		Email:    "alice@x.com",
		Username: "alice-racer",
		Password: "password123",
	})
	assert.ErrorIs(t, err, store.ErrDuplicateIdentity)
}
