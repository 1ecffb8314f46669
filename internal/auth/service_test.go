package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/buzdealz-backend/internal/users"
	pkgAuth "github.com/angelmondragon/buzdealz-backend/pkg/auth"
	"github.com/angelmondragon/buzdealz-backend/pkg/config"
	"github.com/angelmondragon/buzdealz-backend/pkg/db"
	"github.com/angelmondragon/buzdealz-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/buzdealz-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "buzdealz", ExpirationMinutes: 60}

type stubRevoker struct {
	revoked map[string]time.Time
	err     error
}

func (s *stubRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.err != nil {
		return s.err
	}
	if s.revoked == nil {
		s.revoked = map[string]time.Time{}
	}
	s.revoked[tokenID] = expiresAt
	return nil
}

func newTestService(t *testing.T, revoker tokenRevoker) (Service, *db.Client) {
	t.Helper()
	client := dbtest.OpenClient(t)
	svc, err := NewService(ServiceParams{
		DB:             client,
		Revoker:        revoker,
		JWTConfig:      testJWT,
		PasswordConfig: config.PasswordConfig{},
	})
	require.NoError(t, err)
	return svc, client
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), "unexpected error %v", err)
	return typed
}

func TestRegisterLoginConflictScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	reg, err := svc.Register(ctx, RegisterRequest{Email: "a@example.com", Name: "A", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, reg.Token)
	require.Equal(t, "a@example.com", reg.User.Email)
	require.False(t, reg.User.IsSubscriber)

	claims, err := pkgAuth.ParseAccessToken(testJWT, reg.Token)
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, claims.UserID)
	require.Equal(t, "A", claims.Name)

	login, err := svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, login.User.ID)

	_, err = svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "wrong"})
	typed := requireCode(t, err, pkgerrors.CodeUnauthorized)
	require.Equal(t, "Invalid credentials", typed.Message())

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@example.com", Name: "Again", Password: "secret1"})
	typed = requireCode(t, err, pkgerrors.CodeConflict)
	require.Equal(t, "Email already registered", typed.Message())
}

func TestLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	_, err := svc.Register(ctx, RegisterRequest{Email: "known@example.com", Name: "K", Password: "secret1"})
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	_, wrongErr := svc.Login(ctx, LoginRequest{Email: "known@example.com", Password: "secret2"})

	unknown := requireCode(t, unknownErr, pkgerrors.CodeUnauthorized)
	wrong := requireCode(t, wrongErr, pkgerrors.CodeUnauthorized)
	require.Equal(t, wrong.Message(), unknown.Message())
}

func TestLoginNormalizesEmailAndRecordsLastLogin(t *testing.T) {
	ctx := context.Background()
	svc, client := newTestService(t, nil)

	reg, err := svc.Register(ctx, RegisterRequest{Email: "Mixed@Example.com", Name: "M", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "mixed@example.com", reg.User.Email)

	_, err = svc.Login(ctx, LoginRequest{Email: " MIXED@example.com ", Password: "secret1"})
	require.NoError(t, err)

	user, err := users.NewRepository(client.DB()).FindByID(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.LastLoginAt)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "", Name: " ", Password: "123"})
	typed := requireCode(t, err, pkgerrors.CodeValidation)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	require.Contains(t, details, "email")
	require.Contains(t, details, "name")
	require.Contains(t, details, "password")
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	reg, err := svc.Register(ctx, RegisterRequest{Email: "me@example.com", Name: "Me", Password: "secret1"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	require.Equal(t, "Me", me.Name)

	_, err = svc.Me(ctx, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestLogoutRevokesWhenConfigured(t *testing.T) {
	ctx := context.Background()
	revoker := &stubRevoker{}
	svc, _ := newTestService(t, revoker)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, svc.Logout(ctx, "jti-1", exp))
	require.Contains(t, revoker.revoked, "jti-1")

	revoker.err = errors.New("redis down")
	requireCode(t, svc.Logout(ctx, "jti-2", exp), pkgerrors.CodeDependency)

	plain, _ := newTestService(t, nil)
	require.NoError(t, plain.Logout(ctx, "jti-3", exp))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{JWTConfig: testJWT})
	require.Error(t, err)

	_, err = NewService(ServiceParams{DB: dbtest.OpenClient(t)})
	require.Error(t, err)
}
