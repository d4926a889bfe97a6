package services

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-backend/internal/apperr"
	"lab-backend/internal/auth"
	"lab-backend/internal/models"
)

func newTestAuthService(t *testing.T) (*AuthService, *fakeUsers) {
	t.Helper()
	hash, err := auth.HashPassword("segredo")
	require.NoError(t, err)
	users := newFakeUsers(&models.User{ID: 1, Name: "Ana", Email: "ana@lab.br", PasswordHash: hash, IsActive: true})
	return NewAuthService(users, auth.NewJWTManager("test-secret", "lab", time.Hour), "Lab"), users
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, models.LoginRequest{Email: "ana@lab.br", Password: "segredo"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ID)
	assert.Equal(t, "Ana", res.Name)
	assert.NotEmpty(t, res.Token)

	claims, err := svc.JWTManager.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)

	for _, req := range []models.LoginRequest{
		{Email: "ana@lab.br", Password: "errada"},
		{Email: "ninguem@lab.br", Password: "segredo"},
	} {
		_, err := svc.Login(ctx, req)
		typed := apperr.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, apperr.CodeUnauthorized, typed.Code())
		assert.Equal(t, "Credenciais inválidas", typed.Message())
	}
}

func TestLoginInactiveUser(t *testing.T) {
	svc, users := newTestAuthService(t)
	users.byID[1].IsActive = false

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@lab.br", Password: "segredo"})
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}

func TestTOTPEnrolmentAndLogin(t *testing.T) {
	svc, users := newTestAuthService(t)
	ctx := context.Background()

	setup, err := svc.SetupTOTP(ctx, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.URL, "otpauth://")
	assert.False(t, users.byID[1].TOTPEnabled)

	assert.True(t, apperr.IsCode(svc.ConfirmTOTP(ctx, 1, "000000"), apperr.CodeValidation))

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmTOTP(ctx, 1, code))
	assert.True(t, users.byID[1].TOTPEnabled)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "ana@lab.br", Password: "segredo"})
	typed := apperr.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "Código 2FA inválido", typed.Message())

	res, err := svc.Login(ctx, models.LoginRequest{Email: "ana@lab.br", Password: "segredo", TOTPCode: code})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestEnsureAdmin(t *testing.T) {
	svc, users := newTestAuthService(t)
	ctx := context.Background()

	u, err := svc.EnsureAdmin(ctx, "", "admin@lab.br", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "Administrador", u.Name)
	assert.True(t, auth.VerifyPassword(users.byID[u.ID].PasswordHash, "admin123"))

	_, err = svc.EnsureAdmin(ctx, "x", "", "")
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}
