package services

import (
	"context"
	"strings"

	"lab-backend/internal/apperr"
	"lab-backend/internal/auth"
	"lab-backend/internal/models"
)

const (
	msgInvalidCredentials = "Credenciais inválidas"
	msgInvalidTOTP        = "Código 2FA inválido"
)

type AuthService struct {
	Users      UserStore
	JWTManager *auth.JWTManager
	TOTPIssuer string
}

func NewAuthService(users UserStore, jwtManager *auth.JWTManager, totpIssuer string) *AuthService {
	if totpIssuer == "" {
		totpIssuer = "Laboratorio"
	}
	return &AuthService{Users: users, JWTManager: jwtManager, TOTPIssuer: totpIssuer}
}

// Login checks the password and, for users with TOTP enabled, the second
// factor, then issues a session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.Users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return nil, apperr.New(apperr.CodeUnauthorized, msgInvalidCredentials)
		}
		return nil, err
	}
	if !user.IsActive || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, apperr.New(apperr.CodeUnauthorized, msgInvalidCredentials)
	}
	if user.TOTPEnabled && !auth.ValidateTOTP(strings.TrimSpace(req.TOTPCode), user.TOTPSecret) {
		return nil, apperr.New(apperr.CodeUnauthorized, msgInvalidTOTP)
	}

	token, expiresAt, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "sign token")
	}
	return &models.LoginResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) Me(ctx context.Context, userID int) (*models.User, error) {
	return s.Users.Get(ctx, userID)
}

// SetupTOTP stores a fresh, not yet enabled secret for the user.
func (s *AuthService) SetupTOTP(ctx context.Context, userID int) (*models.TOTPSetupResponse, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	secret, url, err := auth.GenerateTOTP(s.TOTPIssuer, user.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "generate totp secret")
	}
	if err := s.Users.SetTOTPSecret(ctx, userID, secret); err != nil {
		return nil, err
	}
	return &models.TOTPSetupResponse{Secret: secret, URL: url}, nil
}

// ConfirmTOTP enables the pending secret once the user proves they hold it.
func (s *AuthService) ConfirmTOTP(ctx context.Context, userID int, code string) error {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == "" {
		return apperr.New(apperr.CodeStateConflict, "2FA não configurado")
	}
	if !auth.ValidateTOTP(code, user.TOTPSecret) {
		return apperr.New(apperr.CodeValidation, msgInvalidTOTP)
	}
	return s.Users.EnableTOTP(ctx, userID)
}

// EnsureAdmin creates the bootstrap account or resets its password.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperr.New(apperr.CodeValidation, "admin email and password are required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "hash password")
	}
	if name == "" {
		name = "Administrador"
	}
	user := &models.User{Name: name, Email: email, PasswordHash: hash, IsActive: true}
	if err := s.Users.UpsertPassword(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
