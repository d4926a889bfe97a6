package middleware

import (
	"context"
	"net/http"
	"strings"

	"lab-backend/internal/apperr"
	"lab-backend/internal/auth"
	"lab-backend/internal/models"
	"lab-backend/pkg/httpjson"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	EmailKey  contextKey = "email"
)

// UserLookup is implemented by repositories.UserRepository.
type UserLookup interface {
	Get(ctx context.Context, id int) (*models.User, error)
}

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	users      UserLookup
	required   bool
}

// NewAuthMiddleware builds the JWT guard. With required false, requests
// without a token pass through anonymously; a token that is present must
// still be valid.
func NewAuthMiddleware(jwtManager *auth.JWTManager, users UserLookup, required bool) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, users: users, required: required}
}

// Authenticate validates the bearer token and loads the user so that
// deactivated accounts are rejected immediately.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			httpjson.WriteError(r.Context(), nil, w, err)
			return
		}
		if token == "" {
			if m.required {
				httpjson.WriteError(r.Context(), nil, w, apperr.New(apperr.CodeUnauthorized, "Token de acesso obrigatório"))
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			httpjson.WriteError(r.Context(), nil, w, apperr.New(apperr.CodeUnauthorized, "Token inválido ou expirado"))
			return
		}
		user, err := m.users.Get(r.Context(), claims.UserID)
		if err != nil {
			if apperr.IsCode(err, apperr.CodeNotFound) {
				err = apperr.New(apperr.CodeUnauthorized, "Usuário não encontrado")
			}
			httpjson.WriteError(r.Context(), nil, w, err)
			return
		}
		if !user.IsActive {
			httpjson.WriteError(r.Context(), nil, w, apperr.New(apperr.CodeForbidden, "Conta desativada"))
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
		ctx = context.WithValue(ctx, EmailKey, user.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken reads the Authorization header. Browsers cannot set headers
// on websocket upgrades, so those may pass the token as ?token=.
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			return r.URL.Query().Get("token"), nil
		}
		return "", nil
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperr.New(apperr.CodeUnauthorized, "Formato de autorização inválido")
	}
	return parts[1], nil
}

func GetUserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}
