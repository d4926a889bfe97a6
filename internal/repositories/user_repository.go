package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"lab-backend/internal/apperr"
	"lab-backend/internal/models"
)

const userNotFound = "Usuário não encontrado"

const userColumns = `id, nome, email, senha_hash, COALESCE(totp_secret, ''), totp_ativo, ativo, created_at, updated_at`

type UserRepository struct {
	DB DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{DB: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.TOTPSecret, &u.TOTPEnabled,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err, userNotFound)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO usuarios (nome, email, senha_hash, ativo)
		 VALUES ($1, LOWER($2), $3, TRUE)
		 RETURNING id, ativo, created_at, updated_at`,
		u.Name, u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return apperr.FromDB(err, userNotFound)
}

func (r *UserRepository) Get(ctx context.Context, id int) (*models.User, error) {
	return scanUser(r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE email = LOWER($1)`, email))
}

// SetTOTPSecret stores a pending secret; it becomes active with EnableTOTP.
func (r *UserRepository) SetTOTPSecret(ctx context.Context, userID int, secret string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE usuarios SET totp_secret = $2, totp_ativo = FALSE, updated_at = NOW() WHERE id = $1`,
		userID, secret)
	return apperr.FromDB(err, userNotFound)
}

func (r *UserRepository) EnableTOTP(ctx context.Context, userID int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE usuarios SET totp_ativo = TRUE, updated_at = NOW() WHERE id = $1 AND totp_secret IS NOT NULL`,
		userID)
	return apperr.FromDB(err, userNotFound)
}

// UpsertPassword creates the user or resets its password.
func (r *UserRepository) UpsertPassword(ctx context.Context, u *models.User) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO usuarios (nome, email, senha_hash)
		 VALUES ($1, LOWER($2), $3)
		 ON CONFLICT (email) DO UPDATE SET senha_hash = EXCLUDED.senha_hash, ativo = TRUE, updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return apperr.FromDB(err, userNotFound)
}
