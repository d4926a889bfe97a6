package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	TOTPSecret   string    `json:"-"`
	TOTPEnabled  bool      `json:"totp_ativo"`
	IsActive     bool      `json:"ativo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest keeps the field names of the original login form.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=200"`
	Password string `json:"senha" validate:"required"`
	TOTPCode string `json:"codigo_2fa"`
}

type LoginResponse struct {
	ID        int       `json:"id"`
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expira_em"`
}

type TOTPSetupResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

type TOTPConfirmRequest struct {
	Code string `json:"codigo" validate:"required,len=6,numeric"`
}
