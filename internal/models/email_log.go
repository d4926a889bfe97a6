package models

import "time"

// EmailLog is one simulated supplier email, kept for the history view.
type EmailLog struct {
	ID        string    `json:"id"`
	Recipient string    `json:"destinatario"`
	Subject   string    `json:"assunto"`
	Message   string    `json:"mensagem"`
	Status    string    `json:"status"`
	Error     string    `json:"erro,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EmailStatusSent   = "enviado"
	EmailStatusFailed = "falhou"
)

const DefaultSupplierSubject = "Solicitação de Material"

// SupplierRequest asks a supplier for material by email.
type SupplierRequest struct {
	SupplierEmail string `json:"emailFornecedor" validate:"required,email"`
	Message       string `json:"mensagem" validate:"required,max=5000"`
	Subject       string `json:"assunto" validate:"max=200"`
}
