package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material is a consumable item tracked with stock and expiry.
// Stock levels, price and expiry are optional: older records omit them.
type Material struct {
	ID           int                 `json:"id"`
	Name         string              `json:"nome"`
	Type         string              `json:"tipo"`
	Manufacturer string              `json:"fabricante"`
	Quantity     decimal.Decimal     `json:"quantidade"`
	Unit         string              `json:"unidade"`
	CurrentStock decimal.NullDecimal `json:"estoque_atual"`
	MinimumStock decimal.NullDecimal `json:"estoque_minimo"`
	Expiry       NullDate            `json:"validade"`
	Price        decimal.NullDecimal `json:"preco"`
	Code         string              `json:"codigo,omitempty"`
	FISPQName    string              `json:"fispq,omitempty"`
	FISPQKey     string              `json:"-"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// HasFISPQ reports whether a safety data sheet is attached.
func (m Material) HasFISPQ() bool {
	return m.FISPQKey != ""
}

// MaterialView is a material annotated with its derived status.
type MaterialView struct {
	Material
	Status          string `json:"status"`
	DaysUntilExpiry *int   `json:"dias_para_vencer"`
	FISPQURL        string `json:"fispq_url,omitempty"`
}

// MaterialRequest is the create/update payload, sent either as JSON or as
// multipart form fields.
type MaterialRequest struct {
	Name         string              `json:"nome" validate:"required,max=200"`
	Type         string              `json:"tipo" validate:"required,max=100"`
	Manufacturer string              `json:"fabricante" validate:"required,max=200"`
	Quantity     decimal.NullDecimal `json:"quantidade"`
	Unit         string              `json:"unidade" validate:"required,max=20"`
	CurrentStock decimal.NullDecimal `json:"estoque_atual"`
	MinimumStock decimal.NullDecimal `json:"estoque_minimo"`
	Expiry       NullDate            `json:"validade"`
	Price        decimal.NullDecimal `json:"preco"`
	Code         string              `json:"codigo" validate:"max=50"`
}

type BaixaRequest struct {
	Quantity decimal.NullDecimal `json:"quantidade"`
	Note     string              `json:"observacao" validate:"max=500"`
}

type BaixaResult struct {
	Message      string          `json:"message"`
	MaterialID   int             `json:"material_id"`
	CurrentStock decimal.Decimal `json:"estoque_atual"`
}

// StockMovement records one baixa.
type StockMovement struct {
	ID             int             `json:"id"`
	MaterialID     int             `json:"material_id"`
	Quantity       decimal.Decimal `json:"quantidade"`
	ResultingStock decimal.Decimal `json:"estoque_resultante"`
	UserID         int             `json:"usuario_id,omitempty"`
	Note           string          `json:"observacao,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type MaterialStats struct {
	Total         int `json:"total"`
	Expired       int `json:"vencidos"`
	Critical      int `json:"criticos"`
	NearExpiry    int `json:"proximos_vencimento"`
	LowStock      int `json:"estoque_baixo"`
	OK            int `json:"ok"`
	LowStockTotal int `json:"estoque_baixo_total"`
}

type StockValue struct {
	Total   decimal.Decimal `json:"valor_total"`
	Items   int             `json:"itens"`
	Unknown int             `json:"sem_estoque_informado"`
}

// MessageResponse is the generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
	ID      int    `json:"id,omitempty"`
}
