package labclient

import (
	"github.com/shopspring/decimal"

	"lab-backend/internal/models"
)

// ValidateBaixa is the advisory check run before a withdrawal is sent: the
// quantity must be positive and not exceed the known current stock. A
// material without a recorded stock cannot be withdrawn from.
func ValidateBaixa(m models.Material, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return &ValidationError{Field: "quantidade", Message: "deve ser maior que zero"}
	}
	if !m.CurrentStock.Valid {
		return &ValidationError{Field: "quantidade", Message: "material sem estoque atual informado"}
	}
	if qty.GreaterThan(m.CurrentStock.Decimal) {
		return &ValidationError{
			Field:   "quantidade",
			Message: "excede o estoque atual (" + m.CurrentStock.Decimal.String() + " " + m.Unit + ")",
		}
	}
	return nil
}
