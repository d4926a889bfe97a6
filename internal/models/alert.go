package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// StockAlert flags a material whose derived status needs attention.
type StockAlert struct {
	MaterialID      int                 `json:"material_id"`
	Name            string              `json:"nome"`
	Code            string              `json:"codigo,omitempty"`
	Status          string              `json:"status"`
	DaysUntilExpiry *int                `json:"dias_para_vencer"`
	CurrentStock    decimal.NullDecimal `json:"estoque_atual"`
	MinimumStock    decimal.NullDecimal `json:"estoque_minimo"`
	Message         string              `json:"mensagem"`
	DetectedAt      time.Time           `json:"detectado_em"`
}

// Key identifies an alert condition independent of when it was seen.
func (a StockAlert) Key() string {
	return a.Status + ":" + strconv.Itoa(a.MaterialID)
}
