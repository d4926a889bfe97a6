// Package catalog filters, sorts and annotates inventory records.
//
// Every function is pure: inputs are never modified and "today" is passed in
// as a calendar date (see timeutil.Today), so results are deterministic.
package catalog

import (
	"fmt"
	"time"

	"lab-backend/internal/models"
	"lab-backend/internal/timeutil"
)

type Status string

const (
	StatusExpired    Status = "Vencido"
	StatusCritical   Status = "Crítico"
	StatusNearExpiry Status = "Próximo"
	StatusLowStock   Status = "Estoque Baixo"
	StatusOK         Status = "OK"
)

// Statuses lists every label DeriveStatus can return, in priority order.
var Statuses = []Status{StatusExpired, StatusCritical, StatusNearExpiry, StatusLowStock, StatusOK}

const (
	CriticalWindowDays   = 7
	NearExpiryWindowDays = 30
)

// DaysUntilExpiry is the calendar-day distance from today to the expiry
// date. ok is false when the material has no expiry date.
func DaysUntilExpiry(m models.Material, today time.Time) (days int, ok bool) {
	if !m.Expiry.Valid {
		return 0, false
	}
	return timeutil.DaysBetween(today, m.Expiry.Date.Time), true
}

// IsLowStock reports current stock <= minimum stock. A material with unknown
// current stock counts as low; one with a known stock but no minimum does not.
func IsLowStock(m models.Material) bool {
	if !m.CurrentStock.Valid {
		return true
	}
	if !m.MinimumStock.Valid {
		return false
	}
	return m.CurrentStock.Decimal.LessThanOrEqual(m.MinimumStock.Decimal)
}

// IsExpired reports an expiry date strictly before today.
func IsExpired(m models.Material, today time.Time) bool {
	days, ok := DaysUntilExpiry(m, today)
	return ok && days < 0
}

// IsNearExpiry reports 0 < days until expiry <= 30.
func IsNearExpiry(m models.Material, today time.Time) bool {
	days, ok := DaysUntilExpiry(m, today)
	return ok && days > 0 && days <= NearExpiryWindowDays
}

// DeriveStatus returns the first matching label:
// expired, critical (0..7 days), near expiry (8..30 days), low stock, ok.
func DeriveStatus(m models.Material, today time.Time) Status {
	if days, ok := DaysUntilExpiry(m, today); ok {
		switch {
		case days < 0:
			return StatusExpired
		case days <= CriticalWindowDays:
			return StatusCritical
		case days <= NearExpiryWindowDays:
			return StatusNearExpiry
		}
	}
	if IsLowStock(m) {
		return StatusLowStock
	}
	return StatusOK
}

// Annotate attaches the derived status and day count to m.
func Annotate(m models.Material, today time.Time) models.MaterialView {
	view := models.MaterialView{
		Material: m,
		Status:   string(DeriveStatus(m, today)),
	}
	if days, ok := DaysUntilExpiry(m, today); ok {
		view.DaysUntilExpiry = &days
	}
	return view
}

// Stats counts materials by derived status.
func Stats(items []models.Material, today time.Time) models.MaterialStats {
	stats := models.MaterialStats{Total: len(items)}
	for _, m := range items {
		switch DeriveStatus(m, today) {
		case StatusExpired:
			stats.Expired++
		case StatusCritical:
			stats.Critical++
		case StatusNearExpiry:
			stats.NearExpiry++
		case StatusLowStock:
			stats.LowStock++
		default:
			stats.OK++
		}
		if IsLowStock(m) {
			stats.LowStockTotal++
		}
	}
	return stats
}

// Alerts returns one alert per material whose status is expired, critical
// or low stock, in input order.
func Alerts(items []models.Material, today, now time.Time) []models.StockAlert {
	var alerts []models.StockAlert
	for _, m := range items {
		view := Annotate(m, today)
		var msg string
		switch Status(view.Status) {
		case StatusExpired:
			msg = fmt.Sprintf("%s venceu há %d dia(s)", m.Name, -*view.DaysUntilExpiry)
		case StatusCritical:
			if *view.DaysUntilExpiry == 0 {
				msg = fmt.Sprintf("%s vence hoje", m.Name)
			} else {
				msg = fmt.Sprintf("%s vence em %d dia(s)", m.Name, *view.DaysUntilExpiry)
			}
		case StatusLowStock:
			msg = lowStockMessage(m)
		default:
			continue
		}
		alerts = append(alerts, models.StockAlert{
			MaterialID:      m.ID,
			Name:            m.Name,
			Code:            m.Code,
			Status:          view.Status,
			DaysUntilExpiry: view.DaysUntilExpiry,
			CurrentStock:    m.CurrentStock,
			MinimumStock:    m.MinimumStock,
			Message:         msg,
			DetectedAt:      now,
		})
	}
	return alerts
}

func lowStockMessage(m models.Material) string {
	if !m.CurrentStock.Valid {
		return fmt.Sprintf("%s sem estoque informado", m.Name)
	}
	return fmt.Sprintf("%s com estoque baixo: %s %s (mínimo %s)",
		m.Name, m.CurrentStock.Decimal.String(), m.Unit, m.MinimumStock.Decimal.String())
}
