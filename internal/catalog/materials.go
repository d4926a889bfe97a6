package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lab-backend/internal/models"
)

type FilterMode string

const (
	FilterAll        FilterMode = "all"
	FilterLowStock   FilterMode = "low_stock"
	FilterExpired    FilterMode = "expired"
	FilterNearExpiry FilterMode = "near_expiry"
)

func ParseFilterMode(s string) (FilterMode, error) {
	switch mode := FilterMode(strings.TrimSpace(s)); mode {
	case "", FilterAll:
		return FilterAll, nil
	case FilterLowStock, FilterExpired, FilterNearExpiry:
		return mode, nil
	}
	return "", fmt.Errorf("filtro inválido: %q", s)
}

type SortKey string

const (
	SortNone   SortKey = ""
	SortName   SortKey = "nome"
	SortStock  SortKey = "estoque"
	SortExpiry SortKey = "validade"
	SortPrice  SortKey = "preco"
)

func ParseSortKey(s string) (SortKey, error) {
	switch strings.TrimSpace(s) {
	case "":
		return SortNone, nil
	case "nome", "name":
		return SortName, nil
	case "estoque", "stock":
		return SortStock, nil
	case "validade", "expiry":
		return SortExpiry, nil
	case "preco", "price":
		return SortPrice, nil
	}
	return "", fmt.Errorf("ordenação inválida: %q", s)
}

// MaterialQuery selects and orders materials. Zero value means everything,
// in input order.
type MaterialQuery struct {
	Search string
	Type   string
	Mode   FilterMode
	Sort   SortKey
}

// Matches reports whether m passes every predicate of q.
func (q MaterialQuery) Matches(m models.Material, today time.Time) bool {
	return q.matches(newMatcher(q.Search), m, today)
}

func (q MaterialQuery) matches(search matcher, m models.Material, today time.Time) bool {
	if !search.any(m.Name, m.Manufacturer, m.Type) {
		return false
	}
	if q.Type != "" && m.Type != q.Type {
		return false
	}
	switch q.Mode {
	case FilterLowStock:
		return IsLowStock(m)
	case FilterExpired:
		return IsExpired(m, today)
	case FilterNearExpiry:
		return IsNearExpiry(m, today)
	}
	return true
}

// FilterMaterials returns the materials matching q in their input order.
func FilterMaterials(items []models.Material, q MaterialQuery, today time.Time) []models.Material {
	search := newMatcher(q.Search)
	out := make([]models.Material, 0, len(items))
	for _, m := range items {
		if q.matches(search, m, today) {
			out = append(out, m)
		}
	}
	return out
}

// SortMaterials returns a stably sorted copy of items.
// Missing stock, expiry or price values sort last.
func SortMaterials(items []models.Material, key SortKey) []models.Material {
	out := make([]models.Material, len(items))
	copy(out, items)

	switch key {
	case SortName:
		c := newNameCollator()
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortStock:
		sort.SliceStable(out, func(i, j int) bool {
			return compareNullDecimal(out[i].CurrentStock, out[j].CurrentStock) < 0
		})
	case SortExpiry:
		sort.SliceStable(out, func(i, j int) bool {
			return compareNullDate(out[i].Expiry, out[j].Expiry) < 0
		})
	case SortPrice:
		sort.SliceStable(out, func(i, j int) bool {
			return compareNullDecimal(out[i].Price, out[j].Price) < 0
		})
	}
	return out
}

// ApplyMaterials filters, sorts and annotates in one pass.
func ApplyMaterials(items []models.Material, q MaterialQuery, today time.Time) []models.MaterialView {
	sorted := SortMaterials(FilterMaterials(items, q, today), q.Sort)
	views := make([]models.MaterialView, len(sorted))
	for i, m := range sorted {
		views[i] = Annotate(m, today)
	}
	return views
}

// StockValue sums current stock times price over materials with both known.
func StockValue(items []models.Material) models.StockValue {
	value := models.StockValue{Total: decimal.Zero}
	for _, m := range items {
		if !m.CurrentStock.Valid || !m.Price.Valid {
			value.Unknown++
			continue
		}
		value.Total = value.Total.Add(m.CurrentStock.Decimal.Mul(m.Price.Decimal))
		value.Items++
	}
	value.Total = value.Total.Round(2)
	return value
}

func compareNullDecimal(a, b decimal.NullDecimal) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return 1
	case !b.Valid:
		return -1
	}
	return a.Decimal.Cmp(b.Decimal)
}

func compareNullDate(a, b models.NullDate) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return 1
	case !b.Valid:
		return -1
	}
	return a.Date.Compare(b.Date.Time)
}
