package catalog

import (
	"fmt"
	"sort"
	"strings"

	"lab-backend/internal/models"
)

type EquipmentSortKey string

const (
	EquipmentSortNone        EquipmentSortKey = ""
	EquipmentSortName        EquipmentSortKey = "nome"
	EquipmentSortCode        EquipmentSortKey = "codigo"
	EquipmentSortAcquisition EquipmentSortKey = "aquisicao"
)

func ParseEquipmentSortKey(s string) (EquipmentSortKey, error) {
	switch key := EquipmentSortKey(strings.TrimSpace(s)); key {
	case EquipmentSortNone, EquipmentSortName, EquipmentSortCode, EquipmentSortAcquisition:
		return key, nil
	}
	return "", fmt.Errorf("ordenação inválida: %q", s)
}

// EquipmentQuery combines its non-empty predicates with AND.
type EquipmentQuery struct {
	Search   string
	Status   string
	Category string
	Sort     EquipmentSortKey
}

func (q EquipmentQuery) matches(search matcher, e models.Equipment) bool {
	if q.Status != "" && e.Status != q.Status {
		return false
	}
	if q.Category != "" && e.Category != q.Category {
		return false
	}
	return search.any(e.Name, e.Code, e.Manufacturer, e.Model, e.Category)
}

func FilterEquipment(items []models.Equipment, q EquipmentQuery) []models.Equipment {
	search := newMatcher(q.Search)
	out := make([]models.Equipment, 0, len(items))
	for _, e := range items {
		if q.matches(search, e) {
			out = append(out, e)
		}
	}
	return out
}

func SortEquipment(items []models.Equipment, key EquipmentSortKey) []models.Equipment {
	out := make([]models.Equipment, len(items))
	copy(out, items)

	switch key {
	case EquipmentSortName:
		c := newNameCollator()
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) < 0
		})
	case EquipmentSortCode:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Code < out[j].Code
		})
	case EquipmentSortAcquisition:
		sort.SliceStable(out, func(i, j int) bool {
			return compareNullDate(out[i].AcquisitionDate, out[j].AcquisitionDate) < 0
		})
	}
	return out
}

func ApplyEquipment(items []models.Equipment, q EquipmentQuery) []models.Equipment {
	return SortEquipment(FilterEquipment(items, q), q.Sort)
}

// CountEquipmentByStatus feeds the summary cards of the equipment list.
func CountEquipmentByStatus(items []models.Equipment) map[string]int {
	counts := make(map[string]int, len(models.EquipmentStatuses))
	for _, s := range models.EquipmentStatuses {
		counts[s] = 0
	}
	for _, e := range items {
		counts[e.Status]++
	}
	return counts
}
