package catalog

import (
	"sort"

	"lab-backend/internal/models"
)

type MaintenanceQuery struct {
	Search      string
	Status      string
	Type        string
	EquipmentID int
}

func (q MaintenanceQuery) matches(search matcher, m models.Maintenance) bool {
	if q.Status != "" && m.Status != q.Status {
		return false
	}
	if q.Type != "" && m.Type != q.Type {
		return false
	}
	if q.EquipmentID != 0 && m.EquipmentID != q.EquipmentID {
		return false
	}
	return search.any(m.Description, m.EquipmentName, m.EquipmentCode, m.Responsible)
}

// ApplyMaintenance filters and orders by scheduled date, oldest first.
func ApplyMaintenance(items []models.Maintenance, q MaintenanceQuery) []models.Maintenance {
	search := newMatcher(q.Search)
	out := make([]models.Maintenance, 0, len(items))
	for _, m := range items {
		if q.matches(search, m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledDate.Before(out[j].ScheduledDate.Time)
	})
	return out
}

func CountMaintenanceByStatus(items []models.Maintenance) map[string]int {
	counts := make(map[string]int, len(models.MaintenanceStatuses))
	for _, s := range models.MaintenanceStatuses {
		counts[s] = 0
	}
	for _, m := range items {
		counts[m.Status]++
	}
	return counts
}
