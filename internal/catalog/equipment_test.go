package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lab-backend/internal/models"
)

func equipmentFixture() []models.Equipment {
	acquired := func(y int) models.NullDate {
		return models.NewNullDate(models.NewDate(y, time.March, 1))
	}
	return []models.Equipment{
		{ID: 1, Code: "EQ-003", Name: "Balança analítica", Category: "Balança", Status: models.EquipmentActive, Manufacturer: "Shimadzu", AcquisitionDate: acquired(2020)},
		{ID: 2, Code: "EQ-001", Name: "HPLC 1260", Category: "HPLC", Status: models.EquipmentMaintenance, Manufacturer: "Agilent", Model: "Infinity II"},
		{ID: 3, Code: "EQ-002", Name: "Autoclave vertical", Category: "Autoclave", Status: models.EquipmentActive, AcquisitionDate: acquired(2018)},
		{ID: 4, Code: "EQ-004", Name: "Balança de precisão", Category: "Balança", Status: models.EquipmentDefective},
	}
}

func equipmentIDs(items []models.Equipment) []int {
	ids := []int{}
	for _, e := range items {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestEquipmentFiltersCombineWithAnd(t *testing.T) {
	items := equipmentFixture()

	assert.Equal(t, []int{1, 4}, equipmentIDs(FilterEquipment(items, EquipmentQuery{Category: "Balança"})))
	assert.Equal(t, []int{1, 3}, equipmentIDs(FilterEquipment(items, EquipmentQuery{Status: models.EquipmentActive})))
	assert.Equal(t, []int{1}, equipmentIDs(FilterEquipment(items, EquipmentQuery{Category: "Balança", Status: models.EquipmentActive})))
	assert.Empty(t, FilterEquipment(items, EquipmentQuery{Category: "HPLC", Status: models.EquipmentActive}))
}

func TestEquipmentSearchFields(t *testing.T) {
	items := equipmentFixture()

	assert.Equal(t, []int{2}, equipmentIDs(FilterEquipment(items, EquipmentQuery{Search: "infinity"})))
	assert.Equal(t, []int{3}, equipmentIDs(FilterEquipment(items, EquipmentQuery{Search: "eq-002"})))
	assert.Equal(t, []int{1}, equipmentIDs(FilterEquipment(items, EquipmentQuery{Search: "shimadzu"})))
	assert.Equal(t, []int{1, 4}, equipmentIDs(FilterEquipment(items, EquipmentQuery{Search: "balanca"})))
}

func TestEquipmentSort(t *testing.T) {
	items := equipmentFixture()

	assert.Equal(t, []int{2, 3, 1, 4}, equipmentIDs(SortEquipment(items, EquipmentSortCode)))
	assert.Equal(t, []int{3, 1, 4, 2}, equipmentIDs(SortEquipment(items, EquipmentSortName)))
	assert.Equal(t, []int{3, 1, 2, 4}, equipmentIDs(SortEquipment(items, EquipmentSortAcquisition)))
	assert.Equal(t, []int{1, 2, 3, 4}, equipmentIDs(ApplyEquipment(items, EquipmentQuery{})))
}

func TestCountEquipmentByStatus(t *testing.T) {
	counts := CountEquipmentByStatus(equipmentFixture())
	assert.Equal(t, map[string]int{
		models.EquipmentActive:      2,
		models.EquipmentInactive:    0,
		models.EquipmentMaintenance: 1,
		models.EquipmentDefective:   1,
	}, counts)
}

func TestApplyMaintenance(t *testing.T) {
	day := func(d int) models.Date { return models.NewDate(2024, time.July, d) }
	items := []models.Maintenance{
		{ID: 1, EquipmentID: 2, EquipmentName: "HPLC 1260", EquipmentCode: "EQ-001", Type: models.MaintenancePreventive, Status: models.MaintenanceScheduled, ScheduledDate: day(20), Description: "Troca de lâmpada"},
		{ID: 2, EquipmentID: 1, EquipmentName: "Balança analítica", Type: models.MaintenanceCalibration, Status: models.MaintenanceCompleted, ScheduledDate: day(5), Responsible: "João"},
		{ID: 3, EquipmentID: 2, EquipmentName: "HPLC 1260", Type: models.MaintenanceCorrective, Status: models.MaintenanceScheduled, ScheduledDate: day(10), Description: "Vazamento"},
	}

	ids := func(ms []models.Maintenance) []int {
		out := []int{}
		for _, m := range ms {
			out = append(out, m.ID)
		}
		return out
	}

	assert.Equal(t, []int{2, 3, 1}, ids(ApplyMaintenance(items, MaintenanceQuery{})))
	assert.Equal(t, []int{3, 1}, ids(ApplyMaintenance(items, MaintenanceQuery{EquipmentID: 2})))
	assert.Equal(t, []int{3}, ids(ApplyMaintenance(items, MaintenanceQuery{Type: models.MaintenanceCorrective})))
	assert.Equal(t, []int{1}, ids(ApplyMaintenance(items, MaintenanceQuery{Search: "lampada"})))
	assert.Equal(t, []int{2}, ids(ApplyMaintenance(items, MaintenanceQuery{Search: "joão"})))
	assert.Equal(t, []int{3, 1}, ids(ApplyMaintenance(items, MaintenanceQuery{Status: models.MaintenanceScheduled})))

	counts := CountMaintenanceByStatus(items)
	assert.Equal(t, 2, counts[models.MaintenanceScheduled])
	assert.Equal(t, 1, counts[models.MaintenanceCompleted])
	assert.Equal(t, 0, counts[models.MaintenanceCancelled])
}
