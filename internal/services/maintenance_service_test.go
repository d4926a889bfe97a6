package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-backend/internal/apperr"
	"lab-backend/internal/catalog"
	"lab-backend/internal/models"
)

func newTestMaintenanceService(items ...models.Maintenance) (*MaintenanceService, *fakeMaintenance) {
	repo := newFakeMaintenance(items...)
	equipment := newFakeEquipment(models.Equipment{ID: 1, Code: "HPLC-01", Name: "HPLC", Category: "HPLC", Status: models.EquipmentActive})
	svc := NewMaintenanceService(repo, equipment)
	svc.Today = func() time.Time { return testToday }
	return svc, repo
}

func maintenanceRequest() models.MaintenanceRequest {
	return models.MaintenanceRequest{
		EquipmentID:   1,
		Type:          models.MaintenancePreventive,
		Description:   "Troca de lâmpada",
		ScheduledDate: models.NewNullDate(models.NewDate(2026, 4, 1)),
		Status:        models.MaintenanceCompleted,
	}
}

func TestMaintenanceCreateAlwaysScheduled(t *testing.T) {
	svc, repo := newTestMaintenanceService()

	id, err := svc.Create(context.Background(), maintenanceRequest())
	require.NoError(t, err)
	stored := repo.items[id]
	assert.Equal(t, models.MaintenanceScheduled, stored.Status)
	assert.Equal(t, models.PriorityMedium, stored.Priority)
}

func TestMaintenanceCreateValidation(t *testing.T) {
	svc, _ := newTestMaintenanceService()

	req := maintenanceRequest()
	req.EquipmentID = 99
	_, err := svc.Create(context.Background(), req)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	req = maintenanceRequest()
	req.ScheduledDate = models.NullDate{}
	_, err = svc.Create(context.Background(), req)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	req = maintenanceRequest()
	req.Type = "pintura"
	_, err = svc.Create(context.Background(), req)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

func TestMaintenanceCompleteOnlyFromScheduled(t *testing.T) {
	svc, _ := newTestMaintenanceService(
		models.Maintenance{ID: 1, EquipmentID: 1, Status: models.MaintenanceScheduled},
		models.Maintenance{ID: 2, EquipmentID: 1, Status: models.MaintenanceInProgress},
	)
	ctx := context.Background()

	done, err := svc.Complete(ctx, 1, models.CompleteMaintenanceRequest{Cost: dec("150"), Notes: "ok"})
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceCompleted, done.Status)
	require.True(t, done.PerformedDate.Valid)
	assert.Equal(t, "2026-03-10", done.PerformedDate.Date.String())
	assert.Equal(t, "ok", done.Notes)

	_, err = svc.Complete(ctx, 1, models.CompleteMaintenanceRequest{})
	assert.True(t, apperr.IsCode(err, apperr.CodeStateConflict))

	_, err = svc.Complete(ctx, 2, models.CompleteMaintenanceRequest{})
	typed := apperr.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperr.CodeStateConflict, typed.Code())
	assert.Equal(t, map[string]any{"status": models.MaintenanceInProgress}, typed.Details())

	_, err = svc.Complete(ctx, 99, models.CompleteMaintenanceRequest{})
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	_, err = svc.Complete(ctx, 2, models.CompleteMaintenanceRequest{Cost: dec("-1")})
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

func TestMaintenanceUpdateRules(t *testing.T) {
	svc, repo := newTestMaintenanceService(
		models.Maintenance{ID: 1, EquipmentID: 1, Status: models.MaintenanceScheduled},
		models.Maintenance{ID: 2, EquipmentID: 1, Status: models.MaintenanceCompleted},
	)
	ctx := context.Background()

	req := maintenanceRequest()
	req.Status = models.MaintenanceInProgress
	require.NoError(t, svc.Update(ctx, 1, req))
	assert.Equal(t, models.MaintenanceInProgress, repo.items[1].Status)

	req.Status = ""
	require.NoError(t, svc.Update(ctx, 1, req))
	assert.Equal(t, models.MaintenanceInProgress, repo.items[1].Status)

	req.Status = models.MaintenanceCompleted
	assert.True(t, apperr.IsCode(svc.Update(ctx, 1, req), apperr.CodeStateConflict))

	req.Status = models.MaintenanceCancelled
	assert.True(t, apperr.IsCode(svc.Update(ctx, 2, req), apperr.CodeStateConflict))
	assert.True(t, apperr.IsCode(svc.Update(ctx, 9, req), apperr.CodeNotFound))
}

func TestMaintenanceDeleteOnlyScheduled(t *testing.T) {
	svc, repo := newTestMaintenanceService(
		models.Maintenance{ID: 1, EquipmentID: 1, Status: models.MaintenanceScheduled},
		models.Maintenance{ID: 2, EquipmentID: 1, Status: models.MaintenanceCancelled},
	)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, 1))
	assert.NotContains(t, repo.items, 1)
	assert.True(t, apperr.IsCode(svc.Delete(ctx, 2), apperr.CodeStateConflict))
	assert.True(t, apperr.IsCode(svc.Delete(ctx, 1), apperr.CodeNotFound))
}

func TestMaintenanceListAndSummary(t *testing.T) {
	svc, _ := newTestMaintenanceService(
		models.Maintenance{ID: 1, EquipmentID: 1, Status: models.MaintenanceScheduled, ScheduledDate: models.NewDate(2026, 5, 1), Description: "Calibração"},
		models.Maintenance{ID: 2, EquipmentID: 1, Status: models.MaintenanceScheduled, ScheduledDate: models.NewDate(2026, 4, 1), Description: "Limpeza"},
		models.Maintenance{ID: 3, EquipmentID: 1, Status: models.MaintenanceCompleted, ScheduledDate: models.NewDate(2026, 1, 1)},
	)
	ctx := context.Background()

	items, err := svc.List(ctx, catalog.MaintenanceQuery{Status: models.MaintenanceScheduled})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].ID)

	items, err = svc.List(ctx, catalog.MaintenanceQuery{Search: "calibracao"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].ID)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary[models.MaintenanceScheduled])
	assert.Equal(t, 1, summary[models.MaintenanceCompleted])
}
