package services

import (
	"context"
	"strings"
	"time"

	"lab-backend/internal/apperr"
	"lab-backend/internal/catalog"
	"lab-backend/internal/models"
	"lab-backend/internal/timeutil"
)

const (
	MsgMaintenanceCreated = "Manutenção agendada com sucesso!"
	MsgMaintenanceUpdated = "Manutenção atualizada com sucesso!"
	MsgMaintenanceDeleted = "Manutenção excluída com sucesso!"
)

// MaintenanceService enforces the record lifecycle: records start
// agendada, may move between agendada, em_andamento and cancelada through
// edits, and reach concluida only through Complete. Completed records are
// read-only.
type MaintenanceService struct {
	Repo      MaintenanceStore
	Equipment EquipmentStore
	Today     func() time.Time
}

func NewMaintenanceService(repo MaintenanceStore, equipment EquipmentStore) *MaintenanceService {
	return &MaintenanceService{Repo: repo, Equipment: equipment, Today: timeutil.Today}
}

func (s *MaintenanceService) List(ctx context.Context, q catalog.MaintenanceQuery) ([]models.Maintenance, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.ApplyMaintenance(items, q), nil
}

func (s *MaintenanceService) Summary(ctx context.Context) (map[string]int, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.CountMaintenanceByStatus(items), nil
}

func (s *MaintenanceService) Get(ctx context.Context, id int) (*models.Maintenance, error) {
	return s.Repo.Get(ctx, id)
}

// Create schedules a new record. Any status in the payload is ignored.
func (s *MaintenanceService) Create(ctx context.Context, req models.MaintenanceRequest) (int, error) {
	m, err := s.fromRequest(ctx, req)
	if err != nil {
		return 0, err
	}
	m.Status = models.MaintenanceScheduled
	if err := s.Repo.Create(ctx, &m); err != nil {
		return 0, err
	}
	return m.ID, nil
}

func (s *MaintenanceService) Update(ctx context.Context, id int, req models.MaintenanceRequest) error {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == models.MaintenanceCompleted {
		return completedConflict(existing.Status)
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = existing.Status
	}
	if status == models.MaintenanceCompleted {
		return apperr.New(apperr.CodeStateConflict, "Use a conclusão da manutenção para marcá-la como concluída").
			WithDetails(map[string]any{"status": existing.Status})
	}
	if !models.ValidMaintenanceStatus(status) {
		return apperr.New(apperr.CodeValidation, "Status inválido").
			WithDetails(map[string]any{"status": models.MaintenanceStatuses})
	}

	m, err := s.fromRequest(ctx, req)
	if err != nil {
		return err
	}
	m.ID = id
	m.Status = status

	ok, err := s.Repo.Update(ctx, &m)
	if err != nil {
		return err
	}
	if !ok {
		return s.explainMiss(ctx, id)
	}
	return nil
}

// Complete closes a scheduled record with today's date.
func (s *MaintenanceService) Complete(ctx context.Context, id int, req models.CompleteMaintenanceRequest) (*models.Maintenance, error) {
	if req.Cost.Valid && req.Cost.Decimal.IsNegative() {
		return nil, apperr.New(apperr.CodeValidation, "Custo não pode ser negativo").
			WithDetails(map[string]any{"custo": "não pode ser negativo"})
	}
	ok, err := s.Repo.Complete(ctx, id, req.Cost, strings.TrimSpace(req.Notes), s.Today())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.explainMiss(ctx, id)
	}
	return s.Repo.Get(ctx, id)
}

// Delete removes a record that is still scheduled.
func (s *MaintenanceService) Delete(ctx context.Context, id int) error {
	ok, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return s.explainMiss(ctx, id)
	}
	return nil
}

// explainMiss turns a conditional write that matched nothing into either
// not found or a state conflict carrying the current status.
func (s *MaintenanceService) explainMiss(ctx context.Context, id int) error {
	current, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == models.MaintenanceCompleted {
		return completedConflict(current.Status)
	}
	return apperr.New(apperr.CodeStateConflict, "Operação permitida apenas para manutenções agendadas").
		WithDetails(map[string]any{"status": current.Status})
}

func completedConflict(status string) error {
	return apperr.New(apperr.CodeStateConflict, "Manutenção já concluída").
		WithDetails(map[string]any{"status": status})
}

func (s *MaintenanceService) fromRequest(ctx context.Context, req models.MaintenanceRequest) (models.Maintenance, error) {
	if !req.ScheduledDate.Valid {
		return models.Maintenance{}, apperr.New(apperr.CodeValidation, "Campos inválidos: data_agendada").
			WithDetails(map[string]string{"data_agendada": "obrigatório"})
	}
	if !models.ValidMaintenanceType(req.Type) {
		return models.Maintenance{}, apperr.New(apperr.CodeValidation, "Tipo inválido").
			WithDetails(map[string]any{"tipo": models.MaintenanceTypes})
	}
	if req.Cost.Valid && req.Cost.Decimal.IsNegative() {
		return models.Maintenance{}, apperr.New(apperr.CodeValidation, "Custo não pode ser negativo").
			WithDetails(map[string]any{"custo": "não pode ser negativo"})
	}
	exists, err := s.Equipment.Exists(ctx, req.EquipmentID)
	if err != nil {
		return models.Maintenance{}, err
	}
	if !exists {
		return models.Maintenance{}, apperr.New(apperr.CodeValidation, "Equipamento não encontrado").
			WithDetails(map[string]any{"equipamento_id": req.EquipmentID})
	}

	priority := strings.TrimSpace(req.Priority)
	if priority == "" {
		priority = models.PriorityMedium
	}
	return models.Maintenance{
		EquipmentID:   req.EquipmentID,
		Type:          req.Type,
		Description:   strings.TrimSpace(req.Description),
		ScheduledDate: req.ScheduledDate.Date,
		Priority:      priority,
		Responsible:   strings.TrimSpace(req.Responsible),
		Supplier:      strings.TrimSpace(req.Supplier),
		Cost:          req.Cost,
		Notes:         req.Notes,
	}, nil
}
