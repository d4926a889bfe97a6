package services

import (
	"context"
	"strings"

	"lab-backend/internal/apperr"
	"lab-backend/internal/catalog"
	"lab-backend/internal/models"
)

const (
	MsgEquipmentCreated = "Equipamento cadastrado com sucesso!"
	MsgEquipmentUpdated = "Equipamento atualizado com sucesso!"
	MsgEquipmentDeleted = "Equipamento excluído com sucesso!"
)

type EquipmentService struct {
	Repo EquipmentStore
}

func NewEquipmentService(repo EquipmentStore) *EquipmentService {
	return &EquipmentService{Repo: repo}
}

func (s *EquipmentService) List(ctx context.Context, q catalog.EquipmentQuery) ([]models.Equipment, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.ApplyEquipment(items, q), nil
}

// Summary counts equipment per status, every status present.
func (s *EquipmentService) Summary(ctx context.Context) (map[string]int, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.CountEquipmentByStatus(items), nil
}

func (s *EquipmentService) Get(ctx context.Context, id int) (*models.Equipment, error) {
	return s.Repo.Get(ctx, id)
}

func (s *EquipmentService) Create(ctx context.Context, req models.EquipmentRequest) (int, error) {
	e, err := equipmentFromRequest(req)
	if err != nil {
		return 0, err
	}
	if err := s.Repo.Create(ctx, &e); err != nil {
		return 0, err
	}
	return e.ID, nil
}

func (s *EquipmentService) Update(ctx context.Context, id int, req models.EquipmentRequest) error {
	e, err := equipmentFromRequest(req)
	if err != nil {
		return err
	}
	e.ID = id
	return s.Repo.Update(ctx, &e)
}

// Delete removes the equipment together with its maintenance history.
func (s *EquipmentService) Delete(ctx context.Context, id int) error {
	return s.Repo.Delete(ctx, id)
}

func equipmentFromRequest(req models.EquipmentRequest) (models.Equipment, error) {
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.EquipmentActive
	}
	if !models.ValidEquipmentStatus(status) {
		return models.Equipment{}, apperr.New(apperr.CodeValidation, "Status inválido").
			WithDetails(map[string]any{"status": models.EquipmentStatuses})
	}
	if req.AcquisitionValue.Valid && req.AcquisitionValue.Decimal.IsNegative() {
		return models.Equipment{}, apperr.New(apperr.CodeValidation, "Valor de aquisição não pode ser negativo").
			WithDetails(map[string]any{"valor_aquisicao": "não pode ser negativo"})
	}
	return models.Equipment{
		Code:             strings.TrimSpace(req.Code),
		Name:             strings.TrimSpace(req.Name),
		Model:            strings.TrimSpace(req.Model),
		Manufacturer:     strings.TrimSpace(req.Manufacturer),
		SerialNumber:     strings.TrimSpace(req.SerialNumber),
		Category:         strings.TrimSpace(req.Category),
		Location:         strings.TrimSpace(req.Location),
		Status:           status,
		AcquisitionDate:  req.AcquisitionDate,
		AcquisitionValue: req.AcquisitionValue,
		WarrantyUntil:    req.WarrantyUntil,
		TechnicalSpecs:   req.TechnicalSpecs,
		Notes:            req.Notes,
	}, nil
}
