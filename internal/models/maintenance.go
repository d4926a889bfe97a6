package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaintenancePreventive  = "preventiva"
	MaintenanceCorrective  = "corretiva"
	MaintenanceCalibration = "calibracao"
	MaintenanceCleaning    = "limpeza"
	MaintenanceReview      = "revisao"
)

const (
	PriorityLow      = "baixa"
	PriorityMedium   = "media"
	PriorityHigh     = "alta"
	PriorityCritical = "critica"
)

const (
	MaintenanceScheduled  = "agendada"
	MaintenanceInProgress = "em_andamento"
	MaintenanceCompleted  = "concluida"
	MaintenanceCancelled  = "cancelada"
)

var (
	MaintenanceTypes      = []string{MaintenancePreventive, MaintenanceCorrective, MaintenanceCalibration, MaintenanceCleaning, MaintenanceReview}
	MaintenancePriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
	MaintenanceStatuses   = []string{MaintenanceScheduled, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled}
)

func ValidMaintenanceStatus(s string) bool {
	return contains(MaintenanceStatuses, s)
}

func ValidMaintenanceType(s string) bool {
	return contains(MaintenanceTypes, s)
}

// IsPendingMaintenance reports whether a record still counts as open work
// against its equipment.
func IsPendingMaintenance(status string) bool {
	return status == MaintenanceScheduled || status == MaintenanceInProgress
}

type Maintenance struct {
	ID            int                 `json:"id"`
	EquipmentID   int                 `json:"equipamento_id"`
	EquipmentName string              `json:"nome_equipamento"`
	EquipmentCode string              `json:"codigo_equipamento"`
	Type          string              `json:"tipo"`
	Description   string              `json:"descricao"`
	ScheduledDate Date                `json:"data_agendada"`
	PerformedDate NullDate            `json:"data_realizada"`
	Priority      string              `json:"prioridade"`
	Status        string              `json:"status"`
	Responsible   string              `json:"responsavel"`
	Supplier      string              `json:"fornecedor"`
	Cost          decimal.NullDecimal `json:"custo"`
	Notes         string              `json:"observacoes"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type MaintenanceRequest struct {
	EquipmentID   int                 `json:"equipamento_id" validate:"required,gt=0"`
	Type          string              `json:"tipo" validate:"required,oneof=preventiva corretiva calibracao limpeza revisao"`
	Description   string              `json:"descricao" validate:"required,max=2000"`
	ScheduledDate NullDate            `json:"data_agendada"`
	Priority      string              `json:"prioridade" validate:"omitempty,oneof=baixa media alta critica"`
	Status        string              `json:"status" validate:"omitempty,oneof=agendada em_andamento concluida cancelada"`
	Responsible   string              `json:"responsavel" validate:"max=200"`
	Supplier      string              `json:"fornecedor" validate:"max=200"`
	Cost          decimal.NullDecimal `json:"custo"`
	Notes         string              `json:"observacoes"`
}

type CompleteMaintenanceRequest struct {
	Cost  decimal.NullDecimal `json:"custo"`
	Notes string              `json:"observacoes"`
}
