package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EquipmentActive      = "ativo"
	EquipmentInactive    = "inativo"
	EquipmentMaintenance = "manutencao"
	EquipmentDefective   = "defeito"
)

var EquipmentStatuses = []string{EquipmentActive, EquipmentInactive, EquipmentMaintenance, EquipmentDefective}

// EquipmentCategories are the categories offered by the registration form.
var EquipmentCategories = []string{
	"HPLC", "Espectrômetro", "Balança", "Microscópio", "pHmetro", "Centrífuga", "Autoclave",
	"Estufa", "Refrigerador", "Freezer", "Agitador", "Bomba", "Filtro", "Outros",
}

func ValidEquipmentStatus(s string) bool {
	return contains(EquipmentStatuses, s)
}

type Equipment struct {
	ID                 int                 `json:"id"`
	Code               string              `json:"codigo"`
	Name               string              `json:"nome"`
	Model              string              `json:"modelo"`
	Manufacturer       string              `json:"fabricante"`
	SerialNumber       string              `json:"numero_serie"`
	Category           string              `json:"categoria"`
	Location           string              `json:"localizacao"`
	Status             string              `json:"status"`
	AcquisitionDate    NullDate            `json:"data_aquisicao"`
	AcquisitionValue   decimal.NullDecimal `json:"valor_aquisicao"`
	WarrantyUntil      NullDate            `json:"garantia_ate"`
	TechnicalSpecs     string              `json:"especificacoes_tecnicas"`
	Notes              string              `json:"observacoes"`
	PendingMaintenance int                 `json:"manutencoes_pendentes"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

type EquipmentRequest struct {
	Code             string              `json:"codigo" validate:"required,max=50"`
	Name             string              `json:"nome" validate:"required,max=200"`
	Model            string              `json:"modelo" validate:"max=100"`
	Manufacturer     string              `json:"fabricante" validate:"max=200"`
	SerialNumber     string              `json:"numero_serie" validate:"max=100"`
	Category         string              `json:"categoria" validate:"required,max=50"`
	Location         string              `json:"localizacao" validate:"max=200"`
	Status           string              `json:"status" validate:"omitempty,oneof=ativo inativo manutencao defeito"`
	AcquisitionDate  NullDate            `json:"data_aquisicao"`
	AcquisitionValue decimal.NullDecimal `json:"valor_aquisicao"`
	WarrantyUntil    NullDate            `json:"garantia_ate"`
	TechnicalSpecs   string              `json:"especificacoes_tecnicas"`
	Notes            string              `json:"observacoes"`
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
