package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"lab-backend/internal/apperr"
	"lab-backend/internal/models"
)

const maintenanceNotFound = "Manutenção não encontrada"

const maintenanceSelect = `SELECT m.id, m.equipamento_id, e.nome, e.codigo, m.tipo, m.descricao, m.data_agendada,
		m.data_realizada, m.prioridade, m.status, m.responsavel, m.fornecedor, m.custo, m.observacoes,
		m.created_at, m.updated_at
	FROM manutencoes m
	JOIN equipamentos e ON e.id = m.equipamento_id`

type MaintenanceRepository struct {
	DB DB
}

func NewMaintenanceRepository(db DB) *MaintenanceRepository {
	return &MaintenanceRepository{DB: db}
}

func scanMaintenance(row pgx.Row) (*models.Maintenance, error) {
	m := &models.Maintenance{}
	var scheduled, performed pgtype.Date
	var cost pgtype.Numeric
	err := row.Scan(
		&m.ID, &m.EquipmentID, &m.EquipmentName, &m.EquipmentCode, &m.Type, &m.Description, &scheduled,
		&performed, &m.Priority, &m.Status, &m.Responsible, &m.Supplier, &cost, &m.Notes,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.ScheduledDate = models.DateFromTime(scheduled.Time)
	m.PerformedDate = nullDate(performed)
	m.Cost = nullDecimal(cost)
	return m, nil
}

func (r *MaintenanceRepository) Create(ctx context.Context, m *models.Maintenance) error {
	query := `INSERT INTO manutencoes (equipamento_id, tipo, descricao, data_agendada, prioridade, status,
			responsavel, fornecedor, custo, observacoes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	err := r.DB.QueryRow(ctx, query,
		m.EquipmentID, m.Type, m.Description, m.ScheduledDate.Time, m.Priority, m.Status,
		m.Responsible, m.Supplier, decimalArg(m.Cost), m.Notes,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return apperr.FromDB(err, maintenanceNotFound)
}

func (r *MaintenanceRepository) Get(ctx context.Context, id int) (*models.Maintenance, error) {
	m, err := scanMaintenance(r.DB.QueryRow(ctx, maintenanceSelect+` WHERE m.id = $1`, id))
	if err != nil {
		return nil, apperr.FromDB(err, maintenanceNotFound)
	}
	return m, nil
}

func (r *MaintenanceRepository) List(ctx context.Context) ([]models.Maintenance, error) {
	rows, err := r.DB.Query(ctx, maintenanceSelect+` ORDER BY m.data_agendada, m.id`)
	if err != nil {
		return nil, apperr.FromDB(err, maintenanceNotFound)
	}
	defer rows.Close()

	var items []models.Maintenance
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, apperr.FromDB(err, maintenanceNotFound)
		}
		items = append(items, *m)
	}
	return items, apperr.FromDB(rows.Err(), maintenanceNotFound)
}

// Update rewrites the editable fields unless the record is already completed.
// It reports false when no row qualified.
func (r *MaintenanceRepository) Update(ctx context.Context, m *models.Maintenance) (bool, error) {
	query := `UPDATE manutencoes SET equipamento_id = $2, tipo = $3, descricao = $4, data_agendada = $5,
			prioridade = $6, status = $7, responsavel = $8, fornecedor = $9, custo = $10, observacoes = $11,
			updated_at = NOW()
		WHERE id = $1 AND status <> 'concluida'`
	tag, err := r.DB.Exec(ctx, query,
		m.ID, m.EquipmentID, m.Type, m.Description, m.ScheduledDate.Time, m.Priority, m.Status,
		m.Responsible, m.Supplier, decimalArg(m.Cost), m.Notes,
	)
	if err != nil {
		return false, apperr.FromDB(err, maintenanceNotFound)
	}
	return tag.RowsAffected() == 1, nil
}

// Complete moves a scheduled record to completed. It reports false when the
// record is missing or not scheduled.
func (r *MaintenanceRepository) Complete(ctx context.Context, id int, cost decimal.NullDecimal, notes string, performed time.Time) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE manutencoes SET status = 'concluida', data_realizada = $2, custo = COALESCE($3, custo),
			observacoes = CASE WHEN $4 = '' THEN observacoes ELSE $4 END, updated_at = NOW()
		 WHERE id = $1 AND status = 'agendada'`,
		id, performed, decimalArg(cost), notes,
	)
	if err != nil {
		return false, apperr.FromDB(err, maintenanceNotFound)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a scheduled record. It reports false when nothing qualified.
func (r *MaintenanceRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM manutencoes WHERE id = $1 AND status = 'agendada'`, id)
	if err != nil {
		return false, apperr.FromDB(err, maintenanceNotFound)
	}
	return tag.RowsAffected() == 1, nil
}
