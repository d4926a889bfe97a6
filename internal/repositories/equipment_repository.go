package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"lab-backend/internal/apperr"
	"lab-backend/internal/models"
)

const equipmentNotFound = "Equipamento não encontrado"

// manutencoes_pendentes is derived on read, never stored.
const equipmentSelect = `SELECT e.id, e.codigo, e.nome, e.modelo, e.fabricante, e.numero_serie, e.categoria,
		e.localizacao, e.status, e.data_aquisicao, e.valor_aquisicao, e.garantia_ate,
		e.especificacoes_tecnicas, e.observacoes,
		(SELECT COUNT(*) FROM manutencoes m
		  WHERE m.equipamento_id = e.id AND m.status IN ('agendada', 'em_andamento')) AS manutencoes_pendentes,
		e.created_at, e.updated_at
	FROM equipamentos e`

type EquipmentRepository struct {
	DB DB
}

func NewEquipmentRepository(db DB) *EquipmentRepository {
	return &EquipmentRepository{DB: db}
}

func scanEquipment(row pgx.Row) (*models.Equipment, error) {
	e := &models.Equipment{}
	var acquired, warranty pgtype.Date
	var value pgtype.Numeric
	err := row.Scan(
		&e.ID, &e.Code, &e.Name, &e.Model, &e.Manufacturer, &e.SerialNumber, &e.Category,
		&e.Location, &e.Status, &acquired, &value, &warranty,
		&e.TechnicalSpecs, &e.Notes, &e.PendingMaintenance, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.AcquisitionDate = nullDate(acquired)
	e.AcquisitionValue = nullDecimal(value)
	e.WarrantyUntil = nullDate(warranty)
	return e, nil
}

func (r *EquipmentRepository) Create(ctx context.Context, e *models.Equipment) error {
	query := `INSERT INTO equipamentos (codigo, nome, modelo, fabricante, numero_serie, categoria, localizacao,
			status, data_aquisicao, valor_aquisicao, garantia_ate, especificacoes_tecnicas, observacoes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`
	err := r.DB.QueryRow(ctx, query,
		e.Code, e.Name, e.Model, e.Manufacturer, e.SerialNumber, e.Category, e.Location, e.Status,
		dateArg(e.AcquisitionDate), decimalArg(e.AcquisitionValue), dateArg(e.WarrantyUntil),
		e.TechnicalSpecs, e.Notes,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return apperr.FromDB(err, equipmentNotFound)
}

func (r *EquipmentRepository) Get(ctx context.Context, id int) (*models.Equipment, error) {
	e, err := scanEquipment(r.DB.QueryRow(ctx, equipmentSelect+` WHERE e.id = $1`, id))
	if err != nil {
		return nil, apperr.FromDB(err, equipmentNotFound)
	}
	return e, nil
}

func (r *EquipmentRepository) List(ctx context.Context) ([]models.Equipment, error) {
	rows, err := r.DB.Query(ctx, equipmentSelect+` ORDER BY e.id`)
	if err != nil {
		return nil, apperr.FromDB(err, equipmentNotFound)
	}
	defer rows.Close()

	var items []models.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, apperr.FromDB(err, equipmentNotFound)
		}
		items = append(items, *e)
	}
	return items, apperr.FromDB(rows.Err(), equipmentNotFound)
}

func (r *EquipmentRepository) Update(ctx context.Context, e *models.Equipment) error {
	query := `UPDATE equipamentos SET codigo = $2, nome = $3, modelo = $4, fabricante = $5, numero_serie = $6,
			categoria = $7, localizacao = $8, status = $9, data_aquisicao = $10, valor_aquisicao = $11,
			garantia_ate = $12, especificacoes_tecnicas = $13, observacoes = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.DB.QueryRow(ctx, query,
		e.ID, e.Code, e.Name, e.Model, e.Manufacturer, e.SerialNumber, e.Category, e.Location, e.Status,
		dateArg(e.AcquisitionDate), decimalArg(e.AcquisitionValue), dateArg(e.WarrantyUntil),
		e.TechnicalSpecs, e.Notes,
	).Scan(&e.UpdatedAt)
	return apperr.FromDB(err, equipmentNotFound)
}

// Delete removes the equipment; its maintenance records cascade.
func (r *EquipmentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM equipamentos WHERE id = $1`, id)
	if err != nil {
		return apperr.FromDB(err, equipmentNotFound)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.CodeNotFound, equipmentNotFound)
	}
	return nil
}

func (r *EquipmentRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM equipamentos WHERE id = $1)`, id).Scan(&exists)
	return exists, apperr.FromDB(err, equipmentNotFound)
}
