package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"lab-backend/internal/apperr"
	"lab-backend/internal/models"
)

const materialNotFound = "Material não encontrado"

const materialColumns = `id, nome, tipo, fabricante, quantidade, unidade, estoque_atual, estoque_minimo,
	validade, preco, COALESCE(codigo, ''), COALESCE(fispq_nome, ''), COALESCE(fispq_chave, ''),
	created_at, updated_at`

type MaterialRepository struct {
	DB DB
}

func NewMaterialRepository(db DB) *MaterialRepository {
	return &MaterialRepository{DB: db}
}

func scanMaterial(row pgx.Row) (*models.Material, error) {
	m := &models.Material{}
	var quantity, current, minimum, price pgtype.Numeric
	var expiry pgtype.Date
	err := row.Scan(
		&m.ID, &m.Name, &m.Type, &m.Manufacturer, &quantity, &m.Unit, &current, &minimum,
		&expiry, &price, &m.Code, &m.FISPQName, &m.FISPQKey, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Quantity = toDecimal(quantity)
	m.CurrentStock = nullDecimal(current)
	m.MinimumStock = nullDecimal(minimum)
	m.Expiry = nullDate(expiry)
	m.Price = nullDecimal(price)
	return m, nil
}

func (r *MaterialRepository) Create(ctx context.Context, m *models.Material) error {
	query := `INSERT INTO materiais (nome, tipo, fabricante, quantidade, unidade, estoque_atual,
			estoque_minimo, validade, preco, codigo, fispq_nome, fispq_chave)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''))
		RETURNING id, created_at, updated_at`
	err := r.DB.QueryRow(ctx, query,
		m.Name, m.Type, m.Manufacturer, m.Quantity.String(), m.Unit,
		decimalArg(m.CurrentStock), decimalArg(m.MinimumStock), dateArg(m.Expiry), decimalArg(m.Price),
		m.Code, m.FISPQName, m.FISPQKey,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return apperr.FromDB(err, materialNotFound)
}

func (r *MaterialRepository) Get(ctx context.Context, id int) (*models.Material, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+materialColumns+` FROM materiais WHERE id = $1`, id)
	m, err := scanMaterial(row)
	if err != nil {
		return nil, apperr.FromDB(err, materialNotFound)
	}
	return m, nil
}

func (r *MaterialRepository) GetByCode(ctx context.Context, code string) (*models.Material, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+materialColumns+` FROM materiais WHERE codigo = $1`, code)
	m, err := scanMaterial(row)
	if err != nil {
		return nil, apperr.FromDB(err, materialNotFound)
	}
	return m, nil
}

// List returns every material in registration order.
func (r *MaterialRepository) List(ctx context.Context) ([]models.Material, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+materialColumns+` FROM materiais ORDER BY id`)
	if err != nil {
		return nil, apperr.FromDB(err, materialNotFound)
	}
	defer rows.Close()

	var items []models.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, apperr.FromDB(err, materialNotFound)
		}
		items = append(items, *m)
	}
	return items, apperr.FromDB(rows.Err(), materialNotFound)
}

func (r *MaterialRepository) Update(ctx context.Context, m *models.Material) error {
	query := `UPDATE materiais SET nome = $2, tipo = $3, fabricante = $4, quantidade = $5, unidade = $6,
			estoque_atual = $7, estoque_minimo = $8, validade = $9, preco = $10, codigo = NULLIF($11, ''),
			fispq_nome = NULLIF($12, ''), fispq_chave = NULLIF($13, ''), updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.DB.QueryRow(ctx, query,
		m.ID, m.Name, m.Type, m.Manufacturer, m.Quantity.String(), m.Unit,
		decimalArg(m.CurrentStock), decimalArg(m.MinimumStock), dateArg(m.Expiry), decimalArg(m.Price),
		m.Code, m.FISPQName, m.FISPQKey,
	).Scan(&m.UpdatedAt)
	return apperr.FromDB(err, materialNotFound)
}

func (r *MaterialRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM materiais WHERE id = $1`, id)
	if err != nil {
		return apperr.FromDB(err, materialNotFound)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.CodeNotFound, materialNotFound)
	}
	return nil
}

// Decrement removes qty from the current stock and records the movement.
// The stock check and the update are a single conditional statement, so
// concurrent baixas can never drive the stock below zero.
func (r *MaterialRepository) Decrement(ctx context.Context, id int, qty decimal.Decimal, userID int, note string) (decimal.Decimal, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return decimal.Zero, apperr.FromDB(err, materialNotFound)
	}
	defer tx.Rollback(ctx)

	var remaining pgtype.Numeric
	err = tx.QueryRow(ctx,
		`UPDATE materiais SET estoque_atual = estoque_atual - $2, updated_at = NOW()
		 WHERE id = $1 AND estoque_atual >= $2
		 RETURNING estoque_atual`,
		id, qty.String(),
	).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, r.classifyFailedDecrement(ctx, tx, id)
	}
	if err != nil {
		return decimal.Zero, apperr.FromDB(err, materialNotFound)
	}

	stock := toDecimal(remaining)
	if _, err := tx.Exec(ctx,
		`INSERT INTO movimentacoes (material_id, quantidade, estoque_resultante, usuario_id, observacao)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, qty.String(), stock.String(), intArg(userID), note,
	); err != nil {
		return decimal.Zero, apperr.FromDB(err, materialNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, apperr.FromDB(err, materialNotFound)
	}
	return stock, nil
}

func (r *MaterialRepository) classifyFailedDecrement(ctx context.Context, tx pgx.Tx, id int) error {
	var current pgtype.Numeric
	err := tx.QueryRow(ctx, `SELECT estoque_atual FROM materiais WHERE id = $1`, id).Scan(&current)
	if err != nil {
		return apperr.FromDB(err, materialNotFound)
	}
	stock := nullDecimal(current)
	details := map[string]any{"estoque_atual": nil}
	if stock.Valid {
		details["estoque_atual"] = stock.Decimal
	}
	return apperr.New(apperr.CodeInsufficientStock, "Estoque insuficiente").WithDetails(details)
}

// Movements lists the baixas of a material, newest first.
func (r *MaterialRepository) Movements(ctx context.Context, materialID int) ([]models.StockMovement, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, material_id, quantidade, estoque_resultante, COALESCE(usuario_id, 0), observacao, created_at
		 FROM movimentacoes WHERE material_id = $1 ORDER BY created_at DESC, id DESC`,
		materialID,
	)
	if err != nil {
		return nil, apperr.FromDB(err, materialNotFound)
	}
	defer rows.Close()

	var movements []models.StockMovement
	for rows.Next() {
		var mv models.StockMovement
		var qty, resulting pgtype.Numeric
		if err := rows.Scan(&mv.ID, &mv.MaterialID, &qty, &resulting, &mv.UserID, &mv.Note, &mv.CreatedAt); err != nil {
			return nil, apperr.FromDB(err, materialNotFound)
		}
		mv.Quantity = toDecimal(qty)
		mv.ResultingStock = toDecimal(resulting)
		movements = append(movements, mv)
	}
	return movements, apperr.FromDB(rows.Err(), materialNotFound)
}
