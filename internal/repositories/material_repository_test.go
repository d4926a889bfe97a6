package repositories

import (
	"context"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-backend/internal/apperr"
)

const (
	guardedDecrement = `WHERE id = $1 AND estoque_atual >= $2`
	currentStock     = `SELECT estoque_atual FROM materiais WHERE id = $1`
)

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestDecrementRecordsMovement(t *testing.T) {
	mock := newMockDB(t)
	repo := NewMaterialRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(guardedDecrement)).
		WithArgs(1, "3").
		WillReturnRows(pgxmock.NewRows([]string{"estoque_atual"}).AddRow("7"))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO movimentacoes`)).
		WithArgs(1, "3", "7", 5, "uso em aula").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	stock, err := repo.Decrement(context.Background(), 1, decimal.NewFromInt(3), 5, "uso em aula")
	require.NoError(t, err)
	assert.True(t, stock.Equal(decimal.NewFromInt(7)), stock.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementReportsStockWhenGuardFails(t *testing.T) {
	mock := newMockDB(t)
	repo := NewMaterialRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(guardedDecrement)).
		WithArgs(1, "50").
		WillReturnRows(pgxmock.NewRows([]string{"estoque_atual"}))
	mock.ExpectQuery(regexp.QuoteMeta(currentStock)).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows([]string{"estoque_atual"}).AddRow("2"))
	mock.ExpectRollback()

	_, err := repo.Decrement(context.Background(), 1, decimal.NewFromInt(50), 0, "")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInsufficientStock))
	details := apperr.As(err).Details().(map[string]any)
	current, ok := details["estoque_atual"].(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, current.Equal(decimal.NewFromInt(2)), current.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementMissingMaterial(t *testing.T) {
	mock := newMockDB(t)
	repo := NewMaterialRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(guardedDecrement)).
		WithArgs(99, "1").
		WillReturnRows(pgxmock.NewRows([]string{"estoque_atual"}))
	mock.ExpectQuery(regexp.QuoteMeta(currentStock)).
		WithArgs(99).
		WillReturnRows(pgxmock.NewRows([]string{"estoque_atual"}))
	mock.ExpectRollback()

	_, err := repo.Decrement(context.Background(), 99, decimal.NewFromInt(1), 0, "")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMaterialNotFound(t *testing.T) {
	mock := newMockDB(t)
	repo := NewMaterialRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM materiais WHERE id = $1`)).
		WithArgs(3).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), 3)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
