package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"lab-backend/internal/models"
)

// DB is the subset of pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Conversions between pgtype scan targets and the model's optional types.

func nullDate(d pgtype.Date) models.NullDate {
	if !d.Valid || d.InfinityModifier != pgtype.Finite {
		return models.NullDate{}
	}
	return models.NewNullDate(models.DateFromTime(d.Time))
}

func nullDecimal(n pgtype.Numeric) decimal.NullDecimal {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.NullDecimal{}
	}
	if n.Int == nil {
		return decimal.NewNullDecimal(decimal.Zero)
	}
	return decimal.NewNullDecimal(decimal.NewFromBigInt(n.Int, n.Exp))
}

func toDecimal(n pgtype.Numeric) decimal.Decimal {
	return nullDecimal(n).Decimal
}

func dateArg(d models.NullDate) *time.Time {
	return d.Ptr()
}

func decimalArg(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func intArg(id int) any {
	if id == 0 {
		return nil
	}
	return id
}
