package infra

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// NumericToDecimal converts a pgtype.Numeric (PostgreSQL numeric(15,2)) to a decimal.
// NULL, NaN and infinities are rejected; money columns never hold them.
func NumericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, fmt.Errorf("numeric value is NULL")
	}
	if n.NaN {
		return decimal.Zero, fmt.Errorf("numeric value is NaN")
	}
	if n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, fmt.Errorf("numeric value is infinite")
	}
	if n.Int == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

// DecimalToNumeric converts a decimal for writing to a numeric column.
func DecimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              d.Coefficient(),
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}
