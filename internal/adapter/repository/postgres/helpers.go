package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/mkru/transferd/internal/domain"
)

func moneyToNumeric(m domain.Money) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(m.Decimal().String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("encode amount: %w", err)
	}
	return n, nil
}

func numericToMoney(n pgtype.Numeric) (domain.Money, error) {
	if !n.Valid {
		return domain.Money{}, errors.New("decode amount: null numeric")
	}
	if n.NaN {
		return domain.Money{}, errors.New("decode amount: NaN")
	}
	return domain.NewMoney(decimal.NewFromBigInt(n.Int, n.Exp))
}
