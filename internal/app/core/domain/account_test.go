package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAccountCredit(t *testing.T) {
	t.Parallel()

	a := NewAccount("A-1", "Alice", "alice@bank.test")
	require.NoError(t, a.Credit(dec("0.01")))
	require.True(t, a.Balance.Equal(dec("0.01")))

	require.ErrorIs(t, a.Credit(dec("0")), ErrAmountMustBePositive)
	require.ErrorIs(t, a.Credit(dec("-1")), ErrAmountMustBePositive)
}

func TestAccountDebit(t *testing.T) {
	t.Parallel()

	a := NewAccount("A-1", "Alice", "alice@bank.test")
	a.Balance = dec("10.99")

	// 完整精度比較：整數部分相同也要能分辨大小
	require.NoError(t, a.Debit(dec("10.50")))
	require.True(t, a.Balance.Equal(dec("0.49")))

	require.ErrorIs(t, a.Debit(dec("0.50")), ErrInsufficientBalance)
	require.True(t, a.Balance.Equal(dec("0.49")))

	// 剛好扣到零是允許的
	require.NoError(t, a.Debit(dec("0.49")))
	require.True(t, a.Balance.IsZero())
}

func TestAccountClone(t *testing.T) {
	t.Parallel()

	a := NewAccount("A-1", "Alice", "alice@bank.test")
	cp := a.Clone()
	require.NoError(t, cp.Credit(dec("5")))
	require.True(t, a.Balance.IsZero())
}
