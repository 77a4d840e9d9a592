package memory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/timeless/bank-core/internal/app/core/domain"
	"github.com/timeless/bank-core/internal/app/core/usecase"
	"github.com/timeless/bank-core/pkg/wal"
)

func newTestStore(t *testing.T, walPath string) *Store {
	t.Helper()

	var w *wal.WAL
	if walPath != "" {
		var err error
		w, err = wal.NewWAL(walPath)
		require.NoError(t, err)
		t.Cleanup(func() { _ = w.Close() })
	}

	store, err := NewStore(w)
	require.NoError(t, err)
	return store
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "")
	account := domain.NewAccount("A-1", "Alice", "alice@bank.test")
	require.NoError(t, store.Create(context.Background(), account))

	require.ErrorIs(t, store.Create(context.Background(), account), domain.ErrAccountAlreadyExists)

	got, err := store.Get(context.Background(), "A-1")
	require.NoError(t, err)
	require.Equal(t, "Alice", got.OwnerName)

	// Get 回傳的是拷貝，改它不影響內部狀態
	got.Balance = decimal.RequireFromString("999")
	again, err := store.Get(context.Background(), "A-1")
	require.NoError(t, err)
	require.True(t, again.Balance.IsZero())

	_, err = store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

// 工作單元失敗時不得留下任何可見狀態
func TestAtomicallyRollback(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "")
	account := domain.NewAccount("A-1", "Alice", "alice@bank.test")
	account.Balance = decimal.RequireFromString("100")
	require.NoError(t, store.Create(context.Background(), account))

	boom := errors.New("boom")
	err := store.Atomically(context.Background(), func(accounts usecase.AccountStore, records usecase.TransactionLog) error {
		a, err := accounts.Get(context.Background(), "A-1")
		require.NoError(t, err)
		a.Balance = decimal.RequireFromString("0")
		require.NoError(t, accounts.Put(context.Background(), a))
		rec := domain.NewTransactionRecord("A-1", domain.TransactionKindDebit, decimal.RequireFromString("100"), 0)
		require.NoError(t, records.Append(context.Background(), rec))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Get(context.Background(), "A-1")
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.RequireFromString("100")))
	require.Zero(t, store.RecordCount())
}

// 工作單元內的讀取要看得到同單元先前的寫入
func TestAtomicallyReadYourWrites(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, "")
	account := domain.NewAccount("A-1", "Alice", "alice@bank.test")
	require.NoError(t, store.Create(context.Background(), account))

	err := store.Atomically(context.Background(), func(accounts usecase.AccountStore, records usecase.TransactionLog) error {
		a, err := accounts.Get(context.Background(), "A-1")
		if err != nil {
			return err
		}
		a.Balance = decimal.RequireFromString("25")
		if err := accounts.Put(context.Background(), a); err != nil {
			return err
		}

		again, err := accounts.Get(context.Background(), "A-1")
		if err != nil {
			return err
		}
		require.True(t, again.Balance.Equal(decimal.RequireFromString("25")))
		return nil
	})
	require.NoError(t, err)
}

// 重開 Store 後從 WAL 重放出同樣的狀態
func TestWALRecovery(t *testing.T) {
	t.Parallel()

	walPath := filepath.Join(t.TempDir(), "wal.log")
	ctx := context.Background()

	store := newTestStore(t, walPath)

	a := domain.NewAccount("A-1", "Alice", "alice@bank.test")
	a.Balance = decimal.RequireFromString("100.00")
	require.NoError(t, store.Create(ctx, a))

	b := domain.NewAccount("B-1", "Bob", "bob@bank.test")
	require.NoError(t, store.Create(ctx, b))

	// 一筆轉帳工作單元：雙邊餘額 + 兩筆紀錄一起提交
	err := store.Atomically(ctx, func(accounts usecase.AccountStore, records usecase.TransactionLog) error {
		src, err := accounts.Get(ctx, "A-1")
		if err != nil {
			return err
		}
		dst, err := accounts.Get(ctx, "B-1")
		if err != nil {
			return err
		}
		if err := src.Debit(decimal.RequireFromString("30.00")); err != nil {
			return err
		}
		if err := dst.Credit(decimal.RequireFromString("30.00")); err != nil {
			return err
		}
		if err := accounts.Put(ctx, src); err != nil {
			return err
		}
		if err := accounts.Put(ctx, dst); err != nil {
			return err
		}
		if err := records.Append(ctx, domain.NewTransactionRecord("A-1", domain.TransactionKindDebit, decimal.RequireFromString("30.00"), 1)); err != nil {
			return err
		}
		return records.Append(ctx, domain.NewTransactionRecord("B-1", domain.TransactionKindCredit, decimal.RequireFromString("30.00"), 1))
	})
	require.NoError(t, err)

	// 重開
	recovered := newTestStore(t, walPath)

	src, err := recovered.Get(ctx, "A-1")
	require.NoError(t, err)
	require.True(t, src.Balance.Equal(decimal.RequireFromString("70.00")))

	dst, err := recovered.Get(ctx, "B-1")
	require.NoError(t, err)
	require.True(t, dst.Balance.Equal(decimal.RequireFromString("30.00")))

	require.Equal(t, 2, recovered.RecordCount())
	require.Len(t, recovered.RecordsFor("A-1"), 1)
	require.Len(t, recovered.RecordsFor("B-1"), 1)
}
