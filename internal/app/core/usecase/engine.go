package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/timeless/bank-core/internal/app/core/domain"
	"github.com/timeless/bank-core/pkg/keylock"
)

// LedgerEngine 帳務核心引擎
//
// 四個操作共用同一個流程：查帳戶 → 驗證 → 異動 → 落地 → 留紀錄 → 通知 → 回傳
// 結構:
//
//	accounts: 查詢用的帳戶存取介面
//	uow: 原子工作單元，餘額寫入與交易紀錄在其中一起提交
//	locks: 以帳號為 Key 的鎖表，保證同帳戶的異動序列化
//	dispatcher: 提交後的非同步通知輸送帶
type LedgerEngine struct {
	accounts   AccountStore
	uow        UnitOfWork
	locks      *keylock.Table
	dispatcher *notifyDispatcher
}

// NewLedgerEngine 建立帳務引擎
// accounts 與 uow 通常由同一個 Adapter 實作
func NewLedgerEngine(accounts AccountStore, uow UnitOfWork, sink NotificationSink) *LedgerEngine {
	return &LedgerEngine{
		accounts:   accounts,
		uow:        uow,
		locks:      keylock.NewTable(),
		dispatcher: newNotifyDispatcher(sink),
	}
}

// Start 啟動通知輸送帶 (非同步)
// ctx 取消時會先把佇列中剩餘的通知送完再退出
func (e *LedgerEngine) Start(ctx context.Context) {
	e.dispatcher.Start(ctx)
}

// BalanceEnquiry 餘額查詢
// 唯讀操作，不需要取得異動鎖，只要求一致性讀取
func (e *LedgerEngine) BalanceEnquiry(ctx context.Context, accountNumber string) (*domain.Result, error) {
	account, err := e.accounts.Get(ctx, accountNumber)
	if err != nil {
		if res := rejection(err); res != nil {
			return res, nil
		}
		return nil, fmt.Errorf("balance enquiry %s: %w", accountNumber, err)
	}

	return &domain.Result{
		Code:    domain.CodeAccountFound,
		Message: domain.MessageAccountFound,
		Account: domain.Snapshot(account),
	}, nil
}

// Credit 入帳
//
// 參數:
//
//	accountNumber: 帳號
//	amount: 金額，必須為正數
//
// 回傳:
//
//	*domain.Result: 操作結果 (含異動後快照)；被拒絕的操作也走這裡
//	error: 僅儲存層故障時非 nil，此時不可假設金額已入帳
func (e *LedgerEngine) Credit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*domain.Result, error) {
	if !amount.IsPositive() {
		return invalidAmount(), nil
	}

	unlock := e.locks.Lock(accountNumber)
	defer unlock()

	var snap *domain.AccountInfo
	var recipient string
	err := e.uow.Atomically(ctx, func(accounts AccountStore, records TransactionLog) error {
		account, err := accounts.Get(ctx, accountNumber)
		if err != nil {
			return err
		}
		if err := account.Credit(amount); err != nil {
			return err
		}
		if err := accounts.Put(ctx, account); err != nil {
			return err
		}
		record := domain.NewTransactionRecord(accountNumber, domain.TransactionKindCredit, amount, time.Now().UnixMilli())
		if err := records.Append(ctx, record); err != nil {
			return err
		}
		snap = domain.Snapshot(account)
		recipient = account.Email
		return nil
	})
	if err != nil {
		if res := rejection(err); res != nil {
			return res, nil
		}
		return nil, fmt.Errorf("credit %s: %w", accountNumber, err)
	}

	e.notify(domain.Notification{
		Recipient: recipient,
		Subject:   "CREDIT ALERT",
		Body:      fmt.Sprintf("%s has been credited to your account. Your account balance is %s", amount, snap.Balance),
	})

	return &domain.Result{
		Code:    domain.CodeAccountCredited,
		Message: domain.MessageAccountCredited,
		Account: snap,
	}, nil
}

// Debit 扣帳
// 餘額不足是「被拒絕」而非「失敗」：不留紀錄、不重試，餘額維持不變
func (e *LedgerEngine) Debit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*domain.Result, error) {
	if !amount.IsPositive() {
		return invalidAmount(), nil
	}

	unlock := e.locks.Lock(accountNumber)
	defer unlock()

	var snap *domain.AccountInfo
	var recipient string
	err := e.uow.Atomically(ctx, func(accounts AccountStore, records TransactionLog) error {
		account, err := accounts.Get(ctx, accountNumber)
		if err != nil {
			return err
		}
		if err := account.Debit(amount); err != nil {
			return err
		}
		if err := accounts.Put(ctx, account); err != nil {
			return err
		}
		record := domain.NewTransactionRecord(accountNumber, domain.TransactionKindDebit, amount, time.Now().UnixMilli())
		if err := records.Append(ctx, record); err != nil {
			return err
		}
		snap = domain.Snapshot(account)
		recipient = account.Email
		return nil
	})
	if err != nil {
		if res := rejection(err); res != nil {
			return res, nil
		}
		return nil, fmt.Errorf("debit %s: %w", accountNumber, err)
	}

	e.notify(domain.Notification{
		Recipient: recipient,
		Subject:   "DEBIT ALERT",
		Body:      fmt.Sprintf("%s has been deducted from your account. Your account balance is %s", amount, snap.Balance),
	})

	return &domain.Result{
		Code:    domain.CodeAccountDebited,
		Message: domain.MessageAccountDebited,
		Account: snap,
	}, nil
}

// Transfer 轉帳
//
// 來源與目的帳戶各自獨立檢查存在性，足額檢查看的是來源帳戶
// 雙邊餘額寫入與兩筆交易紀錄 (來源 DEBIT、目的 CREDIT) 在同一個工作單元內提交
// 鎖以字典序取得，反向轉帳不會死鎖；來源與目的相同時淨效果為零
//
// 成功時回傳通用結果、不帶快照，餘額由呼叫端另行查詢 (見 DESIGN.md)
func (e *LedgerEngine) Transfer(ctx context.Context, sourceNumber, destinationNumber string, amount decimal.Decimal) (*domain.Result, error) {
	if !amount.IsPositive() {
		return invalidAmount(), nil
	}

	unlock := e.locks.LockPair(sourceNumber, destinationNumber)
	defer unlock()

	var debitAlert, creditAlert domain.Notification
	err := e.uow.Atomically(ctx, func(accounts AccountStore, records TransactionLog) error {
		source, err := accounts.Get(ctx, sourceNumber)
		if err != nil {
			return err
		}
		// 目的帳戶用自己的帳號查，不可沿用來源帳號
		destination := source
		if destinationNumber != sourceNumber {
			destination, err = accounts.Get(ctx, destinationNumber)
			if err != nil {
				return err
			}
		}

		if err := source.Debit(amount); err != nil {
			return err
		}
		if err := destination.Credit(amount); err != nil {
			return err
		}

		if err := accounts.Put(ctx, source); err != nil {
			return err
		}
		if destination != source {
			if err := accounts.Put(ctx, destination); err != nil {
				return err
			}
		}

		now := time.Now().UnixMilli()
		debitRecord := domain.NewTransactionRecord(sourceNumber, domain.TransactionKindDebit, amount, now)
		if err := records.Append(ctx, debitRecord); err != nil {
			return err
		}
		creditRecord := domain.NewTransactionRecord(destinationNumber, domain.TransactionKindCredit, amount, now)
		if err := records.Append(ctx, creditRecord); err != nil {
			return err
		}

		debitAlert = domain.Notification{
			Recipient: source.Email,
			Subject:   "DEBIT ALERT",
			Body:      fmt.Sprintf("%s has been deducted from your account. Your account balance is %s", amount, source.Balance),
		}
		creditAlert = domain.Notification{
			Recipient: destination.Email,
			Subject:   "CREDIT ALERT",
			Body:      fmt.Sprintf("%s has been sent to your account from %s. Your account balance is %s", amount, source.OwnerName, destination.Balance),
		}
		return nil
	})
	if err != nil {
		if res := rejection(err); res != nil {
			return res, nil
		}
		return nil, fmt.Errorf("transfer %s -> %s: %w", sourceNumber, destinationNumber, err)
	}

	e.notify(debitAlert)
	e.notify(creditAlert)

	return &domain.Result{
		Code:    domain.CodeTransferSuccessful,
		Message: domain.MessageTransferSuccessful,
	}, nil
}

// notify 把通知放上輸送帶，不等待送出結果
func (e *LedgerEngine) notify(n domain.Notification) {
	e.dispatcher.enqueue(n)
}

// rejection 把預期中的業務拒絕轉成結果物件；其他錯誤回傳 nil
func rejection(err error) *domain.Result {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return &domain.Result{Code: domain.CodeAccountNotFound, Message: domain.MessageAccountNotFound}
	case errors.Is(err, domain.ErrInsufficientBalance):
		return &domain.Result{Code: domain.CodeInsufficientBalance, Message: domain.MessageInsufficientBalance}
	case errors.Is(err, domain.ErrAmountMustBePositive):
		return invalidAmount()
	}
	return nil
}

func invalidAmount() *domain.Result {
	return &domain.Result{Code: domain.CodeInvalidAmount, Message: domain.MessageInvalidAmount}
}
