package usecase

import (
	"context"

	"github.com/timeless/bank-core/internal/app/core/domain"
)

// AccountStore 帳戶的持久化介面
type AccountStore interface {
	// Get 依帳號取得帳戶；查無回傳 domain.ErrAccountNotFound
	Get(ctx context.Context, accountNumber string) (*domain.Account, error)
	// Put 寫回整個帳戶
	Put(ctx context.Context, account *domain.Account) error
	// Create 建立新帳戶；帳號重複回傳 domain.ErrAccountAlreadyExists
	Create(ctx context.Context, account *domain.Account) error
}

// TransactionLog 交易紀錄的附加寫入介面
// Append 失敗與成功必須可區分；模糊失敗下的重複紀錄是已接受的取捨，
// 本核心不做去重
type TransactionLog interface {
	Append(ctx context.Context, record *domain.TransactionRecord) error
}

// UnitOfWork 原子工作單元
// fn 內的餘額寫入與紀錄附加要嘛全部提交、要嘛全部放棄，
// 轉帳的雙邊寫入依賴這個保證
// fn 回傳錯誤時不得留下任何可見的部分狀態
type UnitOfWork interface {
	Atomically(ctx context.Context, fn func(accounts AccountStore, records TransactionLog) error) error
}

// NotificationSink 異動提交後的通知出口 (email/alert)
// 僅盡力送出；失敗由呼叫端記 Log，不會回滾任何已提交的異動
type NotificationSink interface {
	Send(ctx context.Context, n domain.Notification) error
}
