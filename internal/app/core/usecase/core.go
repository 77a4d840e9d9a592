package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/timeless/bank-core/internal/app/core/domain"
	"github.com/timeless/bank-core/pkg/accountnum"
)

// 帳號碰撞時的重試上限
const openAccountMaxRetries = 5

// CoreUseCase 是核心業務邏輯層
// 帳務異動委派給 LedgerEngine；開戶與戶名查詢是引擎外圍的協作功能
type CoreUseCase struct {
	engine   *LedgerEngine
	accounts AccountStore
}

func NewCoreUseCase(engine *LedgerEngine, accounts AccountStore) *CoreUseCase {
	return &CoreUseCase{
		engine:   engine,
		accounts: accounts,
	}
}

// Start 啟動引擎的背景工作
func (c *CoreUseCase) Start(ctx context.Context) {
	c.engine.Start(ctx)
}

// OpenAccount 開戶
// 產生新帳號並以零餘額、ACTIVE 狀態建立帳戶；帳號碰撞就重新產生
func (c *CoreUseCase) OpenAccount(ctx context.Context, ownerName, email string) (*domain.Result, error) {
	var account *domain.Account
	for i := 0; ; i++ {
		account = domain.NewAccount(accountnum.Generate(), ownerName, email)
		err := c.accounts.Create(ctx, account)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrAccountAlreadyExists) && i < openAccountMaxRetries {
			continue
		}
		if errors.Is(err, domain.ErrAccountAlreadyExists) {
			return &domain.Result{Code: domain.CodeAccountExists, Message: domain.MessageAccountExists}, nil
		}
		return nil, fmt.Errorf("open account: %w", err)
	}

	c.engine.notify(domain.Notification{
		Recipient: email,
		Subject:   "Account Created Successfully",
		Body:      fmt.Sprintf("Your account has been created successfully. Your account number is %s", account.AccountNumber),
	})

	return &domain.Result{
		Code:    domain.CodeAccountCreated,
		Message: domain.MessageAccountCreated,
		Account: domain.Snapshot(account),
	}, nil
}

// NameEnquiry 依帳號查詢戶名
func (c *CoreUseCase) NameEnquiry(ctx context.Context, accountNumber string) (string, error) {
	account, err := c.accounts.Get(ctx, accountNumber)
	if err != nil {
		return "", err
	}
	return account.OwnerName, nil
}

// BalanceEnquiry 餘額查詢
func (c *CoreUseCase) BalanceEnquiry(ctx context.Context, accountNumber string) (*domain.Result, error) {
	return c.engine.BalanceEnquiry(ctx, accountNumber)
}

// Credit 入帳
func (c *CoreUseCase) Credit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*domain.Result, error) {
	return c.engine.Credit(ctx, accountNumber, amount)
}

// Debit 扣帳
func (c *CoreUseCase) Debit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*domain.Result, error) {
	return c.engine.Debit(ctx, accountNumber, amount)
}

// Transfer 轉帳
func (c *CoreUseCase) Transfer(ctx context.Context, sourceNumber, destinationNumber string, amount decimal.Decimal) (*domain.Result, error) {
	return c.engine.Transfer(ctx, sourceNumber, destinationNumber, amount)
}
