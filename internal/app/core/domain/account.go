package domain

import "github.com/shopspring/decimal"

// AccountStatus 帳戶狀態
type AccountStatus string

const (
	// AccountStatusActive 開戶後的預設狀態，只有此狀態可被異動
	AccountStatusActive AccountStatus = "ACTIVE"
)

// Account 帳戶
// 金額使用 decimal.Decimal，避免二進位浮點數的捨入誤差
// AccountNumber 於開戶時產生，之後不可變更
type Account struct {
	AccountNumber string
	OwnerName     string
	Email         string
	Balance       decimal.Decimal
	Status        AccountStatus
}

func NewAccount(accountNumber, ownerName, email string) *Account {
	return &Account{
		AccountNumber: accountNumber,
		OwnerName:     ownerName,
		Email:         email,
		Balance:       decimal.Zero,
		Status:        AccountStatusActive,
	}
}

// Credit 入帳
func (a *Account) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}

	a.Balance = a.Balance.Add(amount)
	return nil
}

// Debit 扣帳
// 餘額比對使用完整精度 (decimal.Cmp)，不可截斷成整數
func (a *Account) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}

	if a.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Clone 回傳帳戶的值拷貝，避免呼叫端越權修改內部狀態
func (a *Account) Clone() *Account {
	cp := *a
	return &cp
}
