package domain

import "github.com/shopspring/decimal"

// 回應碼沿用既有系統的編號，下游已依賴這組代碼
const (
	CodeAccountExists       = "001"
	CodeAccountCreated      = "002"
	CodeAccountNotFound     = "003"
	CodeAccountFound        = "004"
	CodeAccountCredited     = "005"
	CodeInsufficientBalance = "006"
	CodeAccountDebited      = "007"
	CodeTransferSuccessful  = "008"
	CodeInvalidAmount       = "009"
)

const (
	MessageAccountExists       = "This user already has an account created"
	MessageAccountCreated      = "Account has been successfully created"
	MessageAccountNotFound     = "Account with the provided account number does not exist"
	MessageAccountFound        = "Account found"
	MessageAccountCredited     = "Account was credited successfully"
	MessageInsufficientBalance = "Insufficient balance"
	MessageAccountDebited      = "Account has been successfully debited"
	MessageTransferSuccessful  = "Transfer successful"
	MessageInvalidAmount       = "Amount must be a positive value"
)

// AccountInfo 異動後的帳戶快照 (唯讀)
type AccountInfo struct {
	AccountName   string          `json:"account_name"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
}

// Result 操作結果，回傳給呼叫端、不落地
// 被拒絕的操作 (查無帳戶、餘額不足、金額不合法) 也是正常回傳，不是錯誤
type Result struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Account *AccountInfo `json:"account,omitempty"`
}

// Snapshot 由帳戶產生 AccountInfo
func Snapshot(a *Account) *AccountInfo {
	return &AccountInfo{
		AccountName:   a.OwnerName,
		AccountNumber: a.AccountNumber,
		Balance:       a.Balance,
	}
}
