package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind 交易種類
// 一筆轉帳會拆解為兩筆紀錄：來源帳戶一筆 DEBIT、目的帳戶一筆 CREDIT
type TransactionKind string

const (
	// TransactionKindCredit 入帳
	TransactionKindCredit TransactionKind = "CREDIT"
	// TransactionKindDebit 扣帳
	TransactionKindDebit TransactionKind = "DEBIT"
)

// TransactionStatusSuccess 本核心只會為已提交的異動留下紀錄
const TransactionStatusSuccess = "SUCCESS"

// TransactionRecord 交易紀錄
// 每筆已提交的異動恰好產生一筆，之後不可變更、不可刪除
type TransactionRecord struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountNumber string          `json:"account_number"`
	Kind          TransactionKind `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	// CreatedAt: 交易時間 (unix milli)
	CreatedAt int64 `json:"created_at"`
}

// NewTransactionRecord 產生一筆新的交易紀錄 (TransactionID 於此時分配)
func NewTransactionRecord(accountNumber string, kind TransactionKind, amount decimal.Decimal, createdAt int64) *TransactionRecord {
	return &TransactionRecord{
		TransactionID: uuid.New(),
		AccountNumber: accountNumber,
		Kind:          kind,
		Amount:        amount,
		Status:        TransactionStatusSuccess,
		CreatedAt:     createdAt,
	}
}

// Notification 異動提交後送往 NotificationSink 的通知內容
// 送出失敗只記 Log，不會影響已提交的異動
type Notification struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}
