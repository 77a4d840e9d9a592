package mysql

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/timeless/bank-core/internal/app/core/domain"
	"github.com/timeless/bank-core/internal/app/core/usecase"
	"github.com/timeless/bank-core/pkg/mysql"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	AccountNumber string          `gorm:"primaryKey;size:32"`
	OwnerName     string          `gorm:"size:128"`
	Email         string          `gorm:"size:128"`
	Balance       decimal.Decimal `gorm:"type:decimal(19,4)"`
	Status        string          `gorm:"size:16"`
	UpdatedAt     int64           `gorm:"autoUpdateTime:milli"` // 自動更新時間
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// sqlTransaction 對應資料庫的 transactions 表
type sqlTransaction struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	TransactionID []byte          `gorm:"column:transaction_id;type:binary(16);uniqueIndex"`
	AccountNumber string          `gorm:"index;size:32"`
	Kind          string          `gorm:"size:8"`
	Amount        decimal.Decimal `gorm:"type:decimal(19,4)"`
	Status        string          `gorm:"size:16"`
	CreatedAt     int64           // 交易發生時間，由核心帶入
}

func (*sqlTransaction) TableName() string {
	return "transactions"
}

func toSQLAccount(a *domain.Account) *sqlAccount {
	return &sqlAccount{
		AccountNumber: a.AccountNumber,
		OwnerName:     a.OwnerName,
		Email:         a.Email,
		Balance:       a.Balance,
		Status:        string(a.Status),
	}
}

func (row *sqlAccount) toDomain() *domain.Account {
	return &domain.Account{
		AccountNumber: row.AccountNumber,
		OwnerName:     row.OwnerName,
		Email:         row.Email,
		Balance:       row.Balance,
		Status:        domain.AccountStatus(row.Status),
	}
}

func toSQLTransaction(r *domain.TransactionRecord) *sqlTransaction {
	return &sqlTransaction{
		TransactionID: r.TransactionID[:],
		AccountNumber: r.AccountNumber,
		Kind:          string(r.Kind),
		Amount:        r.Amount,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
	}
}

// Store 以 MySQL 為後端的帳本儲存
// 工作單元對應一個資料庫 Transaction，單元內的帳戶讀取帶 FOR UPDATE 悲觀鎖
type Store struct {
	client *mysql.Client
}

func NewStore(client *mysql.Client) *Store {
	return &Store{client: client}
}

// Migrate 建立或更新資料表結構
func (s *Store) Migrate() error {
	return s.client.DB().AutoMigrate(&sqlAccount{}, &sqlTransaction{})
}

// Get 依帳號取得帳戶 (一般讀取，不上鎖)
func (s *Store) Get(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return getAccount(s.client.DB().WithContext(ctx), accountNumber, false)
}

// Put 寫回整個帳戶
func (s *Store) Put(ctx context.Context, account *domain.Account) error {
	return putAccount(s.client.DB().WithContext(ctx), account)
}

// Create 建立新帳戶
func (s *Store) Create(ctx context.Context, account *domain.Account) error {
	err := s.client.DB().WithContext(ctx).Create(toSQLAccount(account)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAccountAlreadyExists
	}
	return err
}

// Append 附加單筆交易紀錄
func (s *Store) Append(ctx context.Context, record *domain.TransactionRecord) error {
	return s.client.DB().WithContext(ctx).Create(toSQLTransaction(record)).Error
}

// Atomically 在單一資料庫 Transaction 內執行工作單元
// fn 回傳錯誤會使整個 Transaction 回滾，不留任何部分狀態
func (s *Store) Atomically(ctx context.Context, fn func(accounts usecase.AccountStore, records usecase.TransactionLog) error) error {
	return s.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		view := &txStore{db: tx}
		return fn(view, view)
	})
}

// RecordsFor 回傳指定帳號的交易紀錄 (查詢/驗證用)
func (s *Store) RecordsFor(ctx context.Context, accountNumber string) ([]domain.TransactionRecord, error) {
	var rows []sqlTransaction
	err := s.client.DB().WithContext(ctx).
		Where("account_number = ?", accountNumber).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.FromBytes(row.TransactionID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.TransactionRecord{
			TransactionID: id,
			AccountNumber: row.AccountNumber,
			Kind:          domain.TransactionKind(row.Kind),
			Amount:        row.Amount,
			Status:        row.Status,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out, nil
}

// txStore 工作單元視圖：所有操作走同一個 *gorm.DB Transaction
type txStore struct {
	db *gorm.DB
}

// Get 取得帳戶並鎖定該列 (SELECT ... FOR UPDATE)
// 悲觀鎖讓同帳戶的並發工作單元在資料庫層也被序列化
func (t *txStore) Get(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return getAccount(t.db, accountNumber, true)
}

func (t *txStore) Put(ctx context.Context, account *domain.Account) error {
	return putAccount(t.db, account)
}

func (t *txStore) Create(ctx context.Context, account *domain.Account) error {
	err := t.db.Create(toSQLAccount(account)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAccountAlreadyExists
	}
	return err
}

func (t *txStore) Append(ctx context.Context, record *domain.TransactionRecord) error {
	return t.db.Create(toSQLTransaction(record)).Error
}

func getAccount(db *gorm.DB, accountNumber string, forUpdate bool) (*domain.Account, error) {
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row sqlAccount
	err := db.Where("account_number = ?", accountNumber).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func putAccount(db *gorm.DB, account *domain.Account) error {
	return db.Model(&sqlAccount{}).
		Where("account_number = ?", account.AccountNumber).
		Updates(map[string]any{
			"balance": account.Balance,
			"status":  string(account.Status),
		}).Error
}

var (
	_ usecase.AccountStore   = (*Store)(nil)
	_ usecase.TransactionLog = (*Store)(nil)
	_ usecase.UnitOfWork     = (*Store)(nil)
)
