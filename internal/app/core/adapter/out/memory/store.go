package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/timeless/bank-core/internal/app/core/domain"
	"github.com/timeless/bank-core/internal/app/core/usecase"
	"github.com/timeless/bank-core/pkg/wal"
)

// Store 是一個記憶體帳本，搭配 WAL 做耐久性
//
// 結構:
//
//	accounts: 帳號對應帳戶的 Map
//	records: 已提交的交易紀錄
//	mu: RWMutex 保護上述狀態
//	wal: Write-Ahead Log 實例，nil 表示純記憶體 (測試用)
//
// 每個工作單元先在暫存區上演算，成功後以單一 WAL entry 提交再發布，
// 失敗的工作單元不會留下任何可見狀態
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	records  []*domain.TransactionRecord
	wal      *wal.WAL
}

// commitEntry 一個工作單元的 WAL 提交紀錄
// 整個工作單元寫成一行 JSON：要嘛整筆重放、要嘛整筆無效，
// 不會重放出「轉帳只扣了一邊」這種中間狀態
type commitEntry struct {
	Accounts []*domain.Account           `json:"accounts,omitempty"`
	Records  []*domain.TransactionRecord `json:"records,omitempty"`
}

// NewStore 建立一個新的 Store 實例並從 WAL 恢復狀態
//
// 參數:
//
//	w: Write-Ahead Log 實例，可為 nil
//
// 回傳:
//
//	*Store: Store 實例
//	error: 初始化錯誤 (如 WAL 恢復失敗)
func NewStore(w *wal.WAL) (*Store, error) {
	s := &Store{
		accounts: make(map[string]*domain.Account),
		wal:      w,
	}
	if err := s.recoverFromWAL(); err != nil {
		return nil, err
	}
	return s, nil
}

// recoverFromWAL 從 WAL 檔案恢復帳本狀態
// 只有 NewStore 呼叫，無需 Lock (單執行緒)
func (s *Store) recoverFromWAL() error {
	if s.wal == nil {
		return nil
	}
	return s.wal.ReadAll(func(jsonRaw []byte) error {
		var entry commitEntry
		if err := json.Unmarshal(jsonRaw, &entry); err != nil {
			return err
		}
		s.apply(&entry)
		return nil
	})
}

// apply 把一筆提交紀錄套用到記憶體狀態 (不寫 WAL)
func (s *Store) apply(entry *commitEntry) {
	for _, account := range entry.Accounts {
		s.accounts[account.AccountNumber] = account.Clone()
	}
	for _, record := range entry.Records {
		s.records = append(s.records, record)
	}
}

// commit 寫入 WAL 後把提交紀錄發布到記憶體狀態
// 呼叫端需持有寫鎖
func (s *Store) commit(entry *commitEntry) error {
	if s.wal != nil {
		if err := s.wal.Write(entry); err != nil {
			return domain.ErrWALWriteFailed
		}
	}
	s.apply(entry)
	return nil
}

// Get 依帳號取得帳戶的值拷貝
func (s *Store) Get(ctx context.Context, accountNumber string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[accountNumber]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account.Clone(), nil
}

// Put 寫回單一帳戶 (獨立的小工作單元)
func (s *Store) Put(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(&commitEntry{Accounts: []*domain.Account{account.Clone()}})
}

// Create 建立新帳戶
func (s *Store) Create(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.AccountNumber]; ok {
		return domain.ErrAccountAlreadyExists
	}
	return s.commit(&commitEntry{Accounts: []*domain.Account{account.Clone()}})
}

// Append 附加單筆交易紀錄 (獨立的小工作單元)
func (s *Store) Append(ctx context.Context, record *domain.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(&commitEntry{Records: []*domain.TransactionRecord{record}})
}

// Atomically 執行一個原子工作單元
// fn 內的讀寫都發生在暫存區；fn 成功後整包提交，失敗則整包丟棄
func (s *Store) Atomically(ctx context.Context, fn func(accounts usecase.AccountStore, records usecase.TransactionLog) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txView{
		parent: s,
		staged: make(map[string]*domain.Account),
	}
	if err := fn(tx, tx); err != nil {
		return err
	}

	entry := &commitEntry{Records: tx.records}
	for _, account := range tx.staged {
		entry.Accounts = append(entry.Accounts, account)
	}
	return s.commit(entry)
}

// RecordsFor 回傳指定帳號的交易紀錄拷貝 (查詢/驗證用)
func (s *Store) RecordsFor(accountNumber string) []domain.TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TransactionRecord, 0)
	for _, record := range s.records {
		if record.AccountNumber == accountNumber {
			out = append(out, *record)
		}
	}
	return out
}

// RecordCount 回傳已提交的交易紀錄總數
func (s *Store) RecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// txView 工作單元的暫存視圖
// 讀取先看暫存區、再看上層；寫入只進暫存區
type txView struct {
	parent  *Store
	staged  map[string]*domain.Account
	records []*domain.TransactionRecord
}

func (t *txView) Get(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if account, ok := t.staged[accountNumber]; ok {
		return account.Clone(), nil
	}
	// parent 的寫鎖由 Atomically 持有，這裡直接讀
	account, ok := t.parent.accounts[accountNumber]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (t *txView) Put(ctx context.Context, account *domain.Account) error {
	t.staged[account.AccountNumber] = account.Clone()
	return nil
}

func (t *txView) Create(ctx context.Context, account *domain.Account) error {
	if _, ok := t.staged[account.AccountNumber]; ok {
		return domain.ErrAccountAlreadyExists
	}
	if _, ok := t.parent.accounts[account.AccountNumber]; ok {
		return domain.ErrAccountAlreadyExists
	}
	t.staged[account.AccountNumber] = account.Clone()
	return nil
}

func (t *txView) Append(ctx context.Context, record *domain.TransactionRecord) error {
	t.records = append(t.records, record)
	return nil
}

var (
	_ usecase.AccountStore   = (*Store)(nil)
	_ usecase.TransactionLog = (*Store)(nil)
	_ usecase.UnitOfWork     = (*Store)(nil)
)
