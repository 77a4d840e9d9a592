package keylock

import "sync"

// Table 以 Key (帳號) 為單位的鎖表
// 同一個 Key 同時間最多一個持有者；不同 Key 互不阻塞
// 鎖實例建立後不回收，帳戶數量有限，成本可忽略
type Table struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTable() *Table {
	return &Table{
		locks: make(map[string]*sync.Mutex),
	}
}

// get 取得 (或建立) Key 對應的鎖
func (t *Table) get(key string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	return l
}

// Lock 鎖定單一 Key，回傳解鎖函式
func (t *Table) Lock(key string) (unlock func()) {
	l := t.get(key)
	l.Lock()
	return l.Unlock
}

// LockPair 鎖定兩個 Key，並確保取得順序以避免死鎖
// 兩個 Key 相同時只鎖一次
func (t *Table) LockPair(a, b string) (unlock func()) {
	if a == b {
		return t.Lock(a)
	}
	// 固定以字典序取鎖，反向轉帳才不會互相等待
	if b < a {
		a, b = b, a
	}
	la := t.get(a)
	lb := t.get(b)
	la.Lock()
	lb.Lock()
	return func() {
		lb.Unlock()
		la.Unlock()
	}
}
