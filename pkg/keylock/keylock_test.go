package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 同一個 Key 的臨界區必須互斥
func TestLockExclusive(t *testing.T) {
	t.Parallel()

	table := NewTable()

	counter := 0
	const workers = 100

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := table.Lock("a")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	require.Equal(t, workers, counter)
}

// 反向的成對取鎖不得死鎖
func TestLockPairNoDeadlock(t *testing.T) {
	t.Parallel()

	table := NewTable()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		const n = 200
		wg.Add(2 * n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				unlock := table.LockPair("a", "b")
				defer unlock()
			}()
			go func() {
				defer wg.Done()
				unlock := table.LockPair("b", "a")
				defer unlock()
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("deadlock: opposing LockPair calls did not complete")
	}
}

// 相同 Key 的成對取鎖只鎖一次，解鎖後可再取得
func TestLockPairSameKey(t *testing.T) {
	t.Parallel()

	table := NewTable()

	unlock := table.LockPair("a", "a")
	unlock()

	again := table.Lock("a")
	again()
}
