package wal

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type entry struct {
	Seq  int    `json:"seq"`
	Note string `json:"note"`
}

func TestWriteAndReadAll(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wal.log")

	w, err := NewWAL(path)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, w.Write(entry{Seq: i, Note: "n"}))
	}
	require.NoError(t, w.Close())

	// 重開後依寫入順序讀回
	w, err = NewWAL(path)
	require.NoError(t, err)
	defer w.Close()

	var got []entry
	err = w.ReadAll(func(jsonRaw []byte) error {
		var e entry
		if err := json.Unmarshal(jsonRaw, &e); err != nil {
			return err
		}
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 5)
	for i, e := range got {
		require.Equal(t, i, e.Seq)
	}
}

func TestReadAllEmpty(t *testing.T) {
	t.Parallel()

	w, err := NewWAL(filepath.Join(t.TempDir(), "wal.log"))
	require.NoError(t, err)
	defer w.Close()

	calls := 0
	require.NoError(t, w.ReadAll(func([]byte) error {
		calls++
		return nil
	}))
	require.Zero(t, calls)
}

// ReadAll 後繼續附加寫入，不會蓋掉既有內容
func TestAppendAfterRead(t *testing.T) {
	t.Parallel()

	w, err := NewWAL(filepath.Join(t.TempDir(), "wal.log"))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Write(entry{Seq: 0}))
	require.NoError(t, w.ReadAll(func([]byte) error { return nil }))
	require.NoError(t, w.Write(entry{Seq: 1}))

	count := 0
	require.NoError(t, w.ReadAll(func([]byte) error {
		count++
		return nil
	}))
	require.Equal(t, 2, count)
}
