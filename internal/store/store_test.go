package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func initTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, Init(filepath.Join(t.TempDir(), "client.db")))
	t.Cleanup(func() { db = nil })
}

func TestRecordSentUpserts(t *testing.T) {
	req := require.New(t)
	initTestDB(t)

	req.NoError(RecordSent(SentTransfer{TransferID: "t-1", ShareURL: "u1", FileCount: 1, TotalBytes: 10}))
	req.NoError(RecordSent(SentTransfer{TransferID: "t-1", ShareURL: "u1-updated", FileCount: 2, TotalBytes: 20}))

	history, err := History(10)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("u1-updated", history[0].ShareURL)
	req.Equal(2, history[0].FileCount)
}

func TestHistoryLimit(t *testing.T) {
	req := require.New(t)
	initTestDB(t)

	for _, id := range []string{"t-1", "t-2", "t-3"} {
		req.NoError(RecordSent(SentTransfer{TransferID: id, ShareURL: "https://x/t/" + id}))
	}
	history, err := History(2)
	req.NoError(err)
	req.Len(history, 2)
}

func TestNilDBIsHarmless(t *testing.T) {
	req := require.New(t)
	req.NoError(RecordSent(SentTransfer{TransferID: "t-1"}))
	history, err := History(5)
	req.NoError(err)
	req.Empty(history)
}
