package report

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "req_0123456789ab"

func newTestFileStore(t *testing.T, ttl time.Duration) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir()+"/reports", ttl)
	require.NoError(t, err)
	return s
}

func TestFileStore_SaveOpen(t *testing.T) {
	s := newTestFileStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testID, []byte("xlsx")))

	data, err := s.Open(ctx, testID)
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
	assert.FileExists(t, s.Path(testID))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_Missing(t *testing.T) {
	s := newTestFileStore(t, time.Hour)

	_, err := s.Open(context.Background(), "req_ffffffffffff")
	assert.ErrorIs(t, err, ErrReportNotFound)

	_, err = s.Open(context.Background(), "../secret")
	assert.ErrorIs(t, err, ErrReportNotFound)

	assert.ErrorIs(t, s.Save(context.Background(), "../secret", nil), ErrInvalidID)
}

func TestFileStore_ExpiryAndPurge(t *testing.T) {
	s := newTestFileStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testID, []byte("old")))
	require.NoError(t, s.Save(ctx, "req_ffffffffffff", []byte("new")))

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(s.Path(testID), old, old))

	_, err := s.Open(ctx, testID)
	assert.ErrorIs(t, err, ErrReportNotFound)

	removed, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, s.Path(testID))
	assert.FileExists(t, s.Path("req_ffffffffffff"))
}

func TestFileStore_ZeroTTLKeepsReports(t *testing.T) {
	s := newTestFileStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testID, []byte("x")))
	s.now = func() time.Time { return time.Now().Add(24 * 365 * time.Hour) }

	_, err := s.Open(ctx, testID)
	assert.NoError(t, err)

	removed, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
