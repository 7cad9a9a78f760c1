package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchaudit/punchaudit-backend/internal/audit/report"
	"github.com/punchaudit/punchaudit-backend/pkg/testutil"
)

func TestRedisStore_Integration(t *testing.T) {
	addr := testutil.StartRedis(t)

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	s := report.NewRedisStore(client, time.Minute)

	require.NoError(t, s.Save(ctx, "req_0123456789ab", []byte("xlsx")))

	data, err := s.Open(ctx, "req_0123456789ab")
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)

	ttl, err := client.TTL(ctx, "punchaudit:report:req_0123456789ab").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	_, err = s.Open(ctx, "req_ffffffffffff")
	assert.ErrorIs(t, err, report.ErrReportNotFound)

	assert.ErrorIs(t, s.Save(ctx, "nope", nil), report.ErrInvalidID)
}
