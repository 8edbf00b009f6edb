package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cimillas/eventhub/internal/clock"
)

func TestLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_030, 0).UTC()
	db, mock := redismock.NewClientMock()
	l := New(db, "tickets", 2, time.Minute, clock.NewFixed(now))

	key := "ratelimit:tickets:user-1:28333333"

	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)
	d, err := l.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	mock.ExpectIncr(key).SetVal(2)
	d, err = l.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Zero(t, d.Remaining)

	mock.ExpectIncr(key).SetVal(3)
	d, err = l.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 10*time.Second, d.RetryAfter)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLimiter_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := New(db, "login", 5, time.Minute, clock.NewFixed(time.Unix(60, 0)))

	mock.ExpectIncr("ratelimit:login:10.0.0.1:1").SetErr(errors.New("connection refused"))
	_, err := l.Allow(context.Background(), "10.0.0.1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
