package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRedis struct {
	data map[string]string
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryRedis) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	if m.data[key] != expected {
		return false, nil
	}
	delete(m.data, key)
	return true, nil
}

func (m *memoryRedis) LockKey(name string) string { return "sl:lock:" + name }

func TestRedisLockIsExclusive(t *testing.T) {
	store := &memoryRedis{data: map[string]string{}}
	first, err := NewRedisLock(store, "cron", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "cron", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, second.Release(context.Background()))
	assert.Contains(t, store.data, "sl:lock:cron")

	require.NoError(t, first.Release(context.Background()))
	assert.NotContains(t, store.data, "sl:lock:cron")
}

func TestRedisLockLeavesForeignOwnerAlone(t *testing.T) {
	store := &memoryRedis{data: map[string]string{}}
	lock, err := NewRedisLock(store, "cron", time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	store.data["sl:lock:cron"] = "someone-else"
	require.NoError(t, lock.Release(context.Background()))
	assert.Equal(t, "someone-else", store.data["sl:lock:cron"])

	require.NoError(t, lock.Release(context.Background()), "second release is a no-op")
}

func TestNewRedisLockValidates(t *testing.T) {
	_, err := NewRedisLock(nil, "cron", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisLock(&memoryRedis{}, "", time.Minute)
	assert.Error(t, err)

	lock, err := NewRedisLock(&memoryRedis{data: map[string]string{}}, "cron", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultLockTTL, lock.ttl)
}
