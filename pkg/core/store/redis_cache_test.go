package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheGetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisResultCache(client, 0)
	key := Key("ACME", 2024)

	mock.ExpectGet(key).RedisNil()

	_, found, err := cache.Get(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheSetAndGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisResultCache(client, 0)
	key := Key("ACME", 2024)

	result := sampleResult("ACME", 2024)
	payload, err := json.Marshal(result)
	require.NoError(t, err)

	mock.ExpectSet(key, payload, 0).SetVal("OK")
	require.NoError(t, cache.Set(context.Background(), key, result))

	mock.ExpectGet(key).SetVal(string(payload))
	got, found, err := cache.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2024, got.AnchorYear)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheHas(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisResultCache(client, 0)
	key := Key("ACME", 2024)

	mock.ExpectExists(key).SetVal(1)
	has, err := cache.Has(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, has)

	mock.ExpectExists(key).SetVal(0)
	has, err = cache.Has(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, has)

	assert.NoError(t, mock.ExpectationsWereMet())
}
