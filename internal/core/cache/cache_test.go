package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	N int `json:"n"`
}

func TestNilCacheLoadsThrough(t *testing.T) {
	var c *Cache
	calls := 0
	for i := 0; i < 2; i++ {
		v, err := GetOrLoadJSON(c, context.Background(), "k", time.Second, func(context.Context) (*payload, error) {
			calls++
			return &payload{N: 7}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, v.N)
	}
	assert.Equal(t, 2, calls)
	assert.NoError(t, c.Delete(context.Background(), "k"))
	assert.NoError(t, c.Ping(context.Background()))
}

func TestNewWithoutAddrIsDisabled(t *testing.T) {
	assert.Nil(t, New("", "", 0))
	assert.False(t, New("", "", 0).Enabled())
}

func TestUnreachableRedisStillLoads(t *testing.T) {
	c := &Cache{RDB: redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})}
	defer c.Close()

	v, err := GetOrLoadJSON(c, context.Background(), "k", time.Second, func(context.Context) (*payload, error) {
		return &payload{N: 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v.N)

	boom := errors.New("boom")
	_, err = GetOrLoadJSON(c, context.Background(), "k2", time.Second, func(context.Context) (*payload, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestNilResultIsNotCached(t *testing.T) {
	c := &Cache{RDB: redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})}
	defer c.Close()

	for _, cc := range []*Cache{nil, c} {
		v, err := GetOrLoadJSON(cc, context.Background(), "k", time.Second, func(context.Context) (*payload, error) {
			return nil, nil
		})
		require.NoError(t, err)
		assert.Nil(t, v)
	}
}
