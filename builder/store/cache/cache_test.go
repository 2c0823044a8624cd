package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := NewCache(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	require.Nil(t, c)
	require.Contains(t, err.Error(), "pinging Redis")
}

func TestNil(t *testing.T) {
	require.EqualError(t, Nil, "redis: nil")
}
