package codeprovider

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"opencsg.com/auth-exerciser/builder/store/cache"
	"opencsg.com/auth-exerciser/common/errorx"
)

// stubStore serves values after a number of misses.
type stubStore struct {
	mu     sync.Mutex
	values map[string]string
	misses int
	err    error
	keys   []string
}

func (s *stubStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	if s.err != nil {
		return "", s.err
	}
	if s.misses > 0 {
		s.misses--
		return "", cache.Nil
	}
	v, ok := s.values[key]
	if !ok {
		return "", cache.Nil
	}
	return v, nil
}

func TestRedisProvider_ObtainCode(t *testing.T) {
	store := &stubStore{
		values: map[string]string{"email_code:foo@example.com": "A1B2C3"},
		misses: 2,
	}
	p := NewRedisProvider(store, "email_code:", time.Second, time.Millisecond)

	code, err := p.ObtainCode(context.Background(), "foo@example.com")
	require.NoError(t, err)
	require.Equal(t, "A1B2C3", code)
	require.Len(t, store.keys, 3)
	require.Equal(t, "email_code:foo@example.com", store.keys[0])
}

func TestRedisProvider_Timeout(t *testing.T) {
	store := &stubStore{values: map[string]string{}}
	p := NewRedisProvider(store, "email_code:", 30*time.Millisecond, 5*time.Millisecond)

	_, err := p.ObtainCode(context.Background(), "foo@example.com")
	require.ErrorIs(t, err, errorx.ErrCodeNotFound)
}

func TestRedisProvider_ParentCancelled(t *testing.T) {
	store := &stubStore{values: map[string]string{}}
	p := NewRedisProvider(store, "email_code:", time.Minute, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := p.ObtainCode(ctx, "foo@example.com")
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, errorx.ErrCodeNotFound)
}

func TestRedisProvider_StoreError(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	p := NewRedisProvider(store, "email_code:", time.Second, time.Millisecond)

	_, err := p.ObtainCode(context.Background(), "foo@example.com")
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection refused")
	require.Len(t, store.keys, 1)
}
