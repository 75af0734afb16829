package state

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreNotifiesListenersInOrder(t *testing.T) {
	store := NewStore()
	var calls []string
	store.Subscribe(func(_ context.Context, prev, next State) {
		calls = append(calls, "first")
		assert.Equal(t, 1, prev.CurrentPage)
		assert.Equal(t, 2, next.CurrentPage)
	})
	store.Subscribe(func(_ context.Context, _, _ State) {
		calls = append(calls, "second")
	})

	store.Dispatch(context.Background(), SetCurrentPage(2))

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, 2, store.State().CurrentPage)
}

func TestStoreUnsubscribe(t *testing.T) {
	store := NewStore()
	count := 0
	unsubscribe := store.Subscribe(func(context.Context, State, State) { count++ })
	store.Dispatch(context.Background(), SetCurrentPage(2))
	unsubscribe()
	unsubscribe()
	store.Dispatch(context.Background(), SetCurrentPage(3))
	assert.Equal(t, 1, count)
}

func TestStoreListenerMayDispatch(t *testing.T) {
	store := NewStore()
	store.Subscribe(func(ctx context.Context, prev, next State) {
		if next.RefreshFlag && !prev.RefreshFlag {
			store.Dispatch(ctx, RefreshCustomers(false))
		}
	})

	store.Dispatch(context.Background(), RefreshCustomers(true))

	assert.False(t, store.State().RefreshFlag)
}

func TestStoreConcurrentDispatch(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Dispatch(context.Background(), FetchStart())
			store.Dispatch(context.Background(), FetchError("x"))
		}()
	}
	wg.Wait()
	s := store.State()
	require.False(t, s.Loading)
	assert.Equal(t, "x", s.Error)
}
