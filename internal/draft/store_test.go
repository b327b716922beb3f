package draft

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockKV is a simple in-memory stand-in for the durable key-value surface.
type mockKV struct {
	data   map[string]string
	mu     sync.Mutex
	setErr error
	getErr error
}

func newMockKV() *mockKV {
	return &mockKV{data: make(map[string]string)}
}

func (m *mockKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	value, ok := m.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (m *mockKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockKV) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMockKV())
	key := Key{RestaurantID: "r1", TableID: "5"}

	saved := Draft{
		Items: []Line{{
			ID: "l1", MenuItemID: "m1", Name: "Margherita",
			UnitPrice: 118, Quantity: 2, Notes: "extra hot",
			Extras: map[string][]string{"size": {"L"}},
		}},
		CustomerName: "Ali",
		Notes:        "call on arrival",
	}
	store.Save(ctx, key, saved)

	loaded := store.Load(ctx, key)
	assert.Equal(t, saved, loaded)
}

func TestStore_LoadMissingIsEmpty(t *testing.T) {
	store := NewStore(newMockKV())

	loaded := store.Load(context.Background(), Key{RestaurantID: "r1", TableID: "5"})

	assert.Equal(t, Draft{}, loaded)
	assert.False(t, loaded.HasItems())
}

func TestStore_LoadMalformedIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := newMockKV()
	key := Key{RestaurantID: "r1", TableID: "5"}
	kv.data[key.String()] = "{not json"

	loaded := NewStore(kv).Load(ctx, key)

	assert.Equal(t, Draft{}, loaded)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMockKV())
	key := Key{RestaurantID: "r1", TableID: "5"}

	store.Save(ctx, key, Draft{Items: []Line{{ID: "l1", Quantity: 1}}})
	store.Clear(ctx, key)

	assert.False(t, store.Load(ctx, key).HasItems())
}

func TestStore_WriteErrorsAreSwallowed(t *testing.T) {
	ctx := context.Background()
	kv := newMockKV()
	kv.setErr = errors.New("disk full")
	store := NewStore(kv)
	key := Key{RestaurantID: "r1", TableID: "5"}

	// Must not panic or surface the error past the store boundary.
	store.Save(ctx, key, Draft{Items: []Line{{ID: "l1", Quantity: 1}}})

	assert.False(t, store.Load(ctx, key).HasItems())
}

func TestStore_ReadErrorsReadAsEmpty(t *testing.T) {
	kv := newMockKV()
	kv.getErr = errors.New("connection reset")
	store := NewStore(kv)

	loaded := store.Load(context.Background(), Key{RestaurantID: "r1", TableID: "5"})

	assert.Equal(t, Draft{}, loaded)
}

func TestStore_PreferredCurrency(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMockKV())

	assert.Equal(t, "", store.PreferredCurrency(ctx, "r1"))

	store.SavePreferredCurrency(ctx, "r1", "USD")
	assert.Equal(t, "USD", store.PreferredCurrency(ctx, "r1"))

	store.SavePreferredCurrency(ctx, "r2", "EUR")
	assert.Equal(t, "USD", store.PreferredCurrency(ctx, "r1"), "currency is keyed per restaurant")

	store.ClearPreferredCurrency(ctx, "r1")
	assert.Equal(t, "", store.PreferredCurrency(ctx, "r1"))
}

func TestDraft_CloneIsDeep(t *testing.T) {
	original := Draft{Items: []Line{{
		ID: "l1", Quantity: 1,
		Extras: map[string][]string{"size": {"L"}},
	}}}

	clone := original.Clone()
	clone.Items[0].Quantity = 9
	clone.Items[0].Extras["size"][0] = "S"

	assert.Equal(t, 1, original.Items[0].Quantity)
	assert.Equal(t, "L", original.Items[0].Extras["size"][0])
}
