package progress

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
	"reading-hero-service/internal/catalog"
)

// Registry hands out one Store per profile so every connection of the same
// player mutates the same record.
type Registry struct {
	backend Backend
	baseKey string

	loads  singleflight.Group
	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(backend Backend, baseKey string) *Registry {
	if baseKey == "" {
		baseKey = catalog.StorageKey
	}
	return &Registry{
		backend: backend,
		baseKey: baseKey,
		stores:  make(map[string]*Store),
	}
}

// Get returns the store for profileID, loading it on first use. The empty
// profile maps to the bare storage key. Loads run outside the registry lock;
// concurrent first calls for one profile share a single load.
func (r *Registry) Get(ctx context.Context, profileID string) *Store {
	if store, ok := r.cached(profileID); ok {
		if !store.Loaded() {
			store.Load(ctx)
		}
		return store
	}
	v, _, _ := r.loads.Do(profileID, func() (any, error) {
		if store, ok := r.cached(profileID); ok {
			return store, nil
		}
		store := NewStore(r.backend, r.key(profileID))
		store.Load(ctx)
		r.mu.Lock()
		r.stores[profileID] = store
		r.mu.Unlock()
		return store, nil
	})
	return v.(*Store)
}

func (r *Registry) cached(profileID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[profileID]
	return store, ok
}

func (r *Registry) key(profileID string) string {
	if profileID == "" {
		return r.baseKey
	}
	return r.baseKey + ":" + profileID
}
