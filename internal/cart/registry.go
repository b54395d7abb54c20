package cart

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"storefront/internal/model"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// DefaultCapacity bounds a Registry created with a non-positive capacity.
const DefaultCapacity = 1024

var cartNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ChangeFunc observes changes of every cart opened through a Registry.
type ChangeFunc func(name string, e Event)

// Registry opens carts by name and keeps the most recently used ones
// loaded. An evicted cart is read back from storage on its next Open.
type Registry struct {
	storage Storage
	prefix  string
	logger  zerolog.Logger

	// mu serialises Open so a name is loaded once.
	mu       sync.Mutex
	stores   *lru.Cache[string, *Store]
	onChange []ChangeFunc
}

// NewRegistry creates a registry storing carts under prefix+name and
// holding at most capacity carts in memory.
func NewRegistry(storage Storage, prefix string, capacity int, logger zerolog.Logger) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	r := &Registry{
		storage: storage,
		prefix:  prefix,
		logger:  logger,
	}
	evictLog := logger.With().Str("component", "cart-registry").Logger()
	// NewWithEvict only fails for a non-positive size.
	r.stores, _ = lru.NewWithEvict(capacity, func(name string, _ *Store) {
		evictLog.Debug().Str("cart", name).Msg("cart unloaded")
	})

	return r
}

// OnChange registers fn for every cart opened afterwards.
func (r *Registry) OnChange(fn ChangeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = append(r.onChange, fn)
}

// Open returns the cart called name, loading it on first use.
func (r *Registry) Open(ctx context.Context, name string) (*Store, error) {
	if !cartNamePattern.MatchString(name) {
		return nil, model.ErrInvalidCartName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores.Get(name); ok {
		return s, nil
	}

	s, err := Open(ctx, name, r.slot(name), r.storage, r.logger)
	if err != nil {
		return nil, err
	}
	for _, fn := range r.onChange {
		s.Subscribe(func(e Event) { fn(name, e) })
	}
	r.stores.Add(name, s)

	return s, nil
}

// Loaded returns the number of carts held in memory.
func (r *Registry) Loaded() int {
	return r.stores.Len()
}

// Reload refreshes the loaded cart stored in slot. Carts that are not
// loaded here are ignored and keep their place in the eviction order.
func (r *Registry) Reload(ctx context.Context, slot string) error {
	name, ok := strings.CutPrefix(slot, r.prefix)
	if !ok {
		return nil
	}

	s, ok := r.stores.Peek(name)
	if !ok {
		return nil
	}

	return s.Reload(ctx)
}

func (r *Registry) slot(name string) string {
	return r.prefix + name
}
