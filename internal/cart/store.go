// Package cart keeps shopping carts in durable storage and notifies
// subscribers after every change.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Op names a cart change.
type Op string

const (
	OpAdd    Op = "add"
	OpAdjust Op = "adjust"
	OpRemove Op = "remove"
	OpClear  Op = "clear"
	OpReload Op = "reload"
)

// Snapshot is the cart state delivered to subscribers and API callers.
type Snapshot struct {
	Name    string           `json:"name"`
	Lines   []model.CartLine `json:"lines"`
	Count   int              `json:"count"`
	Total   decimal.Decimal  `json:"total"`
	Version int64            `json:"version"`
}

// Event is delivered to every subscriber after a change has been persisted.
type Event struct {
	Op       Op       `json:"op"`
	Snapshot Snapshot `json:"snapshot"`
}

// Listener receives cart events. Listeners run synchronously and must not
// mutate the store they are subscribed to.
type Listener func(Event)

// state is the persisted form of a cart. Writer identifies the Store that
// persisted it, so two writes with the same version are told apart.
type state struct {
	Version int64            `json:"version"`
	Writer  string           `json:"writer,omitempty"`
	Lines   []model.CartLine `json:"lines"`
}

// Store is a single shopping cart persisted under one storage slot.
type Store struct {
	name    string
	slot    string
	storage Storage
	logger  zerolog.Logger

	// id is written as state.Writer by this store.
	id string

	mu      sync.Mutex
	lines   []model.CartLine
	version int64
	writer  string

	// notifyMu is taken before mu is released so events reach
	// subscribers in commit order.
	notifyMu    sync.Mutex
	listenersMu sync.Mutex
	listeners   map[uint64]Listener
	nextID      uint64

	newKey func(productID string) string
}

// Open loads the cart stored in slot, starting empty when nothing is stored.
func Open(ctx context.Context, name, slot string, storage Storage, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		name:      name,
		slot:      slot,
		storage:   storage,
		logger:    logger.With().Str("component", "cart").Str("cart", name).Logger(),
		id:        uuid.NewString(),
		lines:     []model.CartLine{},
		listeners: make(map[uint64]Listener),
		newKey:    newLineKey,
	}

	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.adopt(st)

	return s, nil
}

func newLineKey(productID string) string {
	return fmt.Sprintf("%s-%s", productID, uuid.NewString())
}

// Name returns the cart name.
func (s *Store) Name() string {
	return s.name
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLines(s.lines)
}

// Count returns the sum of line quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return count(s.lines)
}

// Total returns Σ price × quantity rounded to two decimal places.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return total(s.lines)
}

// Snapshot returns the current cart state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Add puts one unit of product into the cart. A line with the same product
// and selections has its quantity incremented; otherwise a new line with
// quantity 1 is appended.
func (s *Store) Add(
	ctx context.Context,
	product model.Product,
	textAttrs, swatchAttrs []model.AttributeValue,
	selectedText, selectedSwatch model.Selection,
) (Snapshot, error) {
	if product.ID == "" {
		return Snapshot{}, model.ErrProductNotFound
	}

	identity := model.LineIdentity{ProductID: product.ID, Text: selectedText, Swatch: selectedSwatch}

	return s.mutate(ctx, OpAdd, func(lines []model.CartLine) ([]model.CartLine, error) {
		if i := slices.IndexFunc(lines, identity.Matches); i >= 0 {
			lines[i].Quantity++
			return lines, nil
		}

		return append(lines, model.CartLine{
			Key: s.newKey(product.ID),
			Product: model.CartProduct{
				ID:             product.ID,
				Name:           product.Name,
				InStock:        product.InStock,
				Image:          product.FirstImage(),
				CurrencySymbol: product.CurrencySymbol,
				Price:          product.Price,
			},
			TextAttributes:   slices.Clone(textAttrs),
			SwatchAttributes: slices.Clone(swatchAttrs),
			SelectedText:     selectedText.Clone(),
			SelectedSwatch:   selectedSwatch.Clone(),
			Quantity:         1,
		}), nil
	})
}

// AdjustQuantity increments or decrements the matching line. A line that
// reaches zero is removed. Returns model.ErrCartLineNotFound when no line
// matches.
func (s *Store) AdjustQuantity(ctx context.Context, identity model.LineIdentity, direction model.Direction) (Snapshot, error) {
	var delta int
	switch direction {
	case model.DirectionIncrease:
		delta = 1
	case model.DirectionDecrease:
		delta = -1
	default:
		return Snapshot{}, model.ErrInvalidDirection
	}

	return s.mutate(ctx, OpAdjust, func(lines []model.CartLine) ([]model.CartLine, error) {
		i := slices.IndexFunc(lines, identity.Matches)
		if i < 0 {
			return nil, model.ErrCartLineNotFound
		}
		lines[i].Quantity += delta
		if lines[i].Quantity <= 0 {
			lines = slices.Delete(lines, i, i+1)
		}
		return lines, nil
	})
}

// Remove drops the line with the given identity.
func (s *Store) Remove(ctx context.Context, identity model.LineIdentity) (Snapshot, error) {
	return s.mutate(ctx, OpRemove, func(lines []model.CartLine) ([]model.CartLine, error) {
		i := slices.IndexFunc(lines, identity.Matches)
		if i < 0 {
			return nil, model.ErrCartLineNotFound
		}
		return slices.Delete(lines, i, i+1), nil
	})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) (Snapshot, error) {
	return s.mutate(ctx, OpClear, func([]model.CartLine) ([]model.CartLine, error) {
		return []model.CartLine{}, nil
	})
}

// Reload replaces the in-memory lines with the stored state when it differs
// from the state this store last read or wrote. An empty slot (for example
// after the TTL expired) resets the cart.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	st, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !s.adopt(st) {
		s.mu.Unlock()
		return nil
	}
	s.publishAndUnlock(OpReload)

	return nil
}

// Subscribe registers l for every subsequent change and returns a function
// that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

// mutate applies fn to a copy of the lines, persists the result and only
// then commits it in memory and notifies subscribers.
func (s *Store) mutate(ctx context.Context, op Op, fn func([]model.CartLine) ([]model.CartLine, error)) (Snapshot, error) {
	s.mu.Lock()

	// Pick up writes from other instances before applying the change.
	st, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}
	if s.adopt(st) {
		s.logger.Debug().Int64("version", st.Version).Str("writer", st.Writer).Msg("adopted stored cart")
	}

	next, err := fn(cloneLines(s.lines))
	if err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}

	version := s.version + 1
	if err := s.persist(ctx, state{Version: version, Writer: s.id, Lines: next}); err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}

	s.lines = next
	s.version = version
	s.writer = s.id
	snap := s.publishAndUnlock(op)

	s.logger.Debug().
		Str("op", string(op)).
		Int64("version", version).
		Int("count", snap.Count).
		Msg("cart updated")

	return snap, nil
}

// adopt takes over st unless it is the state already held. Stored state
// always wins, including a lower version. Must be called with mu held.
func (s *Store) adopt(st state) bool {
	if st.Version == s.version && st.Writer == s.writer {
		return false
	}
	s.lines = st.Lines
	s.version = st.Version
	s.writer = st.Writer
	return true
}

// publishAndUnlock releases mu and delivers the committed state to
// subscribers. Must be called with mu held.
func (s *Store) publishAndUnlock(op Op) Snapshot {
	snap := s.snapshotLocked()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.Unlock()

	event := Event{Op: op, Snapshot: snap}
	for _, l := range listeners {
		l(event)
	}

	return snap
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Name:    s.name,
		Lines:   cloneLines(s.lines),
		Count:   count(s.lines),
		Total:   total(s.lines),
		Version: s.version,
	}
}

func (s *Store) load(ctx context.Context) (state, error) {
	data, err := s.storage.Get(ctx, s.slot)
	if err != nil {
		s.logger.Error().Err(err).Str("slot", s.slot).Msg("failed to read cart")
		return state{}, fmt.Errorf("failed to read cart: %w", err)
	}

	st := state{Lines: []model.CartLine{}}
	if data == nil {
		return st, nil
	}
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Error().Err(err).Str("slot", s.slot).Msg("failed to decode cart")
		return state{}, fmt.Errorf("failed to decode cart: %w", err)
	}
	if st.Lines == nil {
		st.Lines = []model.CartLine{}
	}

	return st, nil
}

func (s *Store) persist(ctx context.Context, st state) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, s.slot, data); err != nil {
		s.logger.Error().Err(err).Str("slot", s.slot).Msg("failed to persist cart")
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

func count(lines []model.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func total(lines []model.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return model.RoundAmount(sum)
}

func cloneLines(lines []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, len(lines))
	for i, l := range lines {
		l.TextAttributes = slices.Clone(l.TextAttributes)
		l.SwatchAttributes = slices.Clone(l.SwatchAttributes)
		l.SelectedText = l.SelectedText.Clone()
		l.SelectedSwatch = l.SelectedSwatch.Clone()
		out[i] = l
	}
	return out
}
