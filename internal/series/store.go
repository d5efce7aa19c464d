package series

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrNoHistory indicates the store cannot supply a price series for the
// requested asset. Callers treat it as a local exclusion, never a fatal
// condition for the run.
var ErrNoHistory = errors.New("series: no price history for asset")

// Store supplies aligned, adjusted price history per asset. Acquisition,
// caching and corporate-action adjustment all live behind this boundary;
// the scanning pipeline only ever reads from it.
type Store interface {
	// Get returns the full available history for symbol, or ErrNoHistory
	// when the asset cannot be resolved.
	Get(ctx context.Context, symbol string) (*Series, error)
}

// MapStore is an in-memory Store backed by a symbol map. It is the store
// used by tests and by the CSV loader in the CLI.
type MapStore struct {
	series map[string]*Series
}

// NewMapStore builds a MapStore from the given series, keyed by symbol.
func NewMapStore(all ...*Series) *MapStore {
	m := make(map[string]*Series, len(all))
	for _, s := range all {
		m[s.Symbol] = s
	}
	return &MapStore{series: m}
}

// Add inserts or replaces the series for its symbol.
func (ms *MapStore) Add(s *Series) {
	ms.series[s.Symbol] = s
}

// Get implements Store.
func (ms *MapStore) Get(_ context.Context, symbol string) (*Series, error) {
	s, ok := ms.series[symbol]
	if !ok || s.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHistory, symbol)
	}
	return s, nil
}

// Symbols returns all symbols in the store, sorted.
func (ms *MapStore) Symbols() []string {
	symbols := make([]string, 0, len(ms.series))
	for sym := range ms.series {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}
