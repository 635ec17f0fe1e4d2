package alias

import (
	"context"
	"sync"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
)

// MemoryStore is the process-local alias store used when no database is
// configured and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []chemical.ChemicalAlias
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadAll(ctx context.Context) ([]chemical.ChemicalAlias, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chemical.ChemicalAlias(nil), s.rows...), nil
}

func (s *MemoryStore) ReplaceAll(ctx context.Context, aliases []chemical.ChemicalAlias) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := append([]chemical.ChemicalAlias(nil), aliases...)
	s.mu.Lock()
	s.rows = rows
	s.mu.Unlock()
	return nil
}

var _ chemical.AliasStore = (*MemoryStore)(nil)
