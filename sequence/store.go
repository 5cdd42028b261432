package sequence

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Store holds immutable sequence definitions keyed by id. It is read-mostly
// after startup; writes happen only on explicit re-registration.
type Store struct {
	defs   map[string]*ToolSequence
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewStore creates an empty definition store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		defs:   make(map[string]*ToolSequence),
		logger: logger.With(zap.String("component", "sequence_store")),
	}
}

// Register stores or replaces a definition by id. Only structural constraints
// are checked here; deeper validation happens in the builder and loader.
func (s *Store) Register(seq *ToolSequence) error {
	if err := seq.validateBasic(); err != nil {
		return err
	}

	s.mu.Lock()
	_, replaced := s.defs[seq.ID]
	s.defs[seq.ID] = seq
	s.mu.Unlock()

	s.logger.Info("sequence registered",
		zap.String("sequence_id", seq.ID),
		zap.Int("steps", len(seq.Steps)),
		zap.Bool("replaced", replaced))
	return nil
}

// Get returns the definition for the id, if registered.
func (s *Store) Get(id string) (*ToolSequence, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq, ok := s.defs[id]
	return seq, ok
}

// List returns all registered definitions ordered by id.
func (s *Store) List() []*ToolSequence {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seqs := make([]*ToolSequence, 0, len(s.defs))
	for _, seq := range s.defs {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i].ID < seqs[j].ID })
	return seqs
}
