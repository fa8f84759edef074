// Package memory provides the in-memory commitment store.
package memory

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arb-engine/business/commitreveal/domain"
	"github.com/fd1az/arb-engine/internal/apperror"
)

// Store keeps pending commitments in a map guarded by a single mutex.
// Consume holds the lock across lookup and delete, which is what makes
// a commitment single-use under concurrent reveals.
type Store struct {
	mu          sync.RWMutex
	commitments map[common.Hash]domain.Commitment
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{commitments: make(map[common.Hash]domain.Commitment)}
}

// Put implements app.CommitStore.
func (s *Store) Put(c domain.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.commitments[c.Hash]; exists {
		return apperror.New(apperror.CodeCommitmentAlreadyExists,
			apperror.WithContext(c.Hash.Hex()))
	}
	s.commitments[c.Hash] = c
	return nil
}

// Get implements app.CommitStore.
func (s *Store) Get(hash common.Hash) (domain.Commitment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.commitments[hash]
	return c, ok
}

// Consume implements app.CommitStore.
func (s *Store) Consume(hash common.Hash) (domain.Commitment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.commitments[hash]
	if !ok {
		return domain.Commitment{}, false
	}
	delete(s.commitments, hash)
	return c, true
}

// Delete implements app.CommitStore.
func (s *Store) Delete(hash common.Hash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.commitments[hash]
	if ok {
		delete(s.commitments, hash)
	}
	return ok
}

// Count implements app.CommitStore.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.commitments)
}

// All implements app.CommitStore.
func (s *Store) All() []domain.Commitment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Commitment, 0, len(s.commitments))
	for _, c := range s.commitments {
		out = append(out, c)
	}
	return out
}
