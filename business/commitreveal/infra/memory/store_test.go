package memory

import (
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/arb-engine/business/commitreveal/domain"
	"github.com/fd1az/arb-engine/internal/apperror"
)

func commitment(b byte) domain.Commitment {
	var h common.Hash
	h[31] = b
	return domain.Commitment{
		Hash:      h,
		Committer: common.HexToAddress("0x00000000000000000000000000000000000000AA"),
		Height:    100,
	}
}

func TestStore_PutGetDelete(t *testing.T) {
	s := NewStore()
	c := commitment(1)

	if err := s.Put(c); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Put(c); !apperror.IsCode(err, apperror.CodeCommitmentAlreadyExists) {
		t.Fatalf("duplicate Put() error = %v, want COMMITMENT_ALREADY_EXISTS", err)
	}

	got, ok := s.Get(c.Hash)
	if !ok || got.Height != 100 {
		t.Fatalf("Get() = %+v, %v", got, ok)
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}

	if !s.Delete(c.Hash) {
		t.Fatal("Delete() = false, want true")
	}
	if s.Delete(c.Hash) {
		t.Fatal("second Delete() = true, want false")
	}
	if _, ok := s.Get(c.Hash); ok {
		t.Fatal("Get() after delete found the commitment")
	}
}

// Exactly one of many concurrent consumers wins the commitment.
func TestStore_ConsumeIsSingleWinner(t *testing.T) {
	s := NewStore()
	c := commitment(2)
	if err := s.Put(c); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	const goroutines = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.Consume(c.Hash); ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	if won != 1 {
		t.Fatalf("winners = %d, want exactly 1", won)
	}
	if s.Count() != 0 {
		t.Fatalf("Count() = %d after consume, want 0", s.Count())
	}
}

func TestStore_All(t *testing.T) {
	s := NewStore()
	for b := byte(1); b <= 3; b++ {
		if err := s.Put(commitment(b)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("All() length = %d, want 3", len(all))
	}
}
