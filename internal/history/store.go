// Package history keeps one player's result collection: newest first,
// annotated with personal-best and percentile at insertion, persisted
// locally and mirrored best-effort into the shared records pool.
package history

import (
	"context"
	"log"
	"sort"
	"sync"

	"reactiontest/internal/grading"
	"reactiontest/internal/results"
)

// Persistence is the local store contract: full read on load, full
// overwrite on every mutation.
type Persistence interface {
	Load(ctx context.Context, ownerID string) ([]results.TestResult, error)
	Save(ctx context.Context, ownerID string, rs []results.TestResult) error
}

// Remote is the shared records collaborator. All calls may fail; Add
// treats insert failures as best-effort while Delete/Clear propagate.
type Remote interface {
	Insert(ctx context.Context, r results.TestResult, ownerID string) error
	Delete(ctx context.Context, id string) error
	DeleteOwner(ctx context.Context, ownerID string) error
}

// Ranker computes a candidate's population percentile.
type Ranker interface {
	Percentile(ctx context.Context, t results.TestType, value float64, key results.MetricKey) float64
}

type Store struct {
	mu      sync.Mutex
	ownerID string
	results []results.TestResult // newest first by insertion
	persist Persistence          // nil: in-memory only
	remote  Remote               // nil: no shared pool
	ranker  Ranker               // nil: skip percentile annotation
}

// NewStore loads the owner's persisted history. ownerID may be empty for
// an anonymous session.
func NewStore(ctx context.Context, ownerID string, persist Persistence, remote Remote, ranker Ranker) (*Store, error) {
	s := &Store{
		ownerID: ownerID,
		persist: persist,
		remote:  remote,
		ranker:  ranker,
	}
	if persist != nil {
		rs, err := persist.Load(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		s.results = rs
	}
	return s, nil
}

// Add annotates the result with its personal-best flag and population
// percentile, prepends it, persists, and forwards a copy to the shared
// pool. Local insertion succeeds even when persistence or the remote
// forward fail; those are logged only. Returns the annotated result.
func (s *Store) Add(ctx context.Context, r results.TestResult) results.TestResult {
	s.mu.Lock()

	best := s.bestLocked(r.Type)
	r.IsPersonalBest = grading.IsNewPersonalBest(r, best)

	if s.ranker != nil {
		if key, value, ok := r.Key(); ok {
			p := s.ranker.Percentile(ctx, r.Type, value, key)
			r.Percentile = &p
		}
	}

	s.results = append([]results.TestResult{r}, s.results...)
	s.saveLocked(ctx)
	s.mu.Unlock()

	if s.remote != nil {
		if err := s.remote.Insert(ctx, r, s.ownerID); err != nil {
			log.Printf("[History] remote insert failed: %v\n", err)
		}
	}
	return r
}

// Delete removes a result by id. Unknown ids are a no-op. The local
// removal stands even when the remote delete fails; that error is
// returned so the caller can surface it.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	kept := s.results[:0]
	for _, r := range s.results {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.results = kept
	s.saveLocked(ctx)
	s.mu.Unlock()

	if s.remote != nil {
		return s.remote.Delete(ctx, id)
	}
	return nil
}

// Clear empties the history. For an owned session the shared pool is
// asked to drop the owner's records too; that error propagates while the
// local clear stands.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.results = nil
	s.saveLocked(ctx)
	s.mu.Unlock()

	if s.ownerID != "" && s.remote != nil {
		return s.remote.DeleteOwner(ctx, s.ownerID)
	}
	return nil
}

// All returns every result, newest first.
func (s *Store) All() []results.TestResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]results.TestResult(nil), s.results...)
}

// ResultsByType returns the results of one game type, best first per the
// comparator. Equal-ranked entries keep their relative insertion order
// (newest first), which makes the ordering deterministic.
func (s *Store) ResultsByType(t results.TestType) []results.TestResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var filtered []results.TestResult
	for _, r := range s.results {
		if r.Type == t {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return grading.CompareScores(filtered[i], filtered[j]) > 0
	})
	return filtered
}

// BestResult returns the top-ranked result of the type, if any.
func (s *Store) BestResult(t results.TestType) (results.TestResult, bool) {
	ranked := s.ResultsByType(t)
	if len(ranked) == 0 {
		return results.TestResult{}, false
	}
	return ranked[0], true
}

// Len reports how many results are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func (s *Store) bestLocked(t results.TestType) *results.TestResult {
	var best *results.TestResult
	for i := range s.results {
		r := &s.results[i]
		if r.Type != t {
			continue
		}
		if best == nil || grading.CompareScores(*r, *best) > 0 {
			best = r
		}
	}
	return best
}

func (s *Store) saveLocked(ctx context.Context) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(ctx, s.ownerID, s.results); err != nil {
		log.Printf("[History] persist failed: %v\n", err)
	}
}
