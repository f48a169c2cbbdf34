// Package dedup suppresses duplicate transactions within a processing batch
// and against transactions already persisted.
package dedup

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultShards is the shard count used when none is given.
const DefaultShards = 16

// SeenSet is a batch-scoped set of (user, fingerprint) pairs. Fingerprints are
// only compared within one user's messages, so each user maps to a single
// shard and shards lock independently.
type SeenSet struct {
	shards []*seenShard
}

type seenShard struct {
	seen map[string]map[string]struct{}
	mu   sync.Mutex
}

// NewSeenSet creates an empty set with the given number of shards.
func NewSeenSet(shards int) *SeenSet {
	if shards <= 0 {
		shards = DefaultShards
	}
	s := &SeenSet{shards: make([]*seenShard, shards)}
	for i := range s.shards {
		s.shards[i] = &seenShard{seen: make(map[string]map[string]struct{})}
	}
	return s
}

func (s *SeenSet) shard(userID string) *seenShard {
	return s.shards[xxhash.Sum64String(userID)%uint64(len(s.shards))]
}

// MarkSeen records fingerprint for userID and reports whether this is its
// first occurrence. Empty fingerprints carry no identity and are always
// reported as first occurrences.
func (s *SeenSet) MarkSeen(userID, fingerprint string) bool {
	if fingerprint == "" {
		return true
	}
	sh := s.shard(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	fps, ok := sh.seen[userID]
	if !ok {
		fps = make(map[string]struct{})
		sh.seen[userID] = fps
	}
	if _, dup := fps[fingerprint]; dup {
		return false
	}
	fps[fingerprint] = struct{}{}
	return true
}

// Len returns the number of recorded pairs.
func (s *SeenSet) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, fps := range sh.seen {
			n += len(fps)
		}
		sh.mu.Unlock()
	}
	return n
}

// Reset empties the set for the next batch.
func (s *SeenSet) Reset() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.seen = make(map[string]map[string]struct{})
		sh.mu.Unlock()
	}
}
