package quiz

import (
	"fmt"
	"math/rand/v2"
)

// DefaultPool is the prompt pool used when none is configured.
var DefaultPool = []string{
	"airplane", "bus", "cat", "clock", "fish",
	"flower", "key", "spider", "star", "tree",
}

// DefaultQuestions is the number of prompts drawn per session.
const DefaultQuestions = 6

// Sample draws k distinct labels from pool using a uniform random permutation.
// A nil rng uses the package-level source. The pool itself is never modified.
func Sample(pool []string, k int, rng *rand.Rand) ([]string, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, k)
	}
	if k > len(pool) {
		return nil, &InsufficientPoolError{Requested: k, Available: len(pool)}
	}

	var perm []int
	if rng != nil {
		perm = rng.Perm(len(pool))
	} else {
		perm = rand.Perm(len(pool))
	}

	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = pool[perm[i]]
	}
	return out, nil
}

// ValidatePool checks that every label is non-empty and unique.
func ValidatePool(pool []string) error {
	seen := make(map[string]bool, len(pool))
	for _, label := range pool {
		if label == "" {
			return fmt.Errorf("%w: empty label", ErrInvalidPool)
		}
		if seen[label] {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidPool, label)
		}
		seen[label] = true
	}
	return nil
}
