// Package ids hands out sequential record identifiers such as F0001.
package ids

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Format renders prefix plus n zero padded to four digits.
func Format(prefix string, n int) string {
	return fmt.Sprintf("%s%04d", prefix, n)
}

// Next returns the id after the highest existing one carrying prefix.
// Ids with another prefix or a non-numeric suffix are ignored.
func Next(existing []string, prefix string) string {
	return Format(prefix, maxSuffix(existing, prefix)+1)
}

func maxSuffix(existing []string, prefix string) int {
	max := 0
	for _, id := range existing {
		rest, ok := strings.CutPrefix(id, prefix)
		if !ok || rest == "" {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}

// Sequencer keeps one counter per prefix for the lifetime of a run.
type Sequencer struct {
	mu   sync.Mutex
	last map[string]int
}

func NewSequencer() *Sequencer {
	return &Sequencer{last: map[string]int{}}
}

// Seed raises the counter for prefix so the next id follows existing.
func (s *Sequencer) Seed(prefix string, existing []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m := maxSuffix(existing, prefix); m > s.last[prefix] {
		s.last[prefix] = m
	}
}

func (s *Sequencer) Next(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[prefix]++
	return Format(prefix, s.last[prefix])
}
