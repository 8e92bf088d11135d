package id

import (
	"fmt"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generator creates opaque IDs for new rows.
type Generator interface {
	NewID() (string, error)
}

const defaultLength = 21

type NanoIDGenerator struct {
	length int
}

func NewNanoIDGenerator() *NanoIDGenerator {
	return &NanoIDGenerator{length: defaultLength}
}

func (g *NanoIDGenerator) NewID() (string, error) {
	id, err := gonanoid.New(g.length)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return id, nil
}

// Sequence hands out predictable ids; useful for seeds and tests.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) NewID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s%d", s.prefix, s.next), nil
}
