// Package id generates the identifiers of memories and batches.
package id

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator can generate IDs
type Generator interface {
	// Generate an ID
	Generate() string
}

// NewSequentialGenerator returns a generator that produces 1, 2, 3, ... It is
// deterministic, which makes traces comparable across runs.
func NewSequentialGenerator() Generator {
	return &sequentialGenerator{}
}

// NewParallelGenerator returns a generator of globally unique IDs. The IDs are
// not deterministic.
func NewParallelGenerator() Generator {
	return parallelGenerator{}
}

type sequentialGenerator struct {
	nextID atomic.Uint64
}

func (g *sequentialGenerator) Generate() string {
	return strconv.FormatUint(g.nextID.Add(1), 10)
}

type parallelGenerator struct{}

func (g parallelGenerator) Generate() string {
	return xid.New().String()
}

var defaultGenerator = NewParallelGenerator()

// Generate returns a globally unique ID.
func Generate() string {
	return defaultGenerator.Generate()
}
