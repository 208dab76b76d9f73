// Package importer implements bulk ingestion of answer sheets: flat files of
// question/answer pairs fed through the same duplicate-safe insert path as
// interactive teaching. Adapters parse one sheet format each; the caller
// supplies the ingest function so the package stays free of store wiring.
package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// IngestOutcome classifies what happened to one sheet row.
type IngestOutcome int

const (
	// Ingested means the pair was stored as a new record.
	Ingested IngestOutcome = iota
	// Duplicate means a record with the same normalized question already exists.
	Duplicate
	// Rejected means the pair failed validation (question too short, empty answer).
	Rejected
)

// IngestFunc receives one question/answer pair from a sheet. A non-nil error
// aborts the whole run; validation failures are reported as Rejected instead.
type IngestFunc func(ctx context.Context, question, answer string) (IngestOutcome, error)

// Stats summarizes one import run.
type Stats struct {
	Rows       int
	Ingested   int
	Duplicates int
	Rejected   int
}

func (s *Stats) count(o IngestOutcome) {
	switch o {
	case Ingested:
		s.Ingested++
	case Duplicate:
		s.Duplicates++
	case Rejected:
		s.Rejected++
	}
}

// Adapter parses one answer-sheet format and feeds each pair to ingest.
type Adapter interface {
	// ID returns the format identifier used in sheet specs (e.g. "csv").
	ID() string
	// Description returns a human-readable description.
	Description() string
	// Import reads the sheet described by spec and ingests every pair.
	Import(ctx context.Context, spec SheetSpec, ingest IngestFunc) (Stats, error)
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID, or an error if not found.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("unknown sheet adapter: %q", id)
	}
	return a, nil
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}
