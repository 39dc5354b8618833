package jsonfile

import (
	"context"

	"github.com/osgard/sentinel/internal/domain/report"
)

// StatsStore persists the run-statistics ledger at a fixed path.
type StatsStore struct {
	path string
}

// NewStatsStore creates a store backed by the given file path.
func NewStatsStore(path string) *StatsStore {
	return &StatsStore{path: path}
}

// LoadStats reads the ledger. A missing file yields an empty document.
func (s *StatsStore) LoadStats(_ context.Context) (report.Document, error) {
	doc := report.NewDocument()
	found, err := readInto(s.path, &doc)
	if err != nil {
		return report.Document{}, err
	}
	if !found {
		return report.NewDocument(), nil
	}
	// Maps may be nil when the file predates a field.
	if doc.Agents == nil {
		doc.Agents = make(map[string]*report.AgentTotals)
	}
	if doc.Daily == nil {
		doc.Daily = make(map[string]*report.DailyTotals)
	}
	return doc, nil
}

// SaveStats rewrites the full ledger atomically.
func (s *StatsStore) SaveStats(_ context.Context, doc report.Document) error {
	return writeAtomic(s.path, doc)
}
