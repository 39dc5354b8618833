package jsonfile

import (
	"context"

	"github.com/osgard/sentinel/internal/domain/escalation"
)

// EscalationStore persists the escalation ledger at a fixed path.
type EscalationStore struct {
	path string
}

// NewEscalationStore creates a store backed by the given file path.
func NewEscalationStore(path string) *EscalationStore {
	return &EscalationStore{path: path}
}

// Load reads the ledger. A missing file yields an empty document.
func (s *EscalationStore) Load(_ context.Context) (escalation.Document, error) {
	var doc escalation.Document
	found, err := readInto(s.path, &doc)
	if err != nil {
		return escalation.Document{}, err
	}
	if !found {
		return escalation.Document{}, nil
	}
	return doc, nil
}

// Save rewrites the full ledger atomically.
func (s *EscalationStore) Save(_ context.Context, doc escalation.Document) error {
	return writeAtomic(s.path, doc)
}
