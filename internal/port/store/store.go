// Package store defines the persistence ports for the durable ledgers.
package store

import (
	"context"

	"github.com/osgard/sentinel/internal/domain/escalation"
	"github.com/osgard/sentinel/internal/domain/report"
)

// EscalationStore persists the escalation ledger as a single document.
// Load on a missing backing file returns an empty document, not an error.
type EscalationStore interface {
	Load(ctx context.Context) (escalation.Document, error)
	Save(ctx context.Context, doc escalation.Document) error
}

// StatsStore persists the run-statistics ledger as a single document.
type StatsStore interface {
	LoadStats(ctx context.Context) (report.Document, error)
	SaveStats(ctx context.Context, doc report.Document) error
}
