// Package escalation defines the durable "needs a human" entities.
package escalation

import "time"

// Reason describes why an issue could not be fixed automatically.
// It is orthogonal to condition severity.
type Reason string

const (
	ReasonRequiresCredentials Reason = "requires_credentials"
	ReasonRequiresPayment     Reason = "requires_payment"
	ReasonRequiresDecision    Reason = "requires_decision"
	ReasonRequiresExternal    Reason = "requires_external"
	ReasonComplexRefactor     Reason = "complex_refactor"
	ReasonSecuritySensitive   Reason = "security_sensitive"
	ReasonDatabaseMigration   Reason = "database_migration"
	ReasonConfigChange        Reason = "config_change"
	ReasonPermissionNeeded    Reason = "permission_needed"
	ReasonUnclearIntent       Reason = "unclear_intent"
)

// Valid reports whether r is one of the defined reasons. The ledger's
// taxonomy is closed: free-form reasons would defeat the by-reason stats.
func (r Reason) Valid() bool {
	switch r {
	case ReasonRequiresCredentials, ReasonRequiresPayment, ReasonRequiresDecision,
		ReasonRequiresExternal, ReasonComplexRefactor, ReasonSecuritySensitive,
		ReasonDatabaseMigration, ReasonConfigChange, ReasonPermissionNeeded,
		ReasonUnclearIntent:
		return true
	}
	return false
}

// Priority orders escalations by urgency. Lower value = more urgent,
// so Critical(1) sorts before Info(5).
type Priority int

const (
	PriorityCritical Priority = 1
	PriorityHigh     Priority = 2
	PriorityMedium   Priority = 3
	PriorityLow      Priority = 4
	PriorityInfo     Priority = 5
)

// String returns the human-readable priority label.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	case PriorityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// ManualStep is one numbered instruction for the human resolving an escalation.
type ManualStep struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
	Command     string `json:"command,omitempty"`
	Code        string `json:"code,omitempty"`
	File        string `json:"file,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Escalation is a durable record of an issue requiring human action.
type Escalation struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Reason        Reason       `json:"reason"`
	Priority      Priority     `json:"priority"`
	SourceAgent   string       `json:"source_agent"`
	AffectedFiles []string     `json:"affected_files,omitempty"`
	WhyNotAuto    string       `json:"why_not_auto"`
	ManualSteps   []ManualStep `json:"manual_steps,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	Resolved      bool         `json:"resolved"`
	ResolvedAt    *time.Time   `json:"resolved_at,omitempty"`
}

// Document is the full on-disk escalation ledger. It is loaded once at
// startup and rewritten wholesale on every mutation.
type Document struct {
	Counter     int          `json:"counter"`
	Escalations []Escalation `json:"escalations"`
	LastUpdated time.Time    `json:"last_updated"`
}
