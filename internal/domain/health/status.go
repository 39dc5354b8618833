// Package health defines the core entities for agent health tasks:
// statuses, task results, and the scheduled tasks that produce them.
package health

// Status classifies the condition reported by a task or an agent.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusError    Status = "error"
	StatusCritical Status = "critical"
	StatusUnknown  Status = "unknown"

	// Lifecycle statuses. These describe whether an agent is active,
	// not how severe its condition is, and never win a severity reduction.
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
)

// severity ranks condition statuses for worst-case reduction.
// Healthy, Unknown and the lifecycle statuses all rank lowest.
func (s Status) severity() int {
	switch s {
	case StatusCritical:
		return 3
	case StatusError:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// WorseThan reports whether s is a more severe condition than other.
func (s Status) WorseThan(other Status) bool {
	return s.severity() > other.severity()
}

// Reduce collapses a set of statuses into the single most severe one.
// An empty set reduces to Healthy.
func Reduce(statuses []Status) Status {
	out := StatusHealthy
	for _, s := range statuses {
		if s.WorseThan(out) {
			out = s
		}
	}
	return out
}
