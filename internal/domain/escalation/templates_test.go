package escalation

import "testing"

func TestTemplateSteps(t *testing.T) {
	tests := []struct {
		name        string
		description string
		wantSteps   bool
		wantFirst   string
	}{
		{"secret and key", "Found hardcoded API key in secrets.go, looks like a leaked secret", true, "Rotate the exposed secret with its issuer"},
		{"key alone does not match secret template", "cache key mismatch detected", false, ""},
		{"migration", "database migration required for new column", true, "Review the pending schema change and its rollback path"},
		{"case insensitive", "MIGRATION pending", true, "Review the pending schema change and its rollback path"},
		{"no match", "disk almost full", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := TemplateSteps(tt.description)
			if tt.wantSteps != (len(steps) > 0) {
				t.Fatalf("TemplateSteps(%q) returned %d steps, want match=%v", tt.description, len(steps), tt.wantSteps)
			}
			if tt.wantSteps && steps[0].Description != tt.wantFirst {
				t.Fatalf("first step = %q, want %q", steps[0].Description, tt.wantFirst)
			}
		})
	}
}

func TestTemplateStepsFirstMatchWins(t *testing.T) {
	// Mentions both a secret key and a migration; the secret template is
	// listed first and must win.
	steps := TemplateSteps("secret key exposure found during migration")
	if len(steps) == 0 {
		t.Fatal("expected a template match")
	}
	if steps[0].Description != "Rotate the exposed secret with its issuer" {
		t.Fatalf("expected secret template to win, got %q", steps[0].Description)
	}
}

func TestTemplateStepsReturnsCopy(t *testing.T) {
	a := TemplateSteps("permission denied on deploy")
	if len(a) == 0 {
		t.Fatal("expected a template match")
	}
	a[0].Description = "mutated"

	b := TemplateSteps("permission denied on deploy")
	if b[0].Description == "mutated" {
		t.Fatal("TemplateSteps must return an independent copy")
	}
}

func TestPriorityString(t *testing.T) {
	if PriorityCritical.String() != "critical" || PriorityInfo.String() != "info" {
		t.Fatal("unexpected priority labels")
	}
	if Priority(9).String() != "unknown" {
		t.Fatal("out-of-range priority should be unknown")
	}
}
