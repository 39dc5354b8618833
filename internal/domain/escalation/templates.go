package escalation

import "strings"

// stepTemplate maps description keywords to canned remediation steps.
// All keywords must appear in the lowercased description for a match.
type stepTemplate struct {
	keywords []string
	steps    []ManualStep
}

// Order matters: the first matching template wins.
var stepTemplates = []stepTemplate{
	{
		keywords: []string{"secret", "key"},
		steps: []ManualStep{
			{Step: 1, Description: "Rotate the exposed secret with its issuer", Notes: "Treat the old value as compromised"},
			{Step: 2, Description: "Update the secret in the environment", Command: "vault kv put secret/app <name>=<new-value>"},
			{Step: 3, Description: "Purge the old value from config and shell history", File: ".env"},
			{Step: 4, Description: "Restart dependent services so they pick up the new value"},
		},
	},
	{
		keywords: []string{"credential"},
		steps: []ManualStep{
			{Step: 1, Description: "Obtain valid credentials from the service owner"},
			{Step: 2, Description: "Store them in the secret manager, never in the repository"},
			{Step: 3, Description: "Verify access with a read-only call before resuming automation"},
		},
	},
	{
		keywords: []string{"migration"},
		steps: []ManualStep{
			{Step: 1, Description: "Review the pending schema change and its rollback path"},
			{Step: 2, Description: "Back up the database", Command: "pg_dump -Fc app > backup.dump"},
			{Step: 3, Description: "Apply the migration in a maintenance window"},
			{Step: 4, Description: "Verify row counts and application health afterwards"},
		},
	},
	{
		keywords: []string{"permission"},
		steps: []ManualStep{
			{Step: 1, Description: "Identify the account or role missing access"},
			{Step: 2, Description: "Request the grant from the resource owner"},
			{Step: 3, Description: "Re-run the failing task once access is confirmed"},
		},
	},
	{
		keywords: []string{"payment"},
		steps: []ManualStep{
			{Step: 1, Description: "Check the billing dashboard for the failing account"},
			{Step: 2, Description: "Update the payment method or raise the spending limit"},
			{Step: 3, Description: "Confirm the provider has lifted the suspension"},
		},
	},
	{
		keywords: []string{"config"},
		steps: []ManualStep{
			{Step: 1, Description: "Diff the current configuration against the last known-good version"},
			{Step: 2, Description: "Apply the corrected value", File: "sentinel.yaml"},
			{Step: 3, Description: "Reload the service and re-run the status checks"},
		},
	},
	{
		keywords: []string{"refactor"},
		steps: []ManualStep{
			{Step: 1, Description: "Read the affected modules and map the blast radius"},
			{Step: 2, Description: "Write characterization tests around the current behavior"},
			{Step: 3, Description: "Refactor in small reviewed increments"},
		},
	},
}

// TemplateSteps returns canned remediation steps whose keywords all appear
// in the description, or nil when no template matches.
func TemplateSteps(description string) []ManualStep {
	desc := strings.ToLower(description)
	for _, tpl := range stepTemplates {
		matched := true
		for _, kw := range tpl.keywords {
			if !strings.Contains(desc, kw) {
				matched = false
				break
			}
		}
		if matched {
			steps := make([]ManualStep, len(tpl.steps))
			copy(steps, tpl.steps)
			return steps
		}
	}
	return nil
}
