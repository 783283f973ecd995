package helpers

import (
	"fmt"

	"github.com/oksasatya/morningforge/pkg/mailer"
	mailtpl "github.com/oksasatya/morningforge/pkg/mailer/templates"
)

// SubjectFor is the fallback subject when a job carries neither a subject
// nor a template that renders one.
func SubjectFor(template string) string {
	switch template {
	case mailtpl.Welcome:
		return "Welcome to MorningForge"
	case mailtpl.TrialStarted:
		return "Your Pro trial has started"
	default:
		return "Notification"
	}
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}
