package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	subjectNewRequest      = "New plumbing quote request"
	subjectRequestReceived = "We received your quote request"
	subjectHighPriority    = "High priority request needs attention"
	subjectQuoteSent       = "Your plumbing quote is ready"
	subjectStatusUpdate    = "Update on your plumbing quote request"
	subjectFollowUp        = "Checking in on your plumbing quote"
)

// NewRequestEmailData fills the staff notification for a fresh submission.
type NewRequestEmailData struct {
	ServiceType    string
	CustomerName   string
	ServiceAddress string
	IsEmergency    bool
	RequestURL     string
}

// HighPriorityEmailData fills the staff notification for an urgent triage
// outcome.
type HighPriorityEmailData struct {
	RequestID      string
	ComplexityRank int
	UrgencyRank    int
	RequestURL     string
}

// RequestReceivedEmailData fills the customer confirmation for a fresh
// submission.
type RequestReceivedEmailData struct {
	CustomerName string
	ServiceType  string
	IsEmergency  bool
	PortalURL    string
}

// StatusUpdateEmailData fills the customer notification for a status change.
type StatusUpdateEmailData struct {
	CustomerName string
	StatusLabel  string
	PortalURL    string
}

// FollowUpEmailData fills the customer nudge for a quote that has gone
// unanswered.
type FollowUpEmailData struct {
	ServiceType  string
	CustomerName string
	PortalURL    string
}

// QuoteSentEmailData fills the customer notification for a new quote.
type QuoteSentEmailData struct {
	CustomerName    string
	AmountFormatted string
	PortalURL       string
}

func renderEmailTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// FormatCents renders an integer cent amount as dollars for email copy.
func FormatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

var statusLabels = map[string]string{
	"new":       "Received",
	"viewed":    "Under review",
	"quoted":    "Quote sent",
	"scheduled": "Visit scheduled",
	"completed": "Completed",
}

// StatusLabel maps a lifecycle status to the customer-facing wording.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}
