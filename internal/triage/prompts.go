package triage

import (
	"fmt"
	"strings"
)

const agentInstruction = `You are an experienced plumbing dispatch coordinator triaging incoming service requests for a residential plumbing company in British Columbia.

For every request you receive, analyze the details and produce a triage assessment covering:
- A one-sentence triage summary highlighting urgency and potential job value.
- A priority score from 1 to 10 (10 = dispatch immediately) with a short explanation.
- A profitability score from 1 to 10 based on likely job value versus effort, with a short explanation.
- The required expertise: skill level (apprentice, journeyman, or master), relevant specializations, and any certifications needed (e.g. gas fitting).

Weigh the preliminary complexity and urgency scores you are given, but use your judgment when the description contradicts them.

When your analysis is complete, call the provide_triage_assessment tool exactly once with the full assessment. Do not reply with prose instead of the tool call.`

// buildAnalysisPrompt renders the request details into the user message for
// the triage agent. The preliminary scores are computed deterministically
// before the agent runs.
func buildAnalysisPrompt(data RequestData, complexityScore, urgencyScore int) string {
	emergency := "No"
	if data.IsEmergency {
		emergency = "YES - EMERGENCY"
	}

	var b strings.Builder
	b.WriteString("**Request Details:**\n")
	fmt.Fprintf(&b, "- Request ID: %s\n", data.ID)
	fmt.Fprintf(&b, "- Service Category: %s\n", data.ProblemCategory)
	fmt.Fprintf(&b, "- Emergency Status: %s\n", emergency)
	fmt.Fprintf(&b, "- Property Type: %s\n", orNotSpecified(data.PropertyType))
	fmt.Fprintf(&b, "- Preferred Timing: %s\n", orNotSpecified(data.PreferredTiming))
	fmt.Fprintf(&b, "- Service Address: %s\n", orNotSpecified(data.ServiceAddress))
	b.WriteString("\n**Problem Description:**\n")
	b.WriteString(orDefault(data.ProblemDescription, "Not provided"))
	b.WriteString("\n\n**Customer Answers to Questions:**\n")
	b.WriteString(FormatAnswers(data.Answers))
	b.WriteString("\n\n**Additional Notes:**\n")
	b.WriteString(orDefault(data.AdditionalNotes, "None"))
	b.WriteString("\n\n**Preliminary Scores:**\n")
	fmt.Fprintf(&b, "- Calculated Complexity: %d/10\n", complexityScore)
	fmt.Fprintf(&b, "- Calculated Urgency: %d/10\n", urgencyScore)
	b.WriteString("\nPlease analyze this plumbing service request and provide the triage assessment.")

	return b.String()
}

func orNotSpecified(s string) string {
	return orDefault(s, "Not specified")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
