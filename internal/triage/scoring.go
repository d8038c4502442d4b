// Package triage analyzes submitted quote requests: deterministic complexity
// and urgency scoring combined with an LLM agent that produces the written
// assessment for staff.
package triage

import (
	"fmt"
	"strings"
)

// Base complexity per service category. Gas and main line work rank highest
// because of permits and safety requirements; routine drain or fixture work
// ranks lowest.
var complexityByCategory = map[string]int{
	"leak_repair":       5,
	"water_heater":      7,
	"pipe_installation": 7,
	"drain_cleaning":    3,
	"fixture_install":   3,
	"gas_line_services": 10,
	"perimeter_drains":  8,
	"main_line_repair":  10,
	"emergency_service": 8,
	"bathroom_reno":     9,
	"other":             5,
}

// Urgency by requested timeline. Anything unrecognized falls back to 4.
var urgencyByTimeline = map[string]int{
	"today":     9,
	"tomorrow":  8,
	"this week": 7,
	"next week": 5,
	"asap":      8,
	"soon":      6,
	"flexible":  3,
}

const (
	defaultComplexity = 5
	defaultUrgency    = 4
	maxScore          = 10
)

// JobComplexity scores how involved a job is likely to be, on a 1-10 scale.
// Hard-to-reach locations mentioned in the details multiply the base score.
func JobComplexity(serviceCategory, locationDetails string) int {
	base, ok := complexityByCategory[serviceCategory]
	if !ok {
		base = defaultComplexity
	}

	multiplier := 1.0
	location := strings.ToLower(locationDetails)
	if strings.Contains(location, "basement") || strings.Contains(location, "crawlspace") {
		multiplier = 1.2
	} else if strings.Contains(location, "attic") || strings.Contains(location, "under house") {
		multiplier = 1.3
	}

	score := int(float64(base)*multiplier + 0.5)
	if score > maxScore {
		score = maxScore
	}
	return score
}

// CustomerUrgency scores how soon the customer needs help, on a 1-10 scale.
// An emergency flag always scores 10; severe symptoms in the description add
// a boost on top of the requested timeline.
func CustomerUrgency(isEmergency bool, timelineRequested, problemSeverity string) int {
	if isEmergency {
		return maxScore
	}

	urgency, ok := urgencyByTimeline[strings.ToLower(timelineRequested)]
	if !ok {
		urgency = defaultUrgency
	}

	severity := strings.ToLower(problemSeverity)
	if strings.Contains(severity, "flooding") || strings.Contains(severity, "no water") || strings.Contains(severity, "burst") {
		urgency += 2
	}

	if urgency > maxScore {
		urgency = maxScore
	}
	return urgency
}

// FormatAnswers renders the intake question/answer pairs for the agent prompt.
func FormatAnswers(answers []Answer) string {
	if len(answers) == 0 {
		return "No answers provided"
	}

	parts := make([]string, 0, len(answers))
	for i, qa := range answers {
		parts = append(parts, fmt.Sprintf("Q%d: %s\nA%d: %s", i+1, qa.Question, i+1, qa.Answer))
	}
	return strings.Join(parts, "\n\n")
}
