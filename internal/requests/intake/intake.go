// Package intake orchestrates the conversational quote-intake flow: given the
// customer's answers so far, it decides whether the completion API should be
// asked for clarifying follow-up questions and parses its free-text reply.
package intake

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"plumbing_portal_backend/internal/requests/transport"
	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/logger"
)

// CompletionClient is the narrow surface of the chat completion API the
// orchestrator needs. Test doubles substitute deterministic fixtures.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Categories that skip the LLM round-trip entirely: when the customer picked a
// concrete service and nothing in their description reads as ambiguous, the
// static question set already covers everything.
var ambiguousKeywords = []string{"weird", "strange", "not sure", "something else", "intermittent", "help"}

var (
	noQuestionsPattern = regexp.MustCompile(`(?i)no additional questions required`)
	numberedLine       = regexp.MustCompile(`^\d+\.`)
	numberedPrefix     = regexp.MustCompile(`^\d+\.\s*`)
)

// Orchestrator drives the follow-up question flow.
type Orchestrator struct {
	client CompletionClient
	log    *logger.Logger
}

// New creates an intake orchestrator.
func New(client CompletionClient, log *logger.Logger) *Orchestrator {
	return &Orchestrator{client: client, log: log}
}

// FollowUpQuestions returns zero or more clarifying questions for the given
// answers. It never persists anything; the only side effect is the outbound
// completion call, and even that is skipped when the category is specific
// enough.
func (o *Orchestrator) FollowUpQuestions(ctx context.Context, answers []transport.ClarifyingAnswer, category, problemDescription string) ([]string, error) {
	if !NeedsFollowUp(category, problemDescription) {
		return []string{}, nil
	}

	prompt := buildPrompt(answers, category)

	reply, err := o.client.Complete(ctx, "", prompt)
	if err != nil {
		o.log.UpstreamError("completion", "follow_up_questions", err)
		return nil, apperr.Wrap(apperr.KindUpstream, err.Error(), err).WithOp("intake.FollowUpQuestions")
	}

	return ParseFollowUps(reply), nil
}

// NeedsFollowUp reports whether the completion API should be consulted at all.
// Only the catch-all "other" category or descriptions containing ambiguous
// wording warrant extra questions.
func NeedsFollowUp(category, problemDescription string) bool {
	if category == "other" {
		return true
	}

	description := strings.ToLower(problemDescription)
	for _, keyword := range ambiguousKeywords {
		if strings.Contains(description, keyword) {
			return true
		}
	}

	return false
}

// ParseFollowUps extracts numbered follow-up questions from a free-text reply.
// The reply is a text contract with a non-deterministic service: if it
// contains the phrase "no additional questions required" (any case) the
// result is empty; otherwise only lines starting with a digit-dot prefix
// count, with the prefix stripped and order preserved.
func ParseFollowUps(reply string) []string {
	questions := []string{}

	if noQuestionsPattern.MatchString(reply) {
		return questions
	}

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !numberedLine.MatchString(line) {
			continue
		}
		question := numberedPrefix.ReplaceAllString(line, "")
		if question == "" {
			continue
		}
		questions = append(questions, question)
	}

	return questions
}

func buildPrompt(answers []transport.ClarifyingAnswer, category string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a plumbing quote agent. Here are the user's answers for a %s quote:\n", category)
	for _, item := range answers {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", item.Question, item.Answer)
	}
	b.WriteString(`Do you have any additional follow-up questions? If not, reply: "No, this is perfect. No additional questions required." If yes, list each follow-up question on a new line, starting each with a number (e.g., "1. What is...").`)

	return b.String()
}
