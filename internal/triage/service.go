package triage

import (
	"context"

	"plumbing_portal_backend/internal/events"
	requestrepo "plumbing_portal_backend/internal/requests/repository"
	"plumbing_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// Analyzer produces a triage assessment for request data. The ADK agent
// implements it; tests substitute fixtures.
type Analyzer interface {
	Analyze(ctx context.Context, data RequestData) (*Assessment, error)
}

// RequestStore is the slice of the requests repository the staff triage
// endpoint needs.
type RequestStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*requestrepo.Request, error)
	SaveTriage(ctx context.Context, id uuid.UUID, summary string, priorityScore int) error
}

// Service coordinates triage runs.
type Service struct {
	analyzer Analyzer
	store    RequestStore
	log      *logger.Logger
	eventBus events.Bus
}

// NewService creates a triage service. store may be nil for the transient
// endpoint-only configuration.
func NewService(analyzer Analyzer, store RequestStore, log *logger.Logger) *Service {
	return &Service{analyzer: analyzer, store: store, log: log}
}

// SetEventBus wires the domain event bus.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// Run analyzes the posted request data and returns the assessment without
// persisting anything. Callers choose whether to attach the result.
func (s *Service) Run(ctx context.Context, data RequestData) (*Assessment, error) {
	return s.analyzer.Analyze(ctx, data)
}

// TriageRequest loads a stored request, runs the analysis and writes the
// summary and priority score back onto the request.
func (s *Service) TriageRequest(ctx context.Context, requestID uuid.UUID) (*Assessment, error) {
	req, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	assessment, err := s.analyzer.Analyze(ctx, toRequestData(req))
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveTriage(ctx, requestID, assessment.TriageSummary, assessment.PriorityScore); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		priority := "normal"
		if assessment.PriorityScore >= 8 {
			priority = "high"
		}
		s.eventBus.Publish(ctx, events.TriageCompleted{
			BaseEvent:      events.NewBaseEvent(),
			RequestID:      requestID,
			Priority:       priority,
			ComplexityRank: assessment.ComplexityScore,
			UrgencyRank:    assessment.UrgencyScore,
		})
	}

	return assessment, nil
}

func toRequestData(req *requestrepo.Request) RequestData {
	answers := make([]Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, Answer{Question: a.Question, Answer: a.Answer})
	}

	return RequestData{
		ID:                 req.ID.String(),
		ProblemCategory:    req.ProblemCategory,
		IsEmergency:        req.IsEmergency,
		Answers:            answers,
		ProblemDescription: derefString(req.ProblemDescription),
		ServiceAddress:     derefString(req.ServiceAddress),
		PreferredTiming:    derefString(req.PreferredTiming),
		PropertyType:       derefString(req.PropertyType),
		AdditionalNotes:    derefString(req.AdditionalNotes),
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
