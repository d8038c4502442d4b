package triage

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
	"google.golang.org/genai"

	"github.com/google/uuid"

	"plumbing_portal_backend/platform/ai/openai"
	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/config"
	"plumbing_portal_backend/platform/logger"
)

// Agent runs the LLM triage assessment through the ADK runner. The agent is
// forced through a single tool call so the assessment always arrives as
// structured data instead of free text.
type Agent struct {
	runner         *runner.Runner
	sessionService session.Service
	appName        string
	collector      *assessmentCollector
	log            *logger.Logger
}

// assessmentInput is the tool-call payload the model fills in.
type assessmentInput struct {
	RequestID                string   `json:"request_id"`
	TriageSummary            string   `json:"triage_summary"`
	PriorityScore            int      `json:"priority_score"`
	PriorityExplanation      string   `json:"priority_explanation"`
	ProfitabilityScore       int      `json:"profitability_score"`
	ProfitabilityExplanation string   `json:"profitability_explanation"`
	SkillLevel               string   `json:"skill_level"`
	Specializations          []string `json:"specializations"`
	Certifications           []string `json:"certifications"`
}

type assessmentOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// assessmentCollector holds tool-call results until the runner finishes.
// Keyed by request id so concurrent analyses stay independent.
type assessmentCollector struct {
	mu        sync.Mutex
	byRequest map[string]*Assessment
}

func newAssessmentCollector() *assessmentCollector {
	return &assessmentCollector{byRequest: make(map[string]*Assessment)}
}

func (c *assessmentCollector) put(requestID string, a *Assessment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byRequest[requestID] = a
}

func (c *assessmentCollector) take(requestID string) (*Assessment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.byRequest[requestID]
	delete(c.byRequest, requestID)
	return a, ok
}

// NewAgent builds the triage agent against an OpenAI-compatible model.
func NewAgent(cfg config.CompletionConfig, log *logger.Logger) (*Agent, error) {
	model := openai.NewModel(openai.ModelConfig{
		APIKey:  cfg.GetOpenAIAPIKey(),
		BaseURL: cfg.GetOpenAIBaseURL(),
		Model:   cfg.GetOpenAIModel(),
	})

	collector := newAssessmentCollector()

	assessTool, err := functiontool.New(functiontool.Config{
		Name:        "provide_triage_assessment",
		Description: "Provide a structured triage assessment for a plumbing service request. Call this ONCE with the complete assessment, echoing the request_id from the request details.",
	}, func(ctx tool.Context, input assessmentInput) (assessmentOutput, error) {
		if input.TriageSummary == "" {
			return assessmentOutput{Success: false, Message: "triage_summary is required"}, fmt.Errorf("triage_summary is required")
		}

		collector.put(input.RequestID, &Assessment{
			TriageSummary:            input.TriageSummary,
			PriorityScore:            clampScore(input.PriorityScore),
			PriorityExplanation:      input.PriorityExplanation,
			ProfitabilityScore:       clampScore(input.ProfitabilityScore),
			ProfitabilityExplanation: input.ProfitabilityExplanation,
			RequiredExpertise: RequiredExpertise{
				SkillLevel:      input.SkillLevel,
				Specializations: input.Specializations,
				Certifications:  input.Certifications,
			},
		})

		return assessmentOutput{Success: true, Message: "assessment recorded"}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create assessment tool: %w", err)
	}

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "TriageAgent",
		Model:       model,
		Description: "Plumbing dispatch coordinator that triages incoming service requests by urgency, complexity and job value.",
		Instruction: agentInstruction,
		Tools:       []tool.Tool{assessTool},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create triage agent: %w", err)
	}

	sessionService := session.InMemoryService()

	r, err := runner.New(runner.Config{
		AppName:        "triage_agent",
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create triage runner: %w", err)
	}

	return &Agent{
		runner:         r,
		sessionService: sessionService,
		appName:        "triage_agent",
		collector:      collector,
		log:            log,
	}, nil
}

// Analyze runs the triage assessment for one request: deterministic scoring
// first, then a single agent turn that must end in the assessment tool call.
func (a *Agent) Analyze(ctx context.Context, data RequestData) (*Assessment, error) {
	complexityScore := JobComplexity(data.ProblemCategory, data.AdditionalNotes)
	urgencyScore := CustomerUrgency(data.IsEmergency, data.PreferredTiming, data.ProblemDescription)

	if data.ID == "" {
		data.ID = uuid.New().String()
	}

	prompt := buildAnalysisPrompt(data, complexityScore, urgencyScore)
	userID := "triage-" + data.ID
	sessionID := uuid.New().String()

	if _, err := a.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   a.appName,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create triage session", err)
	}
	defer func() {
		deleteReq := &session.DeleteRequest{
			AppName:   a.appName,
			UserID:    userID,
			SessionID: sessionID,
		}
		if err := a.sessionService.Delete(context.WithoutCancel(ctx), deleteReq); err != nil {
			a.log.Warn("failed to delete triage session", "session", sessionID, "error", err)
		}
	}()

	userMessage := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
		},
	}

	runConfig := agent.RunConfig{
		StreamingMode: agent.StreamingModeNone,
	}

	for _, err := range a.runner.Run(ctx, userID, sessionID, userMessage, runConfig) {
		if err != nil {
			a.log.UpstreamError("completion", "triage_analysis", err)
			return nil, apperr.Wrap(apperr.KindUpstream, err.Error(), err).WithOp("triage.Analyze")
		}
	}

	assessment, ok := a.collector.take(data.ID)
	if !ok {
		return nil, apperr.Upstream("agent did not provide a triage assessment")
	}

	assessment.ComplexityScore = complexityScore
	assessment.UrgencyScore = urgencyScore

	return assessment, nil
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
