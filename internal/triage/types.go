package triage

// Answer mirrors one stored intake question/answer pair.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// RequestData is the request record the triage endpoint receives. Field names
// follow the persistence columns so a raw request row can be posted as-is.
type RequestData struct {
	ID                 string   `json:"id"`
	ProblemCategory    string   `json:"problem_category"`
	IsEmergency        bool     `json:"is_emergency"`
	Answers            []Answer `json:"answers"`
	ProblemDescription string   `json:"problem_description"`
	ServiceAddress     string   `json:"service_address"`
	PreferredTiming    string   `json:"preferred_timing"`
	PropertyType       string   `json:"property_type"`
	AdditionalNotes    string   `json:"additional_notes"`
}

// RequiredExpertise describes the crew the job needs.
type RequiredExpertise struct {
	SkillLevel      string   `json:"skill_level"`
	Specializations []string `json:"specializations,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
}

// Assessment is the triage result returned to staff. It is transient; callers
// choose whether to attach it to the request.
type Assessment struct {
	TriageSummary            string            `json:"triage_summary"`
	PriorityScore            int               `json:"priority_score"`
	PriorityExplanation      string            `json:"priority_explanation,omitempty"`
	ProfitabilityScore       int               `json:"profitability_score,omitempty"`
	ProfitabilityExplanation string            `json:"profitability_explanation,omitempty"`
	RequiredExpertise        RequiredExpertise `json:"required_expertise"`
	ComplexityScore          int               `json:"complexity_score"`
	UrgencyScore             int               `json:"urgency_score"`
}
