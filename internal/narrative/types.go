package narrative

// FactMonth is the model's factual restatement of one month.
type FactMonth struct {
	Month       string  `json:"month"`
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	Savings     float64 `json:"savings"`
	Observation string  `json:"observation"`
}

// Facts is the first narrative stage: month-wise facts, no advice.
type Facts struct {
	Months          []FactMonth `json:"months"`
	OverallPatterns []string    `json:"overall_patterns"`
	RiskFlags       []string    `json:"risk_flags"`
}

// Section is one titled block of the advisory narrative.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Advisory is the human-readable report built from Facts.
type Advisory struct {
	Summary     string    `json:"summary"`
	Sections    []Section `json:"sections"`
	FinalAdvice []string  `json:"final_advice"`
}

// LifeEvent is the detected life event after taxonomy mapping.
type LifeEvent struct {
	Event      string `json:"event"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason"`

	// Signal is the raw label the model produced, lower-cased.
	Signal string `json:"detected_signal,omitempty"`
}

// SipInputs are the values the SIP explanation is written about.
type SipInputs struct {
	Income   float64
	Expenses float64
	Risk     float64
	Event    string
	Amount   int64
}

// Fallback texts.
const (
	FactsFallbackFlag       = "AI output could not be parsed reliably"
	AdvisoryFallbackSummary = "AI explanation unavailable due to complex data patterns."
	LifeEventFallbackReason = "Model did not return structured JSON"
	LifeEventConfidence     = "AI-derived"
)

// FallbackFacts is returned whenever the facts stage cannot produce a result.
func FallbackFacts() Facts {
	return Facts{
		Months:          []FactMonth{},
		OverallPatterns: []string{},
		RiskFlags:       []string{FactsFallbackFlag},
	}
}

// FallbackAdvisory is returned whenever the advisory stage cannot produce a result.
func FallbackAdvisory() Advisory {
	return Advisory{
		Summary:     AdvisoryFallbackSummary,
		Sections:    []Section{},
		FinalAdvice: []string{},
	}
}

// FallbackLifeEvent is returned whenever life-event detection fails.
func FallbackLifeEvent() LifeEvent {
	return LifeEvent{
		Event:      EventNone,
		Confidence: LifeEventConfidence,
		Reason:     LifeEventFallbackReason,
	}
}
