// Package narrative turns aggregation results into natural-language report
// sections by prompting a TextOracle. Oracle failures never escape: every
// section has a fixed fallback.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/statement-insights/internal/analysis"
	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/dvloznov/statement-insights/internal/oracle"
	"github.com/dvloznov/statement-insights/internal/sip"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Timeouts bound each oracle call.
type Timeouts struct {
	Facts     time.Duration
	LifeEvent time.Duration
	Advisory  time.Duration
	Explain   time.Duration
	Chat      time.Duration
}

// DefaultTimeouts returns the per-call limits used in production.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Facts:     30 * time.Second,
		LifeEvent: 30 * time.Second,
		Advisory:  40 * time.Second,
		Explain:   30 * time.Second,
		Chat:      30 * time.Second,
	}
}

// Sampling parameters per section.
const (
	factsTemperature     = 0.1
	factsMaxTokens       = 800
	lifeEventTemperature = 0.2
	lifeEventMaxTokens   = 300
	advisoryTemperature  = 0.25
	advisoryMaxTokens    = 1200
	sipTemperature       = 0.2
	sipMaxTokens         = 150
	chatTemperature      = 0.2
	chatMaxTokens        = 250
)

// ErrEmptyQuestion is returned by AnswerQuestion for a blank question.
var ErrEmptyQuestion = errors.New("narrative: question is empty")

// Orchestrator sequences prompts against one oracle.
type Orchestrator struct {
	oracle   oracle.TextOracle
	timeouts Timeouts
}

func NewOrchestrator(o oracle.TextOracle, t Timeouts) *Orchestrator {
	if o == nil {
		o = oracle.Offline{}
	}
	return &Orchestrator{oracle: o, timeouts: t}
}

// Facts asks for month-wise facts about the summary.
func (o *Orchestrator) Facts(ctx context.Context, summary []analysis.MonthlySummary) Facts {
	log := o.log(ctx, "facts")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("encoding monthly summary failed, using fallback")
		return FallbackFacts()
	}

	raw, err := o.complete(ctx, o.timeouts.Facts, oracle.Prompt(
		factsSystem, fmt.Sprintf(factsPromptTemplate, data), factsTemperature, factsMaxTokens))
	if err != nil {
		log.Warn().Err(err).Msg("oracle call failed, using fallback")
		return FallbackFacts()
	}

	var f struct {
		Months          *[]FactMonth `json:"months"`
		OverallPatterns *[]string    `json:"overall_patterns"`
		RiskFlags       *[]string    `json:"risk_flags"`
	}
	if err := oracle.DecodeObject(raw, &f); err != nil {
		log.Warn().Err(err).Msg("unparseable response, using fallback")
		return FallbackFacts()
	}
	if f.Months == nil {
		log.Warn().Msg("response missing months, using fallback")
		return FallbackFacts()
	}

	facts := Facts{Months: *f.Months, OverallPatterns: []string{}, RiskFlags: []string{}}
	if f.OverallPatterns != nil {
		facts.OverallPatterns = *f.OverallPatterns
	}
	if f.RiskFlags != nil {
		facts.RiskFlags = *f.RiskFlags
	}
	log.Info().Int("months", len(facts.Months)).Msg("facts generated")
	return facts
}

// LifeEvent asks the oracle for the most likely life event behind the
// analysis text and maps it through Taxonomy.
func (o *Orchestrator) LifeEvent(ctx context.Context, analysisText string) LifeEvent {
	log := o.log(ctx, "life_event")

	raw, err := o.complete(ctx, o.timeouts.LifeEvent, oracle.Prompt(
		lifeEventSystem, fmt.Sprintf(lifeEventPromptTemplate, analysisText), lifeEventTemperature, lifeEventMaxTokens))
	if err != nil {
		log.Warn().Err(err).Msg("oracle call failed, using fallback")
		return FallbackLifeEvent()
	}

	var out struct {
		EventName *string `json:"eventName"`
		Reasoning string  `json:"reasoning"`
	}
	if err := oracle.DecodeObject(raw, &out); err != nil || out.EventName == nil {
		log.Warn().Err(err).Msg("unstructured response, using fallback")
		return FallbackLifeEvent()
	}

	signal := strings.ToLower(strings.TrimSpace(*out.EventName))
	ev := LifeEvent{
		Event:      ClassifyEvent(signal),
		Confidence: LifeEventConfidence,
		Reason:     out.Reasoning,
		Signal:     signal,
	}
	log.Info().Str("event", ev.Event).Str("signal", signal).Msg("life event detected")
	return ev
}

// Advisory asks for a month-by-month narrative of facts.
func (o *Orchestrator) Advisory(ctx context.Context, facts Facts) Advisory {
	log := o.log(ctx, "advisory")

	data, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("encoding facts failed, using fallback")
		return FallbackAdvisory()
	}

	raw, err := o.complete(ctx, o.timeouts.Advisory, oracle.Prompt(
		advisorySystem, fmt.Sprintf(advisoryPromptTemplate, data), advisoryTemperature, advisoryMaxTokens))
	if err != nil {
		log.Warn().Err(err).Msg("oracle call failed, using fallback")
		return FallbackAdvisory()
	}

	var a struct {
		Summary     *string   `json:"summary"`
		Sections    []Section `json:"sections"`
		FinalAdvice []string  `json:"final_advice"`
	}
	if err := oracle.DecodeObject(raw, &a); err != nil || a.Summary == nil {
		log.Warn().Err(err).Msg("unparseable response, using fallback")
		return FallbackAdvisory()
	}

	adv := Advisory{Summary: *a.Summary, Sections: a.Sections, FinalAdvice: a.FinalAdvice}
	if adv.Sections == nil {
		adv.Sections = []Section{}
	}
	if adv.FinalAdvice == nil {
		adv.FinalAdvice = []string{}
	}
	log.Info().Int("sections", len(adv.Sections)).Msg("advisory generated")
	return adv
}

// ExplainSip returns a short rationale for the plan, or a fixed sentence
// when the oracle cannot help.
func (o *Orchestrator) ExplainSip(ctx context.Context, in SipInputs) string {
	log := o.log(ctx, "sip_explanation")

	prompt := fmt.Sprintf(sipPromptTemplate,
		formatAmount(in.Income), formatAmount(in.Expenses), formatAmount(in.Risk), in.Event, in.Amount)

	raw, err := o.complete(ctx, o.timeouts.Explain, oracle.Prompt(sipSystem, prompt, sipTemperature, sipMaxTokens))
	if err != nil {
		log.Warn().Err(err).Msg("oracle call failed, using fallback")
		return sip.FallbackExplanation
	}
	return strings.TrimSpace(raw)
}

// AnswerQuestion answers a question about a finished report. Unlike the
// report sections there is nothing to fall back to, so oracle errors are
// returned.
func (o *Orchestrator) AnswerQuestion(ctx context.Context, report any, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("AnswerQuestion: encoding report: %w", err)
	}

	raw, err := o.complete(ctx, o.timeouts.Chat, oracle.Prompt(
		chatSystem, fmt.Sprintf(chatPromptTemplate, data, question), chatTemperature, chatMaxTokens))
	if err != nil {
		return "", fmt.Errorf("AnswerQuestion: %w", err)
	}
	return strings.TrimSpace(raw), nil
}

func (o *Orchestrator) complete(ctx context.Context, timeout time.Duration, req oracle.Request) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return o.oracle.Complete(ctx, req)
}

func (o *Orchestrator) log(ctx context.Context, section string) zerolog.Logger {
	l := logger.WithComponent(logger.FromContext(ctx), "narrative")
	return l.With().Str("section", section).Logger()
}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).String()
}
