package sip

import "github.com/shopspring/decimal"

// Frequency of every recommended plan.
const Frequency = "Monthly"

// Risk tags.
const (
	RiskConservative = "Conservative"
	RiskModerate     = "Moderate"
	RiskAggressive   = "Aggressive"
)

// Readiness scores.
const (
	ReadinessLow    = "Low"
	ReadinessMedium = "Medium"
	ReadinessHigh   = "High"
)

// CapRule is the human-readable form of the disposable-income cap.
const CapRule = "Max 30% of disposable income"

// FallbackExplanation is used when no narrative explanation can be produced.
const FallbackExplanation = "SIP recommended based on income, expenses, and selected risk level."

// Readiness describes how prepared the cash flow is for a SIP.
type Readiness struct {
	Score  string `json:"score"`
	Reason string `json:"reason"`
}

// Safety reports whether the plan sits on the cap.
type Safety struct {
	SipCapRule string `json:"sip_cap_rule"`
	Capped     bool   `json:"capped"`
	Reason     string `json:"reason"`
}

// Analysis explains a Plan in terms of the inputs that produced it.
type Analysis struct {
	Amount      int64     `json:"amount"`
	Frequency   string    `json:"frequency"`
	RiskTag     string    `json:"risk_tag"`
	Readiness   Readiness `json:"readiness"`
	Safety      Safety    `json:"safety"`
	Explanation string    `json:"explanation,omitempty"`
}

// Analyze builds the explainability view of plan.
func Analyze(plan Plan, income, expenses, risk float64) Analysis {
	disposable := disposableIncome(income, expenses)
	positive := disposable.IsPositive()

	a := Analysis{
		Amount:    plan.Amount,
		Frequency: Frequency,
		RiskTag:   riskTag(risk),
		Safety:    Safety{SipCapRule: CapRule, Capped: true},
	}

	switch {
	case !positive:
		a.Readiness = Readiness{Score: ReadinessLow, Reason: "Income volatility and multiple months of negative savings"}
		a.Safety.Reason = "Spending exceeds income in multiple months"
	default:
		score := ReadinessHigh
		if disposable.LessThan(decimal.NewFromFloat(income).Mul(decimal.RequireFromString("0.2"))) {
			score = ReadinessMedium
		}
		a.Readiness = Readiness{Score: score, Reason: "Some surplus available but cash flow is inconsistent"}
		a.Safety.Capped = plan.Amount >= disposable.Mul(capShare).IntPart()
		a.Safety.Reason = "SIP kept within safe disposable income limit"
	}
	return a
}

func riskTag(risk float64) string {
	switch {
	case risk <= 40:
		return RiskConservative
	case risk <= 70:
		return RiskModerate
	default:
		return RiskAggressive
	}
}
