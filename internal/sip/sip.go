// Package sip sizes a systematic investment plan from cash flow and risk
// tolerance. Every rule here is deterministic and needs no network access.
package sip

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// MinAmount is the smallest SIP ever recommended, even when it exceeds the
// disposable-income cap.
const MinAmount = 500

// SafetyNote accompanies every plan.
const SafetyNote = "SIP capped at 30% of disposable income"

// DefaultExplanation is the plan rationale when no narrative is available.
const DefaultExplanation = "Based on your current income and expenses, your safe investible surplus is limited. " +
	"To avoid cash-flow stress, the SIP has been kept at a minimum sustainable level. " +
	"As your income stabilizes or surplus increases, this SIP can be safely stepped up."

// Life events that dampen the recommendation.
const (
	EventJobChange    = "jobChange"
	EventWedding      = "wedding"
	EventNewBaby      = "newBaby"
	EventHomePurchase = "homePurchase"
	EventNone         = "none"
)

var (
	capShare       = decimal.RequireFromString("0.3")
	riskFloor      = decimal.RequireFromString("0.4")
	riskSpan       = decimal.RequireFromString("0.6")
	eventDampening = decimal.RequireFromString("0.85")
	equityBase     = decimal.NewFromInt(30)
	hundred        = decimal.NewFromInt(100)
)

// Allocation splits the SIP between equity and debt; the two always sum to 100.
type Allocation struct {
	EquityPct int
	DebtPct   int
}

// MarshalJSON renders percentages as "60%" strings.
func (a Allocation) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"equity": fmt.Sprintf("%d%%", a.EquityPct),
		"debt":   fmt.Sprintf("%d%%", a.DebtPct),
	})
}

// UnmarshalJSON accepts the "60%" form produced by MarshalJSON.
func (a *Allocation) UnmarshalJSON(b []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("Allocation: %w", err)
	}
	if _, err := fmt.Sscanf(raw["equity"], "%d%%", &a.EquityPct); err != nil {
		return fmt.Errorf("Allocation: equity %q: %w", raw["equity"], err)
	}
	if _, err := fmt.Sscanf(raw["debt"], "%d%%", &a.DebtPct); err != nil {
		return fmt.Errorf("Allocation: debt %q: %w", raw["debt"], err)
	}
	return nil
}

// Plan is a recommended monthly SIP.
type Plan struct {
	Amount      int64      `json:"sip_amount"`
	RiskProfile string     `json:"risk_profile"`
	Allocation  Allocation `json:"allocation"`
	SafetyNote  string     `json:"safety_note"`
	Explanation string     `json:"explanation"`

	// MaxSafe is the 30% disposable-income cap, BaseAmount the risk and
	// event adjusted amount before the MinAmount floor.
	MaxSafe    int64 `json:"-"`
	BaseAmount int64 `json:"-"`
}

// Recommend sizes a SIP. Risk is clamped to [0, 100]. The amount never drops
// below MinAmount, so with little or no disposable income it may exceed the
// cap.
func Recommend(income, expenses float64, event string, risk float64) Plan {
	r := clampRisk(risk)

	multiplier := riskFloor.Add(r.Div(hundred).Mul(riskSpan))

	disposable := disposableIncome(income, expenses)
	maxSafe := disposable.Mul(capShare).Floor()
	base := maxSafe.Mul(multiplier).Floor()
	if dampens(event) {
		base = base.Mul(eventDampening).Floor()
	}

	equity := int(equityBase.Add(r.Mul(riskSpan)).Floor().IntPart())

	amount := base.IntPart()
	if amount < MinAmount {
		amount = MinAmount
	}

	return Plan{
		Amount:      amount,
		RiskProfile: r.String() + "%",
		Allocation:  Allocation{EquityPct: equity, DebtPct: 100 - equity},
		SafetyNote:  SafetyNote,
		Explanation: DefaultExplanation,
		MaxSafe:     maxSafe.IntPart(),
		BaseAmount:  base.IntPart(),
	}
}

func clampRisk(risk float64) decimal.Decimal {
	r := decimal.NewFromFloat(risk)
	if r.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if r.GreaterThan(hundred) {
		return hundred
	}
	return r
}

func disposableIncome(income, expenses float64) decimal.Decimal {
	d := decimal.NewFromFloat(income).Sub(decimal.NewFromFloat(expenses))
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func dampens(event string) bool {
	switch event {
	case EventJobChange, EventHomePurchase, EventWedding:
		return true
	}
	return false
}
