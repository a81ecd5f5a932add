package analysis

import "github.com/dvloznov/statement-insights/internal/domain"

// Observation describes the sign of a month's savings.
type Observation string

const (
	IncomeExceeded   Observation = "Income exceeded expenses"
	ExpensesExceeded Observation = "Expenses exceeded income"
)

// Confidence of the monthly summary.
type Confidence string

const (
	ConfidenceLow  Confidence = "low"
	ConfidenceHigh Confidence = "high"
)

// Stability of salary income between the two most recent salary months.
type Stability string

const (
	StabilityHigh   Stability = "high"
	StabilityStable Stability = "stable"
)

// Volatility of individual debit amounts.
type Volatility string

const (
	VolatilityHigh   Volatility = "high"
	VolatilityMedium Volatility = "medium"
)

// MonthlySummary is the income/expense position of one qualifying month.
type MonthlySummary struct {
	Month       domain.MonthKey `json:"month"`
	Income      float64         `json:"income"`
	Expenses    float64         `json:"expenses"`
	Savings     float64         `json:"savings"`
	Observation Observation     `json:"observation"`
}

// CategoryAmount is one line of a month's spending breakdown.
type CategoryAmount struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Amount      float64 `json:"amount"`
}

// Breakdown maps each month to its spending lines, largest first.
type Breakdown map[domain.MonthKey][]CategoryAmount

// RecurringEntry is one month of a recurring transaction series.
// PrevCount and PctChange are nil for the first month of a series.
type RecurringEntry struct {
	Detail    string          `json:"detail"`
	Month     domain.MonthKey `json:"month"`
	Count     int             `json:"count"`
	PrevCount *int            `json:"prev_count"`
	PctChange *float64        `json:"pct_change"`
}

// LargeTransactionFlag reports how concentrated a (month, category,
// subcategory) group is in its single largest transaction.
type LargeTransactionFlag struct {
	Month        domain.MonthKey `json:"month"`
	Category     string          `json:"category"`
	Subcategory  string          `json:"subcategory"`
	LargestRatio float64         `json:"largest_ratio"`
	Flagged      bool            `json:"has_large_single_txn"`
}

// BehaviourMetrics summarizes salary and spending behaviour.
type BehaviourMetrics struct {
	SalaryChangePct   *float64   `json:"salary_change_pct"`
	IncomeStability   Stability  `json:"income_stability"`
	ExpenseVolatility Volatility `json:"expense_volatility"`
}

// SipCapacity is the investable share of average monthly savings.
type SipCapacity struct {
	SafeMonthlySip int64 `json:"safe_monthly_sip"`
	MaxPossibleSip int64 `json:"max_possible_sip"`
}

// MonthlyOverview holds whole-month movement totals.
type MonthlyOverview struct {
	Month          domain.MonthKey `json:"month"`
	ClosingBalance float64         `json:"closing_balance"`
	Count          int             `json:"count"`
	GrossMovement  float64         `json:"gross_movement"`
	Inflow         float64         `json:"inflow"`
	Outflow        float64         `json:"outflow"`
}

// CategoryAggregate holds movement totals for one (month, category, subcategory).
type CategoryAggregate struct {
	Month       domain.MonthKey `json:"month"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Count       int             `json:"count"`
	Amount      float64         `json:"amount"`
	Inflow      float64         `json:"inflow"`
	Outflow     float64         `json:"outflow"`
}

// CashFlow is the statement-period income and spending used to size a SIP.
type CashFlow struct {
	MonthlyIncome   float64 `json:"monthly_income"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
}

// Result bundles every aggregate computed from one statement.
type Result struct {
	MonthlySummary     []MonthlySummary       `json:"monthly_summary"`
	SummaryConfidence  Confidence             `json:"summary_confidence"`
	CategoryBreakdown  Breakdown              `json:"category_breakdown"`
	Recurring          []RecurringEntry       `json:"recurring"`
	LargeTransactions  []LargeTransactionFlag `json:"large_transactions"`
	Behaviour          BehaviourMetrics       `json:"behaviour_metrics"`
	SipCapacity        SipCapacity            `json:"sip_capacity"`
	MonthlyOverview    []MonthlyOverview      `json:"monthly_overview"`
	CategoryAggregates []CategoryAggregate    `json:"category_aggregates"`
	CashFlow           CashFlow               `json:"cash_flow"`
}
