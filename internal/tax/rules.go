package tax

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dvloznov/statement-insights/internal/domain"
)

// Slab is one marginal bracket. Max of zero means no upper bound.
type Slab struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Rate float64 `json:"rate"`
}

// Regime is a slab table plus the cess multiplier applied to its total.
type Regime struct {
	Name  string  `json:"name"`
	Slabs []Slab  `json:"slabs"`
	Cess  float64 `json:"cess"`
}

// Tax computes the regime's tax on taxable income, cess included, rounded
// to 2 decimals. Non-positive income is never taxed.
func (r Regime) Tax(taxable float64) float64 {
	if taxable <= 0 {
		return 0
	}
	var total float64
	for _, s := range r.Slabs {
		if taxable <= s.Min {
			break
		}
		upper := taxable
		if s.Max > 0 && upper > s.Max {
			upper = s.Max
		}
		total += (upper - s.Min) * s.Rate
	}
	return domain.Round2(total * r.Cess)
}

// Rules are the statutory values the calculator is parameterized with.
type Rules struct {
	OldRegime Regime `json:"old_regime"`
	NewRegime Regime `json:"new_regime"`

	StandardDeduction float64 `json:"standard_deduction"`
	Limit80C          float64 `json:"limit_80c"`
	Limit80D          float64 `json:"limit_80d"`

	// HomeLoanInterestShare is the portion of home-loan debits counted as
	// deductible interest.
	HomeLoanInterestShare float64 `json:"home_loan_interest_share"`

	// HighGapThreshold is the remaining 80C headroom above which the gap is
	// considered high.
	HighGapThreshold float64 `json:"high_gap_threshold"`

	Keywords KeywordSet `json:"keywords"`
}

// DefaultRules returns Indian rules for FY 2025-26.
func DefaultRules() Rules {
	const cess = 1.04
	return Rules{
		OldRegime: Regime{
			Name: "old",
			Slabs: []Slab{
				{Min: 0, Max: 250000, Rate: 0},
				{Min: 250000, Max: 500000, Rate: 0.05},
				{Min: 500000, Max: 1000000, Rate: 0.20},
				{Min: 1000000, Max: 0, Rate: 0.30},
			},
			Cess: cess,
		},
		NewRegime: Regime{
			Name: "new_2025_26",
			Slabs: []Slab{
				{Min: 0, Max: 300000, Rate: 0},
				{Min: 300000, Max: 600000, Rate: 0.05},
				{Min: 600000, Max: 900000, Rate: 0.10},
				{Min: 900000, Max: 1200000, Rate: 0.15},
				{Min: 1200000, Max: 1500000, Rate: 0.20},
				{Min: 1500000, Max: 0, Rate: 0.30},
			},
			Cess: cess,
		},
		StandardDeduction:     50000,
		Limit80C:              150000,
		Limit80D:              25000,
		HomeLoanInterestShare: 0.7,
		HighGapThreshold:      100000,
		Keywords:              DefaultKeywords(),
	}
}

// rulesFile is the on-disk form of a Rules override; nil fields keep defaults.
type rulesFile struct {
	OldRegime             *Regime          `json:"old_regime"`
	NewRegime             *Regime          `json:"new_regime"`
	StandardDeduction     *float64         `json:"standard_deduction"`
	Limit80C              *float64         `json:"limit_80c"`
	Limit80D              *float64         `json:"limit_80d"`
	HomeLoanInterestShare *float64         `json:"home_loan_interest_share"`
	HighGapThreshold      *float64         `json:"high_gap_threshold"`
	Keywords              map[Tag][]string `json:"keywords"`
}

// LoadRules reads a JSON document from path and overlays it on DefaultRules.
// A regime present in the document replaces the default regime entirely;
// keyword lists replace the default list of the same tag.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("LoadRules: reading %s: %w", path, err)
	}

	var f rulesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return rules, fmt.Errorf("LoadRules: decoding %s: %w", path, err)
	}

	out := DefaultRules()
	if f.OldRegime != nil {
		out.OldRegime = *f.OldRegime
	}
	if f.NewRegime != nil {
		out.NewRegime = *f.NewRegime
	}
	setFloat(&out.StandardDeduction, f.StandardDeduction)
	setFloat(&out.Limit80C, f.Limit80C)
	setFloat(&out.Limit80D, f.Limit80D)
	setFloat(&out.HomeLoanInterestShare, f.HomeLoanInterestShare)
	setFloat(&out.HighGapThreshold, f.HighGapThreshold)
	for tag, words := range f.Keywords {
		out.Keywords[tag] = words
	}

	if err := out.validate(); err != nil {
		return rules, fmt.Errorf("LoadRules: %s: %w", path, err)
	}
	return out, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func (r Rules) validate() error {
	for _, reg := range []Regime{r.OldRegime, r.NewRegime} {
		if len(reg.Slabs) == 0 {
			return fmt.Errorf("regime %q has no slabs", reg.Name)
		}
		for i := 1; i < len(reg.Slabs); i++ {
			if reg.Slabs[i].Min < reg.Slabs[i-1].Min {
				return fmt.Errorf("regime %q: slabs out of order at %d", reg.Name, i)
			}
		}
		if reg.Cess < 1 {
			return fmt.Errorf("regime %q: cess multiplier %v below 1", reg.Name, reg.Cess)
		}
	}
	return nil
}
