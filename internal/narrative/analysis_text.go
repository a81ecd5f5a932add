package narrative

import (
	"encoding/json"
	"strings"

	"github.com/dvloznov/statement-insights/internal/analysis"
)

// BuildAnalysisText renders the part of an analysis result the life-event
// prompt reasons over.
func BuildAnalysisText(res *analysis.Result) string {
	if res == nil {
		return ""
	}

	var b strings.Builder
	section := func(title string, v any) {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			data = []byte("null")
		}
		b.WriteString(title)
		b.WriteString(":\n")
		b.Write(data)
		b.WriteString("\n\n")
	}

	summary := res.MonthlySummary
	if summary == nil {
		summary = []analysis.MonthlySummary{}
	}
	section("Monthly Summary", summary)
	section("Behaviour Metrics", res.Behaviour)
	section("SIP Capacity", res.SipCapacity)
	return strings.TrimRight(b.String(), "\n") + "\n"
}
