package narrative

import (
	"strings"

	"github.com/dvloznov/statement-insights/internal/sip"
)

// EventNone is the life event used when nothing is detected.
const EventNone = sip.EventNone

// Taxonomy maps lower-cased model signals onto the life events the SIP
// calculator understands.
var Taxonomy = map[string]string{
	"relocation":      sip.EventJobChange,
	"promotion":       sip.EventJobChange,
	"salary increase": sip.EventJobChange,
	"salary decrease": sip.EventJobChange,
	"jobchange":       sip.EventJobChange,

	"marriage": sip.EventWedding,
	"wedding":  sip.EventWedding,

	"baby":      sip.EventNewBaby,
	"child":     sip.EventNewBaby,
	"maternity": sip.EventNewBaby,
	"newbaby":   sip.EventNewBaby,

	"house":        sip.EventHomePurchase,
	"home":         sip.EventHomePurchase,
	"property":     sip.EventHomePurchase,
	"homepurchase": sip.EventHomePurchase,
}

// ClassifyEvent maps a free-form signal to a canonical life event, or
// EventNone when the signal is unknown.
func ClassifyEvent(signal string) string {
	if ev, ok := Taxonomy[strings.ToLower(strings.TrimSpace(signal))]; ok {
		return ev
	}
	return EventNone
}
