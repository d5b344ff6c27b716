package correlate

// Outcome is the result of evaluating one access event.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeNotIndexed
	OutcomeNoAttribution
	OutcomeAlerted
	OutcomeQueryFailed
	OutcomeNotifyFailed
)

var outcomeNames = [...]string{
	OutcomeIgnored:       "ignored",
	OutcomeNotIndexed:    "not_indexed",
	OutcomeNoAttribution: "no_attribution",
	OutcomeAlerted:       "alerted",
	OutcomeQueryFailed:   "query_failed",
	OutcomeNotifyFailed:  "notify_failed",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}
