package relay

// Outcome is what a router operation ended with. Failures below the router
// are logged and folded into an Outcome, they never escape as errors.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeRelayed
	OutcomeBanned
	OutcomeNoCategory
	OutcomeNotReply
	OutcomeUnmapped
	OutcomeForbidden
	OutcomePendingConsumed
	OutcomeAwaitingInput
	OutcomeCategorySet
	OutcomeSessionActive
	OutcomeWelcomed
	OutcomeUnbanned
	OutcomeBannerSet
	OutcomeBannerCleared
	OutcomeInvalid
	OutcomeStats
	OutcomeEnded
	OutcomeNothingToEnd
	OutcomeFailed
)

var outcomeNames = map[Outcome]string{
	OutcomeIgnored:         "ignored",
	OutcomeRelayed:         "relayed",
	OutcomeBanned:          "banned",
	OutcomeNoCategory:      "no_category",
	OutcomeNotReply:        "not_reply",
	OutcomeUnmapped:        "unmapped",
	OutcomeForbidden:       "forbidden",
	OutcomePendingConsumed: "pending_consumed",
	OutcomeAwaitingInput:   "awaiting_input",
	OutcomeCategorySet:     "category_set",
	OutcomeSessionActive:   "session_active",
	OutcomeWelcomed:        "welcomed",
	OutcomeUnbanned:        "unbanned",
	OutcomeBannerSet:       "banner_set",
	OutcomeBannerCleared:   "banner_cleared",
	OutcomeInvalid:         "invalid",
	OutcomeStats:           "stats",
	OutcomeEnded:           "ended",
	OutcomeNothingToEnd:    "nothing_to_end",
	OutcomeFailed:          "failed",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}
