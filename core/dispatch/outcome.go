package dispatch

import (
	"strings"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/game"
)

// rejection texts the game renders when a unit cannot be crewed. Matching is
// substring-based on the lowercased alert text.
var personnelPhrases = []string{
	"nicht genügend personal",
	"nicht genug personal",
	"fehlendes personal",
	"ohne personal",
	"nicht die richtige ausbildung",
	"keine passende ausbildung",
}

// classifyOutcome maps a post-submission page indicator to an outcome kind.
// The game renders no indicator at all for most accepted submissions, so the
// absence of one counts as success.
func classifyOutcome(ind game.OutcomeIndicator) model.OutcomeKind {
	if ind.Kind != game.IndicatorFailure {
		return model.OutcomeConfirmed
	}
	lower := strings.ToLower(ind.Text)
	for _, phrase := range personnelPhrases {
		if strings.Contains(lower, phrase) {
			return model.OutcomePersonnelShortage
		}
	}
	return model.OutcomeFailed
}
