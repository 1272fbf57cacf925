package domain

import "fmt"

// Phase identifies one stage of the onboarding pipeline. Every phase shares
// the same batch-generation/approval pattern; only prompts differ.
type Phase string

const (
	PhaseCategorization Phase = "categorization"
	PhaseLabeling       Phase = "labeling"
	PhaseKeywords       Phase = "keywords"
	PhasePeopleAlsoAsk  Phase = "paa"
	PhaseBrandVoice     Phase = "brand_voice"
	PhaseComments       Phase = "comments"
)

// Phases lists all known phases in pipeline order.
var Phases = []Phase{
	PhaseCategorization,
	PhaseLabeling,
	PhaseKeywords,
	PhasePeopleAlsoAsk,
	PhaseBrandVoice,
	PhaseComments,
}

// ParsePhase validates a phase string from the URL path.
// Parameters:
//   - s: raw phase segment.
// Returns:
//   - Phase: parsed phase.
//   - error: non-nil if the phase is unknown.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	for _, known := range Phases {
		if p == known {
			return p, nil
		}
	}
	return "", &ValidationError{Field: "phase", Message: fmt.Sprintf("unknown phase %q", s)}
}
