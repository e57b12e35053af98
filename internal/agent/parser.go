package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"arthastra/internal/pkg/apperrors"
)

// Models wrap their JSON in prose or markdown fences more often than not.
// The extraction regex stays behind ParseDecision so the whole approach can
// be swapped for a structured-output API later.
var jsonBlock = regexp.MustCompile(`(?s)\{.*\}`)

// ParseDecision pulls the first JSON object out of raw model text and decodes
// it into a routing decision. Returns ErrMalformedModelOutput when no object
// is found, the JSON is invalid, or the agent name is not one of the known
// four.
func ParseDecision(raw string) (Decision, error) {
	block := jsonBlock.FindString(raw)
	if block == "" {
		return Decision{}, fmt.Errorf("%w: no JSON object in model response", apperrors.ErrMalformedModelOutput)
	}

	var d Decision
	if err := json.Unmarshal([]byte(block), &d); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", apperrors.ErrMalformedModelOutput, err)
	}

	d.SelectedAgent = Name(strings.ToUpper(strings.TrimSpace(string(d.SelectedAgent))))
	switch d.SelectedAgent {
	case Onboarding, LoanOfficer, Recovery, General:
	default:
		return Decision{}, fmt.Errorf("%w: unknown agent %q", apperrors.ErrMalformedModelOutput, d.SelectedAgent)
	}
	return d, nil
}
