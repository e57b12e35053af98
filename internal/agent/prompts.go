package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNoCompleter = errors.New("no completion client configured")

const routingTemplate = `You are the routing layer of a consumer loan assistant.
Classify the user's message into exactly one agent:
- ONBOARDING: greetings, getting started, questions about the platform
- LOAN_OFFICER: loan eligibility, EMI, interest rates, offers, tenure
- RECOVERY: rejected applications, credit repair, improving approval chances
- GENERAL: anything else

Recent conversation:
%s
User message: %s

Respond with only a JSON object: {"selectedAgent": "...", "reason": "...", "refinedInput": "..."}`

func routingPrompt(input string, history []Turn) string {
	var b strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Text)
	}
	if b.Len() == 0 {
		b.WriteString("(none)\n")
	}
	return fmt.Sprintf(routingTemplate, b.String(), input)
}

const loanOfficerTemplate = `You are a seasoned loan officer at an Indian consumer lender.
The applicant asked: %s

Their eligibility report:
%s

Top offers available to them:
%s

Explain their position in plain language: whether they qualify, which offer
suits them best and why, and what the EMI means for their monthly budget.
Use rupee figures from the data. Keep it under 200 words, no markdown tables.`

const recoveryTemplate = `You are a credit recovery advisor.
The applicant asked: %s

Their current standing and a projection if they act on an improvement plan:
%s

Walk them through the plan: what to fix first, how much their eligible amount
grows, and a realistic timeline. Be encouraging but concrete. Under 200 words.`

const orchestratorTemplate = `You are a helpful assistant on a consumer loan platform.
The user said: %s

Context about their financial profile:
%s

Answer helpfully and briefly. If the question is outside lending, say what you
can help with instead.`

const onboardingTemplate = `You are the welcome guide of a consumer loan platform.
The user said: %s

Context about their financial profile so far:
%s

Greet them, explain in two or three sentences what the platform does
(eligibility checks, offer comparison, EMI planning), and suggest one concrete
next step based on their profile.`

// mustJSON renders tool output for prompt interpolation. Marshalling these
// value types cannot fail; the fallback keeps the prompt usable if that ever
// changes.
func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
