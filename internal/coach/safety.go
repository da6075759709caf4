package coach

import (
	"github.com/elilinden/Support-bot/internal/response"
)

// SafetyInterruptMessage replaces the model reply when a message describes
// immediate danger.
const SafetyInterruptMessage = `**If you are in immediate danger, please:**

1. **Call 911** immediately
2. **NY Domestic Violence Hotline:** 1-800-942-6906 (24/7)
3. **National DV Hotline:** 1-800-799-7233
4. **Text "START" to 88788** for text-based help

Your safety is the top priority. This tool cannot help in an emergency — please contact emergency services right away.

Once you are safe, I'm here to help you understand the Order of Protection process.

---
*This is educational information only, not legal advice.*`

const dangerFlagMessage = "Possible immediate danger detected. Emergency resources provided."

// interruptProgress is reported when an interrupted conversation already
// has history, so the caller's progress does not drop to zero.
const interruptProgress = 5

func safetyInterrupt(hasHistory bool) *Result {
	progress := 0
	if hasHistory {
		progress = interruptProgress
	}
	return &Result{
		AssistantMessage: SafetyInterruptMessage,
		NextQuestions:    []string{},
		MissingFields:    []string{},
		ProgressPercent:  progress,
		SafetyFlags: []response.Flag{{
			Severity: response.SeverityCritical,
			Message:  dangerFlagMessage,
			Category: response.CategorySafety,
		}},
		TimelineEvents:     []response.Event{},
		SuggestedArtifacts: []response.Artifact{},
		SafetyInterrupt:    true,
		Structured:         true,
	}
}
