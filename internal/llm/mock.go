package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MockProvider returns deterministic canned coaching text with a valid
// structured block, for offline use and tests.
type MockProvider struct {
	// Delay simulates model latency. Zero means respond immediately.
	Delay time.Duration
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	return &CompletionResponse{
		Text:  MockReply(req.Message),
		Model: "mock",
		Mock:  true,
	}, nil
}

const mockEchoChars = 100

// MockReply builds the canned reply for message. The first characters of
// the message are echoed into extracted_facts.additionalNotes, with
// backticks escaped so the echo cannot close the fenced block.
func MockReply(message string) string {
	r := []rune(message)
	if len(r) > mockEchoChars {
		r = r[:mockEchoChars]
	}
	echo, _ := json.Marshal(string(r))
	return fmt.Sprintf(mockTemplate, strings.ReplaceAll(string(echo), "`", `\u0060`))
}

const mockTemplate = "Thank you for sharing that. I want to help you understand the NY Family Court Order of Protection process.\n\n" +
	`**What I Understand So Far:**
Based on what you've told me, it sounds like you may be dealing with a family offense situation in New York. An Order of Protection (OP) under Article 8 of the Family Court Act can provide legal protections such as stay-away orders, no-contact orders, and exclusive occupancy of a shared residence.

**Key Questions to Help Me Understand Your Situation:**
1. What is your relationship with the person you need protection from? (This is important because Family Court OPs only cover specific relationships under FCA §812.)
2. When did the most recent incident occur? Please include the date, approximate time, and location.
3. Were there any physical injuries, threats of violence, or use of weapons?
4. Are there children who witnessed or were affected by any incidents?
5. Do you have any evidence such as text messages, photos of injuries, police reports, or medical records?
6. Are you currently safe, or do you have concerns about your immediate safety?

**What You Should Know:**
- In NY Family Court, you can file for an Order of Protection if the respondent is a spouse, former spouse, intimate partner, family member, or someone you share a child with.
- A Temporary Order of Protection (TOP) can often be issued the same day you file your petition.
- You do NOT need a lawyer to file, though legal aid organizations can help.

This is educational information only, not legal advice.
Jurisdiction: NY Family Court — procedures may vary by county.

` + "```json" + `
{
  "next_questions": [
    "What is your relationship with the person you need protection from?",
    "When and where did the most recent incident occur?",
    "Were there injuries, threats, or weapons involved?",
    "Are children involved or did they witness any incidents?",
    "What evidence do you have (texts, photos, police reports, medical records)?",
    "Are you currently safe?"
  ],
  "extracted_facts": {
    "additionalNotes": %s
  },
  "missing_fields": [
    "relationship",
    "mostRecentIncidentDate",
    "respondentName",
    "livingSituation",
    "safety.safeNow",
    "children.childrenInvolved",
    "evidence"
  ],
  "progress_percent": 10,
  "safety_flags": [
    { "severity": "info", "message": "This is educational information only, not legal advice.", "category": "legal_limit" },
    { "severity": "info", "message": "NY Family Court — procedures may vary by county.", "category": "jurisdiction" }
  ],
  "timeline_events": [],
  "suggested_artifacts": []
}
` + "```"
