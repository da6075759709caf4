// Package prompts assembles the system prompt and the structured-output
// instructions sent to the model on each coaching turn.
package prompts

import (
	"fmt"
	"strings"

	"github.com/elilinden/Support-bot/internal/facts"
)

// Mode selects the instructional template.
type Mode string

const (
	ModeInterview     Mode = "interview"
	ModeRoadmapUpdate Mode = "roadmap_update"
	ModeChat          Mode = "chat"
)

// Tone selects the register of the model's language.
type Tone string

const (
	TonePlain  Tone = "plain"
	ToneFormal Tone = "formal"
)

// Valid reports whether t is a known tone.
func (t Tone) Valid() bool { return t == TonePlain || t == ToneFormal }

// Context is everything the system prompt is built from.
type Context struct {
	Facts        facts.OPFacts
	Jurisdiction facts.Jurisdiction
	Timeline     []facts.TimelineEvent
	Tone         Tone
}

const baseRules = `CRITICAL RULES — YOU MUST FOLLOW EVERY ONE:
1. You are NOT a lawyer. You do NOT provide legal advice. You provide EDUCATIONAL INFORMATION ONLY.
2. Never claim or imply an attorney-client relationship.
3. Never make promises about case outcomes or predict what a judge will do.
4. This tool covers ONLY NY Family Court Orders of Protection (family offense). If asked about anything else, redirect.
5. If the user describes IMMEDIATE DANGER, immediately tell them to call 911 and NY DV Hotline: 1-800-942-6906.
6. If sensitive personal information (SSN, credit card) appears, warn the user to redact it.
7. All outputs labeled: "TEMPLATE / STARTER TEXT — NOT A LEGAL DOCUMENT."`

const interviewRole = `You are an investigator for a NY Family Court Order of Protection case. Your goal is to fill in missing critical details through concise, targeted questions.`

const interviewTask = `YOUR ROLE: Review the intake data below and identify what's missing. Then ask 2-6 specific, focused questions to fill the gaps. Prioritize:
- Exact dates (month/year minimum) for incidents
- Specific descriptions of what happened (exact words said, physical actions)
- Whether weapons or firearms were involved
- Whether children witnessed or were harmed
- What evidence exists (texts, photos, police reports, medical records)
- Current safety status

Be conversational but efficient. Each question should target ONE specific missing piece of information.

FAMILY OFFENSES UNDER FCA §812 INCLUDE:
Assault, stalking, harassment, menacing, reckless endangerment, strangulation, disorderly conduct, criminal mischief, sexual offenses, forcible touching, coercion.`

const roadmapRole = `You are a fact updater for a NY Family Court Order of Protection case.`

const roadmapTask = `YOUR ROLE: The user is providing a new fact or correction about their case. Your job is to:
1. Extract the new information and map it to the correct fields.
2. If the fact implies a timeline event, include it in timeline_events.
3. If the fact has safety implications (firearms, strangulation, threats), flag it.
4. Be brief. Acknowledge what you understood. Do NOT ask follow-up questions unless the new fact is genuinely ambiguous.
5. End with one sentence confirming what was updated.`

const chatRole = `You are a coach helping a self-represented petitioner understand the NY Family Court Order of Protection process.`

const chatTask = `YOUR ROLE: Answer the user's question in the context of their case. Explain procedure, what to expect at court, and how to organise their evidence. When you draft any text for them, label it as a template. If the answer depends on a fact you do not have, ask for it.`

// ParseMode maps a request mode string to a Mode. Empty and unrecognised
// values fall back to interview.
func ParseMode(s string) Mode {
	switch Mode(strings.TrimSpace(s)) {
	case ModeRoadmapUpdate:
		return ModeRoadmapUpdate
	case ModeChat:
		return ModeChat
	default:
		return ModeInterview
	}
}

// BuildSystemPrompt returns the system instruction for the given mode.
func BuildSystemPrompt(c Context, mode Mode) string {
	role, task := interviewRole, interviewTask
	switch mode {
	case ModeRoadmapUpdate:
		role, task = roadmapRole, roadmapTask
	case ModeChat:
		role, task = chatRole, chatTask
	}

	var b strings.Builder
	b.WriteString(role)
	b.WriteString("\n\n")
	b.WriteString(baseRules)
	fmt.Fprintf(&b, "\n\nCOURT: %s\n", c.Jurisdiction.CourtName())
	b.WriteString("SCOPE: Order of Protection (Family Offense, FCA Article 8)\n")
	b.WriteString(toneInstruction(c.Tone))
	b.WriteString("\n\n")
	b.WriteString(task)
	b.WriteString("\n\nCURRENT KNOWN FACTS:\n")
	b.WriteString(FactsSummary(c.Facts))
	b.WriteString("\n\nTIMELINE:\n")
	b.WriteString(TimelineSummary(c.Timeline))
	return b.String()
}

func toneInstruction(t Tone) string {
	if t == ToneFormal {
		return "Use formal, precise language appropriate for court proceedings."
	}
	return "Use plain, accessible language that a non-lawyer can easily understand."
}

// BuildExtractionSuffix returns the block appended to the user's message
// describing the JSON the model must emit after its reply.
func BuildExtractionSuffix() string {
	return extractionSuffix
}

const extractionSuffix = "\n\nAfter your conversational response, output a JSON block wrapped in ```json ... ``` with this structure:\n" + `{
  "next_questions": ["question 1", ...],
  "extracted_facts": { ... partial OPFacts fields to merge ... },
  "missing_fields": ["field1", ...],
  "progress_percent": 0-100,
  "safety_flags": [
    { "severity": "info|warning|critical", "message": "...", "category": "deadline|jurisdiction|sensitive|legal_limit|safety|general" }
  ],
  "timeline_events": [
    { "date": "YYYY-MM-DD", "title": "...", "description": "...", "isDeadline": false }
  ],
  "suggested_artifacts": [
    { "type": "two_minute_script|five_minute_outline|evidence_checklist|timeline|what_to_bring|what_to_expect|general", "title": "...", "content": "..." }
  ]
}

Only include fields with new data. Use empty arrays/objects for no updates.
CRITICAL: If the user describes immediate danger, set a safety_flag with severity "critical" and category "safety".
For extracted_facts, use the exact OPFacts field names. For nested fields use dot notation in the JSON keys (e.g. "safety.firearmsPresent": true).
Tri-state fields (safeNow, firearmsPresent, strangulation, suicideThreats, petHarm, childrenInvolved, childrenWitnessedAbuse, childrenDirectlyHarmed, existingOrderOfProtection, pendingFamilyCase, pendingCriminalCase) take true, false or null.`
