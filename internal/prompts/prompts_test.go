package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elilinden/Support-bot/internal/facts"
)

func baseContext() Context {
	return Context{
		Facts:        facts.Default(),
		Jurisdiction: facts.DefaultJurisdiction(),
		Tone:         TonePlain,
	}
}

func TestBuildSystemPromptInterview(t *testing.T) {
	p := BuildSystemPrompt(baseContext(), ModeInterview)

	assert.Contains(t, p, "You are an investigator")
	assert.Contains(t, p, "ask 2-6 specific, focused questions")
	assert.Contains(t, p, "FCA §812")
	assert.Contains(t, p, "COURT: New York Family Court — County not specified")
	assert.Contains(t, p, "plain, accessible language")
	assert.Contains(t, p, "CURRENT KNOWN FACTS:\nNone gathered yet.")
	assert.Contains(t, p, "TIMELINE:\nNo events recorded yet.")
	for _, rule := range []string{
		"do NOT provide legal advice",
		"attorney-client relationship",
		"redirect",
		"call 911",
		"redact",
		"TEMPLATE / STARTER TEXT — NOT A LEGAL DOCUMENT.",
	} {
		assert.Contains(t, p, rule)
	}
}

func TestBuildSystemPromptRoadmapUpdate(t *testing.T) {
	c := baseContext()
	c.Tone = ToneFormal
	c.Jurisdiction.County = "Queens"
	c.Timeline = []facts.TimelineEvent{
		{Date: "2024-01-10", Title: "Incident", Description: "pushed"},
		{Date: "2024-02-01", Title: "Hearing", Description: "first appearance", IsDeadline: true},
	}

	p := BuildSystemPrompt(c, ModeRoadmapUpdate)

	assert.Contains(t, p, "You are a fact updater")
	assert.NotContains(t, p, "You are an investigator")
	assert.Contains(t, p, "Do NOT ask follow-up questions")
	assert.Contains(t, p, "COURT: New York Family Court — Queens County")
	assert.Contains(t, p, "formal, precise language")
	assert.Contains(t, p, "- 2024-01-10: Incident — pushed\n- 2024-02-01: Hearing [DEADLINE] — first appearance")
}

func TestBuildSystemPromptChat(t *testing.T) {
	p := BuildSystemPrompt(baseContext(), ModeChat)
	assert.Contains(t, p, "You are a coach")
	assert.Contains(t, p, "CRITICAL RULES")
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeInterview, ParseMode(""))
	assert.Equal(t, ModeInterview, ParseMode("brainstorm"))
	assert.Equal(t, ModeRoadmapUpdate, ParseMode("roadmap_update"))
	assert.Equal(t, ModeChat, ParseMode("chat"))
}

func TestFactsSummaryOnlyNonDefault(t *testing.T) {
	f := facts.Default()
	f.PetitionerName = "Jane"
	f.Relationship = facts.RelationshipSpouse
	f.Safety.FirearmsPresent = facts.No
	f.Incidents = []facts.Incident{{Date: "2024-01-10", WhatHappened: strings.Repeat("x", 150)}}
	f.Evidence.Photos = true
	f.Evidence.PoliceReports = true
	f.RequestedRelief = []facts.ReliefType{facts.ReliefStayAway, facts.ReliefNoContact}

	s := FactsSummary(f)

	assert.Contains(t, s, "Petitioner: Jane")
	assert.Contains(t, s, "Relationship: spouse")
	assert.Contains(t, s, "Firearms present: No")
	assert.Contains(t, s, "  - 2024-01-10: "+strings.Repeat("x", 100)+"\n")
	assert.Contains(t, s, "Evidence available: photos, police reports")
	assert.Contains(t, s, "Requested relief: stay_away, no_contact")
	assert.NotContains(t, s, "Respondent")
	assert.NotContains(t, s, "Safe now")
	assert.NotContains(t, s, "Number of children")
}

func TestFactsSummaryToleratesZeroValue(t *testing.T) {
	assert.Equal(t, "None gathered yet.", FactsSummary(facts.OPFacts{}))
}

func TestFactsSummaryIncidentTime(t *testing.T) {
	tests := []struct {
		date, time, want string
	}{
		{"2024-03-05", "10pm", "Most recent incident: 2024-03-05 10pm"},
		{"2024-03-05", "", "Most recent incident: 2024-03-05"},
		{"", "around 10pm", "Most recent incident: around 10pm"},
	}
	for _, tt := range tests {
		s := FactsSummary(facts.OPFacts{MostRecentIncidentDate: tt.date, MostRecentIncidentTime: tt.time})
		assert.Contains(t, s, tt.want)
	}
	assert.Equal(t, "None gathered yet.", FactsSummary(facts.OPFacts{MostRecentIncidentTime: "  "}))
}

func TestExtractionSuffix(t *testing.T) {
	s := BuildExtractionSuffix()
	assert.True(t, strings.HasPrefix(s, "\n\n"))
	assert.Contains(t, s, "```json")
	for _, key := range []string{
		"next_questions", "extracted_facts", "missing_fields", "progress_percent",
		"safety_flags", "timeline_events", "suggested_artifacts",
	} {
		assert.Contains(t, s, `"`+key+`"`)
	}
	assert.Contains(t, s, `"safety.firearmsPresent": true`)
	assert.Contains(t, s, "Use empty arrays/objects for no updates.")
}
