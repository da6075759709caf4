package prompts

import (
	"fmt"
	"strings"

	"github.com/elilinden/Support-bot/internal/facts"
)

const maxIncidentChars = 100

// FactsSummary renders the non-default facts one per line so the model
// does not ask again for what is already known.
func FactsSummary(f facts.OPFacts) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}
	text := func(label, v string) {
		if strings.TrimSpace(v) != "" {
			add("%s: %s", label, v)
		}
	}
	tri := func(label string, v facts.Tristate) {
		if v.Known() {
			add("%s: %s", label, v)
		}
	}

	text("Petitioner", f.PetitionerName)
	text("Respondent", f.RespondentName)
	if f.Relationship != facts.RelationshipNone {
		add("Relationship: %s", f.Relationship)
	}
	if f.LivingSituation != facts.LivingNone {
		add("Living situation: %s", f.LivingSituation)
	}
	text("Cohabitation details", f.CohabitationDetails)
	if when := strings.TrimSpace(strings.TrimSpace(f.MostRecentIncidentDate) + " " + strings.TrimSpace(f.MostRecentIncidentTime)); when != "" {
		add("Most recent incident: %s", when)
	}
	if len(f.Incidents) > 0 {
		add("Number of incidents documented: %d", len(f.Incidents))
		for _, inc := range f.Incidents {
			add("  - %s: %s", inc.Date, truncate(inc.WhatHappened, maxIncidentChars))
		}
	}
	text("Pattern", f.PatternDescription)

	tri("Safe now", f.Safety.SafeNow)
	text("Threats of escalation", f.Safety.ThreatsOfEscalation)
	tri("Firearms present", f.Safety.FirearmsPresent)
	text("Firearms details", f.Safety.FirearmsDetails)
	tri("Strangulation history", f.Safety.Strangulation)
	tri("Suicide threats", f.Safety.SuicideThreats)
	tri("Harm to pets", f.Safety.PetHarm)
	text("Technology abuse", f.Safety.TechnologyAbuse)

	tri("Children involved", f.Children.ChildrenInvolved)
	if f.Children.NumberOfChildren > 0 {
		add("Number of children: %d", f.Children.NumberOfChildren)
	}
	tri("Children witnessed abuse", f.Children.ChildrenWitnessedAbuse)
	tri("Children directly harmed", f.Children.ChildrenDirectlyHarmed)
	text("Children details", f.Children.ChildrenDetails)

	tri("Existing OP", f.ExistingCases.ExistingOrderOfProtection)
	text("Existing OP details", f.ExistingCases.ExistingOPDetails)
	tri("Pending family case", f.ExistingCases.PendingFamilyCase)
	text("Pending family case details", f.ExistingCases.PendingFamilyCaseDetails)
	tri("Pending criminal case", f.ExistingCases.PendingCriminalCase)
	text("Pending criminal case details", f.ExistingCases.PendingCriminalCaseDetails)

	if ev := evidenceList(f.Evidence); len(ev) > 0 {
		add("Evidence available: %s", strings.Join(ev, ", "))
	}

	if len(f.RequestedRelief) > 0 {
		relief := make([]string, len(f.RequestedRelief))
		for i, r := range f.RequestedRelief {
			relief[i] = string(r)
		}
		add("Requested relief: %s", strings.Join(relief, ", "))
	}
	text("Other relief", f.OtherReliefDetails)
	text("Desired outcome", f.DesiredOutcome)
	text("Additional notes", f.AdditionalNotes)

	if len(lines) == 0 {
		return "None gathered yet."
	}
	return strings.Join(lines, "\n")
}

func evidenceList(e facts.EvidenceInventory) []string {
	var out []string
	for _, item := range []struct {
		have  bool
		label string
	}{
		{e.Texts, "texts"},
		{e.CallRecords, "call records"},
		{e.Emails, "emails"},
		{e.Photos, "photos"},
		{e.Videos, "videos"},
		{e.MedicalRecords, "medical records"},
		{e.PoliceReports, "police reports"},
		{e.Witnesses, "witnesses"},
		{e.Voicemails, "voicemails"},
		{e.SocialMedia, "social media"},
	} {
		if item.have {
			out = append(out, item.label)
		}
	}
	if s := strings.TrimSpace(e.Other); s != "" {
		out = append(out, s)
	}
	return out
}

// TimelineSummary renders one line per event, in the order given.
func TimelineSummary(timeline []facts.TimelineEvent) string {
	if len(timeline) == 0 {
		return "No events recorded yet."
	}
	lines := make([]string, len(timeline))
	for i, e := range timeline {
		deadline := ""
		if e.IsDeadline {
			deadline = " [DEADLINE]"
		}
		lines[i] = fmt.Sprintf("- %s: %s%s — %s", e.Date, e.Title, deadline, e.Description)
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
