// Package summary renders a case session as a printable summary, in
// markdown and as a standalone HTML page.
package summary

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/elilinden/Support-bot/internal/facts"
	"github.com/elilinden/Support-bot/internal/response"
	"github.com/elilinden/Support-bot/internal/session"
)

const (
	dash = "—"

	artifactNotice = "TEMPLATE / STARTER TEXT. NOT A LEGAL DOCUMENT. Review with a licensed attorney before use."
	disclaimer     = "This summary contains **educational information only** and does **not** constitute legal advice. " +
		"No attorney-client relationship is formed. Laws and procedures vary by jurisdiction. " +
		"Always consult with a licensed attorney before taking legal action. " +
		"Jurisdiction: New York Family Court. Procedures may vary by county."
)

var evidenceItems = []struct {
	label string
	get   func(facts.EvidenceInventory) bool
}{
	{"Text messages", func(e facts.EvidenceInventory) bool { return e.Texts }},
	{"Call records", func(e facts.EvidenceInventory) bool { return e.CallRecords }},
	{"Emails", func(e facts.EvidenceInventory) bool { return e.Emails }},
	{"Photos", func(e facts.EvidenceInventory) bool { return e.Photos }},
	{"Videos", func(e facts.EvidenceInventory) bool { return e.Videos }},
	{"Medical records", func(e facts.EvidenceInventory) bool { return e.MedicalRecords }},
	{"Police reports", func(e facts.EvidenceInventory) bool { return e.PoliceReports }},
	{"Witnesses", func(e facts.EvidenceInventory) bool { return e.Witnesses }},
	{"Voicemails", func(e facts.EvidenceInventory) bool { return e.Voicemails }},
	{"Social media", func(e facts.EvidenceInventory) bool { return e.SocialMedia }},
}

// Markdown renders s as a markdown document. generated is the date shown in
// the header.
func Markdown(s *session.CaseSession, generated time.Time) string {
	f := s.OPFacts
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escape(s.Title))
	fmt.Fprintf(&b, "%s · Generated %s\n\n", s.Jurisdiction.CourtName(), generated.Format("January 2, 2006"))

	b.WriteString("## Parties & Relationship\n\n")
	fmt.Fprintf(&b, "- **Petitioner:** %s\n", orDash(f.PetitionerName))
	fmt.Fprintf(&b, "- **Respondent:** %s\n", orDash(f.RespondentName))
	fmt.Fprintf(&b, "- **Relationship:** %s\n", orDash(facts.RelationshipLabels[f.Relationship]))
	fmt.Fprintf(&b, "- **Living situation:** %s\n", orDash(facts.LivingSituationLabels[f.LivingSituation]))
	if f.CohabitationDetails != "" {
		fmt.Fprintf(&b, "- **Details:** %s\n", escape(f.CohabitationDetails))
	}
	b.WriteString("\n")

	b.WriteString("## Safety Concerns\n\n")
	fmt.Fprintf(&b, "- Safe now: %s\n", f.Safety.SafeNow)
	fmt.Fprintf(&b, "- Firearms present: %s\n", f.Safety.FirearmsPresent)
	if f.Safety.FirearmsDetails != "" {
		fmt.Fprintf(&b, "- Firearms details: %s\n", escape(f.Safety.FirearmsDetails))
	}
	fmt.Fprintf(&b, "- Strangulation history: %s\n", f.Safety.Strangulation)
	fmt.Fprintf(&b, "- Suicide/homicide threats: %s\n", f.Safety.SuicideThreats)
	fmt.Fprintf(&b, "- Harm to pets: %s\n", f.Safety.PetHarm)
	if f.Safety.ThreatsOfEscalation != "" {
		fmt.Fprintf(&b, "- Threats of escalation: %s\n", escape(f.Safety.ThreatsOfEscalation))
	}
	if f.Safety.TechnologyAbuse != "" {
		fmt.Fprintf(&b, "- Technology abuse: %s\n", escape(f.Safety.TechnologyAbuse))
	}
	b.WriteString("\n")

	if len(s.Timeline) > 0 {
		b.WriteString("## Incident Timeline\n\n")
		b.WriteString("| Date | Event | Details |\n|---|---|---|\n")
		for _, ev := range s.Timeline {
			title := escapeCell(ev.Title)
			if ev.IsDeadline {
				title += " **[DEADLINE]**"
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", escapeCell(ev.Date), title, escapeCell(ev.Description))
		}
		b.WriteString("\n")
	}

	if len(f.Incidents) > 0 {
		fmt.Fprintf(&b, "## Incidents (%d)\n\n", len(f.Incidents))
		for i, inc := range f.Incidents {
			fmt.Fprintf(&b, "### Incident %d %s %s %s\n\n", i+1, dash, escape(inc.Date), escape(inc.Time))
			if inc.Location != "" {
				fmt.Fprintf(&b, "Location: %s\n\n", escape(inc.Location))
			}
			if inc.WhatHappened != "" {
				fmt.Fprintf(&b, "%s\n\n", escape(inc.WhatHappened))
			}
			for _, kv := range [][2]string{
				{"Injuries", inc.Injuries},
				{"Threats", inc.Threats},
				{"Witnesses", inc.Witnesses},
				{"Evidence", inc.Evidence},
			} {
				if kv[1] != "" {
					fmt.Fprintf(&b, "- %s: %s\n", kv[0], escape(kv[1]))
				}
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Children\n\n")
	fmt.Fprintf(&b, "- Children involved: %s\n", f.Children.ChildrenInvolved)
	if f.Children.ChildrenInvolved == facts.Yes {
		fmt.Fprintf(&b, "- Number: %d\n", f.Children.NumberOfChildren)
		fmt.Fprintf(&b, "- Witnessed abuse: %s\n", f.Children.ChildrenWitnessedAbuse)
		fmt.Fprintf(&b, "- Directly harmed: %s\n", f.Children.ChildrenDirectlyHarmed)
	}
	if f.Children.ChildrenDetails != "" {
		fmt.Fprintf(&b, "- Details: %s\n", escape(f.Children.ChildrenDetails))
	}
	b.WriteString("\n")

	b.WriteString("## Evidence Inventory\n\n")
	var listed bool
	for _, item := range evidenceItems {
		if item.get(f.Evidence) {
			fmt.Fprintf(&b, "- [x] %s\n", item.label)
			listed = true
		}
	}
	if f.Evidence.Other != "" {
		fmt.Fprintf(&b, "- [x] Other: %s\n", escape(f.Evidence.Other))
		listed = true
	}
	if !listed {
		b.WriteString("No evidence documented\n")
	}
	b.WriteString("\n")

	b.WriteString("## Requested Relief\n\n")
	if len(f.RequestedRelief) == 0 {
		b.WriteString("None selected\n")
	}
	for _, r := range f.RequestedRelief {
		fmt.Fprintf(&b, "- %s\n", facts.ReliefLabels[r])
	}
	if f.OtherReliefDetails != "" {
		fmt.Fprintf(&b, "\nOther conditions: %s\n", escape(f.OtherReliefDetails))
	}
	b.WriteString("\n")

	if len(s.GeneratedArtifacts) > 0 {
		b.WriteString("## Generated Documents\n\n")
		for _, a := range s.GeneratedArtifacts {
			label := response.ArtifactLabels[a.Type]
			if label == "" {
				label = string(a.Type)
			}
			fmt.Fprintf(&b, "### [%s] %s\n\n", label, escape(a.Title))
			fmt.Fprintf(&b, "```markdown\n%s\n```\n\n", strings.ReplaceAll(a.Content, "```", "'''"))
			fmt.Fprintf(&b, "_%s_\n\n", artifactNotice)
		}
	}

	b.WriteString("---\n\n")
	b.WriteString("**Important Disclaimer.** " + disclaimer + "\n")
	return b.String()
}

// Text is the short plain-text summary used for copying to the clipboard.
func Text(s *session.CaseSession, generated time.Time) string {
	f := s.OPFacts
	county := s.Jurisdiction.County
	if county == "" {
		county = "County not specified"
	}
	lines := []string{
		"CASE SUMMARY: " + s.Title,
		"NY Family Court " + dash + " " + county,
		"Generated: " + generated.Format("01/02/2006"),
		"",
		"PARTIES",
		"Petitioner: " + plainOrDash(f.PetitionerName),
		"Respondent: " + plainOrDash(f.RespondentName),
		"Relationship: " + plainOrDash(string(f.Relationship)),
		"",
		"SAFETY",
		"Safe now: " + f.Safety.SafeNow.String(),
		"Firearms: " + f.Safety.FirearmsPresent.String(),
		"",
		"EDUCATIONAL INFORMATION ONLY. NOT LEGAL ADVICE.",
	}
	return strings.Join(lines, "\n")
}

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

// HTML renders s as a standalone HTML page. Raw HTML in user text is not
// passed through.
func HTML(s *session.CaseSession, generated time.Time) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(s, generated)), &body); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	var out bytes.Buffer
	err := pageTmpl.Execute(&out, struct {
		Title   string
		Content template.HTML
	}{
		Title:   s.Title,
		Content: template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return out.Bytes(), nil
}

// plainOrDash is orDash for plain text: no markdown escaping.
func plainOrDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return dash
	}
	return s
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return dash
	}
	return escape(s)
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", "&lt;", ">", "&gt;", "#", `\#`,
)

// escape keeps user text from being read as markdown.
func escape(s string) string {
	return mdEscaper.Replace(s)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(escape(s), "|", `\|`), "\n", " ")
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; color: #1f2328; line-height: 1.5; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #d0d7de; padding: .4rem .6rem; text-align: left; vertical-align: top; }
pre { background: #f6f8fa; padding: 1rem; white-space: pre-wrap; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
{{.Content}}
</body>
</html>
`
