// Package redact finds sensitive identifiers (social security and payment
// card numbers) in user-supplied text.
package redact

import (
	"regexp"
	"strings"
)

// Kind is a category of sensitive identifier.
type Kind string

const (
	KindSSN  Kind = "ssn"
	KindCard Kind = "card_number"
)

var (
	ssnRe  = regexp.MustCompile(`\b\d{3}[- ]\d{2}[- ]\d{4}\b`)
	cardRe = regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`)
)

// Finding is one kind of identifier found, with the number of occurrences.
type Finding struct {
	Kind  Kind
	Count int
}

// Scan reports the identifiers found in text, SSNs first.
func Scan(text string) []Finding {
	var out []Finding
	if n := len(ssnRe.FindAllStringIndex(text, -1)); n > 0 {
		out = append(out, Finding{Kind: KindSSN, Count: n})
	}
	n := 0
	for _, m := range cardRe.FindAllString(text, -1) {
		if luhn(digits(m)) {
			n++
		}
	}
	if n > 0 {
		out = append(out, Finding{Kind: KindCard, Count: n})
	}
	return out
}

// Mask replaces every identifier Scan would report with asterisks, keeping
// the last four digits.
func Mask(text string) string {
	text = ssnRe.ReplaceAllStringFunc(text, func(m string) string {
		return "***-**-" + m[len(m)-4:]
	})
	return cardRe.ReplaceAllStringFunc(text, func(m string) string {
		d := digits(m)
		if !luhn(d) {
			return m
		}
		return strings.Repeat("*", len(d)-4) + d[len(d)-4:]
	})
}

// Warning is the user-facing message for findings, or "" when there are
// none.
func Warning(findings []Finding) string {
	if len(findings) == 0 {
		return ""
	}
	var kinds []string
	for _, f := range findings {
		switch f.Kind {
		case KindSSN:
			kinds = append(kinds, "a Social Security number")
		case KindCard:
			kinds = append(kinds, "a payment card number")
		}
	}
	return "Your message appears to contain " + strings.Join(kinds, " and ") +
		". Please redact sensitive identifiers before sharing or filing anything."
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func luhn(d string) bool {
	if len(d) < 13 {
		return false
	}
	sum := 0
	double := false
	for i := len(d) - 1; i >= 0; i-- {
		n := int(d[i] - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return sum%10 == 0
}
