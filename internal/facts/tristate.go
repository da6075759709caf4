package facts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Tristate is a yes/no answer that may not have been given yet. The zero
// value is Unknown and serialises as JSON null.
type Tristate int8

const (
	Unknown Tristate = iota
	Yes
	No
)

// Bool converts b to Yes or No.
func Bool(b bool) Tristate {
	if b {
		return Yes
	}
	return No
}

// Known reports whether an answer has been recorded.
func (t Tristate) Known() bool { return t != Unknown }

func (t Tristate) String() string {
	switch t {
	case Yes:
		return "Yes"
	case No:
		return "No"
	default:
		return "Unknown"
	}
}

func (t Tristate) MarshalJSON() ([]byte, error) {
	switch t {
	case Yes:
		return []byte("true"), nil
	case No:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false and null, plus the strings models tend
// to produce instead ("yes", "no", "unknown").
func (t *Tristate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*t = Yes
		return nil
	case "false":
		*t = No
		return nil
	case "null":
		*t = Unknown
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("facts: invalid tri-state %s", data)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y":
		*t = Yes
	case "false", "no", "n":
		*t = No
	case "", "unknown", "null", "unsure":
		*t = Unknown
	default:
		return fmt.Errorf("facts: invalid tri-state %q", s)
	}
	return nil
}

// decodeEnum decodes a JSON string and checks it against valid.
func decodeEnum(data []byte, valid func(string) bool) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("facts: enum value must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if !valid(s) {
		return "", fmt.Errorf("facts: unknown enum value %q", s)
	}
	return s, nil
}
