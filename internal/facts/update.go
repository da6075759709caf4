package facts

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

// Update is a partial OPFacts. A nil field means "leave unchanged"; a
// non-nil field replaces the current value. Group fields carry their own
// partial structs so that siblings inside the group survive a merge.
type Update struct {
	PetitionerName         *string               `json:"petitionerName,omitempty"`
	RespondentName         *string               `json:"respondentName,omitempty"`
	Relationship           *RelationshipCategory `json:"relationship,omitempty"`
	LivingSituation        *LivingSituation      `json:"livingSituation,omitempty"`
	CohabitationDetails    *string               `json:"cohabitationDetails,omitempty"`
	MostRecentIncidentDate *string               `json:"mostRecentIncidentDate,omitempty"`
	MostRecentIncidentTime *string               `json:"mostRecentIncidentTime,omitempty"`
	Incidents              *[]Incident           `json:"incidents,omitempty"`
	PatternDescription     *string               `json:"patternDescription,omitempty"`
	Safety                 *SafetyUpdate         `json:"safety,omitempty"`
	Children               *ChildrenUpdate       `json:"children,omitempty"`
	ExistingCases          *ExistingCasesUpdate  `json:"existingCases,omitempty"`
	Evidence               *EvidenceUpdate       `json:"evidence,omitempty"`
	RequestedRelief        *[]ReliefType         `json:"requestedRelief,omitempty"`
	OtherReliefDetails     *string               `json:"otherReliefDetails,omitempty"`
	DesiredOutcome         *string               `json:"desiredOutcome,omitempty"`
	AdditionalNotes        *string               `json:"additionalNotes,omitempty"`
}

type SafetyUpdate struct {
	SafeNow             *Tristate `json:"safeNow,omitempty"`
	ThreatsOfEscalation *string   `json:"threatsOfEscalation,omitempty"`
	FirearmsPresent     *Tristate `json:"firearmsPresent,omitempty"`
	FirearmsDetails     *string   `json:"firearmsDetails,omitempty"`
	Strangulation       *Tristate `json:"strangulation,omitempty"`
	SuicideThreats      *Tristate `json:"suicideThreats,omitempty"`
	PetHarm             *Tristate `json:"petHarm,omitempty"`
	TechnologyAbuse     *string   `json:"technologyAbuse,omitempty"`
}

type ChildrenUpdate struct {
	ChildrenInvolved       *Tristate `json:"childrenInvolved,omitempty"`
	NumberOfChildren       *int      `json:"numberOfChildren,omitempty"`
	ChildrenWitnessedAbuse *Tristate `json:"childrenWitnessedAbuse,omitempty"`
	ChildrenDirectlyHarmed *Tristate `json:"childrenDirectlyHarmed,omitempty"`
	ChildrenDetails        *string   `json:"childrenDetails,omitempty"`
}

type ExistingCasesUpdate struct {
	ExistingOrderOfProtection  *Tristate `json:"existingOrderOfProtection,omitempty"`
	ExistingOPDetails          *string   `json:"existingOPDetails,omitempty"`
	PendingFamilyCase          *Tristate `json:"pendingFamilyCase,omitempty"`
	PendingFamilyCaseDetails   *string   `json:"pendingFamilyCaseDetails,omitempty"`
	PendingCriminalCase        *Tristate `json:"pendingCriminalCase,omitempty"`
	PendingCriminalCaseDetails *string   `json:"pendingCriminalCaseDetails,omitempty"`
}

type EvidenceUpdate struct {
	Texts          *bool   `json:"texts,omitempty"`
	CallRecords    *bool   `json:"callRecords,omitempty"`
	Emails         *bool   `json:"emails,omitempty"`
	Photos         *bool   `json:"photos,omitempty"`
	Videos         *bool   `json:"videos,omitempty"`
	MedicalRecords *bool   `json:"medicalRecords,omitempty"`
	PoliceReports  *bool   `json:"policeReports,omitempty"`
	Witnesses      *bool   `json:"witnesses,omitempty"`
	Voicemails     *bool   `json:"voicemails,omitempty"`
	SocialMedia    *bool   `json:"socialMedia,omitempty"`
	Other          *string `json:"other,omitempty"`
}

// Ptr returns a pointer to v. Handy for building updates by hand.
func Ptr[T any](v T) *T { return &v }

var tristateType = reflect.TypeOf(Tristate(0))

// UnmarshalJSON decodes an update leniently. Each key is decoded on its own
// and a key of the wrong shape is dropped instead of failing the whole
// update. Keys of the form "group.field" are folded into the named group;
// when a field is given both ways the dotted key wins. Unknown keys are
// ignored.
func (u *Update) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = Update{}
	decodeStruct(expandDotted(raw), reflect.ValueOf(u).Elem(), true)
	return nil
}

// expandDotted rewrites "group.field" keys into nested group objects.
func expandDotted(raw map[string]json.RawMessage) map[string]json.RawMessage {
	dotted := map[string]map[string]json.RawMessage{}
	out := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		group, field, ok := strings.Cut(k, ".")
		if !ok {
			out[k] = v
			continue
		}
		if !isGroup(group) || field == "" || strings.Contains(field, ".") {
			continue
		}
		if dotted[group] == nil {
			dotted[group] = map[string]json.RawMessage{}
		}
		dotted[group][field] = v
	}

	for group, fields := range dotted {
		merged := map[string]json.RawMessage{}
		if nested, ok := out[group]; ok {
			// A nested value that is not an object contributes nothing.
			_ = json.Unmarshal(nested, &merged)
		}
		for k, v := range fields {
			merged[k] = v
		}
		b, err := json.Marshal(merged)
		if err != nil {
			continue
		}
		out[group] = b
	}
	return out
}

func isGroup(name string) bool {
	t := reflect.TypeOf(Update{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if jsonName(f) == name && f.Type.Elem().Kind() == reflect.Struct {
			return true
		}
	}
	return false
}

// decodeStruct fills the pointer fields of dst from raw. Groups are only
// descended into when allowGroups is set, which keeps nesting to one level.
func decodeStruct(raw map[string]json.RawMessage, dst reflect.Value, allowGroups bool) {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		val, ok := raw[jsonName(sf)]
		if !ok {
			continue
		}
		elem := sf.Type.Elem()
		if isNull(val) && elem != tristateType {
			continue
		}

		ptr := reflect.New(elem)
		switch {
		case elem.Kind() == reflect.Struct:
			if !allowGroups {
				continue
			}
			var sub map[string]json.RawMessage
			if err := json.Unmarshal(val, &sub); err != nil {
				continue
			}
			decodeStruct(sub, ptr.Elem(), false)
			if isZeroUpdate(ptr.Elem()) {
				continue
			}
		case elem.Kind() == reflect.Slice:
			if !decodeSlice(val, ptr.Elem()) {
				continue
			}
		default:
			if err := json.Unmarshal(val, ptr.Interface()); err != nil {
				continue
			}
		}
		dst.Field(i).Set(ptr)
	}
}

// decodeSlice decodes a JSON array element by element, skipping elements
// that do not decode. A non-empty array with no decodable element is
// reported as absent so it cannot wipe the current value.
func decodeSlice(data json.RawMessage, dst reflect.Value) bool {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return false
	}
	out := reflect.MakeSlice(dst.Type(), 0, len(items))
	for _, item := range items {
		e := reflect.New(dst.Type().Elem())
		if err := json.Unmarshal(item, e.Interface()); err != nil {
			continue
		}
		out = reflect.Append(out, e.Elem())
	}
	if len(items) > 0 && out.Len() == 0 {
		return false
	}
	dst.Set(out)
	return true
}

func isNull(data json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}

func isZeroUpdate(v reflect.Value) bool {
	for i := 0; i < v.NumField(); i++ {
		if !v.Field(i).IsNil() {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the update would change nothing.
func (u Update) IsEmpty() bool {
	return len(u.ChangedFields()) == 0
}

// ChangedFields lists the fields the update sets, using dotted paths for
// fields inside a group, in declaration order.
func (u Update) ChangedFields() []string {
	var out []string
	v := reflect.ValueOf(u)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		fv := v.Field(i)
		if fv.IsNil() {
			continue
		}
		name := jsonName(t.Field(i))
		if fv.Elem().Kind() != reflect.Struct {
			out = append(out, name)
			continue
		}
		g := fv.Elem()
		for j := 0; j < g.NumField(); j++ {
			if !g.Field(j).IsNil() {
				out = append(out, name+"."+jsonName(g.Type().Field(j)))
			}
		}
	}
	return out
}
