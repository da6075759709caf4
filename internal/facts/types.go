// Package facts holds the canonical case-fact model for a New York Family
// Court Order of Protection petition and the engine that merges partial,
// model-extracted updates into it.
package facts

// RelationshipCategory is a relationship recognised by FCA §812.
type RelationshipCategory string

const (
	RelationshipNone                     RelationshipCategory = ""
	RelationshipSpouse                   RelationshipCategory = "spouse"
	RelationshipFormerSpouse             RelationshipCategory = "former_spouse"
	RelationshipParentChild              RelationshipCategory = "parent_child"
	RelationshipChildParent              RelationshipCategory = "child_parent"
	RelationshipIntimatePartner          RelationshipCategory = "intimate_partner"
	RelationshipFormerIntimatePartner    RelationshipCategory = "former_intimate_partner"
	RelationshipPersonsWithChildInCommon RelationshipCategory = "persons_with_child_in_common"
	RelationshipMembersSameHousehold     RelationshipCategory = "members_same_household"
	RelationshipOtherFamily              RelationshipCategory = "other_family"
)

// RelationshipLabels maps each category to the label shown to users.
var RelationshipLabels = map[RelationshipCategory]string{
	RelationshipSpouse:                   "Current spouse",
	RelationshipFormerSpouse:             "Former spouse",
	RelationshipParentChild:              "Parent of respondent / child relationship",
	RelationshipChildParent:              "Child of respondent / parent relationship",
	RelationshipIntimatePartner:          "Current intimate partner",
	RelationshipFormerIntimatePartner:    "Former intimate partner",
	RelationshipPersonsWithChildInCommon: "Person with a child in common",
	RelationshipMembersSameHousehold:     "Members of the same household",
	RelationshipOtherFamily:              "Other family member by blood or marriage",
}

// Valid reports whether r is the empty value or a known category.
func (r RelationshipCategory) Valid() bool {
	if r == RelationshipNone {
		return true
	}
	_, ok := RelationshipLabels[r]
	return ok
}

// UnmarshalJSON rejects categories outside the closed set.
func (r *RelationshipCategory) UnmarshalJSON(data []byte) error {
	v, err := decodeEnum(data, func(s string) bool { return RelationshipCategory(s).Valid() })
	if err != nil {
		return err
	}
	*r = RelationshipCategory(v)
	return nil
}

// LivingSituation describes whether the parties live together.
type LivingSituation string

const (
	LivingNone              LivingSituation = ""
	LivingTogether          LivingSituation = "living_together"
	LivingRecentlySeparated LivingSituation = "recently_separated"
	LivingApart             LivingSituation = "living_apart"
	LivingOther             LivingSituation = "other"
)

var LivingSituationLabels = map[LivingSituation]string{
	LivingTogether:          "Currently living together",
	LivingRecentlySeparated: "Recently separated",
	LivingApart:             "Living apart",
	LivingOther:             "Other",
}

// Valid reports whether l is the empty value or a known situation.
func (l LivingSituation) Valid() bool {
	if l == LivingNone {
		return true
	}
	_, ok := LivingSituationLabels[l]
	return ok
}

func (l *LivingSituation) UnmarshalJSON(data []byte) error {
	v, err := decodeEnum(data, func(s string) bool { return LivingSituation(s).Valid() })
	if err != nil {
		return err
	}
	*l = LivingSituation(v)
	return nil
}

// ReliefType is a kind of relief the petitioner can request.
type ReliefType string

const (
	ReliefStayAway           ReliefType = "stay_away"
	ReliefNoContact          ReliefType = "no_contact"
	ReliefExclusiveOccupancy ReliefType = "exclusive_occupancy"
	ReliefTemporaryCustody   ReliefType = "temporary_custody"
	ReliefNoFirearms         ReliefType = "no_firearms"
	ReliefOther              ReliefType = "other"
)

var ReliefLabels = map[ReliefType]string{
	ReliefStayAway:           "Stay away from petitioner (and children/home/work/school)",
	ReliefNoContact:          "No contact (no calls, texts, emails, third-party contact)",
	ReliefExclusiveOccupancy: "Exclusive occupancy of shared residence",
	ReliefTemporaryCustody:   "Temporary custody of children",
	ReliefNoFirearms:         "Surrender / no firearms",
	ReliefOther:              "Other conditions",
}

// UnmarshalJSON maps unrecognised relief strings to ReliefOther so a single
// bad entry does not discard the rest of the list.
func (t *ReliefType) UnmarshalJSON(data []byte) error {
	v, err := decodeEnum(data, func(string) bool { return true })
	if err != nil {
		return err
	}
	if _, ok := ReliefLabels[ReliefType(v)]; !ok {
		v = string(ReliefOther)
	}
	*t = ReliefType(v)
	return nil
}

// Incident is one reported family offense.
type Incident struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Location     string `json:"location"`
	WhatHappened string `json:"whatHappened"`
	Injuries     string `json:"injuries"`
	Threats      string `json:"threats"`
	Witnesses    string `json:"witnesses"`
	Evidence     string `json:"evidence"`
}

// SafetyConcerns groups the lethality indicators.
type SafetyConcerns struct {
	SafeNow             Tristate `json:"safeNow"`
	ThreatsOfEscalation string   `json:"threatsOfEscalation"`
	FirearmsPresent     Tristate `json:"firearmsPresent"`
	FirearmsDetails     string   `json:"firearmsDetails"`
	Strangulation       Tristate `json:"strangulation"`
	SuicideThreats      Tristate `json:"suicideThreats"`
	PetHarm             Tristate `json:"petHarm"`
	TechnologyAbuse     string   `json:"technologyAbuse"`
}

type ChildrenInfo struct {
	ChildrenInvolved       Tristate `json:"childrenInvolved"`
	NumberOfChildren       int      `json:"numberOfChildren"`
	ChildrenWitnessedAbuse Tristate `json:"childrenWitnessedAbuse"`
	ChildrenDirectlyHarmed Tristate `json:"childrenDirectlyHarmed"`
	ChildrenDetails        string   `json:"childrenDetails"`
}

type ExistingCases struct {
	ExistingOrderOfProtection  Tristate `json:"existingOrderOfProtection"`
	ExistingOPDetails          string   `json:"existingOPDetails"`
	PendingFamilyCase          Tristate `json:"pendingFamilyCase"`
	PendingFamilyCaseDetails   string   `json:"pendingFamilyCaseDetails"`
	PendingCriminalCase        Tristate `json:"pendingCriminalCase"`
	PendingCriminalCaseDetails string   `json:"pendingCriminalCaseDetails"`
}

// EvidenceInventory records which kinds of evidence the petitioner holds.
type EvidenceInventory struct {
	Texts          bool   `json:"texts"`
	CallRecords    bool   `json:"callRecords"`
	Emails         bool   `json:"emails"`
	Photos         bool   `json:"photos"`
	Videos         bool   `json:"videos"`
	MedicalRecords bool   `json:"medicalRecords"`
	PoliceReports  bool   `json:"policeReports"`
	Witnesses      bool   `json:"witnesses"`
	Voicemails     bool   `json:"voicemails"`
	SocialMedia    bool   `json:"socialMedia"`
	Other          string `json:"other"`
}

// OPFacts is the canonical fact structure for one case session. Every leaf
// has a zero-value default; absence is never represented by omission.
type OPFacts struct {
	PetitionerName         string               `json:"petitionerName"`
	RespondentName         string               `json:"respondentName"`
	Relationship           RelationshipCategory `json:"relationship"`
	LivingSituation        LivingSituation      `json:"livingSituation"`
	CohabitationDetails    string               `json:"cohabitationDetails"`
	MostRecentIncidentDate string               `json:"mostRecentIncidentDate"`
	MostRecentIncidentTime string               `json:"mostRecentIncidentTime"`
	Incidents              []Incident           `json:"incidents"`
	PatternDescription     string               `json:"patternDescription"`
	Safety                 SafetyConcerns       `json:"safety"`
	Children               ChildrenInfo         `json:"children"`
	ExistingCases          ExistingCases        `json:"existingCases"`
	Evidence               EvidenceInventory    `json:"evidence"`
	RequestedRelief        []ReliefType         `json:"requestedRelief"`
	OtherReliefDetails     string               `json:"otherReliefDetails"`
	DesiredOutcome         string               `json:"desiredOutcome"`
	AdditionalNotes        string               `json:"additionalNotes"`
}

// Default returns an OPFacts with every field at its default. Sequences are
// empty rather than nil so they serialise as [].
func Default() OPFacts {
	return OPFacts{
		Incidents:       []Incident{},
		RequestedRelief: []ReliefType{},
	}
}

// Clone returns a deep copy of f.
func (f OPFacts) Clone() OPFacts {
	out := f
	if f.Incidents != nil {
		out.Incidents = append([]Incident{}, f.Incidents...)
	}
	if f.RequestedRelief != nil {
		out.RequestedRelief = append([]ReliefType{}, f.RequestedRelief...)
	}
	return out
}

// Normalize replaces nil sequences with empty ones.
func (f *OPFacts) Normalize() {
	if f.Incidents == nil {
		f.Incidents = []Incident{}
	}
	if f.RequestedRelief == nil {
		f.RequestedRelief = []ReliefType{}
	}
}
