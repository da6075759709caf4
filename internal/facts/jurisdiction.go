package facts

import "strings"

// Jurisdiction identifies the court a case is prepared for. Everything but
// the county is fixed to New York Family Court.
type Jurisdiction struct {
	System     string `json:"system"`
	State      string `json:"state"`
	CourtLevel string `json:"courtLevel"`
	County     string `json:"county"`
}

// DefaultJurisdiction returns NY Family Court with no county selected.
func DefaultJurisdiction() Jurisdiction {
	return Jurisdiction{System: "state", State: "NY", CourtLevel: "family"}
}

// CourtName renders the court line used in prompts and summaries.
func (j Jurisdiction) CourtName() string {
	if strings.TrimSpace(j.County) == "" {
		return "New York Family Court — County not specified"
	}
	return "New York Family Court — " + j.County + " County"
}

// Counties lists the 62 New York counties as they are shown to users.
var Counties = []string{
	"Albany", "Allegany", "Bronx", "Broome", "Cattaraugus", "Cayuga", "Chautauqua",
	"Chemung", "Chenango", "Clinton", "Columbia", "Cortland", "Delaware", "Dutchess",
	"Erie", "Essex", "Franklin", "Fulton", "Genesee", "Greene", "Hamilton", "Herkimer",
	"Jefferson", "Kings (Brooklyn)", "Lewis", "Livingston", "Madison", "Monroe",
	"Montgomery", "Nassau", "New York (Manhattan)", "Niagara", "Oneida", "Onondaga",
	"Ontario", "Orange", "Orleans", "Oswego", "Otsego", "Putnam", "Queens",
	"Rensselaer", "Richmond (Staten Island)", "Rockland", "Saratoga", "Schenectady",
	"Schoharie", "Schuyler", "Seneca", "St. Lawrence", "Steuben", "Suffolk",
	"Sullivan", "Tioga", "Tompkins", "Ulster", "Warren", "Washington", "Wayne",
	"Westchester", "Wyoming", "Yates",
}

// ValidCounty reports whether name is empty or one of Counties, ignoring case.
func ValidCounty(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return true
	}
	for _, c := range Counties {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
