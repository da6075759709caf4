package danger

// PatternVersion identifies the pattern table below. Bump it whenever a
// pattern is added, removed or changed so audit records can say which table
// classified a message.
const PatternVersion = "2024-06.2"

// Pattern is one entry in the classifier table.
type Pattern struct {
	Name string
	Expr string
}

// apos matches a straight or curly apostrophe.
const apos = `['’]`

// Patterns describe imminent danger in the present tense. Past-tense
// descriptions ("he yelled at me last week") must not match.
var Patterns = []Pattern{
	{Name: "abuser_present", Expr: `\b(he|she|they)(` + apos + `s| is| are|` + apos + `re) (here|outside|coming|at the door)`},
	{Name: "attack_in_progress", Expr: `being (attacked|hit|beaten|hurt) (right )?now`},
	{Name: "fear_for_life", Expr: `\bi(` + apos + `m| am) (scared|afraid) (for my life|(he|she|they)(` + apos + `ll| will) kill)`},
	{Name: "call_police", Expr: `call (the )?police`},
	{Name: "lethal_threat", Expr: `going to kill`},
	{Name: "weapon", Expr: `(has|have|got) a (gun|knife|weapon)`},
	{Name: "help_plea", Expr: `help me (now|please|immediately)`},
	{Name: "emergency", Expr: `emergency`},
	{Name: "self_declared_danger", Expr: `\bi(` + apos + `m| am) in (immediate )?danger`},
}
