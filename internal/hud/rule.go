package hud

// Rule is the visibility action configured for one (element, state) pair
type Rule int

const (
	// Skip leaves the element to whatever the game's HUD settings decided
	Skip Rule = iota
	Hide
	Show

	ruleCount
)

var ruleNames = [ruleCount]string{
	Skip: "skip",
	Hide: "hide",
	Show: "show",
}

func (r Rule) String() string {
	if !r.Valid() {
		return ruleNames[Skip]
	}

	return ruleNames[r]
}

// Valid reports whether r is one of Skip, Hide or Show
func (r Rule) Valid() bool {
	return r >= Skip && r < ruleCount
}

// Next returns the rule that follows r in the editor cycle Skip, Hide, Show
func (r Rule) Next() Rule {
	if !r.Valid() {
		return Hide
	}

	return (r + 1) % ruleCount
}

// Visible reports the visibility r forces, and false for Skip
func (r Rule) Visible() (visible, forced bool) {
	switch r {
	case Hide:
		return false, true
	case Show:
		return true, true
	}

	return false, false
}

// ParseRule looks a rule up by name, ignoring case
func ParseRule(name string) (Rule, error) {
	i, err := lookup("rule", name, ruleNames[:])
	if err != nil {
		return Skip, err
	}

	return Rule(i), nil
}
