package health

// RuleResult maps rule names to their outcome for one segment.
// True means the rule was violated.
type RuleResult map[string]bool

// AnyViolated reports whether at least one rule in the result is violated.
func (r RuleResult) AnyViolated() bool {
	for _, violated := range r {
		if violated {
			return true
		}
	}

	return false
}

// Explanation groups per-segment rule results by wear state, keyed by
// segment identifier. Every evaluated segment appears with its full rule
// map, violated or not, so a consumer can audit the decision.
type Explanation struct {
	// WristOn holds rule results for segments where the device was worn.
	WristOn map[string]RuleResult `json:"wrist_on"`
	// WristOff holds rule results for segments where the device was not worn.
	WristOff map[string]RuleResult `json:"wrist_off"`
}

// NewExplanation returns an Explanation with both groups initialised, so an
// empty group serialises as {} rather than null.
func NewExplanation() Explanation {
	return Explanation{
		WristOn:  make(map[string]RuleResult),
		WristOff: make(map[string]RuleResult),
	}
}

// AnyViolated reports whether any segment in either group violated a rule.
func (e Explanation) AnyViolated() bool {
	for _, result := range e.WristOn {
		if result.AnyViolated() {
			return true
		}
	}

	for _, result := range e.WristOff {
		if result.AnyViolated() {
			return true
		}
	}

	return false
}

// Verdict is the final fault determination for one device-day, owned by the
// caller once produced. IsFaulty is true iff at least one rule is violated
// in at least one segment of either wear group.
type Verdict struct {
	// IsFaulty reports whether the device-day is considered malfunctioning.
	IsFaulty bool `json:"is_faulty"`
	// Explanation carries the per-segment rule evidence behind IsFaulty.
	Explanation Explanation `json:"explanation"`
}
