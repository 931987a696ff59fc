package password

import "unicode"

// Rule identifies one of the five strength predicates.
type Rule uint8

const (
	RuleMinLength Rule = iota
	RuleUppercase
	RuleLowercase
	RuleDigit
	RuleSymbol
	ruleCount
)

func (r Rule) String() string {
	switch r {
	case RuleMinLength:
		return "length"
	case RuleUppercase:
		return "upper"
	case RuleLowercase:
		return "lower"
	case RuleDigit:
		return "digit"
	case RuleSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// Strength is the banded classification of a score.
type Strength uint8

const (
	StrengthWeak Strength = iota
	StrengthFair
	StrengthGood
	StrengthStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthWeak:
		return "weak"
	case StrengthFair:
		return "fair"
	case StrengthGood:
		return "good"
	default:
		return "strong"
	}
}

// MinLength is the minimum acceptable password length.
const MinLength = 8

// Assessment is the result of evaluating one candidate password.
type Assessment struct {
	Score          int
	Strength       Strength
	SatisfiedRules map[Rule]bool
	Suggestions    []string
}

// Satisfied reports whether the given rule passed.
func (a Assessment) Satisfied(r Rule) bool {
	return a.SatisfiedRules[r]
}

// suggestions are emitted in fixed rule order: length, upper, lower, digit,
// symbol.
var suggestionText = [ruleCount]string{
	RuleMinLength: "Use at least 8 characters",
	RuleUppercase: "Add an uppercase letter",
	RuleLowercase: "Add a lowercase letter",
	RuleDigit:     "Add a number",
	RuleSymbol:    "Add a symbol (e.g. ! @ # $)",
}

// Evaluate scores the candidate password. Pure function: same input, same
// Assessment.
func Evaluate(candidate string) Assessment {
	satisfied := map[Rule]bool{
		RuleMinLength: len(candidate) >= MinLength,
		RuleUppercase: containsClass(candidate, unicode.IsUpper),
		RuleLowercase: containsClass(candidate, unicode.IsLower),
		RuleDigit:     containsClass(candidate, unicode.IsDigit),
		RuleSymbol:    containsSymbol(candidate),
	}

	score := 0
	suggestions := make([]string, 0, int(ruleCount))
	for r := Rule(0); r < ruleCount; r++ {
		if satisfied[r] {
			score++
			continue
		}
		suggestions = append(suggestions, suggestionText[r])
	}

	return Assessment{
		Score:          score,
		Strength:       strengthForScore(score),
		SatisfiedRules: satisfied,
		Suggestions:    suggestions,
	}
}

func strengthForScore(score int) Strength {
	switch {
	case score <= 1:
		return StrengthWeak
	case score <= 2:
		return StrengthFair
	case score <= 3:
		return StrengthGood
	default:
		return StrengthStrong
	}
}

func containsClass(s string, is func(rune) bool) bool {
	for _, r := range s {
		if is(r) {
			return true
		}
	}
	return false
}

func containsSymbol(s string) bool {
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return true
		}
	}
	return false
}
