package train

import "github.com/example/go-hindi-bpe/internal/lexicon"

// BoostRule scores a merged candidate. Rules are evaluated in order and the
// first match decides the weight; they are not cumulative.
type BoostRule struct {
	Name   string
	Weight int
	Match  func(merged string) bool
}

// DefaultWeight applies when no rule matches.
const DefaultWeight = 1

// DefaultBoostRules returns the Hindi boost precedence, highest first.
func DefaultBoostRules(t *lexicon.Tables) []BoostRule {
	return []BoostRule{
		{Name: "common-word", Weight: 20, Match: t.IsCommonWord},
		{Name: "vowel-sign", Weight: 15, Match: t.HasVowelSign},
		{Name: "verb-suffix", Weight: 12, Match: t.EndsWithVerbSuffix},
		{Name: "suffix", Weight: 10, Match: t.EndsWithSuffix},
		{Name: "prefix", Weight: 8, Match: t.StartsWithPrefix},
		{Name: "joiner", Weight: 6, Match: lexicon.HasJoiner},
	}
}

// Boost returns the weight of the first rule matching merged, or
// DefaultWeight.
func Boost(rules []BoostRule, merged string) int {
	if _, w := match(rules, merged); w > 0 {
		return w
	}
	return DefaultWeight
}

// match returns the name and weight of the first matching rule.
func match(rules []BoostRule, merged string) (string, int) {
	for _, r := range rules {
		if r.Match(merged) {
			return r.Name, r.Weight
		}
	}
	return "", 0
}
