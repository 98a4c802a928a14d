package graph

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
)

// fuzzyThreshold is the minimum Jaro-Winkler similarity (over stemmed,
// space-joined tokens) a name must clear to be added by the Fuzzy
// SearchSymbols extension (spec.md §8.1 property 3 / §9 open question 3:
// substring is the required default, fuzzy is opt-in only).
const fuzzyThreshold = 0.80

// fuzzyRank extends substringMatches with names from allNames that miss a
// literal substring match but score above fuzzyThreshold on stemmed
// Jaro-Winkler similarity against pattern, sorted by descending score.
// Grounded on the teacher's internal/semantic/fuzzy_matcher.go
// (edlib.StringsSimilarity with edlib.JaroWinkler) and stemmer.go
// (porter2.Stem), repurposed from dictionary-driven synonym matching to
// symbol-name search ranking.
func fuzzyRank(pattern string, allNames, substringMatches []string) []string {
	already := make(map[string]bool, len(substringMatches))
	for _, n := range substringMatches {
		already[n] = true
	}

	stemmedPattern := stemmedJoin(pattern)

	type scored struct {
		name  string
		score float64
	}
	var extra []scored
	for _, name := range allNames {
		if already[name] {
			continue
		}
		score, err := edlib.StringsSimilarity(stemmedJoin(name), stemmedPattern, edlib.JaroWinkler)
		if err != nil || float64(score) < fuzzyThreshold {
			continue
		}
		extra = append(extra, scored{name: name, score: float64(score)})
	}

	sort.SliceStable(extra, func(i, j int) bool { return extra[i].score > extra[j].score })

	out := make([]string, len(substringMatches), len(substringMatches)+len(extra))
	copy(out, substringMatches)
	for _, e := range extra {
		out = append(out, e.name)
	}
	return out
}

// stemmedJoin stems every identifier-ish token in s and rejoins them,
// giving Jaro-Winkler something closer to a normalized form to compare
// (e.g. "parseUser" and "parsing users" both stem toward "pars user").
func stemmedJoin(s string) string {
	tokens := splitIdentifier(s)
	for i, t := range tokens {
		if len(t) >= 3 {
			tokens[i] = porter2.Stem(strings.ToLower(t))
		} else {
			tokens[i] = strings.ToLower(t)
		}
	}
	return strings.Join(tokens, " ")
}

// splitIdentifier breaks camelCase/snake_case/kebab-case/space-separated
// identifiers into lowercase-ish word tokens.
func splitIdentifier(s string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
		case r >= 'A' && r <= 'Z' && i > 0 && !(runes[i-1] >= 'A' && runes[i-1] <= 'Z'):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}
