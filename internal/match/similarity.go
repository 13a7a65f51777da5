package match

import (
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Ratio is the plain character-similarity score between two strings on a
// 0-100 scale, derived from Levenshtein distance over the combined length.
func Ratio(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	r := levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	return int(r*100 + 0.5)
}

// PartialRatio is the best Ratio of the shorter string against any
// equal-length window of the longer. A short name fully contained in a long
// one scores 100.
func PartialRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 0
	}
	if len(ra) == len(rb) {
		return Ratio(string(ra), string(rb))
	}

	best := 0
	for i := 0; i+len(ra) <= len(rb); i++ {
		score := Ratio(string(ra), string(rb[i:i+len(ra)]))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// TokenSetRatio is an order-independent token overlap score: both strings
// are split into unique sorted tokens, and the score is the best Ratio among
// the intersection and each side's intersection-plus-remainder. A name whose
// tokens are a subset of the other's scores 100.
func TokenSetRatio(a, b string) int {
	tokensA := uniqueTokens(a)
	tokensB := uniqueTokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	inter, diffA := splitTokens(tokensA, tokensB)
	_, diffB := splitTokens(tokensB, tokensA)

	t0 := strings.Join(inter, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(diffA, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(diffB, " "))

	best := Ratio(t1, t2)
	if t0 != "" {
		if s := Ratio(t0, t1); s > best {
			best = s
		}
		if s := Ratio(t0, t2); s > best {
			best = s
		}
	}
	return best
}

// uniqueTokens returns a string's whitespace-separated tokens, deduplicated
// and sorted.
func uniqueTokens(s string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, tok := range strings.Fields(s) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// splitTokens partitions a into the tokens shared with b and the remainder.
// Both inputs are sorted, so the outputs stay sorted.
func splitTokens(a, b []string) (inter, diff []string) {
	inB := make(map[string]struct{}, len(b))
	for _, tok := range b {
		inB[tok] = struct{}{}
	}
	for _, tok := range a {
		if _, ok := inB[tok]; ok {
			inter = append(inter, tok)
		} else {
			diff = append(diff, tok)
		}
	}
	return inter, diff
}
