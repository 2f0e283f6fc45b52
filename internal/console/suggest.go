package console

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	maxSuggestions  = 3
	maxTypoDistance = 2
)

// suggest returns up to maxSuggestions registered names close to name:
// subsequence matches first, then near-miss spellings.
func suggest(name string, names []string) []string {
	if name == "" || len(names) == 0 {
		return nil
	}

	ranks := fuzzy.RankFindFold(name, names)
	if len(ranks) == 0 {
		lower := strings.ToLower(name)
		for i, target := range names {
			d := fuzzy.LevenshteinDistance(lower, target)
			if d <= maxTypoDistance {
				ranks = append(ranks, fuzzy.Rank{Source: name, Target: target, Distance: d, OriginalIndex: i})
			}
		}
	}
	sort.Sort(ranks)

	var out []string
	for _, rank := range ranks {
		out = append(out, rank.Target)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
