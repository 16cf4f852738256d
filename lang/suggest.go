package lang

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

var editCost = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// Suggest returns the candidate of known closest to unknown by edit
// distance, provided the distance is at most a third of the length of
// unknown. The limit never drops below 1 so that a name shorter than three
// runes, such as a two-letter test name, still matches a candidate one
// edit away. Ties resolve to the candidate that appears first in known,
// so callers pass a sorted slice for reproducible results.
func Suggest(unknown string, known []string) (string, bool) {
	src := []rune(unknown)
	if len(src) == 0 {
		return "", false
	}

	limit := max(len(src)/3, 1)
	best, bestDist := "", limit+1

	for _, name := range known {
		if name == unknown {
			continue
		}

		d := levenshtein.DistanceForStrings(src, []rune(name), editCost)
		if d < bestDist {
			best, bestDist = name, d
		}
	}

	return best, best != ""
}
