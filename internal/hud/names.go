package hud

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownName is wrapped by every Parse function when a name is not recognised
var ErrUnknownName = errors.New("unknown name")

// maxSuggestDistance bounds how far a typo may be from a name to be suggested
const maxSuggestDistance = 3

// lookup returns the index of name in names, ignoring case
func lookup(kind, name string, names []string) (int, error) {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return i, nil
		}
	}

	if s := Suggest(name, names); s != "" {
		return 0, fmt.Errorf("%w: %s %q (did you mean %q?)", ErrUnknownName, kind, name, s)
	}

	return 0, fmt.Errorf("%w: %s %q", ErrUnknownName, kind, name)
}

// Suggest returns the candidate closest to name, or "" if none is close enough
func Suggest(name string, candidates []string) string {
	best := ""
	bestDist := maxSuggestDistance + 1
	lower := strings.ToLower(name)

	for _, c := range candidates {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}

	return best
}
