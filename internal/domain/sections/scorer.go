package sections

import (
	"strings"
	"unicode"

	"github.com/vpetrenko/cutplan/internal/types"
)

// Scorer rates topic continuity between two adjacent segments in [0, 1].
// Higher means the segments likely belong to the same narrative beat. The
// planner treats this as a pluggable signal so a learned model can replace
// the lexical default without touching the break heuristics.
type Scorer interface {
	Continuity(prev, next types.Segment) float64
}

// LexicalScorer scores continuity as the Jaccard overlap of the two
// segments' keyword sets, stopwords removed.
type LexicalScorer struct{}

func (LexicalScorer) Continuity(prev, next types.Segment) float64 {
	a := keywords(prev.Text)
	b := keywords(next.Text)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "if": {}, "in": {}, "is": {}, "it": {},
	"of": {}, "on": {}, "or": {}, "so": {}, "that": {}, "the": {}, "this": {},
	"to": {}, "was": {}, "we": {}, "with": {}, "you": {},
}

func keywords(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(tok) < 2 {
			continue
		}
		if _, ok := stopwords[tok]; ok {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}
