// Package suggest resolves user-typed names to entities, offering
// ranked alternatives when the input is misspelled or ambiguous.
package suggest

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 3

// Candidate pairs an entity id with its display name.
type Candidate struct {
	ID   int64
	Name string
}

type candidateSource []Candidate

func (s candidateSource) String(i int) string { return s[i].Name }
func (s candidateSource) Len() int            { return len(s) }

// Names returns candidates ranked by fuzzy match quality, best first,
// capped at three. An empty input returns nothing.
func Names(input string, candidates []Candidate) []Candidate {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	matches := fuzzy.FindFrom(input, candidateSource(candidates))
	out := make([]Candidate, 0, maxSuggestions)
	for _, m := range matches {
		out = append(out, candidates[m.Index])
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// NoMatchError reports an input that resolved to nothing, carrying the
// closest alternatives for the error message.
type NoMatchError struct {
	Input       string
	What        string
	Suggestions []Candidate
}

func (e *NoMatchError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no %s matches %q", e.What, e.Input)
	}
	names := make([]string, len(e.Suggestions))
	for i, s := range e.Suggestions {
		names[i] = s.Name
	}
	return fmt.Sprintf("no %s matches %q (did you mean %s?)", e.What, e.Input, strings.Join(names, ", "))
}

// AmbiguousError reports an input that matched several candidates
// equally well.
type AmbiguousError struct {
	Input      string
	What       string
	Candidates []Candidate
}

func (e *AmbiguousError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.Name
	}
	return fmt.Sprintf("%s %q is ambiguous: %s", e.What, e.Input, strings.Join(names, ", "))
}

// Resolve maps an input to exactly one candidate. An exact name match
// (case-insensitive) always wins. Otherwise the input must fuzzily
// match a single candidate; several matches are ambiguous, none is a
// no-match carrying the ranked alternatives from the whole pool.
func Resolve(input, what string, candidates []Candidate) (Candidate, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Candidate{}, &NoMatchError{Input: input, What: what}
	}

	for _, c := range candidates {
		if strings.EqualFold(c.Name, trimmed) {
			return c, nil
		}
	}

	matches := fuzzy.FindFrom(trimmed, candidateSource(candidates))
	switch len(matches) {
	case 0:
		return Candidate{}, &NoMatchError{Input: trimmed, What: what}
	case 1:
		return candidates[matches[0].Index], nil
	default:
		// A clear winner resolves; near ties are ambiguous.
		if matches[0].Score > matches[1].Score {
			return candidates[matches[0].Index], nil
		}
		tied := []Candidate{candidates[matches[0].Index]}
		for _, m := range matches[1:] {
			if m.Score == matches[0].Score {
				tied = append(tied, candidates[m.Index])
			}
		}
		return Candidate{}, &AmbiguousError{Input: trimmed, What: what, Candidates: tied}
	}
}
