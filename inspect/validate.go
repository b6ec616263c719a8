package inspect

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Note flags a selector that parses but can never match a live element.
type Note struct {
	Field    string
	Selector string
	Reason   string
}

// ValidateSelectors parses every selector the inspector uses. A syntax
// error in any of them is returned, since the page would throw mid-run.
// The animation probe is allowed a pseudo-element and is reported as
// informational instead.
func ValidateSelectors(spec Spec) ([]Note, error) {
	for _, group := range [][]Query{spec.Counts, spec.Exists} {
		for _, q := range group {
			if _, err := cascadia.Parse(q.Selector); err != nil {
				return nil, fmt.Errorf("inspect: selector %q for %s: %w", q.Selector, q.Field, err)
			}
		}
	}

	var notes []Note
	if spec.Animation != "" {
		sel, err := cascadia.ParseWithPseudoElement(spec.Animation)
		if err != nil {
			return nil, fmt.Errorf("inspect: animation probe %q: %w", spec.Animation, err)
		}
		if pe := sel.PseudoElement(); pe != "" {
			notes = append(notes, Note{
				Field:    "animationName",
				Selector: spec.Animation,
				Reason:   fmt.Sprintf("pseudo-element ::%s never matches querySelector, body is reported instead", pe),
			})
		}
	}
	return notes, nil
}
