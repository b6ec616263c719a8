package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/use-agent/vibcheck/models"
	"github.com/ysmood/gson"
)

// Script runs inside the page. It only reads: globals, selector counts,
// one existence check and one computed style. Every count is a number.
const Script = `(spec) => {
	const record = {};
	for (const q of spec.globals) {
		record[q.field] = typeof window[q.selector] !== 'undefined';
	}
	for (const q of spec.counts) {
		record[q.field] = document.querySelectorAll(q.selector).length;
	}
	for (const q of spec.exists) {
		record[q.field] = document.querySelector(q.selector) !== null;
	}
	let probe = null;
	try {
		probe = document.querySelector(spec.animation);
	} catch (e) {
		probe = null;
	}
	const target = probe || document.body;
	record.animationName = target ? getComputedStyle(target).animationName : 'none';
	return record;
}`

// Spec is the argument passed to Script.
type Spec struct {
	Globals   []Query `json:"globals"`
	Counts    []Query `json:"counts"`
	Exists    []Query `json:"exists"`
	Animation string  `json:"animation"`
}

// DefaultSpec returns the selector tables used by every run.
func DefaultSpec() Spec {
	return Spec{
		Globals:   Globals,
		Counts:    Counts,
		Exists:    Exists,
		Animation: AnimationProbe,
	}
}

// Evaluator runs a JS function in the page and returns its JSON result.
type Evaluator interface {
	Eval(ctx context.Context, js string, args ...any) (gson.JSON, error)
}

// Live runs Script once in the page and decodes the Inspection Record.
func Live(ctx context.Context, ev Evaluator) (models.Record, error) {
	res, err := ev.Eval(ctx, Script, DefaultSpec())
	if err != nil {
		return models.Record{}, models.NewAuditError(
			models.ErrCodeInspection,
			"in-page inspection failed",
			err,
		)
	}
	raw, err := res.MarshalJSON()
	if err != nil {
		return models.Record{}, models.NewAuditError(
			models.ErrCodeInspection,
			"inspection result is not JSON",
			err,
		)
	}
	return decodeRecord(raw)
}

// animationField is set by the probe rather than a selector table.
const animationField = "animationName"

// decodeRecord turns the script's flat JSON object into a Record.
// A null result is rejected rather than read as an all-zero record, and so
// is any object missing a field: absent never silently becomes 0.
func decodeRecord(raw []byte) (models.Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return models.Record{}, models.NewAuditError(
			models.ErrCodeInspection,
			fmt.Sprintf("inspection returned %s, want an object", truncate(raw, 64)),
			err,
		)
	}
	if missing := missingFields(fields); len(missing) > 0 {
		return models.Record{}, models.NewAuditError(
			models.ErrCodeInspection,
			fmt.Sprintf("inspection record lacks %s", strings.Join(missing, ", ")),
			nil,
		)
	}

	var rec models.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.Record{}, models.NewAuditError(
			models.ErrCodeInspection,
			"failed to decode inspection record",
			err,
		)
	}
	return rec, nil
}

// missingFields lists the expected keys that are absent or null.
func missingFields(fields map[string]json.RawMessage) []string {
	var missing []string
	check := func(name string) {
		if v, ok := fields[name]; !ok || string(v) == "null" {
			missing = append(missing, name)
		}
	}
	for _, group := range [][]Query{Globals, Counts, Exists} {
		for _, q := range group {
			check(q.Field)
		}
	}
	check(animationField)
	return missing
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
