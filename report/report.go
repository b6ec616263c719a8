// Package report turns an Inspection Record into derived checks, a verdict
// and a human-readable console report.
package report

import "github.com/use-agent/vibcheck/models"

// Remediation hints, one per check, in report order.
const (
	FixCore    = "Core: make sure window.vib34dSystem and window.agentAPI are defined once initialization finishes"
	FixUI      = "UI: render .nav-btn navigation buttons and .parameter-slider controls"
	FixCards   = "Cards: render .adaptive-card elements carrying .glitch-border effects"
	FixWebGL   = "WebGL: make sure the visualizers create their canvas elements"
	FixEffects = "Effects: apply .holographic-layer and .glass-shadow styling"
)

// Evaluate derives the five success flags and the overall verdict.
func Evaluate(r models.Record) models.Verdict {
	v := models.Verdict{
		Core:    r.SystemLoaded && r.AgentAPILoaded,
		UI:      r.NavButtons > 0 && r.ParameterSliders > 0,
		Cards:   r.AdaptiveCards > 0 && r.GlitchBorders > 0,
		WebGL:   r.CanvasElements > 0,
		Effects: r.HolographicLayers > 0 && r.GlassShadows > 0,
	}
	v.Overall = v.Core && v.UI && v.Cards && v.WebGL && v.Effects
	return v
}

// Remediation names the failing checks in the fixed order
// core, UI, cards, WebGL, effects. It is empty when v.Overall is true.
func Remediation(v models.Verdict) []string {
	var fixes []string
	for _, c := range checks(v) {
		if !c.ok {
			fixes = append(fixes, c.fix)
		}
	}
	return fixes
}

type check struct {
	label string
	ok    bool
	fix   string
}

func checks(v models.Verdict) []check {
	return []check{
		{"Core system", v.Core, FixCore},
		{"UI controls", v.UI, FixUI},
		{"Adaptive cards", v.Cards, FixCards},
		{"WebGL canvases", v.WebGL, FixWebGL},
		{"Visual effects", v.Effects, FixEffects},
	}
}
