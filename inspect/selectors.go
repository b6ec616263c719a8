// Package inspect builds the Inspection Record, either live inside the page
// under test or offline from a saved DOM snapshot.
package inspect

import "github.com/use-agent/vibcheck/models"

// CardSelector matches the adaptive cards the sequencer hovers.
const CardSelector = ".adaptive-card"

// AnimationProbe is the best-effort selector whose computed animation-name
// is reported. Pseudo-elements never match querySelector, so the page
// script falls back to document.body.
const AnimationProbe = ".holographic-layer::before"

// Query maps one record field to the selector that feeds it.
type Query struct {
	Field    string `json:"field"`
	Selector string `json:"selector"`
}

// Counts are the fields reported as the number of matching elements.
var Counts = []Query{
	{"navButtons", ".nav-btn"},
	{"parameterSliders", ".parameter-slider"},
	{"geometrySelector", ".geometry-selector"},
	{"adaptiveCards", CardSelector},
	{"glitchBorders", ".glitch-border"},
	{"holographicLayers", ".holographic-layer"},
	{"glassShadows", ".glass-shadow"},
	{"accentElements", ".accent-element"},
	{"canvasElements", "canvas"},
	{"gridSparse", ".grid-density-sparse"},
	{"gridLow", ".grid-density-low"},
	{"gridMedium", ".grid-density-medium"},
	{"gridHigh", ".grid-density-high"},
	{"gridDense", ".grid-density-dense"},
	{"videoPlayers", ".video-player"},
	{"audioPlayers", ".audio-player"},
	{"textPlayers", ".text-player"},
}

// Exists are the fields reported as "at least one element matches".
var Exists = []Query{
	{"cardsContainer", ".cards-container"},
}

// Globals are the fields reported as "window binding is defined".
var Globals = []Query{
	{"systemLoaded", models.SystemGlobal},
	{"agentAPILoaded", models.AgentAPIGlobal},
}
