package inspect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const renderedDOM = `<!DOCTYPE html>
<html><head><script>window.vib34dSystem = {};</script></head>
<body>
  <nav>
    <button class="nav-btn">Home</button>
    <button class="nav-btn">Tech</button>
  </nav>
  <input type="range" class="parameter-slider">
  <select class="geometry-selector"></select>
  <div class="cards-container grid-density-medium">
    <div class="adaptive-card glitch-border glass-shadow"><canvas></canvas></div>
    <div class="adaptive-card"><div class="holographic-layer"></div></div>
  </div>
  <div class="video-player"></div>
</body></html>`

func TestFromHTML_CountsSelectors(t *testing.T) {
	rec, err := FromHTML(strings.NewReader(renderedDOM))
	require.NoError(t, err)

	assert.Equal(t, 2, rec.NavButtons)
	assert.Equal(t, 1, rec.ParameterSliders)
	assert.Equal(t, 1, rec.GeometrySelector)
	assert.Equal(t, 2, rec.AdaptiveCards)
	assert.Equal(t, 1, rec.GlitchBorders)
	assert.Equal(t, 1, rec.GlassShadows)
	assert.Equal(t, 1, rec.HolographicLayers)
	assert.Equal(t, 1, rec.CanvasElements)
	assert.Equal(t, 1, rec.GridMedium)
	assert.Equal(t, 0, rec.GridDense)
	assert.Equal(t, 1, rec.VideoPlayers)
	assert.True(t, rec.CardsContainer)
}

func TestFromHTML_NeverSeesGlobals(t *testing.T) {
	rec, err := FromHTML(strings.NewReader(renderedDOM))
	require.NoError(t, err)

	assert.False(t, rec.SystemLoaded, "script globals do not exist in a static snapshot")
	assert.False(t, rec.AgentAPILoaded)
	assert.Equal(t, "none", rec.AnimationName)
}

func TestFromHTML_EmptyDocument(t *testing.T) {
	rec, err := FromHTML(strings.NewReader(`<html><body></body></html>`))
	require.NoError(t, err)

	for _, f := range rec.Fields() {
		switch v := f.Value.(type) {
		case int:
			assert.Zero(t, v, f.Name)
		case bool:
			assert.False(t, v, f.Name)
		}
	}
}
