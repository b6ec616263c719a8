//go:build browser

package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/vibcheck/config"
)

// These tests need a Chromium rod can launch or download:
//
//	go test -tags browser ./driver/

const hoverPage = `<!doctype html>
<html><body style="margin:0">
<div class="adaptive-card" id="open" style="width:200px;height:100px">open</div>
<script>
  window.hits = [];
  document.getElementById('open').addEventListener('mouseover', () => window.hits.push('open'));
</script>
</body></html>`

const coveredPage = `<!doctype html>
<html><body style="margin:0">
<div class="adaptive-card" style="width:200px;height:100px">card</div>
<canvas id="overlay" style="position:fixed;inset:0;width:100vw;height:100vh;z-index:10"></canvas>
<script>
  window.hits = [];
  document.getElementById('overlay').addEventListener('mouseover', () => window.hits.push('overlay'));
</script>
</body></html>`

func openTestSession(t *testing.T, html string) (*Session, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("browser test skipped in -short mode")
	}

	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(html), 0o644))
	u, err := FileURL(path)
	require.NoError(t, err)

	drv, err := Launch(config.BrowserConfig{
		Headless:       true,
		NoSandbox:      true,
		ViewportWidth:  800,
		ViewportHeight: 600,
	})
	require.NoError(t, err)
	t.Cleanup(drv.Close)

	sess, err := drv.OpenPage(&bytes.Buffer{}, config.SequenceConfig{IdleWindow: 200 * time.Millisecond})
	require.NoError(t, err)
	return sess, u
}

func hits(t *testing.T, ctx context.Context, sess *Session) []string {
	t.Helper()
	res, err := sess.Eval(ctx, `() => window.hits`)
	require.NoError(t, err)
	var out []string
	for _, v := range res.Arr() {
		out = append(out, v.Str())
	}
	return out
}

func TestSession_NavigateWaitsForLoad(t *testing.T) {
	sess, u := openTestSession(t, hoverPage)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, sess.Navigate(ctx, u))

	state, err := sess.Eval(ctx, `() => document.readyState`)
	require.NoError(t, err)
	assert.Equal(t, "complete", state.Str())

	doc, err := sess.HTML(ctx)
	require.NoError(t, err)
	assert.Contains(t, doc, "adaptive-card")
}

func TestSession_HoverFirst(t *testing.T) {
	sess, u := openTestSession(t, hoverPage)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, sess.Navigate(ctx, u))

	hovered, err := sess.HoverFirst(ctx, ".adaptive-card")
	require.NoError(t, err)
	assert.True(t, hovered)
	assert.Equal(t, []string{"open"}, hits(t, ctx, sess))

	hovered, err = sess.HoverFirst(ctx, ".no-such-card")
	require.NoError(t, err)
	assert.False(t, hovered)
}

func TestSession_HoverFirstCoveredCard(t *testing.T) {
	sess, u := openTestSession(t, coveredPage)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, sess.Navigate(ctx, u))

	hoverCtx, hoverCancel := context.WithTimeout(ctx, 5*time.Second)
	defer hoverCancel()

	hovered, err := sess.HoverFirst(hoverCtx, ".adaptive-card")
	require.NoError(t, err, "a covered card must not block the hover")
	assert.True(t, hovered)
	assert.Equal(t, []string{"overlay"}, hits(t, ctx, sess), "the pointer moved over the card's box")
}
