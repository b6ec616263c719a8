package driver

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Marker glyphs the app uses in log lines worth surfacing.
var markers = []string{"✅", "🎮", "🎨", "❌"}

const (
	errorPrefix = "❌ Page Error: "
	logPrefix   = "📄 Page Log: "
)

// Classify decides whether a console message is forwarded and with which
// prefix. Errors always pass. Other levels pass only when the text carries
// one of the marker glyphs.
func Classify(level, text string) (prefix string, ok bool) {
	if level == string(proto.RuntimeConsoleAPICalledTypeError) {
		return errorPrefix, true
	}
	for _, m := range markers {
		if strings.Contains(text, m) {
			return logPrefix, true
		}
	}
	return "", false
}

// Forwarder writes classified console messages to w in arrival order.
type Forwarder struct {
	mu sync.Mutex
	w  io.Writer
}

// NewForwarder creates a Forwarder writing to w.
func NewForwarder(w io.Writer) *Forwarder {
	return &Forwarder{w: w}
}

// Forward prints the message if Classify accepts it.
func (f *Forwarder) Forward(level, text string) {
	prefix, ok := Classify(level, text)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintln(f.w, prefix+text)
}

// attachConsole subscribes f to the page's console stream. The listener
// lives as long as the page.
func attachConsole(page *rod.Page, f *Forwarder) {
	if err := (proto.RuntimeEnable{}).Call(page); err != nil {
		slog.Debug("runtime domain enable failed, relying on event subscription", "error", err)
	}

	go page.EachEvent(func(e *proto.RuntimeConsoleAPICalled) {
		f.Forward(string(e.Type), consoleText(e.Args))
	})()
}

// consoleText joins console arguments the way devtools prints them.
func consoleText(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case !arg.Value.Nil():
			parts = append(parts, arg.Value.Str())
		case arg.Description != "":
			parts = append(parts, arg.Description)
		default:
			parts = append(parts, string(arg.Type))
		}
	}
	return strings.Join(parts, " ")
}
