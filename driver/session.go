package driver

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/rod/lib/utils"
	"github.com/ysmood/gson"
)

// Session is the rod-backed page handle handed to the sequencer and the
// inspector. Each call binds the caller's context to the page.
type Session struct {
	page       *rod.Page
	idleWindow time.Duration
}

// Navigate loads url and blocks until no request has been in flight for
// the idle window.
//
// The idle waiter is registered before navigating. Registered afterwards
// it would miss the requests the navigation starts and report idle at once.
func (s *Session) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)

	waitIdle := p.WaitRequestIdle(s.idleWindow, nil, nil, nil)
	if err := p.Navigate(url); err != nil {
		return err
	}
	if err := p.WaitLoad(); err != nil {
		return err
	}
	waitIdle()
	return ctx.Err()
}

// Eval runs a JS function in the page and returns its value.
func (s *Session) Eval(ctx context.Context, js string, args ...any) (gson.JSON, error) {
	res, err := s.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return gson.JSON{}, err
	}
	return res.Value, nil
}

// Screenshot captures the full page as PNG and writes it to path.
func (s *Session) Screenshot(ctx context.Context, path string) error {
	buf, err := s.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return err
	}
	return utils.OutputFile(path, buf)
}

// PressKey types a single key into the focused page.
func (s *Session) PressKey(ctx context.Context, key input.Key) error {
	return s.page.Context(ctx).Keyboard.Type(key)
}

// HoverFirst moves the mouse over the first element matching selector. It
// does not wait for the element to appear.
//
// rod's Element.Hover waits until nothing covers the element, which never
// happens for cards under a full-page canvas or overlay. The pointer is
// moved to a point inside the element's box instead, covered or not.
func (s *Session) HoverFirst(ctx context.Context, selector string) (bool, error) {
	p := s.page.Context(ctx)
	els, err := p.Elements(selector)
	if err != nil {
		return false, err
	}
	if els.Empty() {
		return false, nil
	}

	el := els.First()
	if err := el.ScrollIntoView(); err != nil {
		return false, err
	}
	shape, err := el.Shape()
	if err != nil {
		return false, err
	}
	pt := shape.OnePointInside()
	if pt == nil {
		// Zero-size or display:none, nothing to point at.
		return false, nil
	}
	if err := p.Mouse.MoveTo(*pt); err != nil {
		return false, err
	}
	return true, nil
}

// HTML returns the current serialized DOM.
func (s *Session) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}
