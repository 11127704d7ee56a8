package backends

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// actionTimeout bounds a single browser operation. Navigation on a slow
// page should fail loudly rather than wedge the run.
const actionTimeout = 60 * time.Second

// BrowserBridge owns one persistent Chrome session. Operations are
// stateless commands against that session, so page state survives
// between plan steps. The browser starts lazily on first use.
type BrowserBridge struct {
	Headless bool

	mu            sync.Mutex
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// ensure starts the browser if it is not already running and returns
// the session context.
func (b *BrowserBridge) ensure() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browserCtx != nil && b.browserCtx.Err() == nil {
		return b.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 900),
	)
	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)

	// First Run both validates the install and materializes the
	// process.
	if err := chromedp.Run(b.browserCtx); err != nil {
		b.closeLocked()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return b.browserCtx, nil
}

// Close tears down the session. The next operation starts a fresh one.
func (b *BrowserBridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked()
}

func (b *BrowserBridge) closeLocked() {
	if b.browserCancel != nil {
		b.browserCancel()
		b.browserCancel = nil
		b.browserCtx = nil
	}
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
		b.allocCtx = nil
	}
}

func (b *BrowserBridge) run(ctx context.Context, actions ...chromedp.Action) error {
	session, err := b.ensure()
	if err != nil {
		return err
	}
	opCtx, cancel := context.WithTimeout(session, actionTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(opCtx, actions...)
}

// Location returns the current page URL and title, empty when no
// session is live.
func (b *BrowserBridge) Location(ctx context.Context) (url, title string) {
	b.mu.Lock()
	alive := b.browserCtx != nil && b.browserCtx.Err() == nil
	b.mu.Unlock()
	if !alive {
		return "", ""
	}
	_ = b.run(ctx, chromedp.Location(&url), chromedp.Title(&title))
	return url, title
}

func (b *BrowserBridge) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, chromedp.Navigate(url))
}

func (b *BrowserBridge) Click(ctx context.Context, selector string) error {
	return b.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (b *BrowserBridge) Fill(ctx context.Context, selector, text string) error {
	return b.run(ctx,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
}

// namedKeys maps key names the translator emits to key runes.
var namedKeys = map[string]string{
	"enter":     kb.Enter,
	"return":    kb.Enter,
	"tab":       kb.Tab,
	"escape":    kb.Escape,
	"esc":       kb.Escape,
	"backspace": kb.Backspace,
	"delete":    kb.Delete,
	"up":        kb.ArrowUp,
	"down":      kb.ArrowDown,
	"left":      kb.ArrowLeft,
	"right":     kb.ArrowRight,
	"pageup":    kb.PageUp,
	"pagedown":  kb.PageDown,
	"home":      kb.Home,
	"end":       kb.End,
}

func (b *BrowserBridge) Press(ctx context.Context, key string) error {
	keys, ok := namedKeys[strings.ToLower(key)]
	if !ok {
		keys = key
	}
	return b.run(ctx, chromedp.KeyEvent(keys))
}

func (b *BrowserBridge) Type(ctx context.Context, text string) error {
	return b.run(ctx, chromedp.KeyEvent(text))
}

func (b *BrowserBridge) Content(ctx context.Context) (string, error) {
	var html string
	if err := b.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Elements returns trimmed outerHTML snippets for up to 50 matches of
// the selector.
func (b *BrowserBridge) Elements(ctx context.Context, selector string) ([]string, error) {
	js := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).slice(0, 50).map(e => e.outerHTML.slice(0, 300))`,
		selector,
	)
	var out []string
	if err := b.run(ctx, chromedp.Evaluate(js, &out)); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BrowserBridge) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := b.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("screenshot dir: %w", err)
		}
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}

func (b *BrowserBridge) Wait(ctx context.Context, selector string) error {
	return b.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}
