// Package browser previews generated visualization artifacts in a real
// Chromium instance. The artifact host page sandboxes the generated code;
// this package just gets that page onto a screen.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"astrochat/internal/logging"
)

// Config controls how the preview browser is obtained.
type Config struct {
	// DebuggerURL attaches to an already-running Chrome instead of
	// launching one.
	DebuggerURL string
	Headless    bool
	ViewportW   int
	ViewportH   int
	NavTimeout  time.Duration
}

// DefaultConfig previews headed, the whole point being to watch the
// animation.
func DefaultConfig() Config {
	return Config{
		Headless:   false,
		ViewportW:  1280,
		ViewportH:  720,
		NavTimeout: 30 * time.Second,
	}
}

func (c Config) navTimeout() time.Duration {
	if c.NavTimeout <= 0 {
		return 30 * time.Second
	}
	return c.NavTimeout
}

// Previewer owns at most one browser connection, created lazily on the
// first Open and reused after.
type Previewer struct {
	cfg Config

	mu      sync.Mutex
	browser *rod.Browser
}

// New builds a previewer; no browser is touched until Open.
func New(cfg Config) *Previewer {
	return &Previewer{cfg: cfg}
}

func (p *Previewer) connectLocked(ctx context.Context) error {
	if p.browser != nil {
		if _, err := p.browser.Version(); err == nil {
			return nil
		}
		logging.UI("stale browser connection, reconnecting")
		_ = p.browser.Close()
		p.browser = nil
	}

	controlURL := p.cfg.DebuggerURL
	if controlURL == "" {
		u, err := launcher.New().Headless(p.cfg.Headless).Launch()
		if err != nil {
			return fmt.Errorf("browser: launch chromium: %w", err)
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("browser: connect: %w", err)
	}
	p.browser = b
	return nil
}

// Open loads an artifact host page from disk and returns once navigation
// settles. The page stays open until Close or the browser exits.
func (p *Previewer) Open(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("browser: resolve artifact path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("browser: artifact missing: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(ctx); err != nil {
		return err
	}

	fileURL := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	page, err := p.browser.Page(proto.TargetCreateTarget{URL: fileURL.String()})
	if err != nil {
		return fmt.Errorf("browser: open artifact: %w", err)
	}
	if p.cfg.ViewportW > 0 && p.cfg.ViewportH > 0 {
		if err := (proto.EmulationSetDeviceMetricsOverride{
			Width:             p.cfg.ViewportW,
			Height:            p.cfg.ViewportH,
			DeviceScaleFactor: 1.0,
			Mobile:            false,
		}).Call(page); err != nil {
			logging.UI("set viewport: %v", err)
		}
	}
	if err := page.Timeout(p.cfg.navTimeout()).WaitLoad(); err != nil {
		return fmt.Errorf("browser: artifact never finished loading: %w", err)
	}
	logging.UI("previewing artifact %s", filepath.Base(abs))
	return nil
}

// Screenshot opens the artifact headlessly and captures a PNG, for sharing
// a still of an animation.
func (p *Previewer) Screenshot(ctx context.Context, path, outPNG string) error {
	if err := p.Open(ctx, path); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	pages, err := p.browser.Pages()
	if err != nil || len(pages) == 0 {
		return fmt.Errorf("browser: no page to capture: %w", err)
	}
	data, err := pages[0].Screenshot(false, nil)
	if err != nil {
		return fmt.Errorf("browser: capture: %w", err)
	}
	if err := os.WriteFile(outPNG, data, 0o644); err != nil {
		return fmt.Errorf("browser: write screenshot: %w", err)
	}
	return nil
}

// Close shuts the browser down if one was started.
func (p *Previewer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.browser == nil {
		return nil
	}
	err := p.browser.Close()
	p.browser = nil
	return err
}
