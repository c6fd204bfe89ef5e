// Package capture drives a headless Chrome session to screenshot single
// pages: navigate with a bounded timeout, wait for an optional selector,
// settle, shoot, and optionally hand the image to the title-bar
// annotator.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/mleclerc/gitshot/internal/plan"
)

// ErrNotStarted is returned by Capture before Start has connected a
// browser.
var ErrNotStarted = errors.New("capture engine not started")

// Annotator post-processes a captured image, overlaying a browser-style
// title bar. A nil annotator degrades to a warning, never a failure.
type Annotator interface {
	Annotate(imagePath, title, url, style string) error
}

const (
	navigationTimeout = 10 * time.Second
	selectorTimeout   = 5 * time.Second

	// deviceScale doubles the pixel density for retina-quality output.
	deviceScale = 2.0
)

// Engine owns the browser session for the duration of a run.
type Engine struct {
	headless  bool
	annotator Annotator
	out       io.Writer

	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewEngine creates an engine. The browser is not launched until Start,
// so a plan can be listed without Chrome installed.
func NewEngine(headless bool, annotator Annotator, out io.Writer) *Engine {
	return &Engine{headless: headless, annotator: annotator, out: out}
}

// Start launches Chrome and connects to it.
func (e *Engine) Start() error {
	l := launcher.New().Headless(e.headless)
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	e.lnch = l

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		e.lnch = nil
		return fmt.Errorf("connect browser: %w", err)
	}
	e.browser = b
	return nil
}

// Capture takes one screenshot and returns the final output path.
// Navigation and selector waits are best-effort: the page is shot in
// whatever state resulted, unless writing the image itself fails.
func (e *Engine) Capture(spec *plan.CaptureSpec, baseURL string) (string, error) {
	if e.browser == nil {
		return "", ErrNotStarted
	}

	page, err := e.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             spec.ViewportWidth,
		Height:            spec.ViewportHeight,
		DeviceScaleFactor: deviceScale,
		Mobile:            false,
	}); err != nil {
		return "", fmt.Errorf("set viewport: %w", err)
	}

	url := ResolveURL(spec.URL, baseURL)
	e.navigate(page, url, spec.IsErrorPage)

	if spec.WaitFor != "" {
		if _, err := page.Timeout(selectorTimeout).Element(spec.WaitFor); err != nil {
			fmt.Fprintf(e.out, "    warning: selector %q not found: %v\n", spec.WaitFor, err)
		}
	}

	if spec.Delay > 0 {
		time.Sleep(time.Duration(spec.Delay * float64(time.Second)))
	}

	// Read the title before the page goes away; only the annotator uses it.
	title := pageTitle(page)

	if err := os.MkdirAll(filepath.Dir(spec.OutputPath), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	img, err := page.Screenshot(spec.FullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if err := os.WriteFile(spec.OutputPath, img, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", spec.OutputPath, err)
	}

	if spec.ShowTitleBar {
		if e.annotator == nil {
			fmt.Fprintf(e.out, "    warning: title bar requested but annotator unavailable\n")
		} else if err := e.annotator.Annotate(spec.OutputPath, title, url, spec.TitleBarStyle); err != nil {
			fmt.Fprintf(e.out, "    warning: title bar annotation failed: %v\n", err)
		}
	}

	return spec.OutputPath, nil
}

// Stop closes the browser and cleans the launcher up. Safe to call
// before Start or more than once.
func (e *Engine) Stop() error {
	var err error
	if e.browser != nil {
		err = e.browser.Close()
		e.browser = nil
	}
	if e.lnch != nil {
		e.lnch.Cleanup()
		e.lnch = nil
	}
	return err
}

// navigate loads the target URL with a bounded timeout. A failure on a
// declared error page is the intended outcome and stays silent; any
// other failure is a warning and the capture proceeds best-effort.
func (e *Engine) navigate(page *rod.Page, url string, expectedErrorPage bool) {
	ctx, cancel := context.WithTimeout(context.Background(), navigationTimeout)
	defer cancel()

	if err := page.Context(ctx).Navigate(url); err != nil {
		if !expectedErrorPage {
			fmt.Fprintf(e.out, "    warning: navigation to %s failed: %v\n", url, err)
		}
		return
	}
	if err := page.Context(ctx).WaitLoad(); err != nil {
		if !expectedErrorPage {
			fmt.Fprintf(e.out, "    warning: page load incomplete for %s: %v\n", url, err)
		}
	}
}

// ResolveURL joins a relative capture URL onto the server base URL.
// Absolute addresses pass through untouched.
func ResolveURL(specURL, baseURL string) string {
	if strings.HasPrefix(specURL, "http://") || strings.HasPrefix(specURL, "https://") {
		return specURL
	}
	return baseURL + specURL
}

func pageTitle(page *rod.Page) string {
	info, err := page.Info()
	if err != nil || info.Title == "" {
		return "Untitled"
	}
	return info.Title
}
