package link

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"loft/internal/logging"

	"github.com/chromedp/chromedp"
)

// browserCandidates are probed once at construction; screenshot capture is an
// optional capability and silently absent when none of these is installed.
var browserCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

type ScreenshotCapture struct {
	ExecPath string
	Dir      string
	Timeout  time.Duration
}

// NewScreenshotCapture returns nil unless the feature flag is on and a
// browser binary is present. Callers treat nil the same as a failed capture:
// no screenshot, no error.
func NewScreenshotCapture(enabled bool, dir string, timeout time.Duration) *ScreenshotCapture {
	if !enabled {
		return nil
	}

	var execPath string
	for _, c := range browserCandidates {
		if p, err := exec.LookPath(c); err == nil {
			execPath = p
			break
		}
	}
	if execPath == "" {
		logging.Get().Debug("screenshot capture enabled but no browser binary found")
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		logging.Get().WithError(err).Warn("screenshot dir not writable")
		return nil
	}

	return &ScreenshotCapture{ExecPath: execPath, Dir: dir, Timeout: timeout}
}

// Capture navigates a headless browser to pageURL and writes a bounded
// viewport PNG under the capture dir, returning the filename. The browser
// context is torn down via defers no matter how the capture ends.
func (c *ScreenshotCapture) Capture(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(c.ExecPath),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(1280, 800),
		chromedp.Navigate(pageURL),
		// Give late-rendering pages a moment before the shot.
		chromedp.Sleep(2*time.Second),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return "", err
	}

	name := screenshotName(pageURL, time.Now())
	if err := os.WriteFile(filepath.Join(c.Dir, name), buf, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// screenshotName hashes the URL together with the capture instant so repeated
// captures of the same page never collide.
func screenshotName(pageURL string, at time.Time) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d", pageURL, at.UnixNano()))
	return hex.EncodeToString(sum[:16]) + ".png"
}
