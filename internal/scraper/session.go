package scraper

import (
	"context"
	"fmt"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"busboard/internal/config"
	"busboard/internal/logging"
	"busboard/internal/logging/types"
)

// Session owns one browser for the lifetime of one scrape job. The origin
// page stays open for the whole job; each route is visited in its own
// window that is always closed before the next one opens. Sessions are
// never shared across jobs.
type Session struct {
	cfg      *config.Config
	launcher *launcher.Launcher
	browser  *rod.Browser
	origin   *rod.Page
	route    *rod.Page
	logger   types.Logger
}

// NewSession launches a browser, opens a stealth origin page and navigates
// it to the configured base URL.
func NewSession(ctx context.Context, cfg *config.Config) (*Session, error) {
	logger := logging.GetGlobalLogger()

	l := launcher.New().
		Headless(cfg.Scraper.HeadlessMode).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	if chromePath := systemChromePath(); chromePath != "" {
		l = l.Bin(chromePath)
	}
	if cfg.Scraper.UserAgent != "" {
		l = l.Set("user-agent", cfg.Scraper.UserAgent)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	s := &Session{
		cfg:      cfg,
		launcher: l,
		browser:  browser,
		logger:   logger,
	}

	page, err := s.newStealthPage()
	if err != nil {
		s.Close()
		return nil, err
	}
	s.origin = page

	if err := s.navigate(ctx, s.origin, cfg.Scraper.BaseURL); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// newStealthPage creates a page with the stealth script injected and a
// desktop viewport.
func (s *Session) newStealthPage() (*rod.Page, error) {
	page, err := stealth.Page(s.browser)
	if err != nil {
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		s.logger.Warn("Failed to set viewport", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if s.cfg.Scraper.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: s.cfg.Scraper.UserAgent,
		}); err != nil {
			s.logger.Warn("Failed to set user agent", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return page, nil
}

// navigate loads a URL on the given page and waits for the load event.
func (s *Session) navigate(ctx context.Context, page *rod.Page, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.Scraper.PageTimeout)
	defer cancel()

	err := rod.Try(func() {
		page.Context(navCtx).MustNavigate(url).MustWaitLoad()
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// OpenRoute opens a route URL in a fresh window and makes it the active
// route page. Only one route window may be open at a time.
func (s *Session) OpenRoute(url string) error {
	if s.route != nil {
		return fmt.Errorf("route window already open")
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return fmt.Errorf("failed to open route window: %w", err)
	}

	navCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Scraper.PageTimeout)
	defer cancel()
	if err := rod.Try(func() {
		page.Context(navCtx).MustWaitLoad()
	}); err != nil {
		_ = rod.Try(func() { page.MustClose() })
		return fmt.Errorf("failed to load route %s: %w", url, err)
	}

	s.route = page
	return nil
}

// CloseRoute closes the active route window, leaving the origin page as the
// only window. Safe to call when no route window is open.
func (s *Session) CloseRoute() error {
	if s.route == nil {
		return nil
	}
	err := rod.Try(func() { s.route.MustClose() })
	s.route = nil
	if err != nil {
		return fmt.Errorf("failed to close route window: %w", err)
	}
	return nil
}

// Close tears down the route window, the origin page, the browser and the
// launcher. Safe after partial failures and safe to call more than once.
func (s *Session) Close() {
	_ = s.CloseRoute()

	if s.origin != nil {
		_ = rod.Try(func() { s.origin.MustClose() })
		s.origin = nil
	}
	if s.browser != nil {
		_ = rod.Try(func() { s.browser.MustClose() })
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
		s.launcher = nil
	}
}

// systemChromePath finds a system-installed Chrome/Chromium binary so rod
// does not have to download one.
func systemChromePath() string {
	if chromeBin := os.Getenv("CHROME_BIN"); chromeBin != "" {
		if _, err := os.Stat(chromeBin); err == nil {
			return chromeBin
		}
	}
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	commonPaths := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/opt/google/chrome/chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
