// Package browser provides headless Chrome integration via Rod, exposed to
// the scraper through the narrow Page/Element driver seam.
package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// Config defines browser configuration.
type Config struct {
	Headless       bool          `json:"headless" yaml:"headless"`
	Timeout        time.Duration `json:"timeout" yaml:"timeout"`
	UserAgent      string        `json:"user_agent" yaml:"user_agent"`
	ViewportWidth  int           `json:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int           `json:"viewport_height" yaml:"viewport_height"`
}

// DefaultConfig returns default browser configuration.
func DefaultConfig() Config {
	return Config{
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
	}
}

// Session wraps one Rod browser with a single open page. The scraper owns
// exactly one Session per run and must call Close on every exit path.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	config  Config
}

// NewSession launches a browser and opens a blank page. A launch or connect
// failure here is fatal to the run.
func NewSession(config Config) (*Session, error) {
	l := launcher.New().
		Headless(config.Headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("window-size", fmt.Sprintf("%d,%d", config.ViewportWidth, config.ViewportHeight)).
		Set("disable-blink-features", "AutomationControlled")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	if config.Timeout > 0 {
		b = b.Timeout(config.Timeout)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  config.ViewportWidth,
		Height: config.ViewportHeight,
	})

	if config.UserAgent != "" {
		_ = proto.NetworkSetUserAgentOverride{
			UserAgent: config.UserAgent,
		}.Call(page)
	}

	// Pages that fingerprint automation hide their data from webdriver
	// sessions; mask the flag before any document scripts run.
	_, _ = page.EvalOnNewDocument(
		`Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`)

	return &Session{
		browser: b,
		page:    page,
		config:  config,
	}, nil
}

// Close releases the browser and every page it owns.
func (s *Session) Close() error {
	return s.browser.Close()
}

// Navigate loads a URL and waits for the load event.
func (s *Session) Navigate(url string) error {
	if err := s.page.Navigate(url); err != nil {
		return err
	}
	return s.page.WaitLoad()
}

// CurrentURL returns the URL of the open page.
func (s *Session) CurrentURL() string {
	info, err := s.page.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.URL
}

// HTML returns the rendered document markup.
func (s *Session) HTML() (string, error) {
	return s.page.HTML()
}

// BodyText returns the rendered text of the document body.
func (s *Session) BodyText() (string, error) {
	els, err := s.page.Elements("body")
	if err != nil {
		return "", err
	}
	if len(els) == 0 {
		return "", nil
	}
	return els.First().Text()
}

// Elements returns all nodes matching a CSS selector without waiting.
func (s *Session) Elements(selector string) ([]Element, error) {
	els, err := s.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapElements(els), nil
}

// ElementsByText returns nodes of the given tag with exact trimmed text.
func (s *Session) ElementsByText(tag, text string) ([]Element, error) {
	xpath := fmt.Sprintf("//%s[normalize-space(text())=%s]", tag, xpathLiteral(text))
	els, err := s.page.ElementsX(xpath)
	if err != nil {
		return nil, err
	}
	return wrapElements(els), nil
}

// WaitElement blocks until the selector matches or the timeout elapses.
func (s *Session) WaitElement(selector string, timeout time.Duration) bool {
	_, err := s.page.Timeout(timeout).Element(selector)
	return err == nil
}

// Eval runs a script snippet on the page.
func (s *Session) Eval(script string) error {
	_, err := s.page.Eval(script)
	return err
}

func wrapElements(els rod.Elements) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out
}

// xpathLiteral quotes a string for use inside an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}

// rodElement adapts a Rod element to the Element seam.
type rodElement struct {
	el *rod.Element
}

func (r *rodElement) Text() (string, error) {
	text, err := r.el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (r *rodElement) Attribute(name string) (string, bool, error) {
	v, err := r.el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (r *rodElement) Visible() (bool, error) {
	return r.el.Visible()
}

func (r *rodElement) Enabled() (bool, error) {
	disabled, err := r.el.Property("disabled")
	if err != nil {
		return false, err
	}
	return !disabled.Bool(), nil
}

func (r *rodElement) ScrollIntoView() error {
	return r.el.ScrollIntoView()
}

func (r *rodElement) Click() error {
	return r.el.Click(proto.InputMouseButtonLeft, 1)
}

func (r *rodElement) ScriptClick() error {
	_, err := r.el.Eval(`() => this.click()`)
	return err
}

func (r *rodElement) SelectValue(value string) error {
	return r.el.Select([]string{fmt.Sprintf("[value=%q]", value)}, true, rod.SelectorTypeCSSSector)
}

func (r *rodElement) SelectText(text string) error {
	return r.el.Select([]string{text}, true, rod.SelectorTypeText)
}

func (r *rodElement) OptionValues() ([]string, error) {
	result, err := r.el.Eval(`() => Array.from(this.options || []).map(o => o.value)`)
	if err != nil {
		return nil, err
	}
	return jsonStrings(result.Value), nil
}

// jsonStrings flattens a JS string array result.
func jsonStrings(v gson.JSON) []string {
	arr := v.Arr()
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		out = append(out, item.Str())
	}
	return out
}
