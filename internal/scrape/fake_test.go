package scrape

import (
	"io"
	"time"

	"github.com/b3flow/ibovscan/internal/browser"
	"github.com/b3flow/ibovscan/internal/logger"
)

// testLogger discards output so tests stay quiet.
func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.Disabled, Pretty: false, Output: io.Discard})
}

// fakeElement is a scriptable in-memory DOM element.
type fakeElement struct {
	text    string
	attrs   map[string]string
	visible bool
	enabled bool

	clickErr      error
	scriptErr     error
	clicked       bool
	scriptClicked bool
	onClick       func()

	options    []string
	selected   string
	selValErr  error
	selTextErr error
}

func usableFake(text string) *fakeElement {
	return &fakeElement{text: text, visible: true, enabled: true}
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) Attribute(name string) (string, bool, error) {
	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e *fakeElement) Visible() (bool, error) { return e.visible, nil }
func (e *fakeElement) Enabled() (bool, error) { return e.enabled, nil }
func (e *fakeElement) ScrollIntoView() error  { return nil }

func (e *fakeElement) Click() error {
	if e.clickErr != nil {
		return e.clickErr
	}
	e.clicked = true
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) ScriptClick() error {
	if e.scriptErr != nil {
		return e.scriptErr
	}
	e.scriptClicked = true
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) SelectValue(value string) error {
	if e.selValErr != nil {
		return e.selValErr
	}
	e.selected = value
	return nil
}

func (e *fakeElement) SelectText(text string) error {
	if e.selTextErr != nil {
		return e.selTextErr
	}
	e.selected = text
	return nil
}

func (e *fakeElement) OptionValues() ([]string, error) { return e.options, nil }

// fakePage is a scriptable in-memory page session.
type fakePage struct {
	url  string
	html string
	body string

	elements map[string][]browser.Element
	byText   map[string][]browser.Element

	waitHit bool
	htmlErr error
}

func newFakePage() *fakePage {
	return &fakePage{
		url:      "https://example.test/day/IBOV",
		elements: make(map[string][]browser.Element),
		byText:   make(map[string][]browser.Element),
		waitHit:  true,
	}
}

func (p *fakePage) addElement(selector string, el browser.Element) {
	p.elements[selector] = append(p.elements[selector], el)
}

func (p *fakePage) addByText(tag, text string, el browser.Element) {
	key := tag + "|" + text
	p.byText[key] = append(p.byText[key], el)
}

func (p *fakePage) Navigate(url string) error { p.url = url; return nil }
func (p *fakePage) CurrentURL() string        { return p.url }

func (p *fakePage) HTML() (string, error) {
	if p.htmlErr != nil {
		return "", p.htmlErr
	}
	return p.html, nil
}

func (p *fakePage) BodyText() (string, error) { return p.body, nil }

func (p *fakePage) Elements(selector string) ([]browser.Element, error) {
	return p.elements[selector], nil
}

func (p *fakePage) ElementsByText(tag, text string) ([]browser.Element, error) {
	return p.byText[tag+"|"+text], nil
}

func (p *fakePage) WaitElement(selector string, timeout time.Duration) bool {
	return p.waitHit
}

func (p *fakePage) Eval(script string) error { return nil }
