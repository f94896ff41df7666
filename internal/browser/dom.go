package browser

import "time"

// Element is a single DOM node surfaced by the automation driver. It is the
// element-level half of the driver seam: scrape components only ever see this
// interface, so tests can substitute fakes for a live browser.
type Element interface {
	// Text returns the trimmed rendered text content of the node.
	Text() (string, error)

	// Attribute returns an attribute value and whether it is present.
	Attribute(name string) (string, bool, error)

	// Visible reports whether the node is rendered and displayed.
	Visible() (bool, error)

	// Enabled reports whether the node accepts interaction (not disabled).
	Enabled() (bool, error)

	// ScrollIntoView scrolls the node into the viewport center.
	ScrollIntoView() error

	// Click performs a direct click.
	Click() error

	// ScriptClick clicks via an injected script, for controls whose direct
	// click path throws (overlays, synthetic handlers).
	ScriptClick() error

	// SelectValue selects a <select> option by its value attribute.
	SelectValue(value string) error

	// SelectText selects a <select> option by its visible text.
	SelectText(text string) error

	// OptionValues lists the value attributes of a <select>'s options.
	OptionValues() ([]string, error)
}

// Page is the narrow driver contract the scraper consumes: navigation,
// element lookup with introspection, rendered-text snapshots, script
// execution, and bounded waiting.
type Page interface {
	// Navigate loads the URL and blocks until the load event fires.
	Navigate(url string) error

	// CurrentURL returns the URL currently loaded, after any redirects.
	CurrentURL() string

	// HTML returns the current rendered document markup.
	HTML() (string, error)

	// BodyText returns the rendered text of the document body.
	BodyText() (string, error)

	// Elements returns all nodes matching a CSS selector. An empty slice
	// (not an error) means no match.
	Elements(selector string) ([]Element, error)

	// ElementsByText returns all nodes of the given tag whose trimmed text
	// equals text exactly.
	ElementsByText(tag, text string) ([]Element, error)

	// WaitElement blocks until a node matching the selector is present or
	// the timeout elapses, reporting which happened.
	WaitElement(selector string, timeout time.Duration) bool

	// Eval runs a script snippet in the page, discarding the result.
	Eval(script string) error
}
