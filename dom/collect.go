package dom

import (
	"log/slog"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// MinTextLength is the floor below which a block is never collected.
const MinTextLength = 2

// candidateTags is the tag allow-list for translation candidates.
var candidateTags = map[string]bool{
	"p": true, "li": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"td": true, "th": true, "pre": true,
	"button": true, "label": true, "span": true, "div": true,
}

// structuralTags may wrap form controls and child elements and still be
// candidates; their visible text is what gets translated.
var structuralTags = map[string]bool{
	"label":  true,
	"option": true,
}

var controlTags = map[string]bool{
	"input": true, "textarea": true, "select": true,
}

// CollectOptions configures a block collection pass.
type CollectOptions struct {
	// SkipSelectors are CSS selectors excluded via ancestor-or-self
	// containment. Invalid selectors are ignored, not fatal.
	SkipSelectors []string

	// MaxTextLength caps the normalized text length of a candidate. Zero
	// means no ceiling.
	MaxTextLength int

	// IncludeOptions adds <option> elements to the candidate set, used by
	// the UI-extraction variant.
	IncludeOptions bool

	// Viewport, when non-nil, restricts candidates to elements intersecting
	// it. This is what enables incremental, scroll-driven translation.
	Viewport *Viewport

	Logger *slog.Logger
}

// CollectBlocks enumerates the leaf elements under root that are translation
// candidates.
func CollectBlocks(root *html.Node, opts CollectOptions) []*html.Node {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	matchers := compileSelectors(opts.SkipSelectors, logger)

	var blocks []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isCandidate(n, matchers, opts) {
			blocks = append(blocks, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return blocks
}

func isCandidate(n *html.Node, skip []cascadia.Matcher, opts CollectOptions) bool {
	tag := Tag(n)
	if !candidateTags[tag] && !(opts.IncludeOptions && tag == "option") {
		return false
	}
	if matchesAncestorOrSelf(n, skip) {
		return false
	}
	if hasAncestorOrSelfAttr(n, AttrNoTranslate) {
		return false
	}
	// Never re-translate engine output.
	if hasAncestorOrSelfClass(n, TranslatedClass) {
		return false
	}
	structural := structuralTags[tag]
	if !structural {
		if containsControl(n) {
			return false
		}
		if hasElementChildren(n) {
			return false
		}
	}
	text := NormalizeText(Text(n))
	if length := len([]rune(text)); length < MinTextLength ||
		(opts.MaxTextLength > 0 && length > opts.MaxTextLength) {
		return false
	}
	if opts.Viewport != nil && !opts.Viewport.Visible(n) {
		return false
	}
	return true
}

func compileSelectors(selectors []string, logger *slog.Logger) []cascadia.Matcher {
	var matchers []cascadia.Matcher
	for _, sel := range selectors {
		if sel == "" {
			continue
		}
		m, err := cascadia.ParseGroup(sel)
		if err != nil {
			// Invalid patterns are ignored; filtering continues with the rest.
			logger.Debug("skip selector ignored", "selector", sel, "err", err)
			continue
		}
		matchers = append(matchers, m)
	}
	return matchers
}

func matchesAncestorOrSelf(n *html.Node, matchers []cascadia.Matcher) bool {
	for el := n; el != nil; el = el.Parent {
		if el.Type != html.ElementNode {
			continue
		}
		for _, m := range matchers {
			if m.Match(el) {
				return true
			}
		}
	}
	return false
}

func hasAncestorOrSelfClass(n *html.Node, class string) bool {
	for el := n; el != nil; el = el.Parent {
		if el.Type == html.ElementNode && HasClass(el, class) {
			return true
		}
	}
	return false
}

func hasAncestorOrSelfAttr(n *html.Node, attr string) bool {
	for el := n; el != nil; el = el.Parent {
		if el.Type == html.ElementNode && HasAttr(el, attr) {
			return true
		}
	}
	return false
}

func containsControl(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && controlTags[Tag(c)] {
			return true
		}
		if containsControl(c) {
			return true
		}
	}
	return false
}

func hasElementChildren(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}
