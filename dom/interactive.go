package dom

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var interactiveTags = map[string]bool{
	"button": true, "select": true, "textarea": true,
	"option": true, "input": true, "label": true,
}

var interactiveRoles = regexp.MustCompile(`(?i)^(button|link|checkbox|radio|switch|tab|menuitem)$`)

// IsInteractive classifies a block. Interactive blocks are mutated in place;
// replacing them with a clone would break the host's widget wiring.
func IsInteractive(n *html.Node) bool {
	tag := Tag(n)
	if interactiveTags[tag] {
		return true
	}
	if tag == "a" && Attr(n, "href") != "" {
		return true
	}
	if interactiveRoles.MatchString(Attr(n, "role")) {
		return true
	}
	if tab := Attr(n, "tabindex"); tab != "" {
		if idx, err := strconv.Atoi(strings.TrimSpace(tab)); err == nil && idx >= 0 {
			return true
		}
	}
	if ce := Attr(n, "contenteditable"); HasAttr(n, "contenteditable") && !strings.EqualFold(ce, "false") {
		return true
	}
	if HasAttr(n, "onclick") {
		return true
	}
	return false
}
