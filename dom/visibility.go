package dom

import "golang.org/x/net/html"

// HideOriginal hides a static original node behind its translation. Never
// called for interactive nodes; those were mutated in place and have no
// separate original to hide. The node's untouched style attribute is stashed
// so ShowOriginal can restore it byte for byte.
func HideOriginal(original *html.Node) {
	if HasClass(original, HideOriginalClass) {
		return
	}
	if HasAttr(original, "style") {
		SetAttr(original, AttrPrevStyle, Attr(original, "style"))
	}
	AddClass(original, HideOriginalClass)
	SetStyleProp(original, "display", "none")
}

// ShowOriginal reverses HideOriginal, restoring the stashed style attribute.
func ShowOriginal(original *html.Node) {
	if !HasClass(original, HideOriginalClass) {
		return
	}
	RemoveClass(original, HideOriginalClass)
	if HasAttr(original, AttrPrevStyle) {
		SetAttr(original, "style", Attr(original, AttrPrevStyle))
		RemoveAttr(original, AttrPrevStyle)
		return
	}
	RemoveAttr(original, "style")
}
