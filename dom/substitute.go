package dom

import (
	"golang.org/x/net/html"
)

// StyleResolver supplies a style property value for a node. Hosts with real
// layout can wire computed styles through it; when nil, the engine falls back
// to the node's inline style attribute.
type StyleResolver func(n *html.Node, prop string) string

// textStyleProps are the properties copied onto a static clone so the
// translated text visually matches the original.
var textStyleProps = []string{
	"font-family", "font-size", "font-weight", "font-style", "font-variant",
	"line-height", "letter-spacing", "color", "background-color",
	"text-decoration", "text-transform", "white-space",
}

// BuildTranslation produces the translation node for a block and records the
// source/translated/original text in data attributes. Interactive blocks are
// mutated in place and returned as-is; static blocks get a shallow clone
// inserted as the next sibling. The returned bool reports the interactive
// case.
func BuildTranslation(block *html.Node, source, translated string, resolve StyleResolver) (*html.Node, bool) {
	if IsInteractive(block) {
		SetAttr(block, AttrSource, source)
		SetAttr(block, AttrTranslated, translated)
		SetAttr(block, AttrOriginal, source)
		SetText(block, translated)
		AddClass(block, TranslatedClass)
		return block, true
	}

	clone := ShallowClone(block)
	RemoveAttr(clone, "id")
	copyTextStyles(block, clone, resolve)
	AddClass(clone, TranslatedClass)
	SetAttr(clone, AttrSource, source)
	SetAttr(clone, AttrTranslated, translated)
	SetAttr(clone, AttrOriginal, source)
	SetText(clone, translated)
	InsertAfter(block, clone)
	return clone, false
}

// RestoreBlock exactly reverses one translation. If original and translation
// are the same node (interactive case) the stashed text is restored and the
// marker removed; otherwise the clone is detached.
func RestoreBlock(original, translation *html.Node) {
	if translation == original {
		if ori := Attr(original, AttrOriginal); ori != "" {
			SetText(original, ori)
		}
		RemoveClass(original, TranslatedClass)
		RemoveAttr(original, AttrSource)
		RemoveAttr(original, AttrTranslated)
		RemoveAttr(original, AttrOriginal)
		return
	}
	Detach(translation)
}

// copyTextStyles inlines the text-appearance properties of the source block
// onto the clone. The clone already carries the block's class list via the
// attribute copy.
func copyTextStyles(from, to *html.Node, resolve StyleResolver) {
	for _, prop := range textStyleProps {
		var val string
		if resolve != nil {
			val = resolve(from, prop)
		} else {
			val = StyleProp(from, prop)
		}
		if val != "" {
			SetStyleProp(to, prop, val)
		}
	}
}

// AttachLoading inserts a lightweight pending indicator next to (or, for
// interactive blocks, inside) a block. The caller must detach it once the
// block's resolution settles, success or failure.
func AttachLoading(block *html.Node, interactive bool) *html.Node {
	spinner := &html.Node{
		Type: html.ElementNode,
		Data: "span",
		Attr: []html.Attribute{{Key: "class", Val: LoadingClass}},
	}
	spinner.AppendChild(&html.Node{Type: html.TextNode, Data: "…"})
	if interactive {
		block.AppendChild(spinner)
	} else {
		InsertAfter(block, spinner)
	}
	return spinner
}

// DetachLoading removes a pending indicator.
func DetachLoading(spinner *html.Node) {
	if spinner != nil {
		Detach(spinner)
	}
}
