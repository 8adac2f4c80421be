// Package dom implements block discovery and reversible DOM substitution on
// golang.org/x/net/html node trees.
//
// Node identity is pointer identity: the session's original↔translation map
// is keyed by *html.Node, and reversal is a pure function of that map rather
// than a re-scan of the tree.
package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Class markers and data attributes written by the engine.
const (
	TranslatedClass      = "translay-translated"
	HideOriginalClass    = "translay-hide-original"
	HoveringClass        = "translay-hovering-original"
	LoadingClass         = "translay-loading"
	EditButtonClass      = "translay-edit-btn"
	EditorClass          = "translay-edit-wrapper"
	PlaceholderClass     = "translay-placeholder"

	AttrSource      = "data-source"
	AttrTranslated  = "data-translated"
	AttrOriginal    = "data-original"
	AttrNoTranslate = "data-no-translate"
	AttrHoverSwap   = "data-hover-swap"
	AttrEditKey     = "data-dict-key"
	AttrPrevStyle   = "data-prev-style"
)

// Attr returns the value of an attribute, or "" if absent.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether the attribute is present, regardless of value.
func HasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

// Classes returns the element's class list.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClass reports whether the element carries the class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends a class if not already present.
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	cur := Attr(n, "class")
	if cur == "" {
		SetAttr(n, "class", class)
		return
	}
	SetAttr(n, "class", cur+" "+class)
}

// RemoveClass drops a class from the element's class list.
func RemoveClass(n *html.Node, class string) {
	classes := Classes(n)
	out := classes[:0]
	for _, c := range classes {
		if c != class {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(out, " "))
}

// Text concatenates the text content of the node and its descendants.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// NormalizeText collapses whitespace runs to single spaces and trims.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SetText replaces the node's children with a single text node.
func SetText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// ShallowClone copies the element's tag and attributes without children.
func ShallowClone(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	clone.Attr = append([]html.Attribute(nil), n.Attr...)
	return clone
}

// InsertAfter inserts node as the next sibling of ref.
func InsertAfter(ref, node *html.Node) {
	if ref.Parent == nil {
		return
	}
	ref.Parent.InsertBefore(node, ref.NextSibling)
}

// Detach removes a node from its parent, if attached.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Tag returns the lowercase tag name of an element node, or "".
func Tag(n *html.Node) string {
	if n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// styleDecl is one inline style property.
type styleDecl struct {
	prop, val string
}

func parseStyle(n *html.Node) []styleDecl {
	var decls []styleDecl
	for _, part := range strings.Split(Attr(n, "style"), ";") {
		prop, val, ok := strings.Cut(part, ":")
		prop = strings.TrimSpace(prop)
		val = strings.TrimSpace(val)
		if !ok || prop == "" || val == "" {
			continue
		}
		decls = append(decls, styleDecl{prop, val})
	}
	return decls
}

func writeStyle(n *html.Node, decls []styleDecl) {
	if len(decls) == 0 {
		RemoveAttr(n, "style")
		return
	}
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.prop+": "+d.val)
	}
	SetAttr(n, "style", strings.Join(parts, "; "))
}

// SetStyleProp sets one inline style property, preserving the others.
func SetStyleProp(n *html.Node, prop, val string) {
	decls := parseStyle(n)
	for i, d := range decls {
		if d.prop == prop {
			decls[i].val = val
			writeStyle(n, decls)
			return
		}
	}
	writeStyle(n, append(decls, styleDecl{prop, val}))
}

// RemoveStyleProp removes one inline style property, preserving the others.
func RemoveStyleProp(n *html.Node, prop string) {
	decls := parseStyle(n)
	out := decls[:0]
	for _, d := range decls {
		if d.prop != prop {
			out = append(out, d)
		}
	}
	writeStyle(n, out)
}

// StyleProp returns the value of one inline style property, or "".
func StyleProp(n *html.Node, prop string) string {
	for _, d := range parseStyle(n) {
		if d.prop == prop {
			return d.val
		}
	}
	return ""
}
