package dom

import "golang.org/x/net/html"

// EnableHoverSwap marks a static translated node as hover-swappable. The host
// binds its pointer events and calls HoverSwap from them. Interactive nodes
// are never marked; swapping their live text would corrupt functional
// controls.
func EnableHoverSwap(n *html.Node) {
	SetAttr(n, AttrHoverSwap, "1")
}

// HoverSwap swaps the displayed text of a hover-enabled translated node
// between original and translation. Called by the host on pointer enter
// (showOriginal=true) and leave (showOriginal=false); no-op on unmarked
// nodes.
func HoverSwap(n *html.Node, showOriginal bool) {
	if Attr(n, AttrHoverSwap) != "1" {
		return
	}
	if showOriginal {
		if ori := Attr(n, AttrOriginal); ori != "" {
			AddClass(n, HoveringClass)
			swapText(n, ori)
		}
		return
	}
	if tr := Attr(n, AttrTranslated); tr != "" {
		RemoveClass(n, HoveringClass)
		swapText(n, tr)
	}
}

// swapText replaces the node's text, skipping attached control children so an
// edit button survives the swap.
func swapText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode {
			n.RemoveChild(c)
		}
		c = next
	}
	n.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n.FirstChild)
}
