package dom

import "golang.org/x/net/html"

// Rect is a node's vertical extent within its scroll container.
type Rect struct {
	Top    int
	Height int
}

// Measurer reports a node's rect. The second return is false when the host
// cannot measure the node; such nodes are treated as visible rather than
// silently dropped.
type Measurer func(n *html.Node) (Rect, bool)

// Viewport describes the visible band of a scroll container, expanded by a
// buffer margin so near-offscreen content is translated before it scrolls
// in.
type Viewport struct {
	Measure Measurer
	Top     int
	Height  int
	Buffer  int
}

// Visible reports whether the node intersects the buffered viewport.
func (v *Viewport) Visible(n *html.Node) bool {
	if v == nil || v.Measure == nil {
		return true
	}
	r, ok := v.Measure(n)
	if !ok {
		return true
	}
	top := v.Top - v.Buffer
	bottom := v.Top + v.Height + v.Buffer
	return r.Top+r.Height >= top && r.Top <= bottom
}
