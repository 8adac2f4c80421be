package dom

import "golang.org/x/net/html"

// AttachEditControl appends an edit button to a static translated node and
// records the dictionary key it edits. The host binds the click and drives
// the session's SaveEdit/ResetEdit from its editor UI.
func AttachEditControl(translation *html.Node, dictKey string) {
	btn := &html.Node{
		Type: html.ElementNode,
		Data: "button",
		Attr: []html.Attribute{
			{Key: "class", Val: EditButtonClass},
			{Key: AttrEditKey, Val: dictKey},
		},
	}
	btn.AppendChild(&html.Node{Type: html.TextNode, Data: "Edit"})
	translation.AppendChild(btn)
}

// EditKey returns the dictionary key recorded on a translated node's edit
// control, or "".
func EditKey(translation *html.Node) string {
	for c := translation.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && HasClass(c, EditButtonClass) {
			return Attr(c, AttrEditKey)
		}
	}
	return ""
}
