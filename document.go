package translay

import (
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document wraps a parsed HTML document together with a translation session,
// for hosts that deal in whole documents rather than live node trees. The
// session's node map stays valid for the document's lifetime, so
// Translate/Clear cycles are exactly reversible here too.
type Document struct {
	doc     *goquery.Document
	session *Session
}

// ParseDocument parses HTML from r and binds a session to it.
func ParseDocument(r io.Reader, settings Settings, opts ...SessionOption) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &TranslationError{Message: "failed to parse HTML", Cause: err}
	}
	return &Document{
		doc:     doc,
		session: NewSession(settings, opts...),
	}, nil
}

// ParseDocumentString parses an HTML string and binds a session to it.
func ParseDocumentString(content string, settings Settings, opts ...SessionOption) (*Document, error) {
	return ParseDocument(strings.NewReader(content), settings, opts...)
}

// Session exposes the underlying session for SaveEdit, ResetEdit, and
// settings updates.
func (d *Document) Session() *Session {
	return d.session
}

// Translate runs a pass over the whole document.
func (d *Document) Translate(ctx context.Context, opts TranslateOptions) error {
	if len(d.doc.Selection.Nodes) == 0 {
		return ErrNoContent
	}
	return d.session.Translate(ctx, d.doc.Selection.Nodes[0], opts)
}

// Extract seeds the session's dictionary scope with the document's candidate
// texts without mutating the document.
func (d *Document) Extract() error {
	if len(d.doc.Selection.Nodes) == 0 {
		return ErrNoContent
	}
	return d.session.ExtractOnly(d.doc.Selection.Nodes[0])
}

// Clear reverses every translation in the document.
func (d *Document) Clear() {
	d.session.Clear()
}

// Find returns the goquery selection for a CSS selector, letting callers
// inspect or post-process the translated document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// HTML renders the document back to markup.
func (d *Document) HTML() (string, error) {
	out, err := goquery.OuterHtml(d.doc.Selection)
	if err != nil {
		return "", &TranslationError{Message: "failed to render HTML", Cause: err}
	}
	return out, nil
}
