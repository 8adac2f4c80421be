package translay

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"golang.org/x/net/html"

	"github.com/dangehub/translay/cache"
	"github.com/dangehub/translay/dictionary"
	"github.com/dangehub/translay/dom"
)

// Request contains the parameters for one backend translation call.
type Request struct {
	Text string
	From string
	To   string
}

// Provider is the interface for remote translation backends.
type Provider interface {
	Translate(ctx context.Context, req Request) (string, error)
}

// TranslateOptions selects the pass mode.
type TranslateOptions struct {
	// DictionaryOnly forbids network calls; blocks without a dictionary
	// entry stay untranslated. Used for passive background passes so they
	// never surprise the user with network traffic.
	DictionaryOnly bool

	// VisibleOnly restricts the pass to blocks intersecting the visible
	// container set via SetVisibleContainer.
	VisibleOnly bool
}

// incremental reports the steady-state "keep up with scrolling" mode: add
// newly visible blocks without clearing what is already translated.
func (o TranslateOptions) incremental() bool {
	return o.DictionaryOnly && o.VisibleOnly
}

// Session is one translation session over a document view or UI target. It
// owns a settings snapshot, an in-memory text cache, and the
// original↔translation map that makes every pass exactly reversible.
//
// Sessions are single-threaded: all node mutation happens on the host's UI
// goroutine. Only the dictionary store and an optional shared cache are safe
// to share across sessions.
type Session struct {
	settings  Settings
	dict      *dictionary.Store
	provider  Provider
	scopeID   string
	memory    *cache.Memory
	shared    cache.TranslationCache
	resolver  dom.StyleResolver
	viewport  *dom.Viewport
	logger    *slog.Logger
	clock     func() time.Time
	processed map[*html.Node]*html.Node // original -> translation
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDictionary attaches a dictionary store and the session's active scope.
func WithDictionary(store *dictionary.Store, scopeID string) SessionOption {
	return func(s *Session) {
		s.dict = store
		if scopeID != "" {
			s.scopeID = scopeID
		}
	}
}

// WithProvider sets the remote translation backend.
func WithProvider(p Provider) SessionOption {
	return func(s *Session) { s.provider = p }
}

// WithSharedCache adds a cache tier shared across sessions, consulted after
// the session's own cache and populated alongside it.
func WithSharedCache(c cache.TranslationCache) SessionOption {
	return func(s *Session) { s.shared = c }
}

// WithStyleResolver wires host-computed styles into static clones.
func WithStyleResolver(r dom.StyleResolver) SessionOption {
	return func(s *Session) { s.resolver = r }
}

// WithSessionLogger sets the logger for background failures.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// NewSession creates a session with a private copy of the settings.
func NewSession(settings Settings, opts ...SessionOption) *Session {
	s := &Session{
		settings:  settings.Clone(),
		scopeID:   DefaultScope,
		memory:    cache.NewMemory(0),
		logger:    slog.Default(),
		clock:     time.Now,
		processed: make(map[*html.Node]*html.Node),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpdateSettings replaces the session's settings snapshot. In-flight behavior
// never changes retroactively; only an explicit update does.
func (s *Session) UpdateSettings(settings Settings) {
	s.settings = settings.Clone()
}

// SetVisibleContainer updates the viewport used by visible-only passes. The
// host re-points it on scroll and resize of the container.
func (s *Session) SetVisibleContainer(v *dom.Viewport) {
	s.viewport = v
}

// HasTranslations reports whether the session currently holds any
// translations.
func (s *Session) HasTranslations() bool {
	return len(s.processed) > 0
}

// Translate runs a full or incremental pass under root. A full pass clears
// previous output first; the incremental mode (DictionaryOnly+VisibleOnly)
// only adds newly visible, not-yet-translated blocks. Per-block failures do
// not abort the pass; the joined errors are returned once the pass settles.
func (s *Session) Translate(ctx context.Context, root *html.Node, opts TranslateOptions) error {
	if root == nil {
		return ErrNoContent
	}

	if !opts.incremental() {
		s.Clear()
	}

	blocks := dom.CollectBlocks(root, s.collectOptions(opts.VisibleOnly, false))

	var errs []error
	for _, block := range blocks {
		if _, done := s.processed[block]; done {
			continue
		}
		if err := s.translateBlock(ctx, block, opts.DictionaryOnly); err != nil {
			s.logger.Warn("block translation failed", "err", err)
			errs = append(errs, err)
		}
	}

	s.ApplyOriginalVisibility()
	return errors.Join(errs...)
}

// ExtractOnly seeds the active scope with identity entries for every
// candidate block under root, including select options, so the dictionary can
// be hand-edited or machine-translated later. The tree is left untouched.
func (s *Session) ExtractOnly(root *html.Node) error {
	if root == nil {
		return ErrNoContent
	}
	if s.dict == nil {
		return &TranslationError{Message: "no dictionary configured"}
	}

	blocks := dom.CollectBlocks(root, s.collectOptions(false, true))
	for _, block := range blocks {
		text := dom.NormalizeText(dom.Text(block))
		keys := KeyVariants(text, s.settings)
		if _, ok := s.dict.Get(s.scopeID, keys...); ok {
			continue
		}
		s.dict.Set(s.scopeID, dictionary.Entry{
			Key:        keys[0],
			Source:     text,
			Translated: text,
			UpdatedAt:  s.clock().UnixMilli(),
		})
	}
	return nil
}

// Clear exactly reverses every recorded translation and resets the session
// cache. Safe to call with an empty map; a translate→clear→translate cycle
// leaves no residue.
func (s *Session) Clear() {
	s.restoreOriginalVisibility()
	for original, translation := range s.processed {
		dom.RestoreBlock(original, translation)
	}
	s.processed = make(map[*html.Node]*html.Node)
	s.memory.Clear()
}

// ApplyOriginalVisibility shows or hides original static nodes according to
// the hideOriginal setting, without touching the translation map.
func (s *Session) ApplyOriginalVisibility() {
	if s.settings.HideOriginal {
		for original, translation := range s.processed {
			if translation == original {
				continue
			}
			dom.HideOriginal(original)
		}
		return
	}
	s.restoreOriginalVisibility()
}

func (s *Session) restoreOriginalVisibility() {
	for original, translation := range s.processed {
		if translation == original {
			continue
		}
		dom.ShowOriginal(original)
	}
}

func (s *Session) collectOptions(visibleOnly, includeOptions bool) dom.CollectOptions {
	opts := dom.CollectOptions{
		SkipSelectors:  s.settings.SkipSelectors,
		MaxTextLength:  s.settings.MaxTextLength,
		IncludeOptions: includeOptions,
		Logger:         s.logger,
	}
	if visibleOnly {
		opts.Viewport = s.viewport
	}
	return opts
}

// translateBlock resolves and substitutes one block. Resolution always
// completes (or fails) before any substitution happens.
func (s *Session) translateBlock(ctx context.Context, block *html.Node, dictionaryOnly bool) error {
	text := dom.NormalizeText(dom.Text(block))
	if len([]rune(text)) < dom.MinTextLength {
		return nil
	}

	interactive := dom.IsInteractive(block)
	spinner := dom.AttachLoading(block, interactive)
	translated, err := s.resolve(ctx, text, dictionaryOnly)
	dom.DetachLoading(spinner)
	if err != nil {
		return err
	}
	if translated == "" {
		return nil
	}

	translation, inPlace := dom.BuildTranslation(block, text, translated, s.resolver)
	if !inPlace {
		if s.settings.HideOriginal && s.settings.SmartHover {
			dom.EnableHoverSwap(translation)
		}
		if s.dict != nil && s.settings.EditMode {
			dom.AttachEditControl(translation, GenKey(text, s.settings.FromLang, s.settings.ToLang))
		}
	}
	s.processed[block] = translation
	return nil
}

// resolve runs the three-tier lookup: session cache, then dictionary scopes
// in priority order, then the remote backend. An empty result with nil error
// means "no translation" (dictionary-only miss or unconfigured backend).
func (s *Session) resolve(ctx context.Context, text string, dictionaryOnly bool) (string, error) {
	if v, ok := s.memory.Get(text); ok {
		return v, nil
	}

	keys := KeyVariants(text, s.settings)

	if s.shared != nil {
		if v, ok := s.shared.Get(keys[0]); ok {
			s.memory.Set(text, v)
			return v, nil
		}
	}

	if s.dict != nil {
		for _, scope := range s.searchScopes() {
			hit, ok := s.dict.Get(scope, keys...)
			if !ok || hit.Translated == "" {
				continue
			}
			s.memory.Set(text, hit.Translated)
			if hit.Key != keys[0] {
				// Forward-migrate a legacy-key hit so later lookups land on
				// the primary scheme. The legacy entry stays in place.
				migrated := hit
				migrated.Key = keys[0]
				s.dict.Set(scope, migrated)
			}
			return hit.Translated, nil
		}
	}

	if dictionaryOnly {
		return "", nil
	}
	if s.provider == nil || !s.settings.hasEndpoint() {
		// No backend configured: degrade to dictionary-only behavior
		// instead of interrupting the pass with a configuration error.
		return "", nil
	}

	translated, err := s.provider.Translate(ctx, Request{
		Text: text,
		From: s.settings.FromLang,
		To:   s.settings.ToLang,
	})
	if err != nil {
		return "", err
	}

	s.memory.Set(text, translated)
	if s.shared != nil {
		if err := s.shared.Set(keys[0], translated); err != nil {
			s.logger.Warn("shared cache set failed", "err", err)
		}
	}
	if s.dict != nil {
		// New translations always land in the active scope, never a
		// fallback scope.
		s.dict.Set(s.scopeID, dictionary.Entry{
			Key:        keys[0],
			Source:     text,
			Translated: translated,
			UpdatedAt:  s.clock().UnixMilli(),
		})
	}
	return translated, nil
}

// searchScopes returns the dictionary scopes in priority order: the active
// scope first, then every known and recent scope. The first hit wins, so the
// active scope's entry always beats a same-key entry in a fallback scope.
func (s *Session) searchScopes() []string {
	seen := map[string]bool{}
	var scopes []string
	add := func(scope string) {
		if scope == "" || seen[scope] {
			return
		}
		seen[scope] = true
		scopes = append(scopes, scope)
	}
	add(s.scopeID)
	for _, scope := range s.settings.UIScopes {
		add(scope)
	}
	for _, scope := range s.settings.RecentUIScopes {
		add(scope)
	}
	return scopes
}

// SaveEdit stores a user-authored translation for a translated node, updates
// the live node, and marks the dictionary entry as edited so automatic
// translations never silently replace it.
func (s *Session) SaveEdit(translation *html.Node, text string) error {
	if s.dict == nil {
		return &TranslationError{Message: "no dictionary configured"}
	}
	text = dom.NormalizeText(text)
	if text == "" {
		return &TranslationError{Message: "empty edit"}
	}
	source := dom.Attr(translation, dom.AttrSource)
	key := dom.EditKey(translation)
	if source == "" || key == "" {
		return &TranslationError{Message: "node is not an editable translation"}
	}

	dom.SetText(translation, text)
	dom.SetAttr(translation, dom.AttrTranslated, text)
	dom.AttachEditControl(translation, key)
	s.memory.Set(source, text)
	s.dict.Set(s.scopeID, dictionary.Entry{
		Key:        key,
		Source:     source,
		Translated: text,
		UpdatedAt:  s.clock().UnixMilli(),
		Edited:     true,
	})
	return nil
}

// ResetEdit deletes the dictionary and cache entries behind a translated
// node, shows a transient placeholder, and re-resolves with the network
// allowed to restore an automatic translation.
func (s *Session) ResetEdit(ctx context.Context, translation *html.Node) error {
	if s.dict == nil {
		return &TranslationError{Message: "no dictionary configured"}
	}
	source := dom.Attr(translation, dom.AttrSource)
	key := dom.EditKey(translation)
	if source == "" || key == "" {
		return &TranslationError{Message: "node is not an editable translation"}
	}

	s.dict.Remove(s.scopeID, key)
	s.memory.Delete(source)
	dom.SetText(translation, "[...]")
	dom.AttachEditControl(translation, key)

	fresh, err := s.resolve(ctx, source, false)
	if err != nil {
		return err
	}
	if fresh != "" {
		dom.SetText(translation, fresh)
		dom.SetAttr(translation, dom.AttrTranslated, fresh)
		dom.AttachEditControl(translation, key)
	}
	return nil
}
