package translay

import (
	"context"
	"sync"

	"log/slog"

	"golang.org/x/net/html"

	"github.com/dangehub/translay/dictionary"
	"github.com/dangehub/translay/dom"
)

// State is the engine's user-visible state, mirrored by the host's action
// button.
type State int

const (
	// StateOff means translation is disabled or cleared.
	StateOff State = iota
	// StateEmpty means a pass ran but produced no translations.
	StateEmpty
	// StateActive means translations are currently applied.
	StateActive
)

// Notifier receives transient user-facing notices. All notices are
// non-blocking; background failures are logged instead.
type Notifier interface {
	Notice(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Notice(string) {}

// ProviderFactory builds a translation backend from the current settings.
// Returning nil degrades the engine to dictionary-only behavior.
type ProviderFactory func(Settings) Provider

// Engine owns the UI translation session, the dictionary store, the busy
// flag serializing passes, and the auto-apply wiring. It is the Go analog of
// the host plugin controller.
type Engine struct {
	mu sync.Mutex

	settings Settings
	dict     *dictionary.Store
	session  *Session
	sched    *Scheduler
	notifier Notifier
	logger   *slog.Logger
	factory  ProviderFactory
	onChange func(Settings)

	busy        bool
	pending     bool
	dictEnabled bool
	state       State

	target    *html.Node
	targetKey string
	viewport  *dom.Viewport
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithNotifier routes user notices to the host.
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) { e.notifier = n }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithProviderFactory overrides how backends are built from settings.
func WithProviderFactory(f ProviderFactory) EngineOption {
	return func(e *Engine) { e.factory = f }
}

// WithSettingsSink is called whenever the engine mutates its settings (scope
// changes, cloud downloads), so the host can persist them.
func WithSettingsSink(f func(Settings)) EngineOption {
	return func(e *Engine) { e.onChange = f }
}

// NewEngine creates an engine over a dictionary store.
func NewEngine(settings Settings, dict *dictionary.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		settings:    settings.Clone(),
		dict:        dict,
		notifier:    nopNotifier{},
		logger:      slog.Default(),
		dictEnabled: true,
		state:       StateOff,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sched = NewScheduler(func() {
		if err := e.ApplyDictionary(context.Background()); err != nil {
			e.logger.Debug("auto apply skipped", "err", err)
		}
	})
	if dict != nil {
		dict.EnsureReady()
		e.SyncScopesFromDisk()
	}
	return e
}

// Scheduler returns the auto-apply scheduler the host feeds with mutation,
// scroll, and resize signals.
func (e *Engine) Scheduler() *Scheduler {
	return e.sched
}

// State returns the current engine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Settings returns a copy of the engine's current settings.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings.Clone()
}

// UpdateSettings replaces the engine settings and pushes the new snapshot
// into the live session.
func (e *Engine) UpdateSettings(settings Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = settings.Clone()
	if e.session != nil {
		e.session.UpdateSettings(e.settings)
		e.session.ApplyOriginalVisibility()
	}
}

// SetTarget points the engine at the subtree auto-apply passes should cover.
// A changed page key clears previous output before the next pass, so stale
// translations from another page never linger.
func (e *Engine) SetTarget(target *html.Node, pageKey string, viewport *dom.Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.target != target || e.targetKey != pageKey {
		if e.session != nil {
			e.session.Clear()
		}
		e.target = target
		e.targetKey = pageKey
	}
	e.viewport = viewport
}

// TranslateTarget runs an explicit, network-allowed pass over the target. A
// concurrent pass yields a busy notice; failures surface as a single notice.
func (e *Engine) TranslateTarget(ctx context.Context, target *html.Node) error {
	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		e.notifier.Notice(ErrBusy.Error())
		return ErrBusy
	}
	if target == nil {
		target = e.target
	}
	if target == nil {
		e.mu.Unlock()
		e.notifier.Notice(ErrNoContent.Error())
		return ErrNoContent
	}
	session := e.prepareSessionLocked()
	e.busy = true
	e.dictEnabled = true
	e.sched.Suppress()
	e.mu.Unlock()

	err := session.Translate(ctx, target, TranslateOptions{})

	e.mu.Lock()
	e.busy = false
	e.setStateLocked(session)
	if err != nil {
		e.state = StateOff
	}
	e.mu.Unlock()
	e.sched.Resume()

	if err != nil {
		e.notifier.Notice("translation failed: " + err.Error())
	}
	return err
}

// ExtractTarget seeds the active scope with the target's candidate texts
// without touching the tree.
func (e *Engine) ExtractTarget(target *html.Node) error {
	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		e.notifier.Notice(ErrBusy.Error())
		return ErrBusy
	}
	if target == nil {
		target = e.target
	}
	if target == nil {
		e.mu.Unlock()
		e.notifier.Notice(ErrNoContent.Error())
		return ErrNoContent
	}
	session := e.prepareSessionLocked()
	e.busy = true
	e.sched.Suppress()
	e.mu.Unlock()

	err := session.ExtractOnly(target)

	e.mu.Lock()
	e.busy = false
	if err == nil {
		e.state = StateActive
	}
	e.mu.Unlock()
	e.sched.Resume()

	if err != nil {
		e.notifier.Notice("translation failed: " + err.Error())
	}
	return err
}

// ApplyDictionary runs the passive dictionary-only, visible-only pass over
// the current target. While a pass is in flight, at most one follow-up is
// kept pending and scheduled once the current pass settles. Failures are
// logged, never surfaced.
func (e *Engine) ApplyDictionary(ctx context.Context) error {
	e.mu.Lock()
	if e.busy {
		e.pending = true
		e.mu.Unlock()
		return nil
	}
	if !e.dictEnabled || e.target == nil {
		e.mu.Unlock()
		return nil
	}
	session := e.prepareSessionLocked()
	session.SetVisibleContainer(e.viewport)
	target := e.target
	e.busy = true
	e.sched.Suppress()
	e.mu.Unlock()

	err := session.Translate(ctx, target, TranslateOptions{DictionaryOnly: true, VisibleOnly: true})
	if err != nil {
		e.logger.Warn("dictionary apply failed", "err", err)
	}

	e.mu.Lock()
	e.busy = false
	e.setStateLocked(session)
	retry := e.pending
	e.pending = false
	e.mu.Unlock()
	e.sched.Resume()

	if retry {
		e.sched.Schedule()
	}
	return err
}

// Toggle flips the passive UI translation on or off.
func (e *Engine) Toggle(ctx context.Context) error {
	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		e.notifier.Notice(ErrBusy.Error())
		return ErrBusy
	}
	if e.state != StateOff {
		session := e.session
		e.state = StateOff
		e.dictEnabled = false
		e.mu.Unlock()
		e.sched.Suppress()
		if session != nil {
			session.Clear()
		}
		e.sched.Resume()
		return nil
	}
	e.dictEnabled = true
	e.mu.Unlock()
	return e.ApplyDictionary(ctx)
}

// ClearAll reverses every translation and turns the engine off.
func (e *Engine) ClearAll() {
	e.mu.Lock()
	session := e.session
	e.state = StateOff
	e.mu.Unlock()
	e.sched.Suppress()
	if session != nil {
		session.Clear()
	}
	e.sched.Resume()
}

// Shutdown stops the scheduler and flushes pending dictionary writes.
func (e *Engine) Shutdown() {
	e.sched.Stop()
	if e.dict != nil {
		e.dict.Flush()
	}
}

// prepareSessionLocked returns the UI session, building or refreshing it
// from the current settings. Callers must hold e.mu.
func (e *Engine) prepareSessionLocked() *Session {
	if e.session == nil {
		opts := []SessionOption{WithSessionLogger(e.logger)}
		if e.dict != nil {
			scope := e.settings.UIScope
			if scope == "" {
				scope = DefaultScope
			}
			opts = append(opts, WithDictionary(e.dict, scope))
		}
		if p := e.buildProvider(); p != nil {
			opts = append(opts, WithProvider(p))
		}
		e.session = NewSession(e.settings, opts...)
		return e.session
	}
	e.session.UpdateSettings(e.settings)
	return e.session
}

func (e *Engine) buildProvider() Provider {
	if e.factory != nil {
		return e.factory(e.settings)
	}
	return nil
}

// resetSessionLocked drops the session so the next pass rebuilds it, which
// also clears its cache. Callers must hold e.mu.
func (e *Engine) resetSessionLocked() {
	if e.session != nil {
		e.session.Clear()
	}
	e.session = nil
}

func (e *Engine) setStateLocked(session *Session) {
	if session.HasTranslations() {
		e.state = StateActive
	} else {
		e.state = StateEmpty
	}
}

func (e *Engine) settingsChanged() {
	if e.onChange != nil {
		e.onChange(e.settings.Clone())
	}
}
