package translay

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/net/html"

	"github.com/dangehub/translay/dictionary"
	"github.com/dangehub/translay/dom"
)

// recordingNotifier captures user notices for assertions.
type recordingNotifier struct {
	notices []string
}

func (n *recordingNotifier) Notice(msg string) {
	n.notices = append(n.notices, msg)
}

func (n *recordingNotifier) contains(substr string) bool {
	for _, msg := range n.notices {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func newTestEngine(t *testing.T, settings Settings, provider Provider, opts ...EngineOption) (*Engine, *dictionary.Store, *recordingNotifier) {
	t.Helper()
	store := dictionary.NewStore(afero.NewMemMapFs(), "translation")
	notifier := &recordingNotifier{}
	opts = append(opts,
		WithNotifier(notifier),
		WithProviderFactory(func(Settings) Provider { return provider }),
	)
	engine := NewEngine(settings, store, opts...)
	t.Cleanup(engine.Shutdown)
	return engine, store, notifier
}

func TestEngineTranslateTarget(t *testing.T) {
	doc := parseDoc(t, `<p>Hello world</p>`)
	provider := &stubProvider{translations: map[string]string{"Hello world": "你好，世界"}}
	engine, store, _ := newTestEngine(t, testSettings(), provider)

	if engine.State() != StateOff {
		t.Fatalf("initial state = %v, want off", engine.State())
	}
	if err := engine.TranslateTarget(context.Background(), doc); err != nil {
		t.Fatalf("TranslateTarget: %v", err)
	}
	if engine.State() != StateActive {
		t.Errorf("state = %v, want active", engine.State())
	}
	if !strings.Contains(render(t, doc), "你好，世界") {
		t.Error("translation not applied")
	}

	// The pass persisted into the scope from the settings.
	if _, ok := store.Get(DefaultScope, GenKey("Hello world", "en", "zh")); !ok {
		t.Error("translation not persisted")
	}
}

func TestEngineTranslateTargetEmpty(t *testing.T) {
	doc := parseDoc(t, `<p>x</p>`)
	engine, _, _ := newTestEngine(t, testSettings(), &stubProvider{})

	if err := engine.TranslateTarget(context.Background(), doc); err != nil {
		t.Fatalf("TranslateTarget: %v", err)
	}
	if engine.State() != StateEmpty {
		t.Errorf("state = %v, want empty", engine.State())
	}
}

func TestEngineTranslateTargetNoTarget(t *testing.T) {
	engine, _, notifier := newTestEngine(t, testSettings(), &stubProvider{})

	err := engine.TranslateTarget(context.Background(), nil)
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
	if !notifier.contains(ErrNoContent.Error()) {
		t.Error("no user notice for the missing target")
	}
}

func TestEngineTranslateTargetBusy(t *testing.T) {
	engine, _, notifier := newTestEngine(t, testSettings(), &stubProvider{})
	doc := parseDoc(t, `<p>Hello world</p>`)

	engine.mu.Lock()
	engine.busy = true
	engine.mu.Unlock()

	err := engine.TranslateTarget(context.Background(), doc)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
	if !notifier.contains(ErrBusy.Error()) {
		t.Error("no busy notice")
	}
}

func TestEngineTranslateTargetFailure(t *testing.T) {
	doc := parseDoc(t, `<p>Hello world</p>`)
	provider := &stubProvider{err: errors.New("backend down")}
	engine, _, notifier := newTestEngine(t, testSettings(), provider)

	if err := engine.TranslateTarget(context.Background(), doc); err == nil {
		t.Fatal("expected an error")
	}
	if engine.State() != StateOff {
		t.Errorf("state = %v, want off after failure", engine.State())
	}
	if !notifier.contains("translation failed") {
		t.Errorf("no failure notice, got %v", notifier.notices)
	}
}

func TestEngineApplyDictionary(t *testing.T) {
	doc := parseDoc(t, `<p>Hello world</p>`)
	provider := &stubProvider{}
	engine, store, _ := newTestEngine(t, testSettings(), provider)
	store.Set(DefaultScope, dictionary.Entry{
		Key:        GenKey("Hello world", "en", "zh"),
		Source:     "Hello world",
		Translated: "你好，世界",
		UpdatedAt:  1,
	})

	// No target yet: a pass is a harmless no-op.
	if err := engine.ApplyDictionary(context.Background()); err != nil {
		t.Fatalf("ApplyDictionary without target: %v", err)
	}
	if engine.State() != StateOff {
		t.Errorf("state changed without a target")
	}

	engine.SetTarget(doc, "page-1", nil)
	if err := engine.ApplyDictionary(context.Background()); err != nil {
		t.Fatalf("ApplyDictionary: %v", err)
	}
	if engine.State() != StateActive {
		t.Errorf("state = %v, want active", engine.State())
	}
	if provider.calls != 0 {
		t.Errorf("passive pass made %d network calls", provider.calls)
	}
	if !strings.Contains(render(t, doc), "你好，世界") {
		t.Error("dictionary translation not applied")
	}
}

func TestEngineApplyDictionaryWhileBusyGoesPending(t *testing.T) {
	engine, _, _ := newTestEngine(t, testSettings(), &stubProvider{})
	engine.SetTarget(parseDoc(t, `<p>Hello world</p>`), "page", nil)

	engine.mu.Lock()
	engine.busy = true
	engine.mu.Unlock()

	if err := engine.ApplyDictionary(context.Background()); err != nil {
		t.Fatalf("ApplyDictionary: %v", err)
	}
	engine.mu.Lock()
	pending := engine.pending
	engine.mu.Unlock()
	if !pending {
		t.Error("concurrent apply not recorded as pending")
	}
}

func TestEngineApplyDictionaryPendingRunsFollowUp(t *testing.T) {
	doc := parseDoc(t, `<p>Hello world</p>`)
	engine, store, _ := newTestEngine(t, testSettings(), &stubProvider{})
	store.Set(DefaultScope, dictionary.Entry{
		Key:        GenKey("Hello world", "en", "zh"),
		Source:     "Hello world",
		Translated: "你好，世界",
		UpdatedAt:  1,
	})

	// The first call to Measure parks the pass so a second request can
	// arrive while it is in flight.
	var measured atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	viewport := &dom.Viewport{
		Height: 1000,
		Measure: func(n *html.Node) (dom.Rect, bool) {
			if measured.Add(1) == 1 {
				close(entered)
				<-release
			}
			return dom.Rect{Top: 0, Height: 10}, true
		},
	}
	engine.SetTarget(doc, "page", viewport)

	done := make(chan error, 1)
	go func() { done <- engine.ApplyDictionary(context.Background()) }()
	<-entered

	if err := engine.ApplyDictionary(context.Background()); err != nil {
		t.Fatalf("concurrent ApplyDictionary: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first ApplyDictionary: %v", err)
	}

	// The pending request becomes exactly one follow-up pass, delivered
	// even though it lands inside the post-pass cooldown.
	if !waitFor(t, 5*time.Second, func() bool { return measured.Load() >= 2 }) {
		t.Fatalf("pending follow-up pass never ran, %d measure calls", measured.Load())
	}
	if !strings.Contains(render(t, doc), "你好，世界") {
		t.Error("dictionary translation not applied")
	}
}

func TestEngineSetTargetPageChangeClears(t *testing.T) {
	doc := parseDoc(t, `<p>Hello world</p>`)
	provider := &stubProvider{translations: map[string]string{"Hello world": "你好，世界"}}
	engine, _, _ := newTestEngine(t, testSettings(), provider)

	engine.SetTarget(doc, "page-1", nil)
	if err := engine.TranslateTarget(context.Background(), nil); err != nil {
		t.Fatalf("TranslateTarget: %v", err)
	}
	if !strings.Contains(render(t, doc), "你好，世界") {
		t.Fatal("translation not applied")
	}

	// Same node, new page key: previous output is cleared.
	engine.SetTarget(doc, "page-2", nil)
	if strings.Contains(render(t, doc), "你好，世界") {
		t.Error("stale translations left after page change")
	}

	// Re-pointing at the same page is a no-op.
	engine.SetTarget(doc, "page-2", nil)
}

func TestEngineToggle(t *testing.T) {
	doc := parseDoc(t, `<p>Hello world</p>`)
	engine, store, _ := newTestEngine(t, testSettings(), &stubProvider{})
	store.Set(DefaultScope, dictionary.Entry{
		Key:        GenKey("Hello world", "en", "zh"),
		Source:     "Hello world",
		Translated: "你好，世界",
		UpdatedAt:  1,
	})
	engine.SetTarget(doc, "page", nil)

	ctx := context.Background()
	if err := engine.Toggle(ctx); err != nil {
		t.Fatalf("Toggle on: %v", err)
	}
	if engine.State() != StateActive {
		t.Fatalf("state = %v, want active", engine.State())
	}

	if err := engine.Toggle(ctx); err != nil {
		t.Fatalf("Toggle off: %v", err)
	}
	if engine.State() != StateOff {
		t.Errorf("state = %v, want off", engine.State())
	}
	if strings.Contains(render(t, doc), "你好，世界") {
		t.Error("translations left after toggling off")
	}

	if err := engine.Toggle(ctx); err != nil {
		t.Fatalf("Toggle back on: %v", err)
	}
	if !strings.Contains(render(t, doc), "你好，世界") {
		t.Error("translations not re-applied")
	}
}

func TestEngineUpdateSettingsPushesVisibility(t *testing.T) {
	doc := parseDoc(t, `<p id="p">Hello world</p>`)
	provider := &stubProvider{translations: map[string]string{"Hello world": "你好，世界"}}
	settings := testSettings()
	settings.HideOriginal = true
	engine, _, _ := newTestEngine(t, settings, provider)

	if err := engine.TranslateTarget(context.Background(), doc); err != nil {
		t.Fatalf("TranslateTarget: %v", err)
	}
	original := docByID(doc, "p")
	if !strings.Contains(render(t, doc), "display: none") {
		t.Fatal("original not hidden")
	}

	settings.HideOriginal = false
	engine.UpdateSettings(settings)
	if strings.Contains(render(t, doc), "display: none") {
		t.Errorf("original still hidden after settings update: %s", render(t, original))
	}
}

func TestEngineShutdownFlushes(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := dictionary.NewStore(fsys, "translation")
	engine := NewEngine(testSettings(), store,
		WithProviderFactory(func(Settings) Provider {
			return &stubProvider{translations: map[string]string{"Hello world": "你好，世界"}}
		}),
	)
	doc := parseDoc(t, `<p>Hello world</p>`)
	if err := engine.TranslateTarget(context.Background(), doc); err != nil {
		t.Fatalf("TranslateTarget: %v", err)
	}

	engine.Shutdown()

	raw, err := afero.ReadFile(fsys, "translation/"+DefaultScope+".json")
	if err != nil {
		t.Fatalf("scope file not written: %v", err)
	}
	if !strings.Contains(string(raw), "你好，世界") {
		t.Error("pending entry lost on shutdown")
	}
}
