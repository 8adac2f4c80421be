// Package translay is an in-place "translate what you see" engine for HTML
// content: it scans a rendered node tree, picks the leaf blocks worth
// translating, resolves translations through a three-tier lookup (session
// cache, per-scope persistent dictionary, remote chat-completion backend),
// and swaps them into the tree reversibly.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "log"
//	    "os"
//	    "strings"
//
//	    "github.com/dangehub/translay"
//	    "github.com/dangehub/translay/dictionary"
//	    "github.com/dangehub/translay/provider"
//	    "github.com/spf13/afero"
//	    "golang.org/x/net/html"
//	)
//
//	func main() {
//	    settings := translay.DefaultSettings()
//	    settings.APIKey = os.Getenv("OPENAI_API_KEY")
//	    settings.ToLang = "zh"
//
//	    dict := dictionary.NewStore(afero.NewOsFs(), "translation")
//	    session := translay.NewSession(settings,
//	        translay.WithDictionary(dict, settings.UIScope),
//	        translay.WithProvider(provider.FromSettings(settings)),
//	    )
//
//	    doc, _ := html.Parse(strings.NewReader(page))
//	    if err := session.Translate(context.Background(), doc, translay.TranslateOptions{}); err != nil {
//	        log.Fatal(err)
//	    }
//	    defer session.Clear() // exact reversal
//	    dict.Flush()
//	}
//
// Sessions are exactly reversible: Clear restores text, classes, and node
// count to the pre-translate state. The dictionary is a per-scope translation
// memory with debounced persistence, merge-on-import, and a legacy key
// migration path, so repeated passes over the same UI cost no network calls.
package translay

// Version information. Override at build time with ldflags:
//
//	go build -ldflags "-X github.com/dangehub/translay.Version=1.0.0"
const (
	// Name is the project name.
	Name = "translay"

	// Description is a short description of the project.
	Description = "In-place HTML translation engine with per-scope translation memory"

	// Version is the semantic version.
	Version = "0.1.0"
)
