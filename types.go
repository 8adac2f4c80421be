package translay

// DefaultScope is the scope used for UI translations when none is configured.
const DefaultScope = "ui-global"

// MaxRecentScopes caps the most-recently-used scope list.
const MaxRecentScopes = 5

// Settings is the configuration surface consumed by the engine. Sessions copy
// it on construction and on UpdateSettings, so mutating the caller's value
// never changes an in-flight session.
type Settings struct {
	APIType string // Backend kind; only "openai" (chat-completion style) is supported
	APIURL  string // Full endpoint URL, e.g. "https://api.openai.com/v1/chat/completions"
	APIKey  string
	Model   string

	FromLang string // Source language code ("auto" allowed)
	ToLang   string // Target language code

	SystemPrompt string // Template with {text}, {from}, {to} placeholders
	UserPrompt   string

	SkipSelectors []string // CSS selectors excluded via ancestor-or-self containment

	UIScope        string   // Active dictionary scope
	UIScopes       []string // All known scopes
	RecentUIScopes []string // MRU scopes, capped at MaxRecentScopes

	HideOriginal bool // Hide original static nodes once translated
	SmartHover   bool // Reveal original text while hovering a translated node
	EditMode     bool // Attach edit controls to translated nodes
	ExtractOnly  bool // Picker extracts dictionary entries instead of translating

	CloudRegistryURL  string
	CloudRegistryLang string

	MaxTextLength int // Ceiling on normalized block text length
}

// DefaultSettings returns the settings used when the host provides none.
func DefaultSettings() Settings {
	return Settings{
		APIType:      "openai",
		APIURL:       "https://api.openai.com/v1/chat/completions",
		Model:        "gpt-4o-mini",
		FromLang:     "auto",
		ToLang:       "zh",
		SystemPrompt: "You are a translation engine. Preserve meaning, formatting, punctuation, and code blocks. Do not add explanations.",
		UserPrompt:   "Translate the following text from {from} to {to}. Reply with translation only.\n\n{text}",

		UIScope:        DefaultScope,
		UIScopes:       []string{DefaultScope},
		RecentUIScopes: []string{DefaultScope},

		MaxTextLength: 500,
	}
}

// Clone returns a deep copy of the settings.
func (s Settings) Clone() Settings {
	c := s
	c.SkipSelectors = append([]string(nil), s.SkipSelectors...)
	c.UIScopes = append([]string(nil), s.UIScopes...)
	c.RecentUIScopes = append([]string(nil), s.RecentUIScopes...)
	return c
}

// PromptSig is the prompt signature used by the legacy key scheme.
func (s Settings) PromptSig() string {
	return s.SystemPrompt + s.UserPrompt
}

// hasEndpoint reports whether a network translation backend is configured at
// all. A fully absent backend silently degrades resolution to dictionary-only
// behavior; a partially configured one fails with a ConfigError from the
// provider.
func (s Settings) hasEndpoint() bool {
	return s.APIURL != "" || s.APIKey != ""
}
