package provider

import (
	"context"

	"github.com/dangehub/translay"
)

// MockProvider is a canned-response provider for tests and dry runs.
type MockProvider struct {
	// Translations maps source text to translated text. Unknown texts are
	// echoed back wrapped in brackets.
	Translations map[string]string
	// Err, when set, is returned from every call.
	Err error

	CallCount int
	LastText  string
}

// Translate returns the canned translation for the request text.
func (m *MockProvider) Translate(_ context.Context, req translay.Request) (string, error) {
	m.CallCount++
	m.LastText = req.Text
	if m.Err != nil {
		return "", m.Err
	}
	if tr, ok := m.Translations[req.Text]; ok {
		return tr, nil
	}
	return "[" + req.Text + "]", nil
}
