package translay

import (
	"context"
	"strings"

	"github.com/dangehub/translay/cloud"
)

// SetUIScope switches the active UI dictionary scope, records it in the
// known and recent scope lists, and resets the session so its cache does not
// leak entries across scopes.
func (e *Engine) SetUIScope(name string) {
	scope := strings.TrimSpace(name)
	if scope == "" {
		scope = DefaultScope
	}
	e.mu.Lock()
	e.settings.UIScope = scope
	e.settings.RecentUIScopes = mruAdd(e.settings.RecentUIScopes, scope)
	e.settings.UIScopes = appendUnique(e.settings.UIScopes, scope)
	e.resetSessionLocked()
	e.mu.Unlock()

	if e.dict != nil {
		e.dict.EnsureScope(scope)
	}
	e.settingsChanged()
}

// RenameScope renames a dictionary scope everywhere it is referenced.
func (e *Engine) RenameScope(oldName, newName string) {
	newName = strings.TrimSpace(newName)
	if newName == "" || oldName == newName {
		return
	}
	if e.dict != nil {
		e.dict.RenameScope(oldName, newName)
	}
	e.mu.Lock()
	for i, s := range e.settings.UIScopes {
		if s == oldName {
			e.settings.UIScopes[i] = newName
		}
	}
	for i, s := range e.settings.RecentUIScopes {
		if s == oldName {
			e.settings.RecentUIScopes[i] = newName
		}
	}
	if e.settings.UIScope == oldName {
		e.settings.UIScope = newName
	}
	e.resetSessionLocked()
	e.mu.Unlock()
	e.settingsChanged()
}

// DeleteScope removes a dictionary scope. The default scope is protected.
func (e *Engine) DeleteScope(name string) {
	if name == DefaultScope {
		return
	}
	if e.dict != nil {
		e.dict.RemoveScope(name)
	}
	e.mu.Lock()
	e.settings.UIScopes = removeString(e.settings.UIScopes, name)
	e.settings.RecentUIScopes = removeString(e.settings.RecentUIScopes, name)
	if e.settings.UIScope == name {
		e.settings.UIScope = DefaultScope
	}
	e.resetSessionLocked()
	e.mu.Unlock()
	e.settingsChanged()
}

// SyncScopesFromDisk merges persisted scopes into the known scope list and
// prunes recents that no longer exist.
func (e *Engine) SyncScopesFromDisk() {
	if e.dict == nil {
		return
	}
	disk := e.dict.ListScopes()

	e.mu.Lock()
	merged := appendUnique([]string{DefaultScope}, e.settings.UIScopes...)
	merged = appendUnique(merged, disk...)
	known := map[string]bool{}
	for _, s := range merged {
		known[s] = true
	}
	var recents []string
	for _, s := range e.settings.RecentUIScopes {
		if known[s] {
			recents = append(recents, s)
		}
	}
	e.settings.UIScopes = merged
	e.settings.RecentUIScopes = recents
	if !known[e.settings.UIScope] {
		e.settings.UIScope = DefaultScope
	}
	e.mu.Unlock()
	e.settingsChanged()
}

// DownloadCloudDict fetches a cloud dictionary and imports it into its scope
// via the merge-by-updatedAt rule, then registers the scope.
func (e *Engine) DownloadCloudDict(ctx context.Context, client *cloud.Client, meta cloud.Meta) error {
	if e.dict == nil {
		return &TranslationError{Message: "no dictionary configured"}
	}
	file, err := client.FetchDict(ctx, meta)
	if err != nil {
		e.notifier.Notice("download failed: " + err.Error())
		return err
	}
	e.dict.EnsureScope(file.Scope)
	e.dict.Import(file.Scope, file)

	e.mu.Lock()
	e.settings.UIScopes = appendUnique(e.settings.UIScopes, file.Scope)
	e.settings.RecentUIScopes = mruAdd(e.settings.RecentUIScopes, file.Scope)
	e.resetSessionLocked()
	e.mu.Unlock()
	e.settingsChanged()

	e.notifier.Notice("dictionary downloaded: " + file.Scope)
	return nil
}

// RefreshCloudRegistry fetches the registry listing and picks a preferred
// registry language when none is selected: exact UI language match first,
// then primary subtag, then English, then whatever is first.
func (e *Engine) RefreshCloudRegistry(ctx context.Context, client *cloud.Client, uiLang string) ([]cloud.Meta, error) {
	e.mu.Lock()
	url := e.settings.CloudRegistryURL
	e.mu.Unlock()
	if url == "" {
		return nil, nil
	}

	list, err := client.FetchRegistry(ctx, url)
	if err != nil {
		return nil, err
	}

	var langs []string
	for _, m := range list {
		if l := strings.TrimSpace(m.Lang); l != "" {
			langs = appendUnique(langs, l)
		}
	}

	e.mu.Lock()
	if e.settings.CloudRegistryLang == "" || !containsString(langs, e.settings.CloudRegistryLang) {
		e.settings.CloudRegistryLang = pickRegistryLang(langs, uiLang)
	}
	e.mu.Unlock()
	e.settingsChanged()

	return list, nil
}

func pickRegistryLang(langs []string, uiLang string) string {
	ui := NormalizeLang(uiLang)
	for _, l := range langs {
		if strings.ToLower(l) == ui {
			return l
		}
	}
	for _, l := range langs {
		if BaseLang(l) == BaseLang(ui) {
			return l
		}
	}
	for _, l := range langs {
		if strings.ToLower(l) == "en" {
			return l
		}
	}
	if len(langs) > 0 {
		return langs[0]
	}
	return ""
}

func mruAdd(list []string, scope string) []string {
	out := []string{scope}
	for _, s := range list {
		if s != scope {
			out = append(out, s)
		}
	}
	if len(out) > MaxRecentScopes {
		out = out[:MaxRecentScopes]
	}
	return out
}

func appendUnique(list []string, items ...string) []string {
	seen := map[string]bool{}
	for _, s := range list {
		seen[s] = true
	}
	for _, s := range items {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		list = append(list, s)
	}
	return list
}

func removeString(list []string, item string) []string {
	out := list[:0]
	for _, s := range list {
		if s != item {
			out = append(out, s)
		}
	}
	return out
}

func containsString(list []string, item string) bool {
	for _, s := range list {
		if s == item {
			return true
		}
	}
	return false
}
