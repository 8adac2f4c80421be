// Package dictionary implements the per-scope persistent translation memory.
//
// Each scope is one JSON file under a base directory. Reads are cache-first;
// writes are coalesced with a trailing-edge timer per scope. Storage errors
// are logged and degrade to in-memory-only operation; they never abort a
// translation pass.
package dictionary

import (
	"encoding/json"
	"errors"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/spf13/afero"
)

// FileVersion is the on-disk dictionary file format version.
const FileVersion = 1

// MaxEntries bounds the number of entries kept per scope. Eviction drops the
// oldest-by-insertion entries; since Set re-appends on update, this is LRU by
// recency of write, not of read.
const MaxEntries = 1000

const defaultSaveDelay = 500 * time.Millisecond

// Entry is one translation memory record.
type Entry struct {
	Key        string `json:"key"`
	Source     string `json:"source"`
	Translated string `json:"translated"`
	UpdatedAt  int64  `json:"updatedAt"`
	// Edited marks user-authored entries. They are never silently replaced
	// by a fresh network translation; only an explicit reset removes them.
	Edited bool `json:"edited,omitempty"`
}

// File is the persisted form of one scope.
type File struct {
	Version int     `json:"version"`
	Scope   string  `json:"scope"`
	Entries []Entry `json:"entries"`
}

var unsafeScopeChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.+]`)

// Store is the dictionary store. Safe for use from multiple sessions; writes
// are whole-entry append/remove so readers never observe partial state.
type Store struct {
	fs      afero.Fs
	baseDir string
	logger  *slog.Logger

	mu        sync.Mutex
	cache     map[string]*File
	timers    map[string]*time.Timer
	saveDelay time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithSaveDelay overrides the debounce window for persistence.
func WithSaveDelay(d time.Duration) Option {
	return func(s *Store) { s.saveDelay = d }
}

// NewStore creates a dictionary store rooted at baseDir on the given
// filesystem. Use afero.NewOsFs for real storage and afero.NewMemMapFs in
// tests.
func NewStore(fsys afero.Fs, baseDir string, opts ...Option) *Store {
	s := &Store{
		fs:        fsys,
		baseDir:   strings.ReplaceAll(baseDir, "\\", "/"),
		logger:    slog.Default(),
		cache:     make(map[string]*File),
		timers:    make(map[string]*time.Timer),
		saveDelay: defaultSaveDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureReady initializes the storage directory. Idempotent.
func (s *Store) EnsureReady() {
	if err := s.fs.MkdirAll(s.baseDir, 0o755); err != nil {
		s.logger.Error("dict ensure dir failed", "dir", s.baseDir, "err", err)
	}
}

// EnsureScope creates an empty dictionary file for the scope if none exists
// and warms the in-memory cache. Idempotent.
func (s *Store) EnsureScope(scope string) {
	s.EnsureReady()
	s.mu.Lock()
	defer s.mu.Unlock()
	fp := s.filePath(scope)
	ok, err := afero.Exists(s.fs, fp)
	if err != nil {
		s.logger.Error("dict ensure scope failed", "scope", scope, "err", err)
		return
	}
	if ok {
		return
	}
	empty := &File{Version: FileVersion, Scope: scope, Entries: []Entry{}}
	s.writeFile(fp, empty)
	s.cache[scope] = empty
}

// ListScopes enumerates persisted scope identifiers from the storage
// directory.
func (s *Store) ListScopes() []string {
	infos, err := afero.ReadDir(s.fs, s.baseDir)
	if err != nil {
		if !isNotFound(err) {
			s.logger.Error("dict list failed", "err", err)
		}
		return nil
	}
	var scopes []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		name := info.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".json") {
			continue
		}
		scopes = append(scopes, name[:len(name)-len(".json")])
	}
	sort.Strings(scopes)
	return scopes
}

// Get returns the first entry matching any of the given key variants, probed
// in order.
func (s *Store) Get(scope string, keys ...string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file := s.load(scope)
	for _, k := range keys {
		for _, e := range file.Entries {
			if e.Key == k {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// Set upserts an entry by key and schedules a debounced persist. The entry is
// re-appended, making it both the newest and the one that survives
// MaxEntries eviction.
func (s *Store) Set(scope string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file := s.load(scope)
	touch(file, entry)
	s.scheduleSave(scope)
}

// Remove deletes the entry with the given key, if present.
func (s *Store) Remove(scope, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file := s.load(scope)
	before := len(file.Entries)
	file.Entries = deleteByKey(file.Entries, key)
	if len(file.Entries) != before {
		s.scheduleSave(scope)
	}
}

// Flush force-writes the given scopes, or every cached scope when called with
// none. Must be called on shutdown so debounced writes are not lost.
func (s *Store) Flush(scopes ...string) {
	s.EnsureReady()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(scopes) == 0 {
		for scope := range s.cache {
			scopes = append(scopes, scope)
		}
	}
	for _, scope := range scopes {
		if t, ok := s.timers[scope]; ok {
			t.Stop()
			delete(s.timers, scope)
		}
		file, ok := s.cache[scope]
		if !ok {
			continue
		}
		s.writeFile(s.filePath(scope), file)
	}
}

// Export returns a copy of the scope's dictionary file.
func (s *Store) Export(scope string) *File {
	s.mu.Lock()
	defer s.mu.Unlock()
	file := s.load(scope)
	out := &File{Version: file.Version, Scope: file.Scope}
	out.Entries = append([]Entry(nil), file.Entries...)
	return out
}

// Import merges incoming entries into the scope. For each key, the entry with
// the strictly greater UpdatedAt wins; on a tie the local entry is kept. The
// result is capped to MaxEntries keeping the most recent tail.
func (s *Store) Import(scope string, incoming *File) {
	if incoming == nil || incoming.Entries == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	file := s.load(scope)
	merged := make(map[string]Entry, len(file.Entries))
	order := make([]string, 0, len(file.Entries))
	for _, e := range file.Entries {
		merged[e.Key] = e
		order = append(order, e.Key)
	}
	for _, e := range incoming.Entries {
		prev, ok := merged[e.Key]
		if ok && e.UpdatedAt <= prev.UpdatedAt {
			continue
		}
		if !ok {
			order = append(order, e.Key)
		}
		merged[e.Key] = e
	}
	entries := make([]Entry, 0, len(order))
	for _, k := range order {
		entries = append(entries, merged[k])
	}
	if len(entries) > MaxEntries {
		entries = entries[len(entries)-MaxEntries:]
	}
	file.Entries = entries
	s.scheduleSave(scope)
}

// RenameScope moves a scope's content under a new name. The new file is
// persisted before the old one is deleted, so a mid-way failure cannot lose
// data.
func (s *Store) RenameScope(oldName, newName string) {
	if oldName == newName {
		return
	}
	s.mu.Lock()
	file := s.load(oldName)
	renamed := &File{Version: file.Version, Scope: newName}
	renamed.Entries = append([]Entry(nil), file.Entries...)
	s.cache[newName] = renamed
	delete(s.cache, oldName)
	s.mu.Unlock()

	s.Flush(newName)
	s.RemoveScope(oldName)
}

// RemoveScope drops the scope from the cache and deletes its file. If the
// filesystem refuses deletion, the file is overwritten with an empty
// dictionary as a soft delete.
func (s *Store) RemoveScope(scope string) {
	s.mu.Lock()
	delete(s.cache, scope)
	if t, ok := s.timers[scope]; ok {
		t.Stop()
		delete(s.timers, scope)
	}
	fp := s.filePath(scope)
	s.mu.Unlock()

	err := s.fs.Remove(fp)
	if err == nil || isNotFound(err) {
		return
	}
	s.logger.Error("dict remove failed", "scope", scope, "err", err)
	s.writeFile(fp, &File{Version: FileVersion, Scope: scope, Entries: []Entry{}})
}

// load returns the cached file for a scope, reading through to storage on a
// miss. Missing, corrupt, or version-mismatched files are replaced with an
// empty one; the caller never sees an error. Callers must hold s.mu.
func (s *Store) load(scope string) *File {
	if f, ok := s.cache[scope]; ok {
		return f
	}
	empty := &File{Version: FileVersion, Scope: scope, Entries: []Entry{}}
	fp := s.filePath(scope)
	raw, err := afero.ReadFile(s.fs, fp)
	if err != nil {
		if !isNotFound(err) {
			s.logger.Error("dict load failed", "scope", scope, "err", err)
		} else {
			s.EnsureReady()
			s.writeFile(fp, empty)
		}
		s.cache[scope] = empty
		return empty
	}
	var parsed File
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Version != FileVersion || parsed.Entries == nil {
		s.logger.Error("dict load failed", "scope", scope, "err", errors.Join(err, errors.New("version mismatch")))
		s.cache[scope] = empty
		return empty
	}
	s.cache[scope] = &parsed
	return &parsed
}

func (s *Store) scheduleSave(scope string) {
	if t, ok := s.timers[scope]; ok {
		t.Stop()
	}
	s.timers[scope] = time.AfterFunc(s.saveDelay, func() {
		s.Flush(scope)
	})
}

func (s *Store) writeFile(fp string, file *File) {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		s.logger.Error("dict encode failed", "path", fp, "err", err)
		return
	}
	if err := afero.WriteFile(s.fs, fp, data, 0o644); err != nil {
		s.logger.Error("dict write failed", "path", fp, "err", err)
	}
}

func (s *Store) filePath(scope string) string {
	safe := unsafeScopeChars.ReplaceAllString(scope, "_")
	return path.Join(s.baseDir, safe+".json")
}

func touch(file *File, entry Entry) {
	file.Entries = deleteByKey(file.Entries, entry.Key)
	file.Entries = append(file.Entries, entry)
	if len(file.Entries) > MaxEntries {
		file.Entries = file.Entries[len(file.Entries)-MaxEntries:]
	}
}

func deleteByKey(entries []Entry, key string) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
