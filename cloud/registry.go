// Package cloud reads the read-only cloud dictionary registry: a JSON
// listing of downloadable, pre-built translation dictionaries.
package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dangehub/translay/dictionary"
)

// Meta describes one downloadable dictionary.
type Meta struct {
	ID          string
	Scope       string
	Lang        string
	Name        string
	Description string
	DownloadURL string
	UpdatedAt   int64
	EntryCount  int
	Version     int
	Size        int64
}

// Client fetches registry listings and dictionary files.
type Client struct {
	http *resty.Client
}

// NewClient creates a registry client.
func NewClient() *Client {
	return &Client{http: resty.New().SetTimeout(20 * time.Second)}
}

// FetchRegistry downloads and normalizes a registry listing. All three
// published shapes are accepted: {languages: {lang: [...]}},
// {dictionaries: [...]}, and a bare array.
func (c *Client) FetchRegistry(ctx context.Context, url string) ([]Meta, error) {
	if url == "" {
		return nil, nil
	}
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch registry: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch registry: status %d", resp.StatusCode())
	}
	raws, err := normalizeRegistry(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("fetch registry: %w", err)
	}

	var metas []Meta
	for _, raw := range raws {
		if m, ok := normalizeMeta(raw); ok {
			metas = append(metas, m)
		}
	}
	return metas, nil
}

// FetchDict downloads one dictionary file and validates its shape.
func (c *Client) FetchDict(ctx context.Context, meta Meta) (*dictionary.File, error) {
	if meta.DownloadURL == "" {
		return nil, fmt.Errorf("fetch dictionary: missing download url")
	}
	resp, err := c.http.R().SetContext(ctx).Get(meta.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("fetch dictionary: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch dictionary: status %d", resp.StatusCode())
	}

	var file dictionary.File
	if err := json.Unmarshal(resp.Body(), &file); err != nil {
		return nil, fmt.Errorf("fetch dictionary: invalid format: %w", err)
	}
	if file.Entries == nil {
		return nil, fmt.Errorf("fetch dictionary: invalid format: no entries")
	}
	if file.Version == 0 {
		file.Version = dictionary.FileVersion
	}
	if file.Scope == "" {
		file.Scope = meta.Scope
	}
	return &file, nil
}

// rawMeta tolerates the registry's loose field naming and types.
type rawMeta struct {
	ID          json.RawMessage `json:"id"`
	Scope       string          `json:"scope"`
	Lang        string          `json:"lang"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	DownloadURL string          `json:"downloadUrl"`
	URL         string          `json:"url"`
	UpdatedAt   json.Number     `json:"updatedAt"`
	EntryCount  json.Number     `json:"entryCount"`
	Version     json.Number     `json:"version"`
	Size        json.Number     `json:"size"`
}

func normalizeRegistry(body []byte) ([]rawMeta, error) {
	var byLang struct {
		Languages map[string][]rawMeta `json:"languages"`
	}
	if err := json.Unmarshal(body, &byLang); err == nil && len(byLang.Languages) > 0 {
		var list []rawMeta
		for lang, items := range byLang.Languages {
			for _, item := range items {
				item.Lang = lang
				list = append(list, item)
			}
		}
		return list, nil
	}

	var wrapped struct {
		Dictionaries []rawMeta `json:"dictionaries"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Dictionaries != nil {
		return wrapped.Dictionaries, nil
	}

	var bare []rawMeta
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, fmt.Errorf("unrecognized registry shape: %w", err)
	}
	return bare, nil
}

func normalizeMeta(raw rawMeta) (Meta, bool) {
	id := rawString(raw.ID)
	scope := raw.Scope
	if scope == "" {
		scope = id
	}
	download := raw.DownloadURL
	if download == "" {
		download = raw.URL
	}
	if scope == "" || download == "" {
		return Meta{}, false
	}
	if id == "" {
		id = scope
	}
	name := raw.Name
	if name == "" {
		name = scope
	}
	return Meta{
		ID:          id,
		Scope:       scope,
		Lang:        raw.Lang,
		Name:        name,
		Description: raw.Description,
		DownloadURL: download,
		UpdatedAt:   numInt64(raw.UpdatedAt),
		EntryCount:  int(numInt64(raw.EntryCount)),
		Version:     int(numInt64(raw.Version)),
		Size:        numInt64(raw.Size),
	}, true
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func numInt64(n json.Number) int64 {
	if n == "" {
		return 0
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return 0
		}
		return int64(f)
	}
	return v
}
