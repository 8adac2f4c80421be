package translay

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// KeyLength is the fixed length of dictionary keys.
const KeyLength = 24

// GenKey derives the dictionary key for a (text, language pair) triple. The
// key is backend-agnostic: changing the model or prompts does not invalidate
// previously cached entries.
func GenKey(text, fromLang, toLang string) string {
	payload := strings.Join([]string{text, fromLang, toLang}, "|")
	return hashKey(payload)
}

// GenLegacyKey derives the key scheme used before the backend-agnostic
// migration, salted with the backend identity. It exists only so entries
// written under the old scheme can still be found.
func GenLegacyKey(text, fromLang, toLang, apiType, model, promptSig string) string {
	payload := strings.Join([]string{text, fromLang, toLang, apiType, model, promptSig}, "|")
	return hashKey(payload)
}

// KeyVariants returns the keys to probe when searching a scope, primary
// scheme first. A hit on the legacy key is rewritten under the primary key by
// the resolution pipeline.
func KeyVariants(text string, s Settings) []string {
	return []string{
		GenKey(text, s.FromLang, s.ToLang),
		GenLegacyKey(text, s.FromLang, s.ToLang, s.APIType, s.Model, s.PromptSig()),
	}
}

// hashKey is a djb2-xor content hash over UTF-16 code units, stretched to
// KeyLength hex characters. UTF-16 units keep keys identical to dictionary
// files produced by older clients, which matters for shared cloud
// dictionaries. Not cryptographic; collision resistance only needs to be
// good enough for cache keys.
func hashKey(payload string) string {
	h := int32(5381)
	for _, u := range utf16.Encode([]rune(payload)) {
		h = int32(uint32(int64(h)*33)) ^ int32(u)
	}
	word := fmt.Sprintf("%08x", uint32(h))
	return strings.Repeat(word, 3)[:KeyLength]
}
