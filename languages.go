package translay

import "strings"

// NormalizeLang lowercases a language tag and canonicalizes its separator,
// so "zh_CN", "zh-cn", and "ZH-CN" compare equal.
func NormalizeLang(lang string) string {
	lang = strings.TrimSpace(strings.ToLower(lang))
	return strings.ReplaceAll(lang, "_", "-")
}

// BaseLang extracts the primary subtag, e.g. "zh" from "zh-CN".
func BaseLang(lang string) string {
	norm := NormalizeLang(lang)
	if base, _, ok := strings.Cut(norm, "-"); ok {
		return base
	}
	return norm
}
