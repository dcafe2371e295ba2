package proxy

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// jsonPathReplacer escapes the characters sjson treats as path syntax so a
// client-supplied key is always set literally at the top level.
var jsonPathReplacer = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`:`, `\:`,
	`!`, `\!`,
	`=`, `\=`,
	`<`, `\<`,
	`>`, `\>`,
	`%`, `\%`,
)

func escapeJSONKey(key string) string {
	return jsonPathReplacer.Replace(key)
}

// excerpt returns at most n runes of s.
func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func isSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
