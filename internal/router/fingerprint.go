package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns the canonical cache and single-flight key for a
// request: a hash over (category, operation, sorted arguments, caller
// language tag). The provider ID is deliberately excluded so a response
// from one provider is reused when another would otherwise be tried.
// Arguments reach the hash in sorted key order, which bounds key length
// and makes the key independent of caller map ordering.
func Fingerprint(category, operation string, args map[string]string, lang string) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(category)
	b.WriteByte('\x00')
	b.WriteString(operation)
	b.WriteByte('\x00')
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(args[k])
		b.WriteByte('&')
	}
	b.WriteByte('\x00')
	b.WriteString(lang)

	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}
