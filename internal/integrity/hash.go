// Package integrity detects code modules loaded into the process that are
// not on a prebuilt whitelist.
package integrity

import (
	"encoding/hex"
	"unicode/utf16"
)

// tokenSize is how many bytes of token material take part in the identity.
const tokenSize = 8

// Identity returns the string a module is hashed by: its name followed by
// the lowercase hex of the first eight token bytes, if it has that many.
func Identity(name string, token []byte) string {
	if len(token) < tokenSize {
		return name
	}
	return name + hex.EncodeToString(token[:tokenSize])
}

// Hash is the Jenkins one-at-a-time hash of Identity(name, token), computed
// over UTF-16 code units with wrapping 32-bit signed arithmetic. Whitelists
// built by other tooling rely on these exact values.
func Hash(name string, token []byte) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(Identity(name, token))) {
		h += int32(u)
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h
}
