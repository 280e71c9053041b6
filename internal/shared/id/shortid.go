// Package id generates Stripe-style prefixed identifiers ("loc_xK9mP2vL3nQa").
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the length of the random part of generated ids.
	DefaultLength = 12
)

const (
	PrefixTenant     = "tn"
	PrefixLocation   = "loc"
	PrefixBranch     = "br"
	PrefixInvitation = "inv"
)

// Generate returns a cryptographically random base62 string.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	out := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

// GenerateWithPrefix returns "prefix_<random>".
func GenerateWithPrefix(prefix string) (string, error) {
	short, err := Generate(DefaultLength)
	if err != nil {
		return "", err
	}
	return FormatWithPrefix(prefix, short), nil
}

// MustGenerateWithPrefix panics when the random source fails.
func MustGenerateWithPrefix(prefix string) string {
	v, err := GenerateWithPrefix(prefix)
	if err != nil {
		panic(err)
	}
	return v
}

// FormatWithPrefix joins prefix and short id; an empty short id stays empty.
func FormatWithPrefix(prefix, shortID string) string {
	if shortID == "" {
		return ""
	}
	return prefix + "_" + shortID
}

// ParsePrefixedID splits "prefix_short" at the first underscore.
func ParsePrefixedID(prefixedID string) (prefix, shortID string, err error) {
	parts := strings.SplitN(prefixedID, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid prefixed ID format: %s", prefixedID)
	}
	return parts[0], parts[1], nil
}

// ExtractShortID returns the short part after validating the prefix.
func ExtractShortID(prefixedID, expectedPrefix string) (string, error) {
	prefix, short, err := ParsePrefixedID(prefixedID)
	if err != nil {
		return "", err
	}
	if prefix != expectedPrefix {
		return "", fmt.Errorf("invalid prefix: expected %s, got %s", expectedPrefix, prefix)
	}
	return short, nil
}

// Reprefix swaps the prefix of an id, keeping its short part.
// Reprefix("loc_abc", "loc", "br") returns "br_abc".
func Reprefix(prefixedID, from, to string) (string, error) {
	short, err := ExtractShortID(prefixedID, from)
	if err != nil {
		return "", err
	}
	return FormatWithPrefix(to, short), nil
}
