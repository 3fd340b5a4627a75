// Package id generates opaque identifiers for escrow records.
//
// Identifiers are UUIDv4 values encoded as 26-character lowercase base32
// strings without padding, which keeps them opaque and URL-safe.
package id

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a new random identifier.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}
