// Package searchkey derives the opaque search document ID for an instructor
// from its registration key.
//
// The derivation is a keyed BLAKE2b-256 MAC. The MAC key is expanded from the
// configured secret with HKDF-SHA256, so any secret length is accepted and
// the same secret always yields the same IDs across restarts. Without the
// secret an ID cannot be linked to its registration key, and with it the
// key still cannot be recovered.
package searchkey

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
)

// keyInfo binds the expanded key to this use. Changing it only affects
// records created afterwards; existing records keep their stored search key.
const keyInfo = "instructorsearch/search-key/v1"

var ErrEmptySecret = errors.New("search key secret must not be empty")

// Deriver computes search keys. It is safe for concurrent use.
type Deriver struct {
	key []byte
}

// New expands secret into a 32-byte MAC key.
func New(secret string) (*Deriver, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("expand search key secret: %w", err)
	}
	return &Deriver{key: key}, nil
}

// Derive returns the base64url (unpadded) search key for registrationKey.
func (d *Deriver) Derive(registrationKey string) string {
	h, err := blake2b.New256(d.key)
	if err != nil {
		// only possible for keys longer than 64 bytes
		panic("searchkey: " + err.Error())
	}
	_, _ = h.Write([]byte(registrationKey))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
