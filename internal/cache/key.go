package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Key identifies one castxml dump: the header it was generated from, the
// header's content hash and the signature of the castxml settings used.
// Any change to the header bytes or the settings yields a different key.
type Key struct {
	Header      string // absolute, slash-separated path
	ContentHash string // SHA-256 hex of the header bytes
	ConfigSig   string // SHA-256 hex of castxml.Settings.Signature()
}

// String returns a compact form suitable for logs.
func (k Key) String() string {
	return fmt.Sprintf("%s@%s/%s", k.Header, short(k.ContentHash), short(k.ConfigSig))
}

// KeyFor builds the key for header with the given content and settings signature.
func KeyFor(header string, content []byte, settingsSig string) Key {
	if abs, err := filepath.Abs(header); err == nil {
		header = abs
	}
	return Key{
		Header:      filepath.ToSlash(header),
		ContentHash: hashBytes(content),
		ConfigSig:   hashString(settingsSig),
	}
}

// KeyForFile reads header and builds its key.
func KeyForFile(header, settingsSig string) (Key, error) {
	content, err := os.ReadFile(header)
	if err != nil {
		return Key{}, fmt.Errorf("failed to read header %s: %w", header, err)
	}
	return KeyFor(header, content, settingsSig), nil
}

// hashString returns SHA-256 hash of the input string as hex.
func hashString(s string) string {
	return hashBytes([]byte(s))
}

func hashBytes(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func short(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
