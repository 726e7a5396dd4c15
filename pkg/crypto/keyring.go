package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/crypto/hkdf"
)

const (
	sealedPrefix   = "enc:v1:"
	fieldKeyInfo   = "observer-console field encryption"
	masterKeyBytes = 32
)

var (
	ErrInvalidKey     = errors.New("encryption key must be 32 bytes (64 hex chars)")
	ErrUnknownKey     = errors.New("sealed value uses an unknown key")
	ErrMalformedValue = errors.New("malformed sealed value")

	randomReader io.Reader = rand.Reader
)

type keyEntry struct {
	id  string
	aes []byte
}

// Keyring seals sensitive payloads with the active key and opens values sealed by
// any key it still holds. It is safe for concurrent use.
type Keyring struct {
	mu       sync.RWMutex
	active   keyEntry
	previous []keyEntry
}

// NewKeyring creates a keyring from a hex master key plus retired keys still needed for reads.
func NewKeyring(activeKeyHex string, previousKeyHex ...string) (*Keyring, error) {
	active, err := deriveEntry(activeKeyHex)
	if err != nil {
		return nil, err
	}
	k := &Keyring{active: active}
	for _, raw := range previousKeyHex {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		entry, err := deriveEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("previous key: %w", err)
		}
		k.previous = append(k.previous, entry)
	}
	return k, nil
}

// Rotate makes newKeyHex the active key. The old key stays available for Open.
func (k *Keyring) Rotate(newKeyHex string) error {
	entry, err := deriveEntry(newKeyHex)
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if entry.id == k.active.id {
		return nil
	}
	k.previous = append([]keyEntry{k.active}, k.previous...)
	k.active = entry
	return nil
}

// ActiveKeyID identifies the key new values are sealed with
func (k *Keyring) ActiveKeyID() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.active.id
}

// Seal encrypts plaintext with AES-GCM under the active key
func (k *Keyring) Seal(plaintext []byte) (string, error) {
	k.mu.RLock()
	entry := k.active
	k.mu.RUnlock()

	gcm, err := newGCM(entry.aes)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(randomReader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, []byte(entry.id))
	return sealedPrefix + entry.id + ":" + hex.EncodeToString(ciphertext), nil
}

// Open decrypts a value produced by Seal
func (k *Keyring) Open(sealed string) ([]byte, error) {
	if !IsSealed(sealed) {
		return nil, ErrMalformedValue
	}
	keyID, payload, ok := strings.Cut(strings.TrimPrefix(sealed, sealedPrefix), ":")
	if !ok {
		return nil, ErrMalformedValue
	}

	entry, found := k.lookup(keyID)
	if !found {
		return nil, ErrUnknownKey
	}

	ciphertext, err := hex.DecodeString(payload)
	if err != nil {
		return nil, ErrMalformedValue
	}

	gcm, err := newGCM(entry.aes)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, []byte(entry.id))
}

// IsSealed reports whether s looks like a value produced by Seal
func IsSealed(s string) bool {
	return strings.HasPrefix(s, sealedPrefix)
}

func (k *Keyring) lookup(id string) (keyEntry, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.active.id == id {
		return k.active, true
	}
	for _, entry := range k.previous {
		if entry.id == id {
			return entry, true
		}
	}
	return keyEntry{}, false
}

func deriveEntry(keyHex string) (keyEntry, error) {
	master, err := hex.DecodeString(strings.TrimSpace(keyHex))
	if err != nil || len(master) != masterKeyBytes {
		return keyEntry{}, ErrInvalidKey
	}

	derived := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(fieldKeyInfo)), derived); err != nil {
		return keyEntry{}, err
	}

	fingerprint := sha256.Sum256(master)
	return keyEntry{id: hex.EncodeToString(fingerprint[:4]), aes: derived}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
