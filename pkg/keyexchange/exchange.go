package keyexchange

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// Key sizes.
const (
	PublicKeySize  = curve25519.PointSize
	SessionKeySize = 32
)

// sessionKeyInfo is the HKDF info string for the session key.
var sessionKeyInfo = []byte("NDG session key v1")

// Errors.
var (
	ErrInvalidPublicKey = errors.New("keyexchange: invalid public key")
	ErrNoSessionKey     = errors.New("keyexchange: no session key")
	ErrCiphertext       = errors.New("keyexchange: ciphertext too short")
)

// Exchange holds one side of a key agreement and the resulting cipher.
// It is safe for concurrent use.
type Exchange struct {
	mu      sync.Mutex
	private []byte
	public  []byte
	aead    cipher.AEAD
	rand    io.Reader
}

// New creates an Exchange using crypto/rand.
func New() *Exchange {
	return &Exchange{rand: rand.Reader}
}

// NewWithRand creates an Exchange that draws keys and nonces from r.
func NewWithRand(r io.Reader) *Exchange {
	return &Exchange{rand: r}
}

// PublicKey returns the local public key, generating the key pair on first
// use.
func (e *Exchange) PublicKey() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.public == nil {
		priv := make([]byte, curve25519.ScalarSize)
		if _, err := io.ReadFull(e.rand, priv); err != nil {
			return nil, fmt.Errorf("keyexchange: generate key: %w", err)
		}
		pub, err := curve25519.X25519(priv, curve25519.Basepoint)
		if err != nil {
			return nil, fmt.Errorf("keyexchange: public key: %w", err)
		}
		e.private, e.public = priv, pub
	}
	return append([]byte(nil), e.public...), nil
}

// DeriveSharedKey agrees on the session key with the remote public key.
func (e *Exchange) DeriveSharedKey(remote []byte) error {
	if len(remote) != PublicKeySize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidPublicKey, len(remote))
	}
	if _, err := e.PublicKey(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	shared, err := curve25519.X25519(e.private, remote)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	key := make([]byte, SessionKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, nil, sessionKeyInfo), key); err != nil {
		return fmt.Errorf("keyexchange: derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}
	e.aead = aead
	return nil
}

// Established reports whether a session key is available.
func (e *Exchange) Established() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aead != nil
}

// Encrypt seals plaintext. The output is nonce || ciphertext || tag.
func (e *Exchange) Encrypt(plaintext []byte) ([]byte, error) {
	e.mu.Lock()
	aead := e.aead
	e.mu.Unlock()
	if aead == nil {
		return nil, ErrNoSessionKey
	}

	out := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(e.rand, out); err != nil {
		return nil, fmt.Errorf("keyexchange: nonce: %w", err)
	}
	return aead.Seal(out, out, plaintext, nil), nil
}

// Decrypt opens a payload produced by Encrypt.
func (e *Exchange) Decrypt(ciphertext []byte) ([]byte, error) {
	e.mu.Lock()
	aead := e.aead
	e.mu.Unlock()
	if aead == nil {
		return nil, ErrNoSessionKey
	}

	n := aead.NonceSize()
	if len(ciphertext) < n+aead.Overhead() {
		return nil, fmt.Errorf("%w: %d bytes", ErrCiphertext, len(ciphertext))
	}
	return aead.Open(nil, ciphertext[:n], ciphertext[n:], nil)
}

// Reset discards the key pair and the session key.
func (e *Exchange) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.private)
	e.private, e.public, e.aead = nil, nil, nil
}
