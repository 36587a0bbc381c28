// Package secretbox seals provider API keys at rest. Sealed values carry
// the "enc:" prefix followed by base64url(nonce || ciphertext).
package secretbox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
)

const (
	Prefix       = "enc:"
	MinKeyLength = 32

	hkdfInfo = "harmony-backend/ai-keys/v1"
)

type Box struct {
	key []byte
}

// New derives the AEAD key from secret. A short or missing secret is a
// configuration error; there is no fallback key.
func New(secret string) (*Box, error) {
	if len(secret) < MinKeyLength {
		return nil, apperrors.New(apperrors.KindConfiguration, "secretbox.New",
			fmt.Sprintf("ENCRYPTION_KEY must be at least %d characters", MinKeyLength))
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &Box{key: key}, nil
}

func IsSealed(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

func (b *Box) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return Prefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (b *Box) Open(value string) (string, error) {
	const op = "secretbox.Open"
	if !IsSealed(value) {
		return "", apperrors.New(apperrors.KindInvalidArgument, op, "value is not sealed")
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(value, Prefix))
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInvalidArgument, op, err)
	}
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", apperrors.New(apperrors.KindInvalidArgument, op, "sealed value too short")
	}
	nonce, ct := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInvalidArgument, op, err)
	}
	return string(plain), nil
}
