// Package cryptox implements the encryption boundary: AES-256-GCM sealing of
// payloads, the key sources behind it, and password derivation and hashing.
package cryptox

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/osmnotes/internal/common"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

var ErrInvalidKey = errors.New("invalid key")

// Sealer seals plaintext into an opaque blob and opens it again. Open fails
// closed: any tampering or a wrong key yields a *DecryptionError and no
// plaintext.
type Sealer interface {
	Seal(ctx context.Context, plaintext []byte) ([]byte, error)
	Open(ctx context.Context, blob []byte) ([]byte, error)
}

// DecryptionError reports a blob that could not be opened. It matches
// common.ErrContentUnavailable with errors.Is.
type DecryptionError struct {
	Err error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed: %v", e.Err)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

func (e *DecryptionError) Is(target error) bool {
	return target == common.ErrContentUnavailable
}

// AESSealer seals with AES-256-GCM. Blobs are nonce || ciphertext || tag, with
// a fresh random nonce per call.
type AESSealer struct {
	keys KeyProvider
}

func NewAESSealer(keys KeyProvider) *AESSealer {
	return &AESSealer{keys: keys}
}

func (s *AESSealer) aead(ctx context.Context) (cipher.AEAD, error) {
	key, err := s.keys.Key(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext.
func (s *AESSealer) Seal(ctx context.Context, plaintext []byte) ([]byte, error) {
	aesgcm, err := s.aead(ctx)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a blob produced by Seal.
func (s *AESSealer) Open(ctx context.Context, blob []byte) ([]byte, error) {
	aesgcm, err := s.aead(ctx)
	if err != nil {
		return nil, &DecryptionError{Err: err}
	}
	if len(blob) < aesgcm.NonceSize()+aesgcm.Overhead() {
		return nil, &DecryptionError{Err: errors.New("blob too short")}
	}
	nonce, ciphertext := blob[:aesgcm.NonceSize()], blob[aesgcm.NonceSize():]
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, &DecryptionError{Err: err}
	}
	return plaintext, nil
}
