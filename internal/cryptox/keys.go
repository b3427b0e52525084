package cryptox

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// KeyProvider supplies the data key used to seal note and data content.
type KeyProvider interface {
	Key(ctx context.Context) ([]byte, error)
}

// StaticKey is a key held in process memory, e.g. from configuration.
type StaticKey []byte

func (k StaticKey) Key(context.Context) ([]byte, error) {
	return bytes.Clone(k), nil
}

// ParseHexKey decodes a hex encoded AES-256 key.
func ParseHexKey(s string) (StaticKey, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, KeySize, len(key))
	}
	return StaticKey(key), nil
}

// KMSDecrypter is the part of *kms.Client used here.
type KMSDecrypter interface {
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// KMSKeyProvider unwraps a data key with AWS KMS on first use and caches the
// plaintext key afterwards. The wrapped key is the CiphertextBlob returned by
// kms GenerateDataKey, stored base64 encoded in configuration.
type KMSKeyProvider struct {
	client  KMSDecrypter
	keyID   string
	wrapped []byte

	mu  sync.Mutex
	key []byte
}

func NewKMSKeyProvider(client KMSDecrypter, keyID, wrappedBase64 string) (*KMSKeyProvider, error) {
	wrapped, err := base64.StdEncoding.DecodeString(wrappedBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wrapped data key: %w", err)
	}
	return &KMSKeyProvider{client: client, keyID: keyID, wrapped: wrapped}, nil
}

func (p *KMSKeyProvider) Key(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.key != nil {
		return bytes.Clone(p.key), nil
	}

	out, err := p.client.Decrypt(ctx, &kms.DecryptInput{
		CiphertextBlob: p.wrapped,
		KeyId:          aws.String(p.keyID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap data key: %w", err)
	}
	if len(out.Plaintext) != KeySize {
		return nil, fmt.Errorf("%w: kms returned %d bytes", ErrInvalidKey, len(out.Plaintext))
	}

	p.key = bytes.Clone(out.Plaintext)
	return bytes.Clone(p.key), nil
}
