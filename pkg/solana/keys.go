package solana

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

// PublicKeyFromString decodes a base58 encoded public key
func PublicKeyFromString(s string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base58 encoding")
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid public key length: %d", len(decoded))
	}
	return decoded, nil
}

// MustPublicKeyFromString is PublicKeyFromString for well-known constants
func MustPublicKeyFromString(s string) ed25519.PublicKey {
	key, err := PublicKeyFromString(s)
	if err != nil {
		panic(err)
	}
	return key
}

// PublicKeyString base58 encodes a public key
func PublicKeyString(key ed25519.PublicKey) string {
	return base58.Encode(key)
}
