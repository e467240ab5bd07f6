package domain

import (
	"regexp"
	"strings"
)

// Syntactic address formats per network. Validation is format-only; no
// checksum or on-chain verification happens here.
var (
	btcLegacyRe  = regexp.MustCompile(`^[13][1-9A-HJ-NP-Za-km-z]{24,33}$`)
	btcBech32Re  = regexp.MustCompile(`^bc1[a-z0-9]{36,56}$`)
	evmAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	tronRe       = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)
	genericRe    = regexp.MustCompile(`^[a-zA-Z0-9]{20,}$`)
)

// ValidAddress reports whether address conforms to the stated network's
// format. Input is trimmed first; empty input is always invalid. Unknown
// networks fall back to a generic length/alphanumeric check. Never errors.
func ValidAddress(network Network, address string) bool {
	address = strings.TrimSpace(address)
	if address == "" {
		return false
	}

	switch network {
	case NetworkBitcoin:
		return btcLegacyRe.MatchString(address) || btcBech32Re.MatchString(address)
	case NetworkEthereum, NetworkPolygon, NetworkBNB:
		return evmAddressRe.MatchString(address)
	case NetworkTron:
		return tronRe.MatchString(address)
	default:
		return genericRe.MatchString(address)
	}
}
