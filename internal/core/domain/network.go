package domain

// Network identifies a supported blockchain.
type Network string

const (
	NetworkBitcoin  Network = "bitcoin"
	NetworkEthereum Network = "ethereum"
	NetworkPolygon  Network = "polygon"
	NetworkBNB      Network = "bnb"
	NetworkTron     Network = "tron"
)

// KnownNetworks lists the supported networks in registry order.
var KnownNetworks = []Network{
	NetworkBitcoin,
	NetworkEthereum,
	NetworkPolygon,
	NetworkBNB,
	NetworkTron,
}

// Known reports whether n is a supported network.
func (n Network) Known() bool {
	switch n {
	case NetworkBitcoin, NetworkEthereum, NetworkPolygon, NetworkBNB, NetworkTron:
		return true
	}
	return false
}

// EVMCompatible reports whether n uses Ethereum-style 0x addresses.
func (n Network) EVMCompatible() bool {
	switch n {
	case NetworkEthereum, NetworkPolygon, NetworkBNB:
		return true
	}
	return false
}
