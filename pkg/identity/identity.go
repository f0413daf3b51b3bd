// Package identity implements canonical encoding of agent identities and
// derivation of the 32-byte agentIdKey used by the ETHYS x402 protocol.
package identity

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethys-protocol/ethys402-go/pkg/ethyserr"
)

// DefaultVersion is the current identity structure version.
const DefaultVersion uint8 = 1

// Kind discriminates the two supported identity forms.
type Kind string

const (
	KindEOA     Kind = "eoa"
	KindERC6551 Kind = "erc6551"
)

func (k Kind) String() string {
	return string(k)
}

// Uint8 returns the wire discriminant for the kind.
func (k Kind) Uint8() (uint8, error) {
	switch k {
	case KindEOA:
		return 0, nil
	case KindERC6551:
		return 1, nil
	default:
		return 0, fmt.Errorf("unsupported identity kind: %s", k)
	}
}

// AgentIdentity identifies an agent by either a plain wallet address (EOA)
// or an ERC-6551 token-bound account. TokenContract and TokenID are set
// together and only for ERC-6551 identities.
type AgentIdentity struct {
	Version       uint8  `json:"version"`
	Kind          Kind   `json:"kind"`
	Address       string `json:"address"`
	TokenContract string `json:"tokenContract,omitempty"`
	TokenID       string `json:"tokenId,omitempty"`
}

// isHexAddress reports whether s is a 0x-prefixed 20-byte hex address. The
// prefix is mandatory on the wire, so the prefix-optional go-ethereum check
// alone is not enough.
func isHexAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// NewEOAIdentity builds an EOA identity, validating the address format.
func NewEOAIdentity(address string) (*AgentIdentity, error) {
	if !isHexAddress(address) {
		return nil, &ethyserr.EncodingError{Field: "address", Reason: fmt.Sprintf("not a valid Ethereum address: %q", address)}
	}
	return &AgentIdentity{
		Version: DefaultVersion,
		Kind:    KindEOA,
		Address: address,
	}, nil
}

// NewERC6551Identity builds a token-bound account identity. Both the token
// contract and token ID are required.
func NewERC6551Identity(address, tokenContract, tokenID string) (*AgentIdentity, error) {
	if !isHexAddress(address) {
		return nil, &ethyserr.EncodingError{Field: "address", Reason: fmt.Sprintf("not a valid Ethereum address: %q", address)}
	}
	if tokenContract == "" {
		return nil, &ethyserr.EncodingError{Field: "tokenContract", Reason: "required for ERC-6551 identities"}
	}
	if !isHexAddress(tokenContract) {
		return nil, &ethyserr.EncodingError{Field: "tokenContract", Reason: fmt.Sprintf("not a valid Ethereum address: %q", tokenContract)}
	}
	if tokenID == "" {
		return nil, &ethyserr.EncodingError{Field: "tokenId", Reason: "required for ERC-6551 identities"}
	}
	return &AgentIdentity{
		Version:       DefaultVersion,
		Kind:          KindERC6551,
		Address:       address,
		TokenContract: tokenContract,
		TokenID:       tokenID,
	}, nil
}

// validate re-checks the invariants for identities constructed directly.
func (id *AgentIdentity) validate() error {
	if !isHexAddress(id.Address) {
		return &ethyserr.EncodingError{Field: "address", Reason: fmt.Sprintf("not a valid Ethereum address: %q", id.Address)}
	}
	switch id.Kind {
	case KindEOA:
		if id.TokenContract != "" || id.TokenID != "" {
			return &ethyserr.EncodingError{Field: "tokenContract", Reason: "must be empty for EOA identities"}
		}
	case KindERC6551:
		if id.TokenContract == "" {
			return &ethyserr.EncodingError{Field: "tokenContract", Reason: "required for ERC-6551 identities"}
		}
		if !isHexAddress(id.TokenContract) {
			return &ethyserr.EncodingError{Field: "tokenContract", Reason: fmt.Sprintf("not a valid Ethereum address: %q", id.TokenContract)}
		}
		if id.TokenID == "" {
			return &ethyserr.EncodingError{Field: "tokenId", Reason: "required for ERC-6551 identities"}
		}
	default:
		return &ethyserr.EncodingError{Field: "kind", Reason: fmt.Sprintf("unsupported identity kind: %q", id.Kind)}
	}
	return nil
}

// AgentIDKey is the keccak256 digest of a canonically encoded identity.
type AgentIDKey [32]byte

// Hex returns the key as a 0x-prefixed 64-char hex string, the form the
// protocol server expects.
func (k AgentIDKey) Hex() string {
	return hexutil.Encode(k[:])
}

// DeriveKey hashes the default canonical encoding of the identity.
func DeriveKey(id *AgentIdentity) (AgentIDKey, error) {
	return DeriveKeyWith(DefaultEncoder, id)
}

// DeriveKeyWith hashes the identity under a specific encoding strategy.
func DeriveKeyWith(enc Encoder, id *AgentIdentity) (AgentIDKey, error) {
	var key AgentIDKey
	encoded, err := enc.Encode(id)
	if err != nil {
		return key, err
	}
	copy(key[:], crypto.Keccak256(encoded))
	return key, nil
}
