package identity

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ethys-protocol/ethys402-go/pkg/ethyserr"
)

// Encoder produces the canonical byte sequence hashed into an AgentIDKey.
// The exact layout is protocol-defined and still subject to change upstream,
// so the strategy is swappable rather than hard-coded.
type Encoder interface {
	Encode(id *AgentIdentity) ([]byte, error)
}

// DefaultEncoder is the layout the reference implementation uses.
var DefaultEncoder Encoder = PackedEncoder{}

// PackedEncoder encodes the identity as a fixed 73-byte concatenation:
// 1-byte version, 20-byte address, 20-byte token contract (zero for EOA),
// 32-byte token ID as UTF-8 left-aligned and zero-padded. All identities
// encode to the same length regardless of kind.
type PackedEncoder struct{}

func (PackedEncoder) Encode(id *AgentIdentity) ([]byte, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}

	encoded := make([]byte, 0, 73)
	encoded = append(encoded, id.Version)
	addr := common.HexToAddress(id.Address)
	encoded = append(encoded, addr.Bytes()...)

	var tokenContract common.Address
	if id.TokenContract != "" {
		tokenContract = common.HexToAddress(id.TokenContract)
	}
	encoded = append(encoded, tokenContract.Bytes()...)

	tokenID := make([]byte, 32)
	if len(id.TokenID) > 32 {
		return nil, &ethyserr.EncodingError{Field: "tokenId", Reason: fmt.Sprintf("token ID exceeds 32 bytes: %d", len(id.TokenID))}
	}
	copy(tokenID, id.TokenID)
	encoded = append(encoded, tokenID...)

	return encoded, nil
}

// ABIEncoder encodes the identity as abi.encode(uint8 version, uint8 kind,
// address, address tokenContract, uint256 tokenId), the layout described by
// the protocol contract documentation. The kind discriminant is 0 for EOA
// and 1 for ERC-6551. The token ID must be a base-10 unsigned integer; the
// zero value is used for EOA identities.
type ABIEncoder struct{}

func (ABIEncoder) Encode(id *AgentIdentity) ([]byte, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}

	kind, err := id.Kind.Uint8()
	if err != nil {
		return nil, &ethyserr.EncodingError{Field: "kind", Reason: err.Error()}
	}

	tokenID := new(big.Int)
	if id.TokenID != "" {
		parsed, ok := tokenID.SetString(id.TokenID, 10)
		if !ok || parsed.Sign() < 0 {
			return nil, &ethyserr.EncodingError{Field: "tokenId", Reason: fmt.Sprintf("not an unsigned integer: %q", id.TokenID)}
		}
		tokenID = parsed
	}

	var tokenContract common.Address
	if id.TokenContract != "" {
		tokenContract = common.HexToAddress(id.TokenContract)
	}

	uint8Type, _ := abi.NewType("uint8", "", nil)
	addressType, _ := abi.NewType("address", "", nil)
	uint256Type, _ := abi.NewType("uint256", "", nil)
	arguments := abi.Arguments{
		{Type: uint8Type},
		{Type: uint8Type},
		{Type: addressType},
		{Type: addressType},
		{Type: uint256Type},
	}

	encoded, err := arguments.Pack(id.Version, kind, common.HexToAddress(id.Address), tokenContract, tokenID)
	if err != nil {
		return nil, &ethyserr.EncodingError{Reason: fmt.Sprintf("abi encoding failed: %v", err)}
	}

	return encoded, nil
}
