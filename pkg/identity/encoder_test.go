package identity

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethys-protocol/ethys402-go/pkg/ethyserr"
)

func TestPackedEncoder_Layout(t *testing.T) {
	id, err := NewERC6551Identity(testAddress, testTokenContract, "42")
	require.NoError(t, err)

	encoded, err := PackedEncoder{}.Encode(id)
	require.NoError(t, err)
	require.Len(t, encoded, 73)

	assert.Equal(t, DefaultVersion, encoded[0])
	assert.Equal(t, common.HexToAddress(testAddress).Bytes(), encoded[1:21])
	assert.Equal(t, common.HexToAddress(testTokenContract).Bytes(), encoded[21:41])
	// Token ID is UTF-8, left-aligned, zero-padded to 32 bytes.
	assert.Equal(t, byte('4'), encoded[41])
	assert.Equal(t, byte('2'), encoded[42])
	for _, b := range encoded[43:] {
		assert.Equal(t, byte(0), b)
	}
}

func TestPackedEncoder_EOAZeroFields(t *testing.T) {
	id, err := NewEOAIdentity(testAddress)
	require.NoError(t, err)

	encoded, err := PackedEncoder{}.Encode(id)
	require.NoError(t, err)
	require.Len(t, encoded, 73)

	// ERC-6551-only fields encode as their zero value, so EOA and
	// token-bound identities produce equal-length sequences.
	for _, b := range encoded[21:] {
		assert.Equal(t, byte(0), b)
	}
}

func TestPackedEncoder_TokenIDTooLong(t *testing.T) {
	id, err := NewERC6551Identity(testAddress, testTokenContract, "123456789012345678901234567890123")
	require.NoError(t, err)

	_, err = PackedEncoder{}.Encode(id)
	var encErr *ethyserr.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "tokenId", encErr.Field)
}

func TestABIEncoder_Layout(t *testing.T) {
	id, err := NewERC6551Identity(testAddress, testTokenContract, "42")
	require.NoError(t, err)

	encoded, err := ABIEncoder{}.Encode(id)
	require.NoError(t, err)
	// Five static words: uint8 version, uint8 kind, address, address, uint256.
	require.Len(t, encoded, 160)

	assert.Equal(t, byte(1), encoded[31]) // version word
	assert.Equal(t, byte(1), encoded[63]) // kind word, ERC-6551
	// Big-endian token ID occupies the last word.
	assert.Equal(t, byte(42), encoded[159])
}

func TestABIEncoder_KindWord(t *testing.T) {
	id, err := NewEOAIdentity(testAddress)
	require.NoError(t, err)

	encoded, err := ABIEncoder{}.Encode(id)
	require.NoError(t, err)
	require.Len(t, encoded, 160)
	assert.Equal(t, byte(0), encoded[63]) // kind word, EOA
}

func TestABIEncoder_NonNumericTokenID(t *testing.T) {
	id, err := NewERC6551Identity(testAddress, testTokenContract, "not-a-number")
	require.NoError(t, err)

	_, err = ABIEncoder{}.Encode(id)
	var encErr *ethyserr.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "tokenId", encErr.Field)
}

func TestEncoders_Disagree(t *testing.T) {
	// The two layouts are intentionally different; keys derived under each
	// must not be conflated.
	id, err := NewERC6551Identity(testAddress, testTokenContract, "42")
	require.NoError(t, err)

	packedKey, err := DeriveKeyWith(PackedEncoder{}, id)
	require.NoError(t, err)
	abiKey, err := DeriveKeyWith(ABIEncoder{}, id)
	require.NoError(t, err)

	assert.NotEqual(t, packedKey, abiKey)
}
