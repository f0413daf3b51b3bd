package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethys-protocol/ethys402-go/pkg/ethyserr"
)

const (
	testAddress       = "0x1234567890123456789012345678901234567890"
	testTokenContract = "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	id, err := NewEOAIdentity(testAddress)
	require.NoError(t, err)

	first, err := DeriveKey(id)
	require.NoError(t, err)
	second, err := DeriveKey(id)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.Hex(), 66)
	assert.True(t, strings.HasPrefix(first.Hex(), "0x"))
}

func TestDeriveKey_DistinctIdentities(t *testing.T) {
	eoa, err := NewEOAIdentity(testAddress)
	require.NoError(t, err)
	bound, err := NewERC6551Identity(testAddress, testTokenContract, "42")
	require.NoError(t, err)
	otherToken, err := NewERC6551Identity(testAddress, testTokenContract, "43")
	require.NoError(t, err)

	eoaKey, err := DeriveKey(eoa)
	require.NoError(t, err)
	boundKey, err := DeriveKey(bound)
	require.NoError(t, err)
	otherKey, err := DeriveKey(otherToken)
	require.NoError(t, err)

	assert.NotEqual(t, eoaKey, boundKey)
	assert.NotEqual(t, boundKey, otherKey)
}

func TestNewEOAIdentity_InvalidAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
	}{
		{name: "empty", address: ""},
		{name: "no prefix", address: "1234567890123456789012345678901234567890"},
		{name: "too short", address: "0x1234"},
		{name: "not hex", address: "0xzz34567890123456789012345678901234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewEOAIdentity(tt.address)
			assert.Nil(t, id)
			var encErr *ethyserr.EncodingError
			require.ErrorAs(t, err, &encErr)
			assert.Equal(t, "address", encErr.Field)
		})
	}
}

func TestNewERC6551Identity_MissingFields(t *testing.T) {
	tests := []struct {
		name          string
		tokenContract string
		tokenID       string
		wantField     string
	}{
		{name: "missing token contract", tokenContract: "", tokenID: "42", wantField: "tokenContract"},
		{name: "missing token id", tokenContract: testTokenContract, tokenID: "", wantField: "tokenId"},
		{name: "bad token contract", tokenContract: "0x1234", tokenID: "42", wantField: "tokenContract"},
		{name: "token contract without prefix", tokenContract: "abcdefabcdefabcdefabcdefabcdefabcdefabcd", tokenID: "42", wantField: "tokenContract"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewERC6551Identity(testAddress, tt.tokenContract, tt.tokenID)
			assert.Nil(t, id)
			var encErr *ethyserr.EncodingError
			require.ErrorAs(t, err, &encErr)
			assert.Equal(t, tt.wantField, encErr.Field)
		})
	}
}

func TestKind_Uint8(t *testing.T) {
	v, err := KindEOA.Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), v)

	v, err = KindERC6551.Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), v)

	_, err = Kind("bogus").Uint8()
	require.Error(t, err)
}

func TestDirectlyConstructedIdentity_Invariants(t *testing.T) {
	// EOA identities must not carry ERC-6551 fields.
	id := &AgentIdentity{
		Version:       DefaultVersion,
		Kind:          KindEOA,
		Address:       testAddress,
		TokenContract: testTokenContract,
	}
	_, err := DeriveKey(id)
	var encErr *ethyserr.EncodingError
	require.ErrorAs(t, err, &encErr)

	// Unknown kinds are rejected.
	id = &AgentIdentity{Version: DefaultVersion, Kind: Kind("other"), Address: testAddress}
	_, err = DeriveKey(id)
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "kind", encErr.Field)
}
