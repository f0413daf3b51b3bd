// Package auth builds and signs the wallet-authentication messages used by
// the ETHYS x402 protocol (connect and telemetry), using EIP-191
// personal-message signing over secp256k1.
package auth

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethys-protocol/ethys402-go/pkg/ethyserr"
)

// ConnectMessage is the default statement of intent signed for /connect.
const ConnectMessage = "Connect to ETHYS"

// telemetryMessageTemplate is the canonical telemetry auth message. The
// template is protocol-defined; a custom TelemetryMessageFunc can replace it
// if the server contract changes.
const telemetryMessageTemplate = "ETHYS Telemetry\nAgent: %s\nAddress: %s\nTimestamp: %d\nNonce: %s\nEvents: %d"

// TelemetryMessageFunc builds the string signed for a telemetry submission.
type TelemetryMessageFunc func(agentID, address string, timestamp int64, nonce string, eventCount int) string

// BuildConnectMessage returns the message an agent signs to connect. The
// current template does not embed the address, but the address is part of
// the contract so custom templates can include it.
func BuildConnectMessage(address string) string {
	_ = address
	return ConnectMessage
}

// BuildTelemetryMessage returns the canonical telemetry auth message. The
// nonce and timestamp make every message unique per call, so a captured
// signature cannot be replayed.
func BuildTelemetryMessage(agentID, address string, timestamp int64, nonce string, eventCount int) string {
	return fmt.Sprintf(telemetryMessageTemplate, agentID, address, timestamp, nonce, eventCount)
}

// GenerateNonce returns 32 random bytes as a 0x-prefixed hex string.
func GenerateNonce() string {
	nonce := make([]byte, 32)
	_, _ = rand.Read(nonce)
	return hexutil.Encode(nonce)
}

// ValidateAddress reports whether s is a 0x-prefixed 20-byte hex address.
func ValidateAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// ValidateSignatureFormat reports whether s is a 0x-prefixed 65-byte hex
// signature (0x + 130 hex chars).
func ValidateSignatureFormat(s string) bool {
	if !strings.HasPrefix(s, "0x") || len(s) != 132 {
		return false
	}
	_, err := hexutil.Decode(s)
	return err == nil
}

// SignMessage signs the UTF-8 bytes of message under the EIP-191 personal
// message scheme and returns the 65-byte signature as 0x-hex with the
// recovery byte normalized to 27/28, matching wallet output.
func SignMessage(message, privateKeyHex string) (string, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return "", &ethyserr.SigningError{Reason: fmt.Sprintf("invalid private key: %v", err)}
	}

	hash := accounts.TextHash([]byte(message))
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return "", &ethyserr.SigningError{Reason: fmt.Sprintf("ecdsa sign failed: %v", err)}
	}
	sig[64] += 27

	return hexutil.Encode(sig), nil
}

// SignConnectMessage signs a connect message with the given key, verifying
// the key actually controls address. An empty message selects the default
// connect template. Returns the message and its signature.
func SignConnectMessage(privateKeyHex, address, message string) (string, string, error) {
	if !ValidateAddress(address) {
		return "", "", &ethyserr.SigningError{Reason: fmt.Sprintf("invalid address format: %q", address)}
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return "", "", &ethyserr.SigningError{Reason: fmt.Sprintf("invalid private key: %v", err)}
	}
	derived := crypto.PubkeyToAddress(key.PublicKey)
	if derived != common.HexToAddress(address) {
		return "", "", &ethyserr.SigningError{Reason: "address does not match private key"}
	}

	if message == "" {
		message = BuildConnectMessage(address)
	}
	signature, err := SignMessage(message, privateKeyHex)
	if err != nil {
		return "", "", err
	}
	return message, signature, nil
}

// SignTelemetryPayload builds the canonical telemetry message and signs it.
func SignTelemetryPayload(privateKeyHex, agentID, address string, timestamp int64, nonce string, eventCount int) (string, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return "", &ethyserr.SigningError{Reason: fmt.Sprintf("invalid private key: %v", err)}
	}
	derived := crypto.PubkeyToAddress(key.PublicKey)
	if derived != common.HexToAddress(address) {
		return "", &ethyserr.SigningError{Reason: "address does not match private key"}
	}

	message := BuildTelemetryMessage(agentID, address, timestamp, nonce, eventCount)
	return SignMessage(message, privateKeyHex)
}

// RecoverAddress recovers the signer address from a personal-message
// signature over message.
func RecoverAddress(message, signature string) (common.Address, error) {
	sigBytes, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature hex: %w", err)
	}
	if len(sigBytes) != 65 {
		return common.Address{}, fmt.Errorf("signature must be 65 bytes, got %d", len(sigBytes))
	}

	sig := make([]byte, 65)
	copy(sig, sigBytes)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pubKey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// VerifySignature reports whether signature over message was produced by the
// holder of address.
func VerifySignature(address, message, signature string) bool {
	if !ValidateAddress(address) || !ValidateSignatureFormat(signature) {
		return false
	}
	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		return false
	}
	return recovered == common.HexToAddress(address)
}

// AddressFromKey derives the wallet address controlled by privateKeyHex.
func AddressFromKey(privateKeyHex string) (common.Address, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return common.Address{}, &ethyserr.SigningError{Reason: fmt.Sprintf("invalid private key: %v", err)}
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}
