// Package types defines the request and response payloads for every ETHYS
// x402 endpoint. Field names mirror the wire schema (camelCase JSON).
// Request types validate themselves before any network call; response types
// keep server-controlled sub-objects as open maps so re-serialization
// preserves every field.
package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ethys-protocol/ethys402-go/pkg/auth"
	"github.com/ethys-protocol/ethys402-go/pkg/ethyserr"
)

// ConnectRequest registers an agent with a wallet signature. TokenContract
// and TokenID are set together, and only for ERC-6551 identities.
type ConnectRequest struct {
	Address       string `json:"address"`
	Signature     string `json:"signature"`
	Message       string `json:"message"`
	TokenContract string `json:"tokenContract,omitempty"`
	TokenID       string `json:"tokenId,omitempty"`
}

func (r *ConnectRequest) Validate() error {
	v := &ethyserr.ValidationError{}
	if !auth.ValidateAddress(r.Address) {
		v.Add("address", "must be a 0x-prefixed 20-byte hex address")
	}
	if !auth.ValidateSignatureFormat(r.Signature) {
		v.Add("signature", "must be a 0x-prefixed 65-byte hex signature")
	}
	if r.Message == "" {
		v.Add("message", "is required")
	}
	if r.TokenContract != "" && !auth.ValidateAddress(r.TokenContract) {
		v.Add("tokenContract", "must be a 0x-prefixed 20-byte hex address")
	}
	if (r.TokenContract == "") != (r.TokenID == "") {
		v.Add("tokenId", "tokenContract and tokenId must be set together")
	}
	return v.OrNil()
}

// VerifyPaymentRequest asks the server to verify the activation payment
// transaction for an agent.
type VerifyPaymentRequest struct {
	AgentID string `json:"agentId"`
	TxHash  string `json:"txHash"`
}

func (r *VerifyPaymentRequest) Validate() error {
	v := &ethyserr.ValidationError{}
	if r.AgentID == "" {
		v.Add("agentId", "is required")
	}
	if r.TxHash == "" {
		v.Add("txHash", "is required")
	}
	return v.OrNil()
}

// TelemetryEvent is a single timestamped activity record. Immutable once
// constructed; Data is an open mapping owned by the event.
type TelemetryEvent struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// NewTelemetryEvent stamps the current time and a unique event ID. The data
// map is copied so the event does not alias caller state.
func NewTelemetryEvent(eventType string, data map[string]any) TelemetryEvent {
	copied := make(map[string]any, len(data)+1)
	for k, val := range data {
		copied[k] = val
	}
	copied["eventId"] = uuid.NewString()
	return TelemetryEvent{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Data:      copied,
	}
}

// TelemetryRequest is the wallet-signed telemetry submission payload.
type TelemetryRequest struct {
	AgentID   string           `json:"agentId"`
	Address   string           `json:"address"`
	Ts        int64            `json:"ts"`
	Nonce     string           `json:"nonce"`
	Events    []TelemetryEvent `json:"events"`
	Signature string           `json:"signature"`
}

func (r *TelemetryRequest) Validate() error {
	v := &ethyserr.ValidationError{}
	if r.AgentID == "" {
		v.Add("agentId", "is required")
	}
	if !auth.ValidateAddress(r.Address) {
		v.Add("address", "must be a 0x-prefixed 20-byte hex address")
	}
	if r.Ts <= 0 {
		v.Add("ts", "must be a positive unix timestamp")
	}
	if r.Nonce == "" {
		v.Add("nonce", "is required")
	}
	if len(r.Events) == 0 {
		v.Add("events", "at least one event is required")
	}
	for _, e := range r.Events {
		if e.Type == "" {
			v.Add("events", "every event requires a type")
			break
		}
	}
	if !auth.ValidateSignatureFormat(r.Signature) {
		v.Add("signature", "must be a 0x-prefixed 65-byte hex signature")
	}
	return v.OrNil()
}

// TrustAttestRequest is a signed statement about an interaction with
// another agent, feeding its reputation score.
type TrustAttestRequest struct {
	TargetAgentID   string `json:"targetAgentId"`
	InteractionType string `json:"interactionType"`
	Rating          *int   `json:"rating,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

func (r *TrustAttestRequest) Validate() error {
	v := &ethyserr.ValidationError{}
	if r.TargetAgentID == "" {
		v.Add("targetAgentId", "is required")
	}
	if r.InteractionType == "" {
		v.Add("interactionType", "is required")
	}
	if r.Rating != nil && (*r.Rating < 1 || *r.Rating > 5) {
		v.Add("rating", "must be between 1 and 5")
	}
	return v.OrNil()
}

// DiscoveryRegisterRequest publishes an agent card to the discovery index.
type DiscoveryRegisterRequest struct {
	AgentID      string         `json:"agentId"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	ServiceTypes []string       `json:"serviceTypes,omitempty"`
	Endpoint     string         `json:"endpoint,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func (r *DiscoveryRegisterRequest) Validate() error {
	v := &ethyserr.ValidationError{}
	if r.AgentID == "" {
		v.Add("agentId", "is required")
	}
	if r.Name == "" {
		v.Add("name", "is required")
	}
	return v.OrNil()
}

// ReviewSubmitRequest carries a client review signed with EIP-712 typed
// data. The EIP712 payload is passed through opaque; this SDK does not
// implement EIP-712 signing.
type ReviewSubmitRequest struct {
	TargetAgentID string          `json:"targetAgentId"`
	Rating        int             `json:"rating"`
	ReviewText    string          `json:"reviewText"`
	Signature     string          `json:"signature"`
	EIP712        json.RawMessage `json:"eip712"`
}

func (r *ReviewSubmitRequest) Validate() error {
	v := &ethyserr.ValidationError{}
	if r.TargetAgentID == "" {
		v.Add("targetAgentId", "is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		v.Add("rating", "must be between 1 and 5")
	}
	if r.ReviewText == "" {
		v.Add("reviewText", "is required")
	}
	if r.Signature == "" {
		v.Add("signature", "is required")
	}
	if len(r.EIP712) == 0 {
		v.Add("eip712", "is required")
	}
	return v.OrNil()
}
