package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethys-protocol/ethys402-go/pkg/ethyserr"
)

const validSignature = "0x" +
	"1111111111111111111111111111111111111111111111111111111111111111" +
	"2222222222222222222222222222222222222222222222222222222222222222" +
	"1b"

func TestConnectRequest_Validate_EnumeratesAllViolations(t *testing.T) {
	req := &ConnectRequest{}
	err := req.Validate()

	var valErr *ethyserr.ValidationError
	require.ErrorAs(t, err, &valErr)

	fields := make(map[string]bool)
	for _, f := range valErr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["address"])
	assert.True(t, fields["signature"])
	assert.True(t, fields["message"])
}

func TestConnectRequest_Validate_TokenPairInvariant(t *testing.T) {
	req := &ConnectRequest{
		Address:       "0x1234567890123456789012345678901234567890",
		Signature:     validSignature,
		Message:       "Connect to ETHYS",
		TokenContract: "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd",
	}
	err := req.Validate()

	var valErr *ethyserr.ValidationError
	require.ErrorAs(t, err, &valErr)
	require.Len(t, valErr.Fields, 1)
	assert.Equal(t, "tokenId", valErr.Fields[0].Field)

	req.TokenID = "42"
	require.NoError(t, req.Validate())
}

func TestTelemetryRequest_Validate(t *testing.T) {
	req := &TelemetryRequest{
		AgentID:   "agent_1",
		Address:   "0x1234567890123456789012345678901234567890",
		Ts:        1700000000,
		Nonce:     "0xdead",
		Events:    []TelemetryEvent{{Type: "api_call", Timestamp: 1700000000}},
		Signature: validSignature,
	}
	require.NoError(t, req.Validate())

	req.Events = nil
	req.Ts = 0
	err := req.Validate()
	var valErr *ethyserr.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Len(t, valErr.Fields, 2)
}

func TestTrustAttestRequest_RatingBounds(t *testing.T) {
	rating := 6
	req := &TrustAttestRequest{
		TargetAgentID:   "agent_2",
		InteractionType: "task",
		Rating:          &rating,
	}
	err := req.Validate()
	var valErr *ethyserr.ValidationError
	require.ErrorAs(t, err, &valErr)

	rating = 5
	require.NoError(t, req.Validate())

	req.Rating = nil
	require.NoError(t, req.Validate())
}

func TestReviewSubmitRequest_Validate(t *testing.T) {
	req := &ReviewSubmitRequest{
		TargetAgentID: "agent_2",
		Rating:        4,
		ReviewText:    "prompt and reliable",
		Signature:     validSignature,
		EIP712:        json.RawMessage(`{"domain":{"name":"ETHYS"}}`),
	}
	require.NoError(t, req.Validate())

	req.EIP712 = nil
	req.Rating = 0
	err := req.Validate()
	var valErr *ethyserr.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Len(t, valErr.Fields, 2)
}

func TestInfoResponse_RoundTripPreservesFields(t *testing.T) {
	payload := `{
		"protocol": "x402",
		"version": "1.0.0",
		"pricing": {"activationFee": {"usd": 150}, "token": {"symbol": "ETHYS"}},
		"onboarding": {"steps": [{"step": 1, "title": "connect"}]},
		"features": ["telemetry", "discovery"]
	}`

	var info InfoResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &info))
	assert.Equal(t, "1.0.0", info.Version)

	remarshaled, err := json.Marshal(&info)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(remarshaled))
}

func TestTrustScoreResponse_RoundTripPreservesFields(t *testing.T) {
	payload := `{
		"success": true,
		"agentId": "agent_1",
		"trustScore": {"overall": 87.5, "components": {"uptime": 0.99}},
		"updatedAt": 1700000000
	}`

	var score TrustScoreResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &score))
	require.NotNil(t, score.UpdatedAt)
	assert.Equal(t, int64(1700000000), *score.UpdatedAt)

	remarshaled, err := json.Marshal(&score)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(remarshaled))
}

func TestNewTelemetryEvent(t *testing.T) {
	data := map[string]any{"path": "/api/task"}
	event := NewTelemetryEvent("api_call", data)

	assert.Equal(t, "api_call", event.Type)
	assert.Greater(t, event.Timestamp, int64(0))
	assert.NotEmpty(t, event.Data["eventId"])

	// The event owns a copy of the data map.
	data["path"] = "/mutated"
	assert.Equal(t, "/api/task", event.Data["path"])

	other := NewTelemetryEvent("api_call", data)
	assert.NotEqual(t, event.Data["eventId"], other.Data["eventId"])
}
