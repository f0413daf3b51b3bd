package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ethys-protocol/ethys402-go/pkg/auth"
	"github.com/ethys-protocol/ethys402-go/pkg/ethyserr"
	"github.com/ethys-protocol/ethys402-go/pkg/types"
)

// GetInfo fetches protocol information, pricing and onboarding steps.
func (c *Client) GetInfo(ctx context.Context) (*types.InfoResponse, error) {
	var out types.InfoResponse
	if err := c.get(ctx, pathInfo, nil, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Connect registers an agent with a wallet signature.
func (c *Client) Connect(ctx context.Context, req *types.ConnectRequest) (*types.ConnectResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out types.ConnectResponse
	if err := c.post(ctx, pathConnect, req, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConnectWithKey derives the wallet address from the private key, signs the
// connect message and registers the agent. An empty message selects the
// default connect template.
func (c *Client) ConnectWithKey(ctx context.Context, privateKeyHex, message string) (*types.ConnectResponse, error) {
	address, err := auth.AddressFromKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	signedMessage, signature, err := auth.SignConnectMessage(privateKeyHex, address.Hex(), message)
	if err != nil {
		return nil, err
	}
	return c.Connect(ctx, &types.ConnectRequest{
		Address:   address.Hex(),
		Signature: signature,
		Message:   signedMessage,
	})
}

// VerifyPayment verifies the activation payment transaction for an agent.
func (c *Client) VerifyPayment(ctx context.Context, agentID, txHash string) (*types.VerifyPaymentResponse, error) {
	req := &types.VerifyPaymentRequest{AgentID: agentID, TxHash: txHash}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out types.VerifyPaymentResponse
	if err := c.post(ctx, pathVerifyPayment, req, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TelemetryParams describes a telemetry submission. Exactly one of
// PrivateKey (sign locally) or Signature (pre-computed) must be provided.
// Timestamp and Nonce are filled when zero, making each signed message
// unique per call.
type TelemetryParams struct {
	AgentID    string
	Address    string
	Events     []types.TelemetryEvent
	PrivateKey string
	Timestamp  int64
	Nonce      string
	Signature  string
}

// Telemetry submits wallet-signed telemetry events.
func (c *Client) Telemetry(ctx context.Context, p TelemetryParams) (*types.TelemetryResponse, error) {
	if p.Timestamp == 0 {
		p.Timestamp = time.Now().Unix()
	}
	if p.Nonce == "" {
		p.Nonce = auth.GenerateNonce()
	}

	if p.Signature == "" {
		if p.PrivateKey == "" {
			return nil, ethyserr.NewValidationError("privateKey", "either privateKey or signature must be provided")
		}
		derived, err := auth.AddressFromKey(p.PrivateKey)
		if err != nil {
			return nil, err
		}
		if derived != common.HexToAddress(p.Address) {
			return nil, &ethyserr.SigningError{Reason: "address does not match private key"}
		}
		message := c.telemetryMsg(p.AgentID, p.Address, p.Timestamp, p.Nonce, len(p.Events))
		p.Signature, err = auth.SignMessage(message, p.PrivateKey)
		if err != nil {
			return nil, err
		}
	}

	req := &types.TelemetryRequest{
		AgentID:   p.AgentID,
		Address:   p.Address,
		Ts:        p.Timestamp,
		Nonce:     p.Nonce,
		Events:    p.Events,
		Signature: p.Signature,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out types.TelemetryResponse
	if err := c.post(ctx, pathTelemetry, req, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DiscoveryQuery filters the agent discovery search.
type DiscoveryQuery struct {
	// Tags is a comma-separated tag list.
	Tags string
	// MinTrust filters by minimum trust score when non-nil.
	MinTrust *int
	// ServiceTypes is a comma-separated service type list.
	ServiceTypes string
}

func (q DiscoveryQuery) values() url.Values {
	params := url.Values{}
	if q.Tags != "" {
		params.Set("tags", q.Tags)
	}
	if q.MinTrust != nil {
		params.Set("minTrust", strconv.Itoa(*q.MinTrust))
	}
	if q.ServiceTypes != "" {
		params.Set("serviceTypes", q.ServiceTypes)
	}
	return params
}

// DiscoverySearch searches agents by capabilities and trust score.
func (c *Client) DiscoverySearch(ctx context.Context, query DiscoveryQuery) (*types.DiscoverySearchResponse, error) {
	var out types.DiscoverySearchResponse
	if err := c.get(ctx, pathDiscoverySearch, query.values(), false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DiscoveryRegister publishes an agent card to the discovery index.
func (c *Client) DiscoveryRegister(ctx context.Context, req *types.DiscoveryRegisterRequest) (*types.DiscoveryRegisterResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out types.DiscoveryRegisterResponse
	if err := c.post(ctx, pathDiscoveryRegister, req, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrustScore fetches the trust score for an agent. An empty agentID asks
// for the score of the agent authenticated by the API key.
func (c *Client) TrustScore(ctx context.Context, agentID string) (*types.TrustScoreResponse, error) {
	var query url.Values
	if agentID != "" {
		query = url.Values{"agentId": []string{agentID}}
	}
	var out types.TrustScoreResponse
	if err := c.get(ctx, pathTrustScore, query, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrustAttest submits a trust attestation about another agent.
func (c *Client) TrustAttest(ctx context.Context, req *types.TrustAttestRequest) (*types.TrustAttestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out types.TrustAttestResponse
	if err := c.post(ctx, pathTrustAttest, req, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReviewsSubmit submits an EIP-712 signed client review. The typed-data
// payload is passed through opaque; producing it is the caller's concern.
func (c *Client) ReviewsSubmit(ctx context.Context, req *types.ReviewSubmitRequest) (*types.ReviewSubmitResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out types.ReviewSubmitResponse
	if err := c.post(ctx, pathReviewsSubmit, req, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
