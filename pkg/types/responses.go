package types

// InfoResponse describes the protocol, pricing and onboarding steps.
// Onboarding, Pricing, Network and Endpoints are server-controlled
// structures kept as open maps.
type InfoResponse struct {
	Protocol    string         `json:"protocol"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Version     string         `json:"version"`
	Onboarding  map[string]any `json:"onboarding,omitempty"`
	Pricing     map[string]any `json:"pricing,omitempty"`
	Network     map[string]any `json:"network,omitempty"`
	Endpoints   map[string]any `json:"endpoints,omitempty"`
	Features    []string       `json:"features,omitempty"`
}

// ConnectResponse is returned by /connect with the assigned agent ID.
type ConnectResponse struct {
	Success    bool           `json:"success"`
	AgentID    string         `json:"agentId"`
	Onboarding map[string]any `json:"onboarding,omitempty"`
	Policy     map[string]any `json:"policy,omitempty"`
	AgentIDKey string         `json:"agentIdKey,omitempty"`
}

// VerifyPaymentResponse reports activation status after payment
// verification. APIKey is issued on first activation.
type VerifyPaymentResponse struct {
	Success   bool   `json:"success"`
	AgentID   string `json:"agentId"`
	APIKey    string `json:"apiKey,omitempty"`
	Activated bool   `json:"activated"`
}

// TelemetryResponse reports how many events were recorded.
type TelemetryResponse struct {
	Success  bool   `json:"success"`
	Recorded int    `json:"recorded"`
	AgentID  string `json:"agentId,omitempty"`
}

// TrustScoreResponse carries the trust score structure for an agent.
type TrustScoreResponse struct {
	Success    bool           `json:"success"`
	AgentID    string         `json:"agentId"`
	TrustScore map[string]any `json:"trustScore"`
	UpdatedAt  *int64         `json:"updatedAt,omitempty"`
}

// TrustAttestResponse acknowledges a submitted attestation.
type TrustAttestResponse struct {
	Success       bool   `json:"success"`
	AttestationID string `json:"attestationId,omitempty"`
	Message       string `json:"message,omitempty"`
}

// DiscoverySearchResponse lists matching agent cards. Each agent entry is a
// server-controlled mapping, preserved verbatim.
type DiscoverySearchResponse struct {
	Success bool             `json:"success"`
	Agents  []map[string]any `json:"agents"`
	Total   *int             `json:"total,omitempty"`
}

// DiscoveryRegisterResponse acknowledges a discovery registration.
type DiscoveryRegisterResponse struct {
	Success    bool   `json:"success"`
	AgentID    string `json:"agentId,omitempty"`
	Registered bool   `json:"registered"`
}

// ReviewSubmitResponse acknowledges a submitted review.
type ReviewSubmitResponse struct {
	Success  bool   `json:"success"`
	ReviewID string `json:"reviewId,omitempty"`
	Message  string `json:"message,omitempty"`
}
