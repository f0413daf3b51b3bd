package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	ethysclient "github.com/ethys-protocol/ethys402-go/pkg/client"
	"github.com/ethys-protocol/ethys402-go/pkg/config"
	"github.com/ethys-protocol/ethys402-go/pkg/identity"
	"github.com/ethys-protocol/ethys402-go/pkg/logger"
	"github.com/ethys-protocol/ethys402-go/pkg/types"
)

func main() {
	app := &cli.App{
		Name:  "ethys402",
		Usage: "ETHYS x402 protocol client for autonomous agents",
		Description: `A client for the ETHYS x402 trust/identity protocol.

This client can:
- Connect an agent with a wallet signature and verify its activation payment
- Submit wallet-signed telemetry events for trust scoring
- Search and register agents in the discovery index
- Fetch trust scores and submit trust attestations`,
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Protocol server base URL",
				EnvVars: []string{config.EnvBaseURL},
				Value:   config.DefaultBaseURL,
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for legacy header auth",
				EnvVars: []string{config.EnvAPIKey},
			},
			&cli.Float64Flag{
				Name:  "timeout",
				Usage: "Per-call timeout in seconds",
				Value: config.DefaultTimeout.Seconds(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "Fetch protocol information, pricing and onboarding steps",
				Action: infoCommand,
			},
			{
				Name:  "connect",
				Usage: "Connect an agent using a wallet private key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "private-key",
						Usage:    "Hex-encoded wallet private key",
						EnvVars:  []string{"ETHYS_PRIVATE_KEY"},
						Required: true,
					},
					&cli.StringFlag{
						Name:  "message",
						Usage: "Custom connect message (defaults to the protocol template)",
					},
				},
				Action: connectCommand,
			},
			{
				Name:  "verify-payment",
				Usage: "Verify the activation payment transaction for an agent",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "agent-id", Usage: "Agent ID from connect", Required: true},
					&cli.StringFlag{Name: "tx-hash", Usage: "Payment transaction hash", Required: true},
				},
				Action: verifyPaymentCommand,
			},
			{
				Name:  "telemetry",
				Usage: "Submit a wallet-signed telemetry event",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "agent-id", Usage: "Agent ID", Required: true},
					&cli.StringFlag{Name: "address", Usage: "Wallet address", Required: true},
					&cli.StringFlag{
						Name:     "private-key",
						Usage:    "Hex-encoded wallet private key",
						EnvVars:  []string{"ETHYS_PRIVATE_KEY"},
						Required: true,
					},
					&cli.StringFlag{Name: "type", Usage: "Event type", Required: true},
					&cli.StringFlag{Name: "data", Usage: "Event data as a JSON object", Value: "{}"},
				},
				Action: telemetryCommand,
			},
			{
				Name:  "discovery",
				Usage: "Agent discovery operations",
				Subcommands: []*cli.Command{
					{
						Name:  "search",
						Usage: "Search agents by capabilities and trust score",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
							&cli.IntFlag{Name: "min-trust", Usage: "Minimum trust score", Value: -1},
							&cli.StringFlag{Name: "service-types", Usage: "Comma-separated service types"},
						},
						Action: discoverySearchCommand,
					},
					{
						Name:  "register",
						Usage: "Publish an agent card to the discovery index",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "agent-id", Usage: "Agent ID", Required: true},
							&cli.StringFlag{Name: "name", Usage: "Agent display name", Required: true},
							&cli.StringFlag{Name: "description", Usage: "Agent description"},
							&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
							&cli.StringFlag{Name: "service-types", Usage: "Comma-separated service types"},
							&cli.StringFlag{Name: "endpoint", Usage: "Agent service endpoint URL"},
						},
						Action: discoveryRegisterCommand,
					},
				},
			},
			{
				Name:  "trust",
				Usage: "Trust score and attestation operations",
				Subcommands: []*cli.Command{
					{
						Name:  "score",
						Usage: "Fetch the trust score for an agent",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "agent-id", Usage: "Agent ID (empty uses the API-key agent)"},
						},
						Action: trustScoreCommand,
					},
					{
						Name:  "attest",
						Usage: "Submit a trust attestation about another agent",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "target-agent-id", Usage: "Target agent ID", Required: true},
							&cli.StringFlag{Name: "interaction-type", Usage: "Type of interaction", Required: true},
							&cli.IntFlag{Name: "rating", Usage: "Rating 1-5", Value: 0},
							&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
						},
						Action: trustAttestCommand,
					},
				},
			},
			{
				Name:  "derive-key",
				Usage: "Derive the agentIdKey for a wallet or token-bound account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "address", Usage: "Wallet or token-bound account address", Required: true},
					&cli.StringFlag{Name: "token-contract", Usage: "ERC-721 contract (ERC-6551 only)"},
					&cli.StringFlag{Name: "token-id", Usage: "ERC-721 token ID (ERC-6551 only)"},
				},
				Action: deriveKeyCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// createClient creates a protocol client from CLI context
func createClient(c *cli.Context) (*ethysclient.Client, error) {
	zapLogger, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("debug")})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}

	cfg := &config.Config{
		BaseURL: c.String("base-url"),
		APIKey:  c.String("api-key"),
		Timeout: time.Duration(c.Float64("timeout") * float64(time.Second)),
	}

	client, err := ethysclient.New(cfg, ethysclient.WithLogger(zapLogger))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}
	return client, nil
}

// printJSON writes a response to stdout as indented JSON
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func infoCommand(c *cli.Context) error {
	client, err := createClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	info, err := client.GetInfo(c.Context)
	if err != nil {
		return err
	}
	return printJSON(info)
}

func connectCommand(c *cli.Context) error {
	client, err := createClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.ConnectWithKey(c.Context, c.String("private-key"), c.String("message"))
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func verifyPaymentCommand(c *cli.Context) error {
	client, err := createClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.VerifyPayment(c.Context, c.String("agent-id"), c.String("tx-hash"))
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func telemetryCommand(c *cli.Context) error {
	var data map[string]any
	if err := json.Unmarshal([]byte(c.String("data")), &data); err != nil {
		return errors.Wrap(err, "event data must be a JSON object")
	}

	client, err := createClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.Telemetry(c.Context, ethysclient.TelemetryParams{
		AgentID:    c.String("agent-id"),
		Address:    c.String("address"),
		PrivateKey: c.String("private-key"),
		Events:     []types.TelemetryEvent{types.NewTelemetryEvent(c.String("type"), data)},
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func discoverySearchCommand(c *cli.Context) error {
	client, err := createClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	query := ethysclient.DiscoveryQuery{
		Tags:         c.String("tags"),
		ServiceTypes: c.String("service-types"),
	}
	if c.Int("min-trust") >= 0 {
		minTrust := c.Int("min-trust")
		query.MinTrust = &minTrust
	}

	resp, err := client.DiscoverySearch(c.Context, query)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func discoveryRegisterCommand(c *cli.Context) error {
	client, err := createClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.DiscoveryRegister(c.Context, &types.DiscoveryRegisterRequest{
		AgentID:      c.String("agent-id"),
		Name:         c.String("name"),
		Description:  c.String("description"),
		Tags:         splitList(c.String("tags")),
		ServiceTypes: splitList(c.String("service-types")),
		Endpoint:     c.String("endpoint"),
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func trustScoreCommand(c *cli.Context) error {
	client, err := createClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.TrustScore(c.Context, c.String("agent-id"))
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func trustAttestCommand(c *cli.Context) error {
	client, err := createClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	req := &types.TrustAttestRequest{
		TargetAgentID:   c.String("target-agent-id"),
		InteractionType: c.String("interaction-type"),
		Notes:           c.String("notes"),
	}
	if c.Int("rating") > 0 {
		rating := c.Int("rating")
		req.Rating = &rating
	}

	resp, err := client.TrustAttest(c.Context, req)
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func deriveKeyCommand(c *cli.Context) error {
	var (
		id  *identity.AgentIdentity
		err error
	)
	if c.String("token-contract") != "" || c.String("token-id") != "" {
		id, err = identity.NewERC6551Identity(c.String("address"), c.String("token-contract"), c.String("token-id"))
	} else {
		id, err = identity.NewEOAIdentity(c.String("address"))
	}
	if err != nil {
		return err
	}

	key, err := identity.DeriveKey(id)
	if err != nil {
		return err
	}

	fmt.Println(key.Hex())
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
