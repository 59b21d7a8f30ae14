// Package gateway implements ledger.Client against the bank's chain-gateway
// HTTP service.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	contract "tapbank/contracts/ledger"
	"tapbank/internal/ledger"
)

// Client calls the chain gateway over HTTP. The gateway holds the bank key
// and the BankVC contract binding; this client never sees key material.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Ensure Client implements the consumed capability set.
var _ ledger.Client = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New creates a chain-gateway client.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type validityResponse struct {
	CredentialID int64 `json:"credential_id"`
	Valid        bool  `json:"valid"`
}

type ownerResponse struct {
	CredentialID int64  `json:"credential_id"`
	Owner        string `json:"owner"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type transferResponse struct {
	Success     bool   `json:"success"`
	TxReference string `json:"tx_reference"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     string `json:"gas_used"`
	Error       string `json:"error"`
}

// IsCredentialValid reports credential validity. A transport failure is an
// error, not "invalid": the caller decides whether to fail closed.
func (c *Client) IsCredentialValid(ctx context.Context, credentialID int64) (bool, error) {
	var out validityResponse
	url := fmt.Sprintf("%s/api/v1/credentials/%d/valid", c.baseURL, credentialID)
	if err := c.getJSON(ctx, url, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

// CredentialOwner returns the wallet address owning the credential.
func (c *Client) CredentialOwner(ctx context.Context, credentialID int64) (string, error) {
	var out ownerResponse
	url := fmt.Sprintf("%s/api/v1/credentials/%d/owner", c.baseURL, credentialID)
	if err := c.getJSON(ctx, url, &out); err != nil {
		return "", err
	}
	return out.Owner, nil
}

// Balance returns the internal-ledger balance for the address.
func (c *Client) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	var out balanceResponse
	url := fmt.Sprintf("%s/api/v1/accounts/%s/balance", c.baseURL, address)
	if err := c.getJSON(ctx, url, &out); err != nil {
		return decimal.Zero, err
	}
	bal, err := decimal.NewFromString(out.Balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("chain gateway returned malformed balance %q: %w", out.Balance, err)
	}
	return bal, nil
}

// Deposit is a policy failure by design: deposits are signed by the end user
// in the dashboard, never by the bank. No network call is made.
func (c *Client) Deposit(_ context.Context, _ string, _ decimal.Decimal) (*contract.TransferReceipt, error) {
	return nil, fmt.Errorf("deposits require the user to sign directly, use the dashboard: %w", ledger.ErrDirectSignatureRequired)
}

// Withdraw is a policy failure by design, mirroring Deposit.
func (c *Client) Withdraw(_ context.Context, _ string, _ decimal.Decimal) (*contract.TransferReceipt, error) {
	return nil, fmt.Errorf("withdrawals require the user to sign directly, use the dashboard: %w", ledger.ErrDirectSignatureRequired)
}

// AuthorizedTransfer executes a bank-authorized transfer. Once dispatched the
// operation runs to completion or failure; there is no cancellation of an
// in-flight transfer.
func (c *Client) AuthorizedTransfer(ctx context.Context, from, to string, amount decimal.Decimal) (*contract.TransferReceipt, error) {
	body, err := json.Marshal(transferRequest{From: from, To: to, Amount: amount.String()})
	if err != nil {
		return nil, fmt.Errorf("marshal transfer request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/transfers", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chain gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	var out transferResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode transfer response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("transfer rejected with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%s: %w", msg, ledger.ErrExecutionFailed)
	}

	return &contract.TransferReceipt{
		TxReference: out.TxReference,
		BlockNumber: out.BlockNumber,
		GasUsed:     out.GasUsed,
	}, nil
}

// Health checks chain-gateway reachability.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return err
	}
	c.setAuth(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chain gateway health returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("chain gateway timeout: %w", err)
		}
		return fmt.Errorf("chain gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("chain gateway returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}
