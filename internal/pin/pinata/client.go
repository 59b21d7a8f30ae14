// Package pinata implements pin.Pinner against the Pinata REST API.
package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tapbank/internal/pin"
)

// Client talks to Pinata with a server-side JWT. Device and dashboard
// callers go through the relay handlers; the token never leaves this
// process.
type Client struct {
	apiURL          string
	jwt             string
	gateway         string
	fallbackGateway string
	httpClient      *http.Client
}

var _ pin.Pinner = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithFallbackGateway overrides the public gateway used for the single
// fetch fallback attempt.
func WithFallbackGateway(gateway string) Option {
	return func(c *Client) {
		c.fallbackGateway = gateway
	}
}

func New(apiURL, jwt, gateway string, opts ...Option) *Client {
	c := &Client{
		apiURL:          apiURL,
		jwt:             jwt,
		gateway:         gateway,
		fallbackGateway: "https://ipfs.io",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
	Error     any    `json:"error"`
}

type pinListResponse struct {
	Count int `json:"count"`
	Rows  []struct {
		ID          string `json:"id"`
		IpfsPinHash string `json:"ipfs_pin_hash"`
		Size        int64  `json:"size"`
		DatePinned  string `json:"date_pinned"`
		Metadata    struct {
			Name string `json:"name"`
		} `json:"metadata"`
	} `json:"rows"`
}

// PinJSON pins a JSON document with the pinataContent envelope and CID v1.
func (c *Client) PinJSON(ctx context.Context, content any, name string) (*pin.Receipt, error) {
	if name == "" {
		name = "VC-Metadata"
	}
	payload := map[string]any{
		"pinataContent": content,
		"pinataMetadata": map[string]any{
			"name": name,
			"keyvalues": map[string]string{
				"type":      "vc-metadata",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		},
		"pinataOptions": map[string]any{
			"cidVersion": 1,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal pin payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/pinning/pinJSONToIPFS", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create pin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doPin(req)
}

// PinFile pins a raw file stream via multipart upload.
func (c *Client) PinFile(ctx context.Context, file io.Reader, fileName, name string) (*pin.Receipt, error) {
	if name == "" {
		name = fileName
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	metadata, _ := json.Marshal(map[string]any{
		"name": name,
		"keyvalues": map[string]string{
			"type":         "vc-attachment",
			"originalName": fileName,
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err := mw.WriteField("pinataMetadata", string(metadata)); err != nil {
		return nil, fmt.Errorf("write metadata field: %w", err)
	}
	if err := mw.WriteField("pinataOptions", `{"cidVersion":1}`); err != nil {
		return nil, fmt.Errorf("write options field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/pinning/pinFileToIPFS", &buf)
	if err != nil {
		return nil, fmt.Errorf("create pin request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.doPin(req)
}

// PinKYC wraps the KYC data in the verifiable-credential envelope the
// dashboards expect and pins it under a per-user name.
func (c *Client) PinKYC(ctx context.Context, kycData map[string]any, userAddress string) (*pin.Receipt, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	envelope := map[string]any{
		"version":           "1.0",
		"type":              "VerifiableCredential",
		"issuer":            "Blockchain Bank",
		"issuedTo":          userAddress,
		"issuedAt":          now,
		"credentialSubject": kycData,
		"proof": map[string]any{
			"type":               "EthereumEip712Signature2021",
			"created":            now,
			"verificationMethod": userAddress,
		},
	}

	prefix := userAddress
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	name := fmt.Sprintf("VC-%s-%d", prefix, time.Now().UnixMilli())

	return c.PinJSON(ctx, envelope, name)
}

// Fetch resolves the CID via the configured gateway, then the public
// fallback exactly once. Both failing reads as not found.
func (c *Client) Fetch(ctx context.Context, cid string) (*pin.Content, error) {
	content, err := c.fetchFrom(ctx, c.gateway, cid)
	if err == nil {
		return content, nil
	}

	content, fallbackErr := c.fetchFrom(ctx, c.fallbackGateway, cid)
	if fallbackErr != nil {
		return nil, fmt.Errorf("gateway: %v, fallback: %v: %w", err, fallbackErr, pin.ErrNotFound)
	}
	return content, nil
}

func (c *Client) fetchFrom(ctx context.Context, gateway, cid string) (*pin.Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/ipfs/%s", gateway, cid), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, err
	}
	return &pin.Content{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// Unpin removes the pin for the CID.
func (c *Client) Unpin(ctx context.Context, cid string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.apiURL+"/pinning/unpin/"+cid, nil)
	if err != nil {
		return fmt.Errorf("create unpin request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pinning provider unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unpin returned status %d: %w", resp.StatusCode, pin.ErrPinFailed)
	}
	return nil
}

// PinnedList returns a page of the provider's pin list.
func (c *Client) PinnedList(ctx context.Context, filters pin.ListFilters) (*pin.List, error) {
	params := url.Values{}
	status := filters.Status
	if status == "" {
		status = "pinned"
	}
	params.Set("status", status)
	limit := filters.PageLimit
	if limit <= 0 {
		limit = 10
	}
	params.Set("pageLimit", strconv.Itoa(limit))
	params.Set("pageOffset", strconv.Itoa(filters.PageOffset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/data/pinList?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create pin list request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pinning provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("pin list returned status %d: %w", resp.StatusCode, pin.ErrPinFailed)
	}

	var out pinListResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode pin list response: %w", err)
	}

	list := &pin.List{Count: out.Count, Rows: make([]pin.Item, 0, len(out.Rows))}
	for _, row := range out.Rows {
		list.Rows = append(list.Rows, pin.Item{
			ID:         row.ID,
			CID:        row.IpfsPinHash,
			Size:       row.Size,
			DatePinned: row.DatePinned,
			Name:       row.Metadata.Name,
		})
	}
	return list, nil
}

// TestAuth verifies the configured JWT against the provider.
func (c *Client) TestAuth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/data/testAuthentication", nil)
	if err != nil {
		return err
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pinning provider unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authentication test returned status %d: %w", resp.StatusCode, pin.ErrPinFailed)
	}
	return nil
}

func (c *Client) doPin(req *http.Request) (*pin.Receipt, error) {
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pinning provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read pin response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pin returned status %d: %s: %w", resp.StatusCode, bytes.TrimSpace(raw), pin.ErrPinFailed)
	}

	var out pinResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode pin response: %w", err)
	}
	if out.IpfsHash == "" {
		return nil, fmt.Errorf("pin response missing content hash: %w", pin.ErrPinFailed)
	}

	return &pin.Receipt{
		CID:       out.IpfsHash,
		PinSize:   out.PinSize,
		Timestamp: out.Timestamp,
		URL:       fmt.Sprintf("%s/ipfs/%s", c.gateway, out.IpfsHash),
	}, nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwt)
	}
}
