// Package backend is the REST client of the client/asset backend.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/ankatech/investor-admin/internal/api/metrics"
	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
)

const (
	DefaultBaseURL     = "http://localhost:3001"
	DefaultAssetsField = "ativos"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// Config captures the settings of the backend client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RPS limits outbound requests per second; zero disables throttling.
	RPS   float64
	Burst int
	// AssetsField is the name of the asset id list in write payloads.
	AssetsField string
}

// Client talks to the REST backend. It implements ports.Directory.
type Client struct {
	baseURL     string
	http        *http.Client
	limiter     *rate.Limiter
	assetsField string
}

var _ ports.Directory = (*Client)(nil)

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.AssetsField == "" {
		cfg.AssetsField = DefaultAssetsField
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		http:        &http.Client{Timeout: cfg.Timeout},
		limiter:     limiter,
		assetsField: cfg.AssetsField,
	}
}

func (c *Client) ListClients(ctx context.Context) ([]domain.Client, error) {
	var out []domain.Client
	if err := c.do(ctx, "list_clients", http.MethodGet, "/clientes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateClient(ctx context.Context, in domain.ClientInput) (*domain.Client, error) {
	payload := map[string]any{
		"nome":        in.Name,
		"email":       in.Email,
		"status":      in.Status,
		c.assetsField: domain.NormalizeIDs(in.AssetIDs),
	}
	var out domain.Client
	if err := c.do(ctx, "create_client", http.MethodPost, "/clientes/criar", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateClient sends only the fields set in patch.
func (c *Client) UpdateClient(ctx context.Context, id string, patch domain.ClientPatch) (*domain.Client, error) {
	payload := make(map[string]any, 4)
	if patch.Name != nil {
		payload["nome"] = *patch.Name
	}
	if patch.Email != nil {
		payload["email"] = *patch.Email
	}
	if patch.Status != nil {
		payload["status"] = *patch.Status
	}
	if patch.AssetIDs != nil {
		payload[c.assetsField] = domain.NormalizeIDs(*patch.AssetIDs)
	}

	var out domain.Client
	if err := c.do(ctx, "update_client", http.MethodPatch, "/clientes/atualizar/"+url.PathEscape(id), payload, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = id
	}
	return &out, nil
}

func (c *Client) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	var out []domain.Asset
	if err := c.do(ctx, "list_assets", http.MethodGet, "/ativos-financeiros", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAssetsForClient(ctx context.Context, clientID string) ([]domain.Asset, error) {
	path := "/ativos-financeiros/cliente?" + url.Values{"clienteId": {clientID}}.Encode()
	var out []domain.Asset
	if err := c.do(ctx, "list_client_assets", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks that the backend answers. Any non-5xx response counts as up.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ativos-financeiros", nil)
	if err != nil {
		return fmt.Errorf("backend ping: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.BackendError{Op: "ping", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return &domain.BackendError{Op: "ping", Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	code := "transport"
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues(op, code).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.BackendError{Op: op, Err: err}
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.BackendError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	code = strconv.Itoa(resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &domain.BackendError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.BackendError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: errorMessage(raw),
			Err:     errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrap(raw), out); err != nil {
		return &domain.BackendError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// unwrap returns the "dados" member of an envelope, or raw unchanged.
func unwrap(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var env struct {
		Dados json.RawMessage `json:"dados"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil || len(env.Dados) == 0 || string(env.Dados) == "null" {
		return raw
	}
	return env.Dados
}
