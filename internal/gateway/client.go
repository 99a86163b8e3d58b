package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/baharkarakas/sagepaypi/internal/config"
	"github.com/baharkarakas/sagepaypi/internal/metrics"
)

var ErrNoSessionKey = errors.New("gateway: merchant session key unavailable")

const (
	sessionKeyCacheKey = "merchant-session-key"
	// keys are dropped from the cache this long before the gateway expires them
	sessionKeyMargin = 30 * time.Second
)

// Client talks to the gateway REST API. It only performs the HTTP exchange;
// interpreting responses is up to the caller.
type Client struct {
	baseURL  string
	vendor   string
	key      string
	password string
	http     *http.Client
	keys     *cache.Cache
}

func NewClient(cfg config.Gateway) *Client {
	return NewClientWithURL(cfg, cfg.APIURL(), &http.Client{Timeout: cfg.Timeout})
}

// NewClientWithURL points the client at an explicit base URL, used for sandboxes and tests.
func NewClientWithURL(cfg config.Gateway, baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		vendor:   cfg.VendorName,
		key:      cfg.IntegrationKey,
		password: cfg.IntegrationPassword,
		http:     hc,
		keys:     cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

// MerchantSessionKey returns a cached session key or requests a new one.
func (c *Client) MerchantSessionKey(ctx context.Context) (SessionKey, error) {
	if v, ok := c.keys.Get(sessionKeyCacheKey); ok {
		return v.(SessionKey), nil
	}

	res, err := c.do(ctx, "merchant-session-keys", http.MethodPost, "/merchant-session-keys",
		map[string]string{"vendorName": c.vendor}, c.basicAuth)
	if err != nil {
		return SessionKey{}, err
	}
	if res.StatusCode != http.StatusCreated {
		return SessionKey{}, fmt.Errorf("%w: status %d", ErrNoSessionKey, res.StatusCode)
	}

	key := res.String("merchantSessionKey")
	if key == nil {
		return SessionKey{}, fmt.Errorf("%w: missing merchantSessionKey", ErrNoSessionKey)
	}
	sk := SessionKey{Key: *key}
	if exp, ok := res.Time("expiry"); ok {
		sk.Expiry = exp
		if ttl := time.Until(exp) - sessionKeyMargin; ttl > 0 {
			c.keys.Set(sessionKeyCacheKey, sk, ttl)
		}
	}
	return sk, nil
}

// CreateCardIdentifier registers card details and returns the raw response
// together with the session key it was registered under.
func (c *Client) CreateCardIdentifier(ctx context.Context, card CardDetails) (Response, SessionKey, error) {
	sk, err := c.MerchantSessionKey(ctx)
	if err != nil {
		return Response{}, SessionKey{}, err
	}
	bearer := func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+sk.Key) }

	res, err := c.do(ctx, "card-identifiers", http.MethodPost, "/card-identifiers",
		map[string]any{"cardDetails": card}, bearer)
	if err != nil {
		return Response{}, sk, err
	}
	return res, sk, nil
}

func (c *Client) SubmitTransaction(ctx context.Context, req TransactionRequest) (Response, error) {
	return c.do(ctx, "transactions", http.MethodPost, "/transactions", req, c.basicAuth)
}

func (c *Client) SubmitInstruction(ctx context.Context, transactionID string, req InstructionRequest) (Response, error) {
	return c.do(ctx, "instructions", http.MethodPost, "/transactions/"+transactionID+"/instructions", req, c.basicAuth)
}

func (c *Client) Submit3DSecure(ctx context.Context, transactionID string, req SecureRequest) (Response, error) {
	return c.do(ctx, "3d-secure", http.MethodPost, "/transactions/"+transactionID+"/3d-secure", req, c.basicAuth)
}

func (c *Client) TransactionOutcome(ctx context.Context, transactionID string) (Response, error) {
	return c.do(ctx, "outcome", http.MethodGet, "/transactions/"+transactionID, nil, c.basicAuth)
}

func (c *Client) basicAuth(r *http.Request) { r.SetBasicAuth(c.key, c.password) }

// do performs one exchange. A non-nil error means no HTTP response arrived;
// any received status, including 5xx, is returned as a Response.
func (c *Client) do(ctx context.Context, endpoint, method, path string, body any, auth func(*http.Request)) (Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	auth(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.GatewayLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(endpoint, "0").Inc()
		return Response{}, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()
	metrics.GatewayRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{StatusCode: resp.StatusCode, Body: map[string]any{}, Raw: json.RawMessage("{}")}, nil
	}
	res := decode(resp.StatusCode, raw)
	slog.Debug("gateway call", "endpoint", endpoint, "method", method, "status", resp.StatusCode)
	return res, nil
}

func decode(status int, raw []byte) Response {
	res := Response{StatusCode: status, Body: map[string]any{}, Raw: json.RawMessage("{}")}
	if len(bytes.TrimSpace(raw)) == 0 {
		return res
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil || body == nil {
		return res
	}
	res.Body = body
	res.Raw = json.RawMessage(raw)
	return res
}
