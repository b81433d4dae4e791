// Package untis talks to the WebUntis JSON-RPC API: school search, login by
// password or mobile QR secret, and the weekly timetable of the logged-in
// person.
//
// Requests are rate limited with a token bucket shared by all users.
package untis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultSchoolSearchURL   = "https://mobile.webuntis.com/ms/schoolquery2"
	DefaultClientName        = "untis-cancellation-bot"
	DefaultRequestsPerMinute = 120
	DefaultTimeout           = 15 * time.Second
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	ClientName        string
	SchoolSearchURL   string
	RequestsPerMinute int
	Timeout           time.Duration
	HTTPClient        *http.Client
	// Location is the school's time zone; the fetched week is computed in it.
	Location *time.Location
}

// Client is the shared WebUntis HTTP client.
type Client struct {
	httpClient      *http.Client
	limiter         *rate.Limiter
	log             *zap.Logger
	clientName      string
	schoolSearchURL string
	loc             *time.Location
	now             func() time.Time
}

func New(opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ClientName == "" {
		opts.ClientName = DefaultClientName
	}
	if opts.SchoolSearchURL == "" {
		opts.SchoolSearchURL = DefaultSchoolSearchURL
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	rps := float64(opts.RequestsPerMinute) / 60.0
	return &Client{
		httpClient:      httpClient,
		limiter:         rate.NewLimiter(rate.Limit(rps), 5),
		log:             log,
		clientName:      opts.ClientName,
		schoolSearchURL: opts.SchoolSearchURL,
		loc:             opts.Location,
		now:             time.Now,
	}
}

type rpcRequest struct {
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	JSONRPC string `json:"jsonrpc"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("untis rpc error %d: %s", e.Code, e.Message)
}

// call performs a rate-limited JSON-RPC request and decodes the result into
// out. The response cookies are returned for session handling.
func (c *Client) call(ctx context.Context, endpoint, method string, params any, cookies string, out any) ([]*http.Cookie, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(rpcRequest{
		ID:      strconv.FormatInt(c.now().UnixMilli(), 10),
		Method:  method,
		Params:  params,
		JSONRPC: "2.0",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.clientName)
	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("untis %s returned %d: %s", method, resp.StatusCode, truncate(raw, 200))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return nil, fmt.Errorf("decode %s result: %w", method, err)
		}
	}

	return resp.Cookies(), nil
}

func rpcEndpoint(server, school string) string {
	return "https://" + server + "/WebUntis/jsonrpc.do?school=" + url.QueryEscape(school)
}

func sessionCookies(sessionID, school string) string {
	schoolCookie := "_" + base64.StdEncoding.EncodeToString([]byte(school))
	return fmt.Sprintf("JSESSIONID=%s; schoolname=%q", sessionID, schoolCookie)
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
