package onebot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds one HTTP round trip to the adapter
const DefaultTimeout = 5 * time.Second

// maxBodySize caps how much of a reply is read
const maxBodySize = 4 << 20

// Response is the OneBot v11 reply envelope
type Response struct {
	Status  string          `json:"status"`
	RetCode *int            `json:"retcode,omitempty"`
	Msg     string          `json:"msg,omitempty"`
	Wording string          `json:"wording,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Raw     []byte          `json:"-"`
}

// OK reports whether the adapter accepted the action
func (r *Response) OK() bool {
	switch r.Status {
	case "ok", "async":
		return true
	case "":
		return r.RetCode != nil && *r.RetCode == 0
	}
	return false
}

// StatusError is a non-2xx HTTP reply
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, e.Body)
}

// GroupMember is one entry of get_group_member_list
type GroupMember struct {
	UserID   json.Number `json:"user_id"`
	Nickname string      `json:"nickname"`
	Card     string      `json:"card"`
	Role     string      `json:"role,omitempty"`
}

// Friend is one entry of get_friend_list
type Friend struct {
	UserID   json.Number `json:"user_id"`
	Nickname string      `json:"nickname"`
	Remark   string      `json:"remark"`
}

// Client talks to a OneBot v11 HTTP adapter
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new adapter client for scheme://host:port
func NewClient(scheme, host string, port int, timeout time.Duration, opts ...Option) *Client {
	if scheme == "" {
		scheme = "http"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	u := url.URL{Scheme: scheme, Host: host}
	if port > 0 {
		u.Host = host + ":" + strconv.Itoa(port)
	}
	return NewClientWithBaseURL(u.String(), timeout, opts...)
}

// NewClientWithBaseURL creates a new adapter client for an explicit base URL
func NewClientWithBaseURL(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the adapter base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call posts params as JSON to the action path and decodes the reply envelope.
// A reply with a non-ok status is returned without error; callers check Response.OK.
func (c *Client) Call(ctx context.Context, path string, params any) (*Response, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if params == nil {
		params = map[string]any{}
	}

	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 200)}
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	out.Raw = raw
	return &out, nil
}

// GetGroupMemberList lists the members of a group
func (c *Client) GetGroupMemberList(ctx context.Context, groupID string) ([]GroupMember, error) {
	var members []GroupMember
	if err := c.callData(ctx, "/get_group_member_list", map[string]any{"group_id": groupID}, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// GetFriendList lists the bot account's friends
func (c *Client) GetFriendList(ctx context.Context) ([]Friend, error) {
	var friends []Friend
	if err := c.callData(ctx, "/get_friend_list", nil, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

// SendGroupText sends a plain-text message to a group
func (c *Client) SendGroupText(ctx context.Context, groupID, text string) error {
	return c.callData(ctx, "/send_msg", map[string]any{
		"message_type": "group",
		"group_id":     groupID,
		"message":      text,
	}, nil)
}

// SendPrivateText sends a plain-text message to a user
func (c *Client) SendPrivateText(ctx context.Context, userID, text string) error {
	return c.callData(ctx, "/send_msg", map[string]any{
		"message_type": "private",
		"user_id":      userID,
		"message":      text,
	}, nil)
}

func (c *Client) callData(ctx context.Context, path string, params any, out any) error {
	resp, err := c.Call(ctx, path, params)
	if err != nil {
		return err
	}
	if !resp.OK() {
		msg := resp.Wording
		if msg == "" {
			msg = resp.Msg
		}
		return fmt.Errorf("%s rejected: status=%q: %s", path, resp.Status, msg)
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(resp.Data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
