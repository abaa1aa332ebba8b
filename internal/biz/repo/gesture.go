package repo

import (
	"context"
	"encoding/json"
)

// GestureRepo is the delivery endpoint interface
// Submits one JSON payload to one adapter action path
type GestureRepo interface {
	// Submit posts body to path and decodes the adapter reply.
	// Transport problems (timeout, non-2xx, malformed body) return a *domain.TransportError.
	Submit(ctx context.Context, path string, body map[string]any) (*AdapterResponse, error)
}

// AdapterResponse is the adapter's reply envelope
type AdapterResponse struct {
	Status  string          `json:"status"`
	RetCode *int            `json:"retcode,omitempty"`
	Msg     string          `json:"msg,omitempty"`
	Wording string          `json:"wording,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Raw     []byte          `json:"-"`
}

// Succeeded reports whether the adapter acknowledged the action
func (r *AdapterResponse) Succeeded() bool {
	if r == nil {
		return false
	}
	switch r.Status {
	case "ok", "async":
		return true
	case "":
		return r.RetCode != nil && *r.RetCode == 0
	}
	return false
}

// Message returns the most descriptive error text in the reply
func (r *AdapterResponse) Message() string {
	if r.Wording != "" {
		return r.Wording
	}
	return r.Msg
}

// Code returns the retcode, or -1 when absent
func (r *AdapterResponse) Code() int {
	if r.RetCode == nil {
		return -1
	}
	return *r.RetCode
}
