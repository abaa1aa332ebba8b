package domain

import (
	"fmt"
	"strings"
)

// InvocationContext carries the ambient context of one poke invocation.
// Each group source has its own field; empty means the source had nothing.
type InvocationContext struct {
	ChatID          string // Session key; derived from the group or sender when empty
	SenderID        string // User who sent the triggering message
	SenderName      string
	MessageGroupID  string // Group embedded in the triggering message
	SessionGroupID  string // Group of the current chat session
	FallbackGroupID string // Group supplied by the invoking framework as a last resort
}

// SessionKey returns the key cooldown and serialization are scoped to
func (c InvocationContext) SessionKey() string {
	if c.ChatID != "" {
		return c.ChatID
	}
	if g := NormalizeID(c.SessionGroupID); g != "" {
		return "group:" + g
	}
	if g := NormalizeID(c.MessageGroupID); g != "" {
		return "group:" + g
	}
	if c.SenderID != "" {
		return "private:" + c.SenderID
	}
	return "global"
}

// ChatTarget returns where user-visible messages for this invocation go
func (c InvocationContext) ChatTarget() ChatTarget {
	if g := NormalizeID(c.SessionGroupID); g != "" {
		return ChatTarget{GroupID: g}
	}
	if g := NormalizeID(c.MessageGroupID); g != "" {
		return ChatTarget{GroupID: g}
	}
	return ChatTarget{UserID: c.SenderID}
}

// ResolutionRequest is the input of the identity resolver
type ResolutionRequest struct {
	Token        string // Name, alias or digit string naming the target
	GroupHint    string // Explicit group from the action parameters
	ResponseText string // Upstream model output, scanned for user_id/group_id markers
	Context      InvocationContext
}

// ResolvedTarget is a fully resolved poke target
type ResolvedTarget struct {
	UserID  string
	GroupID string // Empty means direct/friend context
}

// InGroup reports whether the target lives in a group context
func (t ResolvedTarget) InGroup() bool {
	return t.GroupID != ""
}

func (t ResolvedTarget) String() string {
	if t.GroupID == "" {
		return fmt.Sprintf("user %s (friend)", t.UserID)
	}
	return fmt.Sprintf("user %s in group %s", t.UserID, t.GroupID)
}

// ChatTarget addresses a chat for plain-text messages
type ChatTarget struct {
	GroupID string
	UserID  string
}

// IsGroup reports whether this addresses a group chat
func (t ChatTarget) IsGroup() bool {
	return t.GroupID != ""
}

// NormalizeID trims an identifier and maps placeholder values to empty
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	switch strings.ToLower(id) {
	case "", "none", "null", "nil", "undefined":
		return ""
	}
	return id
}

// IsDigits reports whether s is a non-empty string of ASCII digits
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
