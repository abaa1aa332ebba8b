package repo

import (
	"context"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
)

// MessageRepo is the messaging interface
// Responsible for delivering plain text back into a chat
type MessageRepo interface {
	// SendText sends a text message to the chat
	SendText(ctx context.Context, chat domain.ChatTarget, text string) error
}
