package repo

import (
	"context"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
)

// ActionRepo is the conversation memory interface for taken actions
type ActionRepo interface {
	// StoreAction persists an action record, assigning ID and CreatedAt when empty
	StoreAction(ctx context.Context, record *domain.ActionRecord) error

	// ListRecentActions lists the newest records of a chat (all chats when chatID is empty)
	ListRecentActions(ctx context.Context, chatID string, limit int) ([]*domain.ActionRecord, error)

	Close() error
}
