package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
	"github.com/acpoke/acpoke-bridge/internal/biz/repo"
)

// RecorderUsecase records poke outcomes
type RecorderUsecase struct {
	actionRepo  repo.ActionRepo
	messageRepo repo.MessageRepo
	debug       bool
	logger      *zap.Logger
}

// NewRecorderUsecase creates a new recorder usecase
func NewRecorderUsecase(actionRepo repo.ActionRepo, messageRepo repo.MessageRepo, debug bool, logger *zap.Logger) *RecorderUsecase {
	return &RecorderUsecase{
		actionRepo:  actionRepo,
		messageRepo: messageRepo,
		debug:       debug,
		logger:      logger,
	}
}

// SuccessNote describes a poke that went through
type SuccessNote struct {
	ChatID         string
	Target         domain.ResolvedTarget
	Reason         string
	PokeMode       string
	DisplayMessage string
}

// RecordSuccess stores an advisory note about the poke.
// Storage errors are logged, never returned.
func (uc *RecorderUsecase) RecordSuccess(ctx context.Context, note SuccessNote) {
	if uc.actionRepo == nil {
		return
	}
	reason := note.Reason
	if reason == "" {
		reason = "无"
	}

	record := &domain.ActionRecord{
		ChatID:     note.ChatID,
		ActionName: "poke",
		Display:    fmt.Sprintf("使用了戳一戳，原因：%s", reason),
		Reason:     reason,
		Data: map[string]string{
			"reason":          reason,
			"user_id":         note.Target.UserID,
			"group_id":        note.Target.GroupID,
			"poke_mode":       note.PokeMode,
			"display_message": note.DisplayMessage,
		},
		BuildIntoPrompt: true,
		Done:            true,
	}
	if err := uc.actionRepo.StoreAction(ctx, record); err != nil {
		uc.logger.Warn("store action record failed", zap.String("chat_id", note.ChatID), zap.Error(err))
	}
}

// ReportFailure tells the chat about a failed poke when debug is on
func (uc *RecorderUsecase) ReportFailure(ctx context.Context, chat domain.ChatTarget, message string) {
	if !uc.debug || uc.messageRepo == nil {
		return
	}
	if chat.GroupID == "" && chat.UserID == "" {
		uc.logger.Debug("no chat to report failure to", zap.String("message", message))
		return
	}
	if err := uc.messageRepo.SendText(ctx, chat, message); err != nil {
		uc.logger.Warn("send failure message failed", zap.Error(err))
	}
}
