package usecase

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
)

// Result messages returned to the invoking framework
const (
	MsgSucceeded      = "戳一戳成功"
	MsgSuppressed     = "避免重复戳同一个人"
	MsgNoTarget       = "无法找到目标用户ID"
	MsgDisabled       = "插件未启用"
	msgFailurePrefix  = "戳一戳失败: "
	defaultPokeReason = "无"
)

// PokeConfig contains pipeline switches
type PokeConfig struct {
	Enabled           bool
	Debug             bool
	CooldownOnFailure bool // Count failed dispatches towards the cooldown
}

// PokeRequest is one invocation of the poke action
type PokeRequest struct {
	Target       string // user_id parameter: name, alias or digits
	GroupID      string // group_id parameter (optional)
	ReplyID      string
	PokeMode     string
	Reason       string
	ResponseText string // Upstream model output used as a last-resort hint source
	Context      domain.InvocationContext
}

// PokeUsecase runs resolve -> cooldown -> dispatch -> record
type PokeUsecase struct {
	resolver *ResolverUsecase
	cooldown *CooldownUsecase
	dispatch *DispatchUsecase
	recorder *RecorderUsecase
	config   PokeConfig
	logger   *zap.Logger

	// Per-session serialization; entries live only while an invocation holds or waits on them
	sessions   map[string]*sessionLock
	sessionsMu sync.Mutex
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewPokeUsecase creates a new poke usecase
func NewPokeUsecase(
	resolver *ResolverUsecase,
	cooldown *CooldownUsecase,
	dispatch *DispatchUsecase,
	recorder *RecorderUsecase,
	config PokeConfig,
	logger *zap.Logger,
) *PokeUsecase {
	return &PokeUsecase{
		resolver: resolver,
		cooldown: cooldown,
		dispatch: dispatch,
		recorder: recorder,
		config:   config,
		logger:   logger,
		sessions: make(map[string]*sessionLock),
	}
}

// Cooldown exposes the cooldown guard
func (uc *PokeUsecase) Cooldown() *CooldownUsecase {
	return uc.cooldown
}

// Execute runs the pipeline once
func (uc *PokeUsecase) Execute(ctx context.Context, req *PokeRequest) *domain.Result {
	if !uc.config.Enabled {
		return &domain.Result{Status: domain.StatusFailed, Message: MsgDisabled, Err: domain.ErrPluginDisabled}
	}

	key := req.Context.SessionKey()
	uc.lockSession(key)
	defer uc.unlockSession(key)

	pokeMode := req.PokeMode
	if pokeMode == "" {
		pokeMode = string(domain.PokeModePassive)
	}

	target, err := uc.resolver.Resolve(ctx, &domain.ResolutionRequest{
		Token:        req.Target,
		GroupHint:    req.GroupID,
		ResponseText: req.ResponseText,
		Context:      req.Context,
	})

	if uc.config.Debug {
		fields := []zap.Field{
			zap.String("session", key),
			zap.String("token", req.Target),
			zap.String("poke_mode", pokeMode),
		}
		if target != nil {
			fields = append(fields, zap.String("user_id", target.UserID), zap.String("group_id", target.GroupID))
		}
		uc.logger.Info("poke params", fields...)
	}

	if err != nil {
		return &domain.Result{Status: domain.StatusFailed, Message: MsgNoTarget, Err: err}
	}

	if !uc.cooldown.Allow(key, *target) {
		uc.logger.Info("poke suppressed by cooldown", zap.String("session", key), zap.Stringer("target", target))
		return &domain.Result{
			Status:  domain.StatusSuppressed,
			Message: MsgSuppressed,
			Target:  target,
			Err:     domain.ErrCooldownSuppressed,
		}
	}

	reason := req.Reason
	if reason == "" {
		reason = defaultPokeReason
	}
	outcome := uc.dispatch.Dispatch(ctx, *target, domain.DispatchExtra{ReplyID: req.ReplyID, Reason: reason})

	if outcome.Success || uc.config.CooldownOnFailure {
		uc.cooldown.Record(key, *target)
	}

	if !outcome.Success {
		msg := msgFailurePrefix + describeDispatchError(outcome.Err)
		uc.logger.Warn("poke failed",
			zap.String("session", key),
			zap.Stringer("target", target),
			zap.Int("attempts", outcome.Attempts),
			zap.Error(outcome.Err))
		uc.recorder.ReportFailure(ctx, req.Context.ChatTarget(), msg)
		return &domain.Result{
			Status:  domain.StatusFailed,
			Message: msg,
			Target:  target,
			Err:     outcome.Err,
		}
	}

	uc.recorder.RecordSuccess(ctx, SuccessNote{
		ChatID:         key,
		Target:         *target,
		Reason:         reason,
		PokeMode:       pokeMode,
		DisplayMessage: displayMessage(req.Target, target.UserID),
	})
	uc.logger.Info("poke sent",
		zap.String("session", key),
		zap.Stringer("target", target),
		zap.String("shape", outcome.Candidate))

	return &domain.Result{Status: domain.StatusSucceeded, Message: MsgSucceeded, Target: target}
}

func (uc *PokeUsecase) lockSession(key string) {
	uc.sessionsMu.Lock()
	lock, ok := uc.sessions[key]
	if !ok {
		lock = &sessionLock{}
		uc.sessions[key] = lock
	}
	lock.refs++
	uc.sessionsMu.Unlock()

	lock.mu.Lock()
}

func (uc *PokeUsecase) unlockSession(key string) {
	uc.sessionsMu.Lock()
	defer uc.sessionsMu.Unlock()

	lock := uc.sessions[key]
	lock.mu.Unlock()
	if lock.refs--; lock.refs == 0 {
		delete(uc.sessions, key)
	}
}

func displayMessage(token, userID string) string {
	name := token
	if name == "" {
		name = userID
	}
	return fmt.Sprintf("[戳了戳 %s]", name)
}

func describeDispatchError(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
