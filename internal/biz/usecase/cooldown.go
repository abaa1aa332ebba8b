package usecase

import (
	"sync"
	"time"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
)

// CooldownUsecase suppresses repeated pokes of the same target, per session
type CooldownUsecase struct {
	mu     sync.Mutex
	states map[string]*domain.CooldownState
	window time.Duration
	now    func() time.Time
}

// NewCooldownUsecase creates a new cooldown usecase. A window <= 0 disables suppression.
func NewCooldownUsecase(window time.Duration) *CooldownUsecase {
	if window < 0 {
		window = 0
	}
	return &CooldownUsecase{
		states: make(map[string]*domain.CooldownState),
		window: window,
		now:    time.Now,
	}
}

// Window returns the configured cooldown window
func (uc *CooldownUsecase) Window() time.Duration {
	return uc.window
}

// Allow reports whether target may be poked in the session now
func (uc *CooldownUsecase) Allow(sessionKey string, target domain.ResolvedTarget) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.states[sessionKey].Allows(target, uc.window, uc.now())
}

// Record marks target as the session's most recent poke
func (uc *CooldownUsecase) Record(sessionKey string, target domain.ResolvedTarget) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	state, ok := uc.states[sessionKey]
	if !ok {
		state = &domain.CooldownState{}
		uc.states[sessionKey] = state
	}
	state.Mark(target, uc.now())
}

// State returns a copy of the session's cooldown state
func (uc *CooldownUsecase) State(sessionKey string) (domain.CooldownState, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	state, ok := uc.states[sessionKey]
	if !ok {
		return domain.CooldownState{}, false
	}
	return *state, true
}

// Prune drops sessions whose last poke is older than the window
func (uc *CooldownUsecase) Prune() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := uc.now()
	removed := 0
	for key, state := range uc.states {
		if now.Sub(state.LastAt) >= uc.window {
			delete(uc.states, key)
			removed++
		}
	}
	return removed
}
