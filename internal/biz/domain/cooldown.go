package domain

import "time"

// DefaultCooldownWindow is how long the same target stays suppressed
const DefaultCooldownWindow = 300 * time.Second

// CooldownState remembers the most recent poke of one session
type CooldownState struct {
	LastUserID  string
	LastGroupID string // Empty when the last poke had no group
	LastAt      time.Time
}

// Allows reports whether target may be poked at now.
// A nil state has never poked anyone.
func (s *CooldownState) Allows(target ResolvedTarget, window time.Duration, now time.Time) bool {
	if s == nil || s.LastAt.IsZero() {
		return true
	}
	if s.LastUserID != target.UserID || s.LastGroupID != target.GroupID {
		return true
	}
	return now.Sub(s.LastAt) >= window
}

// Mark records target as the most recent poke
func (s *CooldownState) Mark(target ResolvedTarget, now time.Time) {
	s.LastUserID = target.UserID
	s.LastGroupID = target.GroupID
	s.LastAt = now
}
