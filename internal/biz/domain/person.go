package domain

import (
	"strings"
	"time"
)

// Person is an entry in the bot's person directory
type Person struct {
	PersonID   string
	Platform   string
	UserID     string
	PersonName string // Name the bot knows the person by
	Nickname   string // Platform nickname
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Member represents a group member (value object)
type Member struct {
	UserID   string
	Nickname string
	Card     string // In-group alias
}

// Matches reports whether name is a case-insensitive substring of the nickname or card
func (m *Member) Matches(name string) bool {
	return containsFold(m.Nickname, name) || containsFold(m.Card, name)
}

// Contact represents a direct (friend) contact
type Contact struct {
	UserID   string
	Nickname string
	Remark   string
}

// Matches reports whether name is a case-insensitive substring of the nickname or remark
func (c *Contact) Matches(name string) bool {
	return containsFold(c.Nickname, name) || containsFold(c.Remark, name)
}

func containsFold(s, sub string) bool {
	if s == "" || sub == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
