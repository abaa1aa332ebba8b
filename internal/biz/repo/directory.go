package repo

import (
	"context"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
)

// DirectoryRepo is the person directory interface
// Responsible for mapping names the bot knows to platform user IDs (SQLite)
type DirectoryRepo interface {
	// FindPersonIDByName returns the person ID whose name or nickname equals name.
	// Returns "" and no error when nobody matches.
	FindPersonIDByName(ctx context.Context, name string) (string, error)

	// GetPersonValue returns one field of a person, e.g. "user_id"
	GetPersonValue(ctx context.Context, personID, field string) (string, error)

	// SavePerson creates or updates a person
	SavePerson(ctx context.Context, person *domain.Person) error

	// SearchPersons lists persons whose name or nickname contains query
	SearchPersons(ctx context.Context, query string, limit int) ([]*domain.Person, error)

	Close() error
}

// MembershipRepo is the group membership interface
// Backed by the adapter's group member list
type MembershipRepo interface {
	// ListGroupMembers gets the members of a group
	ListGroupMembers(ctx context.Context, groupID string) ([]domain.Member, error)
}

// ContactRepo is the direct contact interface
// Backed by the adapter's friend list
type ContactRepo interface {
	// ListContacts gets the bot's friends
	ListContacts(ctx context.Context) ([]domain.Contact, error)
}
