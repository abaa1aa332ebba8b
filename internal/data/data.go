package data

import (
	"errors"

	"github.com/acpoke/acpoke-bridge/internal/biz/repo"
	"github.com/acpoke/acpoke-bridge/onebot"
)

// Repositories contains all repositories
type Repositories struct {
	Gesture    repo.GestureRepo
	Membership repo.MembershipRepo
	Contacts   repo.ContactRepo
	Message    repo.MessageRepo
	Directory  repo.DirectoryRepo
	Action     repo.ActionRepo
}

// NewRepositories creates all repositories
func NewRepositories(client *onebot.Client, dbPath string) (*Repositories, error) {
	directory, err := NewPersonRepo(dbPath)
	if err != nil {
		return nil, err
	}

	// Action records share the directory's database file
	action, err := NewActionRepo(dbPath)
	if err != nil {
		directory.Close()
		return nil, err
	}

	return &Repositories{
		Gesture:    NewGestureRepo(client),
		Membership: NewMembershipRepo(client),
		Contacts:   NewContactRepo(client),
		Message:    NewMessageRepo(client),
		Directory:  directory,
		Action:     action,
	}, nil
}

// Close closes the storage-backed repositories
func (r *Repositories) Close() error {
	return errors.Join(r.Directory.Close(), r.Action.Close())
}
