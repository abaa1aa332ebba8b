package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
	"github.com/acpoke/acpoke-bridge/internal/biz/repo"
)

// DefaultPlatform is the platform persons are registered under
const DefaultPlatform = "qq"

// personFields maps GetPersonValue field names to columns
var personFields = map[string]string{
	"person_id":   "person_id",
	"platform":    "platform",
	"user_id":     "user_id",
	"person_name": "person_name",
	"nickname":    "nickname",
}

// personRepo implements the person directory
type personRepo struct {
	db *sql.DB
}

// NewPersonRepo creates a new person directory repository
func NewPersonRepo(dbPath string) (repo.DirectoryRepo, error) {
	db, err := openSQLite(dbPath,
		`CREATE TABLE IF NOT EXISTS person_info (
			person_id TEXT PRIMARY KEY,
			platform TEXT NOT NULL DEFAULT 'qq',
			user_id TEXT NOT NULL,
			person_name TEXT NOT NULL DEFAULT '',
			nickname TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_person_platform_user ON person_info(platform, user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_person_name ON person_info(person_name COLLATE NOCASE)`,
	)
	if err != nil {
		return nil, err
	}
	return &personRepo{db: db}, nil
}

// FindPersonIDByName returns the person whose name or nickname equals name.
// A person_name match wins over a nickname match.
func (r *personRepo) FindPersonIDByName(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT person_id FROM person_info
		WHERE person_name = ? COLLATE NOCASE OR nickname = ? COLLATE NOCASE
		ORDER BY (person_name = ? COLLATE NOCASE) DESC, updated_at DESC
		LIMIT 1
	`, name, name, name)

	var personID string
	err := row.Scan(&personID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query person: %w", err)
	}
	return personID, nil
}

// GetPersonValue returns one column of a person, "" when the person does not exist
func (r *personRepo) GetPersonValue(ctx context.Context, personID, field string) (string, error) {
	column, ok := personFields[field]
	if !ok {
		return "", fmt.Errorf("unknown person field: %s", field)
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+column+` FROM person_info WHERE person_id = ?`, personID)

	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query person value: %w", err)
	}
	return value, nil
}

// SavePerson creates or updates a person.
// An empty PersonID reuses the existing entry for the same platform user, or gets a new UUID.
func (r *personRepo) SavePerson(ctx context.Context, person *domain.Person) error {
	if person.UserID == "" {
		return fmt.Errorf("person has no user_id")
	}
	if person.Platform == "" {
		person.Platform = DefaultPlatform
	}

	if person.PersonID == "" {
		var existing string
		err := r.db.QueryRowContext(ctx,
			`SELECT person_id FROM person_info WHERE platform = ? AND user_id = ?`,
			person.Platform, person.UserID,
		).Scan(&existing)
		switch {
		case err == sql.ErrNoRows:
			person.PersonID = uuid.NewString()
		case err != nil:
			return fmt.Errorf("failed to query person: %w", err)
		default:
			person.PersonID = existing
		}
	}

	now := time.Now()
	if person.CreatedAt.IsZero() {
		person.CreatedAt = now
	}
	person.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO person_info (person_id, platform, user_id, person_name, nickname, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(person_id) DO UPDATE SET
			platform = excluded.platform,
			user_id = excluded.user_id,
			person_name = excluded.person_name,
			nickname = excluded.nickname,
			updated_at = excluded.updated_at
	`,
		person.PersonID,
		person.Platform,
		person.UserID,
		person.PersonName,
		person.Nickname,
		person.CreatedAt.Unix(),
		person.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save person: %w", err)
	}
	return nil
}

// SearchPersons lists persons whose name, nickname or user ID contains query
func (r *personRepo) SearchPersons(ctx context.Context, query string, limit int) ([]*domain.Person, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + strings.TrimSpace(query) + "%"

	rows, err := r.db.QueryContext(ctx, `
		SELECT person_id, platform, user_id, person_name, nickname, created_at, updated_at
		FROM person_info
		WHERE person_name LIKE ? OR nickname LIKE ? OR user_id LIKE ?
		ORDER BY updated_at DESC
		LIMIT ?
	`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search persons: %w", err)
	}
	defer rows.Close()

	var persons []*domain.Person
	for rows.Next() {
		var p domain.Person
		var createdAt, updatedAt int64
		if err := rows.Scan(&p.PersonID, &p.Platform, &p.UserID, &p.PersonName, &p.Nickname, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		p.CreatedAt = time.Unix(createdAt, 0)
		p.UpdatedAt = time.Unix(updatedAt, 0)
		persons = append(persons, &p)
	}
	return persons, rows.Err()
}

// Close closes the database connection
func (r *personRepo) Close() error {
	return r.db.Close()
}
