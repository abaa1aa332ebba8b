package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
	"github.com/acpoke/acpoke-bridge/internal/biz/repo"
)

// actionRepo implements the action record store
type actionRepo struct {
	db *sql.DB
}

// NewActionRepo creates a new action record repository
func NewActionRepo(dbPath string) (repo.ActionRepo, error) {
	db, err := openSQLite(dbPath,
		`CREATE TABLE IF NOT EXISTS action_records (
			id TEXT PRIMARY KEY,
			chat_id TEXT NOT NULL,
			action_name TEXT NOT NULL,
			display TEXT NOT NULL DEFAULT '',
			reason TEXT NOT NULL DEFAULT '',
			data TEXT NOT NULL DEFAULT '{}',
			build_into_prompt INTEGER NOT NULL DEFAULT 0,
			done INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_chat_created ON action_records(chat_id, created_at)`,
	)
	if err != nil {
		return nil, err
	}
	return &actionRepo{db: db}, nil
}

// StoreAction persists a record
func (r *actionRepo) StoreAction(ctx context.Context, record *domain.ActionRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	data, err := json.Marshal(record.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal action data: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO action_records (id, chat_id, action_name, display, reason, data, build_into_prompt, done, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.ChatID,
		record.ActionName,
		record.Display,
		record.Reason,
		string(data),
		boolToInt(record.BuildIntoPrompt),
		boolToInt(record.Done),
		record.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to store action: %w", err)
	}
	return nil
}

// ListRecentActions lists the newest records, newest first
func (r *actionRepo) ListRecentActions(ctx context.Context, chatID string, limit int) ([]*domain.ActionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, chat_id, action_name, display, reason, data, build_into_prompt, done, created_at
		FROM action_records`
	args := []any{}
	if chatID != "" {
		query += ` WHERE chat_id = ?`
		args = append(args, chatID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	defer rows.Close()

	var records []*domain.ActionRecord
	for rows.Next() {
		var rec domain.ActionRecord
		var data string
		var buildIntoPrompt, done int
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.ChatID, &rec.ActionName, &rec.Display, &rec.Reason,
			&data, &buildIntoPrompt, &done, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		if data != "" && data != "null" {
			if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
				return nil, fmt.Errorf("failed to decode action data: %w", err)
			}
		}
		rec.BuildIntoPrompt = buildIntoPrompt == 1
		rec.Done = done == 1
		rec.CreatedAt = time.UnixMilli(createdAt)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Close closes the database connection
func (r *actionRepo) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
