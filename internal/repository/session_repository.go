package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pomodoro/timer/internal/model"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, session_group_id, type, started_at, ended_at, duration, completed`

const insertSessionSQL = `INSERT INTO sessions (
	id, session_group_id, type, started_at, ended_at, duration, completed, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// InsertSession appends record and returns the id it was stored under.
// Records are never updated afterwards.
func (r *SessionRepository) InsertSession(ctx context.Context, record *model.SessionRecord) (string, error) {
	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx, insertSessionSQL, sessionArgs(id, record)...); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	record.ID = id
	return id, nil
}

// RestoreSession stores a record recovered after an unclean shutdown. When the
// same fragment (group and start time) is already stored, the stored id is
// returned and inserted is false.
func (r *SessionRepository) RestoreSession(ctx context.Context, record *model.SessionRecord) (id string, inserted bool, err error) {
	id = uuid.NewString()
	result, err := r.db.ExecContext(ctx,
		insertSessionSQL+` ON CONFLICT (session_group_id, started_at) DO NOTHING`,
		sessionArgs(id, record)...,
	)
	if err != nil {
		return "", false, fmt.Errorf("restore session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("restore session: %w", err)
	}
	if affected == 0 {
		if err := r.db.QueryRowContext(ctx,
			`SELECT id FROM sessions WHERE session_group_id = ? AND started_at = ?`,
			record.SessionGroupID, formatTime(record.StartedAt),
		).Scan(&id); err != nil {
			return "", false, fmt.Errorf("find restored session: %w", err)
		}
		record.ID = id
		return id, false, nil
	}
	record.ID = id
	return id, true, nil
}

func sessionArgs(id string, record *model.SessionRecord) []any {
	return []any{
		id,
		record.SessionGroupID,
		record.Type,
		formatTime(record.StartedAt),
		formatTime(record.EndedAt),
		record.Duration,
		record.Completed,
		formatTime(time.Now()),
	}
}

// ListSessions returns every record, oldest first.
func (r *SessionRepository) ListSessions(ctx context.Context) ([]model.SessionRecord, error) {
	return r.query(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at ASC, created_at ASC`,
	)
}

func (r *SessionRepository) ListRecentSessions(ctx context.Context, limit int) ([]model.SessionRecord, error) {
	return r.query(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC, created_at DESC LIMIT ?`,
		limit,
	)
}

// ListSessionGroup returns the fragments of one phase in the order they ran.
func (r *SessionRepository) ListSessionGroup(ctx context.Context, groupID string) ([]model.SessionRecord, error) {
	records, err := r.query(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE session_group_id = ? ORDER BY started_at ASC, created_at ASC`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

func (r *SessionRepository) query(ctx context.Context, query string, args ...interface{}) ([]model.SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	records := make([]model.SessionRecord, 0)
	for rows.Next() {
		record, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return records, nil
}

func scanSession(s scanner) (*model.SessionRecord, error) {
	record := model.SessionRecord{}
	var startedAt string
	var endedAt string
	err := s.Scan(
		&record.ID,
		&record.SessionGroupID,
		&record.Type,
		&startedAt,
		&endedAt,
		&record.Duration,
		&record.Completed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	record.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse session started_at: %w", err)
	}
	record.EndedAt, err = parseTime(endedAt)
	if err != nil {
		return nil, fmt.Errorf("parse session ended_at: %w", err)
	}
	return &record, nil
}
