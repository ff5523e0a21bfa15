// Package audit appends domain events (enrollments, attempt submissions)
// to an append-only log table, for reporting and external consumers.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	TypeEnrollmentCreated = "EnrollmentCreated"
	TypeAttemptSubmitted  = "AttemptSubmitted"
)

type Event struct {
	Offset    int64  `json:"offset"`
	Type      string `json:"type"`
	Key       string `json:"key"` // natural key: attempt or enrollment ID
	DataJSON  string `json:"data_json"`
	CreatedAt int64  `json:"created_at"`
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// Append records one event. Payload is marshalled to JSON; a nil payload
// writes an empty object.
func (r *EventRepo) Append(ctx context.Context, typ, key string, payload any) error {
	data := "{}"
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		data = string(buf)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, data, time.Now().Unix())
	return err
}

// Since returns up to limit events after the given offset, oldest first.
func (r *EventRepo) Since(ctx context.Context, offset int64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT event_offset, typ, key, data, created_at FROM event_log
		  WHERE event_offset > $1 ORDER BY event_offset LIMIT $2`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
