package store

import (
	"context"
	"database/sql"
	"fmt"
)

var sessionColumns = []string{
	"session_id", "course_id", "course_title", "action",
	"progress", "completed", "xp_earned", "detail",
}

func (r *eventRepo) AppendSession(ctx context.Context, data SessionEventData) error {
	err := r.insert(ctx, tableSessions, sessionColumns, []any{
		data.SessionID, data.CourseID, data.CourseTitle, data.Action,
		data.Progress, data.Completed, data.XPEarned, data.Detail,
	})
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) Sessions(ctx context.Context, opts QueryOpts) ([]SessionEvent, error) {
	var events []SessionEvent
	err := r.query(ctx, selectEvents(tableSessions, opts, sessionColumns...), func(rows *sql.Rows) error {
		var (
			e  SessionEvent
			ts int64
		)
		if err := rows.Scan(&e.Sequence, &ts, &e.SessionID, &e.CourseID, &e.CourseTitle, &e.Action,
			&e.Progress, &e.Completed, &e.XPEarned, &e.Detail); err != nil {
			return err
		}
		e.Timestamp = millis(ts)
		events = append(events, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	return events, nil
}
