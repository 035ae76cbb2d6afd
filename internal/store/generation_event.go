package store

import (
	"context"
	"database/sql"
	"fmt"
)

var generationColumns = []string{
	"attempt", "topic", "preset", "outcome", "module_count",
	"lesson_count", "duration_ms", "error_message",
}

func (r *eventRepo) AppendGeneration(ctx context.Context, data GenerationEventData) error {
	err := r.insert(ctx, tableGenerations, generationColumns, []any{
		data.Attempt, data.Topic, data.Preset, data.Outcome, data.ModuleCount,
		data.LessonCount, data.DurationMs, data.ErrorMessage,
	})
	if err != nil {
		return fmt.Errorf("save generation event: %w", err)
	}
	return nil
}

func (r *eventRepo) Generations(ctx context.Context, opts QueryOpts) ([]GenerationEvent, error) {
	var events []GenerationEvent
	err := r.query(ctx, selectEvents(tableGenerations, opts, generationColumns...), func(rows *sql.Rows) error {
		var (
			e  GenerationEvent
			ts int64
		)
		if err := rows.Scan(&e.Sequence, &ts, &e.Attempt, &e.Topic, &e.Preset, &e.Outcome,
			&e.ModuleCount, &e.LessonCount, &e.DurationMs, &e.ErrorMessage); err != nil {
			return err
		}
		e.Timestamp = millis(ts)
		events = append(events, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query generation events: %w", err)
	}
	return events, nil
}
