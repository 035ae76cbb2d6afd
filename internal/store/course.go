package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type courseRepo struct {
	db *sql.DB
}

var courseColumns = []string{"id", "title", "category", "scene_id", "lesson_count", "payload", "created_at"}

func (r *courseRepo) Save(ctx context.Context, rec CourseRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableCourses).
		Columns(courseColumns...).
		Values(rec.ID, rec.Title, rec.Category, rec.SceneID, rec.LessonCount, string(rec.Payload), created.UnixMilli()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save course %s: %w", rec.ID, err)
	}
	return nil
}

func (r *courseRepo) Get(ctx context.Context, id string) (*CourseRecord, error) {
	query, args := r.selectCourses().Where(entsql.EQ("id", id)).Limit(1).Query()
	rec, err := scanCourse(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query course %s: %w", id, err)
	}
	return &rec, nil
}

func (r *courseRepo) List(ctx context.Context, limit int) ([]CourseRecord, error) {
	sel := r.selectCourses()
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var recs []CourseRecord
	for rows.Next() {
		rec, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *courseRepo) Prune(ctx context.Context, keep int) error {
	recs, err := r.List(ctx, 0)
	if err != nil {
		return err
	}
	if len(recs) <= keep {
		return nil
	}
	// List is newest first with id as the tie break; drop everything past keep.
	stale := recs[max(keep, 0):]
	ids := make([]any, len(stale))
	for i, rec := range stale {
		ids[i] = rec.ID
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableCourses).
		Where(entsql.In("id", ids...)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune courses: %w", err)
	}
	return nil
}

func (r *courseRepo) selectCourses() *entsql.Selector {
	return entsql.Dialect(dialect.SQLite).
		Select(courseColumns...).
		From(entsql.Table(tableCourses)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
}

func scanCourse(row scanner) (CourseRecord, error) {
	var (
		rec     CourseRecord
		payload string
		created int64
	)
	err := row.Scan(&rec.ID, &rec.Title, &rec.Category, &rec.SceneID, &rec.LessonCount, &payload, &created)
	rec.Payload = []byte(payload)
	rec.CreatedAt = millis(created)
	return rec, err
}
