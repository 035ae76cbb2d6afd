package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	sqlschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	for pragma, want := range map[string]string{"foreign_keys": "1", "synchronous": "1"} {
		var got string
		require.NoError(t, s.DB().QueryRow("PRAGMA "+pragma).Scan(&got))
		assert.Equal(t, want, got, pragma)
	}
}

func TestOpen_FileDatabaseReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lyo.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.EventRepo().AppendSession(ctx, SessionEventData{SessionID: "a", Action: ActionStart}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.EventRepo().AppendSession(ctx, SessionEventData{SessionID: "a", Action: ActionEnd}))

	events, err := s.EventRepo().Sessions(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionEnd, events[0].Action)
	assert.Greater(t, events[0].Sequence, events[1].Sequence)
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "course-outline", Success: true}))
	require.NoError(t, repo.AppendGeneration(ctx, GenerationEventData{Attempt: 1, Topic: "Photography", Outcome: OutcomeSucceeded}))
	require.NoError(t, repo.AppendSession(ctx, SessionEventData{SessionID: "s1", Action: ActionStart}))

	llm, err := repo.LLMRequests(ctx, QueryOpts{})
	require.NoError(t, err)
	gens, err := repo.Generations(ctx, QueryOpts{})
	require.NoError(t, err)
	sessions, err := repo.Sessions(ctx, QueryOpts{})
	require.NoError(t, err)

	require.Len(t, llm, 1)
	require.Len(t, gens, 1)
	require.Len(t, sessions, 1)
	assert.Equal(t, int64(1), llm[0].Sequence)
	assert.Equal(t, int64(2), gens[0].Sequence)
	assert.Equal(t, int64(3), sessions[0].Sequence)
}

func TestLLMRequests_RoundTripAndLookup(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	in := LLMRequestEventData{
		Provider:     "anthropic",
		Model:        "claude-sonnet-4-20250514",
		Purpose:      "course-outline",
		InputTokens:  120,
		OutputTokens: 800,
		LatencyMs:    2300,
		Success:      true,
		RequestBody:  "[user]\nPhotography",
		ResponseBody: `{"title":"Photography"}`,
	}
	require.NoError(t, repo.AppendLLMRequest(ctx, in))

	got, err := repo.LLMRequest(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in, got.LLMRequestEventData)
	assert.WithinDuration(t, time.Now(), got.Timestamp, time.Minute)

	missing, err := repo.LLMRequest(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestQueryOpts(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, repo.AppendSession(ctx, SessionEventData{SessionID: "s", Action: ActionProgress, Progress: float64(i) / 4}))
	}

	limited, err := repo.Sessions(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, int64(5), limited[0].Sequence)
	assert.InDelta(t, 1.0, limited[0].Progress, 1e-9)

	after, err := repo.Sessions(ctx, QueryOpts{After: 3})
	require.NoError(t, err)
	assert.Len(t, after, 2)
}

func TestLLMUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Purpose: "course-outline", InputTokens: 100, OutputTokens: 500, LatencyMs: 1000, Success: true},
		{Purpose: "course-outline", InputTokens: 50, OutputTokens: 0, LatencyMs: 3000, Success: false, ErrorMessage: "429"},
		{Purpose: "unknown", InputTokens: 10, OutputTokens: 20, LatencyMs: 100, Success: true},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	usage, err := repo.LLMUsage(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	outline := usage[0]
	assert.Equal(t, "course-outline", outline.Purpose)
	assert.Equal(t, 2, outline.Requests)
	assert.Equal(t, 1, outline.Failures)
	assert.Equal(t, 150, outline.InputTokens)
	assert.Equal(t, 500, outline.OutputTokens)
	assert.InDelta(t, 2000, outline.AvgLatencyMs, 0.01)
}

func TestCourseRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.CourseRepo()
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	for i, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, repo.Save(ctx, CourseRecord{
			ID:          id,
			Title:       "Course " + id,
			Category:    "General",
			SceneID:     "DefaultClassroom",
			LessonCount: i + 1,
			Payload:     json.RawMessage(`{"courseId":"` + id + `"}`),
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := repo.Get(ctx, "c2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Course c2", got.Title)
	assert.Equal(t, 2, got.LessonCount)
	assert.JSONEq(t, `{"courseId":"c2"}`, string(got.Payload))

	none, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, none)

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c3", list[0].ID)

	require.NoError(t, repo.Prune(ctx, 2))
	list, err = repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"c3", "c2"}, []string{list[0].ID, list[1].ID})

	assert.Error(t, repo.Save(ctx, CourseRecord{ID: "c3", CreatedAt: base}), "duplicate id")
}

func TestCourseRepo_PruneSameMillisecond(t *testing.T) {
	s := openTestStore(t)
	repo := s.CourseRepo()
	ctx := context.Background()

	at := time.Now().Truncate(time.Millisecond)
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, repo.Save(ctx, CourseRecord{ID: id, Title: id, CreatedAt: at}))
	}

	require.NoError(t, repo.Prune(ctx, 2))
	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"d", "c"}, []string{list[0].ID, list[1].ID})

	require.NoError(t, repo.Prune(ctx, 0))
	list, err = repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTablesFromEntSchema(t *testing.T) {
	ts, err := tables()
	require.NoError(t, err)

	byName := map[string]*sqlschema.Table{}
	for _, tbl := range ts {
		byName[tbl.Name] = tbl
	}
	require.Len(t, byName, 5)

	courses := byName[tableCourses]
	require.Len(t, courses.PrimaryKey, 1)
	assert.Equal(t, "id", courses.PrimaryKey[0].Name)
	assert.Equal(t, field.TypeString, courses.PrimaryKey[0].Type)

	sessions := byName[tableSessions]
	assert.Equal(t, field.TypeInt, sessions.PrimaryKey[0].Type)
	assert.True(t, sessions.PrimaryKey[0].Increment)
	var names []string
	for _, c := range sessions.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"id", "sequence", "timestamp", "session_id", "course_id", "course_title",
		"action", "progress", "completed", "xp_earned", "detail"}, names)

	var idx []string
	for _, i := range sessions.Indexes {
		idx = append(idx, i.Name)
	}
	assert.ElementsMatch(t, []string{"classroomsessionevent_timestamp", "classroomsessionevent_session_id"}, idx)
}
