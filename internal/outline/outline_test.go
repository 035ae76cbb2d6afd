package outline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyoapp/lyo/internal/course"
	"github.com/lyoapp/lyo/internal/preferences"
)

func courseWith(lessonsPerModule ...int) *course.Course {
	c := &course.Course{Title: "Photography", Description: "Take better photos."}
	for mi, n := range lessonsPerModule {
		m := course.Module{Title: fmt.Sprintf("M%d", mi)}
		for li := range n {
			m.Lessons = append(m.Lessons, course.Lesson{
				Title:                    fmt.Sprintf("M%d-L%d", mi, li),
				EstimatedDurationMinutes: 5 * (li + 1),
			})
		}
		c.Modules = append(c.Modules, m)
	}
	return c
}

func titles(lessons []Lesson) []string {
	out := make([]string, len(lessons))
	for i, l := range lessons {
		out[i] = l.Title
	}
	return out
}

func TestFlatten_ModuleThenLessonOrder(t *testing.T) {
	got := Flatten(courseWith(2, 0, 1), DefaultPolicy())
	assert.Equal(t, []string{"M0-L0", "M0-L1", "M2-L0"}, titles(got))
}

func TestFlatten_PreservesLessonCount(t *testing.T) {
	for _, shape := range [][]int{{1}, {3, 3}, {0, 0, 4}, {2, 1, 2}} {
		c := courseWith(shape...)
		assert.Len(t, Flatten(c, DefaultPolicy()), c.LessonCount(), "shape %v", shape)
	}
}

func TestFlatten_ZeroLessonsYieldsOneFallback(t *testing.T) {
	for name, c := range map[string]*course.Course{
		"no modules":    courseWith(),
		"empty modules": courseWith(0, 0, 0),
		"nil course":    nil,
	} {
		t.Run(name, func(t *testing.T) {
			got := Flatten(c, DefaultPolicy())
			require.Len(t, got, 1)
			assert.NotEmpty(t, got[0].Title)
			assert.NotEmpty(t, got[0].Description)
		})
	}

	got := Flatten(courseWith(0), DefaultPolicy())
	assert.Equal(t, "Photography", got[0].Title)
	assert.Equal(t, "Take better photos.", got[0].Description)
}

func TestFlatten_DurationCap(t *testing.T) {
	c := courseWith(3) // 5, 10, 15 minutes

	capped := Flatten(c, DefaultPolicy())
	assert.Equal(t, []int{5, 10, 10}, []int{
		capped[0].EstimatedDurationMinutes,
		capped[1].EstimatedDurationMinutes,
		capped[2].EstimatedDurationMinutes,
	})
	assert.Equal(t, 25, TotalMinutes(capped))

	uncapped := Flatten(c, Policy{MaxLessonMinutes: 0})
	assert.Equal(t, 15, uncapped[2].EstimatedDurationMinutes)
}

func TestFlatten_ContentTypesRoundRobin(t *testing.T) {
	p := DefaultPolicy()
	got := Flatten(courseWith(3), p)
	for _, l := range got {
		assert.Equal(t, preferences.ContentText, l.ContentType)
	}

	p.ContentTypes = []preferences.ContentType{preferences.ContentVideo, preferences.ContentInteractive}
	got = Flatten(courseWith(3), p)
	assert.Equal(t, preferences.ContentVideo, got[0].ContentType)
	assert.Equal(t, preferences.ContentInteractive, got[1].ContentType)
	assert.Equal(t, preferences.ContentVideo, got[2].ContentType)
}

func TestFlatten_TitlePrefix(t *testing.T) {
	got := Flatten(courseWith(1), Policy{TitlePrefix: "▸ "})
	assert.Equal(t, "▸ M0-L0", got[0].Title)
}
