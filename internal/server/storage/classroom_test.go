package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classroom(id, title, visibility string, age time.Duration) ClassroomRecord {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(-age)
	return ClassroomRecord{
		ClassroomID: id,
		Title:       title,
		Description: title + " repertoire",
		Tags:        []string{"white", "e4"},
		Visibility:  visibility,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func TestClassroomCRUD(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateClassroom(classroom("c1", "Open Games", VisibilityPrivate, 0)))

	got, err := s.GetClassroom("c1")
	require.NoError(t, err)
	assert.Equal(t, "Open Games", got.Title)
	assert.Equal(t, "Open Games repertoire", got.Description)
	assert.Equal(t, []string{"white", "e4"}, got.Tags)
	assert.Equal(t, VisibilityPrivate, got.Visibility)
	assert.Zero(t, got.LineCount)

	got.Visibility = VisibilityPublic
	got.Tags = nil
	got.UpdatedAt = got.UpdatedAt.Add(time.Minute)
	require.NoError(t, s.UpdateClassroom(*got))

	got, err = s.GetClassroom("c1")
	require.NoError(t, err)
	assert.Equal(t, VisibilityPublic, got.Visibility)
	assert.Empty(t, got.Tags)

	require.NoError(t, s.DeleteClassroom("c1"))
	_, err = s.GetClassroom("c1")
	assert.ErrorIs(t, err, ErrClassroomNotFound)
	assert.ErrorIs(t, s.DeleteClassroom("c1"), ErrClassroomNotFound)
	assert.ErrorIs(t, s.UpdateClassroom(classroom("c1", "Gone", VisibilityPublic, 0)), ErrClassroomNotFound)
}

func TestListClassrooms(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateClassroom(classroom("old", "Old Public", VisibilityPublic, time.Hour)))
	require.NoError(t, s.CreateClassroom(classroom("new", "New Public", VisibilityPublic, 0)))
	require.NoError(t, s.CreateClassroom(classroom("mine", "Mine", VisibilityPrivate, time.Minute)))

	all, err := s.ListClassrooms("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ClassroomID)

	public, err := s.ListClassrooms(VisibilityPublic)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, "new", public[0].ClassroomID)
	assert.Equal(t, "old", public[1].ClassroomID)
}

func TestClassroomLines(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateClassroom(classroom("c1", "Open Games", VisibilityPublic, 0)))
	require.NoError(t, s.CreateClassroom(classroom("c2", "Gambits", VisibilityPublic, 0)))

	require.NoError(t, s.CreateClassroomLine("c1", line("l1", "Italian", "e4 e5 Nf3 Nc6 Bc4")))
	require.NoError(t, s.CreateLine(line("l2", "King's Gambit", "e4 e5 f4")))
	require.NoError(t, s.AddClassroomLine("c1", "l2"))
	require.NoError(t, s.AddClassroomLine("c2", "l2"))
	require.NoError(t, s.AddClassroomLine("c2", "l2"))

	lines, err := s.ClassroomLines("c1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "l1", lines[0].LineID)
	assert.Equal(t, "l2", lines[1].LineID)

	c2, err := s.GetClassroom("c2")
	require.NoError(t, err)
	assert.Equal(t, 1, c2.LineCount)

	assert.ErrorIs(t, s.AddClassroomLine("c1", "missing"), ErrLineNotFound)
	assert.ErrorIs(t, s.AddClassroomLine("missing", "l1"), ErrClassroomNotFound)
	assert.ErrorIs(t, s.CreateClassroomLine("missing", line("l3", "Scotch", "e4 e5 Nf3 Nc6 d4")), ErrClassroomNotFound)
	_, err = s.GetLine("l3")
	assert.ErrorIs(t, err, ErrLineNotFound)

	require.NoError(t, s.RemoveClassroomLine("c2", "l2"))
	assert.ErrorIs(t, s.RemoveClassroomLine("c2", "l2"), ErrLineNotFound)
	_, err = s.GetLine("l2")
	require.NoError(t, err)

	// deleting a line drops it from its classrooms; deleting a classroom keeps its lines
	require.NoError(t, s.DeleteLine("l2"))
	c1, err := s.GetClassroom("c1")
	require.NoError(t, err)
	assert.Equal(t, 1, c1.LineCount)

	require.NoError(t, s.DeleteClassroom("c1"))
	_, err = s.GetLine("l1")
	require.NoError(t, err)
	_, err = s.ClassroomLines("c1")
	assert.ErrorIs(t, err, ErrClassroomNotFound)
}
