package service

import (
	"testing"

	"chesslines/internal/server/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClassroom(t *testing.T) {
	svc, _ := newTestService(t)

	room, err := svc.CreateClassroom("  Open Games ", "e4 e5", []string{"e4, White", "white", " "}, "")
	require.NoError(t, err)
	assert.Equal(t, "Open Games", room.Title)
	assert.Equal(t, []string{"e4", "White"}, room.Tags)
	assert.Equal(t, storage.VisibilityPrivate, room.Visibility)
	assert.NotEmpty(t, room.ID)

	_, err = svc.CreateClassroom("Gambits", "", nil, "friends")
	assert.ErrorIs(t, err, ErrInvalidVisibility)

	_, err = svc.GetClassroom("missing")
	assert.ErrorIs(t, err, ErrClassroomNotFound)
}

func TestUpdateAndListClassrooms(t *testing.T) {
	svc, _ := newTestService(t)

	room, err := svc.CreateClassroom("Open Games", "", []string{"e4"}, "private")
	require.NoError(t, err)
	_, err = svc.CreateClassroom("Queen's Gambit", "", nil, "PUBLIC")
	require.NoError(t, err)

	public, err := svc.ListClassrooms("public")
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Queen's Gambit", public[0].Title)

	all, err := svc.ListClassrooms("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListClassrooms("hidden")
	assert.ErrorIs(t, err, ErrInvalidVisibility)

	visibility := "public"
	updated, err := svc.UpdateClassroom(room.ID, ClassroomUpdate{Visibility: &visibility, Tags: []string{}})
	require.NoError(t, err)
	assert.Equal(t, storage.VisibilityPublic, updated.Visibility)
	assert.Empty(t, updated.Tags)
	assert.Equal(t, "Open Games", updated.Title)

	public, err = svc.ListClassrooms("public")
	require.NoError(t, err)
	assert.Len(t, public, 2)

	_, err = svc.UpdateClassroom("missing", ClassroomUpdate{})
	assert.ErrorIs(t, err, ErrClassroomNotFound)
}

func TestClassroomLines(t *testing.T) {
	svc, _ := newTestService(t)

	room, err := svc.CreateClassroom("Open Games", "", nil, "")
	require.NoError(t, err)
	italian, err := svc.CreateLine("Italian", "e4 e5 Nf3 Nc6 Bc4", "")
	require.NoError(t, err)

	scotch, err := svc.CreateClassroomLine(room.ID, "Scotch", "1. e4 e5 2. Nf3 Nc6 3. d4", "")
	require.NoError(t, err)
	assert.Equal(t, "e4 e5 Nf3 Nc6 d4", scotch.PGN)

	got, err := svc.AddLineToClassroom(room.ID, italian.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LineCount)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, scotch.ID, got.Lines[0].ID)
	assert.Equal(t, italian.ID, got.Lines[1].ID)
	assert.Equal(t, 5, got.Lines[1].Moves)

	_, err = svc.CreateClassroomLine(room.ID, "Scotch again", "e4 e5 Nf3 Nc6 d4", "")
	assert.ErrorIs(t, err, ErrDuplicatePGN)
	_, err = svc.CreateClassroomLine("missing", "Ruy Lopez", "e4 e5 Nf3 Nc6 Bb5", "")
	assert.ErrorIs(t, err, ErrClassroomNotFound)
	_, err = svc.AddLineToClassroom(room.ID, "missing")
	assert.ErrorIs(t, err, ErrLineNotFound)

	got, err = svc.RemoveLineFromClassroom(room.ID, scotch.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LineCount)
	_, err = svc.GetLine(scotch.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLine(italian.ID))
	got, err = svc.GetClassroom(room.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LineCount)
	assert.Empty(t, got.Lines)

	require.NoError(t, svc.DeleteClassroom(room.ID))
	assert.ErrorIs(t, svc.DeleteClassroom(room.ID), ErrClassroomNotFound)
	n, err := svc.LineCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
