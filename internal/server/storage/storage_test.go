package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lines.db")
	s, err := NewStore(path, false, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.InitDB())
	t.Cleanup(func() { s.Close() })
	return s
}

func line(id, title, pgn string) LineRecord {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return LineRecord{LineID: id, Title: title, PGN: pgn, FEN: startFEN, CreatedAt: ts, UpdatedAt: ts}
}

func TestLineCRUD(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateLine(line("l1", "Ruy Lopez", "e4 e5 Nf3 Nc6 Bb5")))

	got, err := s.GetLine("l1")
	require.NoError(t, err)
	assert.Equal(t, "Ruy Lopez", got.Title)
	assert.Equal(t, "e4 e5 Nf3 Nc6 Bb5", got.PGN)
	assert.Equal(t, startFEN, got.FEN)
	assert.True(t, got.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

	updated := *got
	updated.PGN = "e4 e5 Nf3 Nc6 Bb5 a6"
	updated.UpdatedAt = got.UpdatedAt.Add(time.Hour)
	require.NoError(t, s.UpdateLine(updated))

	got, err = s.GetLine("l1")
	require.NoError(t, err)
	assert.Equal(t, "e4 e5 Nf3 Nc6 Bb5 a6", got.PGN)

	require.NoError(t, s.DeleteLine("l1"))
	_, err = s.GetLine("l1")
	assert.ErrorIs(t, err, ErrLineNotFound)
	assert.ErrorIs(t, s.DeleteLine("l1"), ErrLineNotFound)
}

func TestDuplicateTitle(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateLine(line("l1", "Italian", "e4 e5 Nf3 Nc6 Bc4")))
	assert.ErrorIs(t, s.CreateLine(line("l2", "italian", "")), ErrDuplicateLine)

	require.NoError(t, s.CreateLine(line("l2", "Scotch", "e4 e5 Nf3 Nc6 d4")))
	clash := line("l2", "ITALIAN", "")
	assert.ErrorIs(t, s.UpdateLine(clash), ErrDuplicateLine)

	// renaming a line to its own title is fine
	same := line("l1", "Italian", "e4 e5")
	assert.NoError(t, s.UpdateLine(same))
}

func TestDuplicateMoves(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateLine(line("l1", "Italian", "e4 e5 Nf3 Nc6 Bc4")))
	assert.ErrorIs(t, s.CreateLine(line("l2", "Giuoco", "e4 e5 Nf3 Nc6 Bc4")), ErrDuplicatePGN)

	// the same moves from another position are a different line
	other := line("l2", "Giuoco", "e4 e5 Nf3 Nc6 Bc4")
	other.FEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"
	require.NoError(t, s.CreateLine(other))

	// empty lines never clash
	require.NoError(t, s.CreateLine(line("l3", "Draft A", "")))
	require.NoError(t, s.CreateLine(line("l4", "Draft B", "")))

	clash := line("l4", "Draft B", "e4 e5 Nf3 Nc6 Bc4")
	assert.ErrorIs(t, s.UpdateLine(clash), ErrDuplicatePGN)
	assert.NoError(t, s.UpdateLine(line("l1", "Italian", "e4 e5 Nf3 Nc6 Bc4")))
}

func TestListLinesMatchesWildcardsLiterally(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateLine(line("a", "London_System", "d4 d5 Bf4")))
	require.NoError(t, s.CreateLine(line("b", "100% Gambit", "e4 e5 f4")))
	require.NoError(t, s.CreateLine(line("c", "Caro-Kann", "e4 c6")))

	tests := []struct {
		filter string
		want   []string
	}{
		{"_", []string{"a"}},
		{"%", []string{"b"}},
		{`\`, nil},
		{"n_s", []string{"a"}},
		{"caro", []string{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got, err := s.ListLines(tt.filter)
			require.NoError(t, err)
			var ids []string
			for _, r := range got {
				ids = append(ids, r.LineID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestUpdateMissingLine(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.UpdateLine(line("nope", "Ghost", "")), ErrLineNotFound)
}

func TestListLines(t *testing.T) {
	s := newTestStore(t)

	a := line("a", "Sicilian Najdorf", "e4 c5 Nf3 d6 d4 cxd4 Nxd4 Nf6 Nc3 a6")
	b := line("b", "Sicilian Dragon", "e4 c5 Nf3 d6 d4 cxd4 Nxd4 Nf6 Nc3 g6")
	c := line("c", "Queen's Gambit", "d4 d5 c4")
	b.UpdatedAt = b.UpdatedAt.Add(time.Minute)
	for _, r := range []LineRecord{a, b, c} {
		require.NoError(t, s.CreateLine(r))
	}

	all, err := s.ListLines("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[0].LineID)

	sicilians, err := s.ListLines("sicilian")
	require.NoError(t, err)
	assert.Len(t, sicilians, 2)

	none, err := s.ListLines("French")
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := s.CountLines()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPracticeResults(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateLine(line("l1", "London", "d4 d5 Bf4")))

	s.RecordPracticeResult(PracticeRecord{
		LineID:      "l1",
		SessionID:   "s1",
		PlayerColor: "w",
		MovesPlayed: 3,
		Mistakes:    1,
		Completed:   true,
	})

	require.Eventually(t, func() bool {
		results, err := s.QueryPracticeResults("l1")
		return err == nil && len(results) == 1
	}, 2*time.Second, 10*time.Millisecond)

	results, err := s.QueryPracticeResults("*")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s1", results[0].SessionID)
	assert.Equal(t, 1, results[0].Mistakes)
	assert.True(t, results[0].Completed)
	assert.False(t, results[0].FinishedAt.IsZero())

	// results go with their line
	require.NoError(t, s.DeleteLine("l1"))
	results, err = s.QueryPracticeResults("l1")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.True(t, s.IsHealthy())
}

func TestFailedAsyncWriteDegrades(t *testing.T) {
	s := newTestStore(t)

	// unknown line violates the foreign key
	s.RecordPracticeResult(PracticeRecord{LineID: "missing", SessionID: "s1", PlayerColor: "w"})

	require.Eventually(t, func() bool { return !s.IsHealthy() }, 2*time.Second, 10*time.Millisecond)
}

func TestDeleteDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.db")
	s, err := NewStore(path, true, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.InitDB())

	require.NoError(t, s.DeleteDB())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
