package practice

import (
	"testing"

	"chesslines/internal/server/core"
	"chesslines/internal/server/movetree"
	"chesslines/internal/server/notation"
	"chesslines/internal/server/rules"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, movetext string) *movetree.Tree {
	t.Helper()
	res := notation.NewCodec(rules.New(), zerolog.Nop()).Decode(movetext, rules.StartingFEN)
	require.Empty(t, res.Skipped)
	return res.Tree
}

func move(t *testing.T, uci string) movetree.Candidate {
	t.Helper()
	c, err := movetree.ParseCandidate(uci)
	require.NoError(t, err)
	return c
}

func TestPracticeAsWhite(t *testing.T) {
	tree := decode(t, "e4 e5 Nf3 Nc6")
	s, err := New(tree, rules.New(), core.ColorWhite)
	require.NoError(t, err)

	assert.Equal(t, core.StateAwaitingMove, s.State())
	assert.Empty(t, s.History())
	assert.Equal(t, 0, s.Progress())

	fb, err := s.Play(move(t, "e2e4"))
	require.NoError(t, err)
	assert.True(t, fb.Correct)
	assert.Equal(t, "e4", fb.Played)
	assert.Equal(t, "e5", fb.Reply)
	assert.Equal(t, "1. e4 e5", s.Moves())
	assert.Equal(t, 50, s.Progress())

	fb, err = s.Play(move(t, "g1f3"))
	require.NoError(t, err)
	assert.True(t, fb.Correct)
	assert.Equal(t, "Nc6", fb.Reply)

	assert.True(t, s.Completed())
	assert.Equal(t, 100, s.Progress())
	assert.Equal(t, 0, s.Mistakes())
	assert.Len(t, s.History(), 4)

	_, err = s.Play(move(t, "f1b5"))
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestPracticeAsBlack(t *testing.T) {
	tree := decode(t, "d4 d5 c4")
	s, err := New(tree, rules.New(), core.ColorBlack)
	require.NoError(t, err)

	// opponent opened already
	assert.Equal(t, "1. d4", s.Moves())
	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, core.ColorWhite, history[0].Color)

	fb, err := s.Play(move(t, "d7d5"))
	require.NoError(t, err)
	assert.True(t, fb.Correct)
	assert.Equal(t, "c4", fb.Reply)
	assert.True(t, s.Completed())
	assert.Equal(t, core.ColorBlack, s.History()[1].Color)
}

func TestPracticeWrongMove(t *testing.T) {
	tree := decode(t, "e4 e5")
	s, err := New(tree, rules.New(), core.ColorWhite)
	require.NoError(t, err)
	before := s.Position()

	fb, err := s.Play(move(t, "d2d4"))
	require.NoError(t, err)
	assert.False(t, fb.Correct)
	assert.Equal(t, "d4", fb.Played)
	assert.Equal(t, "e4", fb.Expected)
	assert.Empty(t, fb.Reply)
	assert.Equal(t, 1, s.Mistakes())
	assert.Equal(t, before.ID, s.Position().ID)
}

func TestPracticeIllegalMove(t *testing.T) {
	tree := decode(t, "e4 e5")
	s, err := New(tree, rules.New(), core.ColorWhite)
	require.NoError(t, err)

	_, err = s.Play(move(t, "e2e5"))
	assert.ErrorIs(t, err, movetree.ErrIllegalMove)
	assert.Equal(t, 0, s.Mistakes())
}

func TestPracticeFollowsMainLineOnly(t *testing.T) {
	tree := decode(t, "e4 e5 Nf3")
	e4 := tree.Root().ChildrenIDs[0]
	_, err := tree.AppendSAN(e4, "c5")
	require.NoError(t, err)

	s, err := New(tree, rules.New(), core.ColorWhite)
	require.NoError(t, err)

	fb, err := s.Play(move(t, "e2e4"))
	require.NoError(t, err)
	assert.Equal(t, "e5", fb.Reply)
}

func TestPracticeHintAndSkip(t *testing.T) {
	tree := decode(t, "e4 e5 Nf3")
	s, err := New(tree, rules.New(), core.ColorWhite)
	require.NoError(t, err)

	hint, err := s.Hint()
	require.NoError(t, err)
	assert.Equal(t, "e4", hint)
	assert.Equal(t, 1, s.Hints())
	assert.Empty(t, s.History())

	fb, err := s.Skip()
	require.NoError(t, err)
	assert.Equal(t, "e4", fb.Played)
	assert.Equal(t, "e5", fb.Reply)
	assert.Equal(t, 1, s.Skips())
	assert.True(t, s.History()[0].Skipped)

	_, err = s.Skip()
	require.NoError(t, err)
	assert.True(t, s.Completed())

	_, err = s.Hint()
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestPracticeEmptyLine(t *testing.T) {
	tree := movetree.New(rules.StartingFEN, rules.New())
	_, err := New(tree, rules.New(), core.ColorWhite)
	assert.ErrorIs(t, err, ErrEmptyLine)
}

func TestPracticeOpponentEndsLine(t *testing.T) {
	// a single white move drilled as black is over before the user moves
	tree := decode(t, "e4")
	s, err := New(tree, rules.New(), core.ColorBlack)
	require.NoError(t, err)
	assert.True(t, s.Completed())

	_, err = s.Play(move(t, "e7e5"))
	assert.ErrorIs(t, err, ErrCompleted)
}
