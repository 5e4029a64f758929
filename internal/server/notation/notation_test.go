package notation

import (
	"testing"

	"chesslines/internal/server/movetree"
	"chesslines/internal/server/rules"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCodec() *Codec {
	return NewCodec(rules.New(), zerolog.Nop())
}

func sans(t *testing.T, tree *movetree.Tree, ids []string) []string {
	t.Helper()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := tree.Node(id)
		require.NoError(t, err)
		out = append(out, n.SAN)
	}
	return out
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "e4 e5 Nf3", []string{"e4", "e5", "Nf3"}},
		{"numbers", "1. e4 e5 2. Nf3 Nc6", []string{"e4", "e5", "Nf3", "Nc6"}},
		{"black continuation", "12... Nf6 13. Bg5", []string{"Nf6", "Bg5"}},
		{"glued numbers", "1.e4 e5 2.Nf3", []string{"e4", "e5", "Nf3"}},
		{"results", "1. e4 e5 1-0 0-1 1/2-1/2 *", []string{"e4", "e5"}},
		{"castling kept", "O-O 0-0-0", []string{"O-O", "0-0-0"}},
		{"comments and nags", "1. e4 {main} $1 e5 $2", []string{"e4", "e5"}},
		{"variations", "1. e4 e5 (1... c5 2. Nf3 (2. Nc3)) 2. Nf3", []string{"e4", "e5", "Nf3"}},
		{"whitespace", "  e4\t\n e5  ", []string{"e4", "e5"}},
		{"number inside token kept", "1. e4 Nf3.5.", []string{"e4", "Nf3.5."}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokens(tt.in))
		})
	}
}

func TestDecode(t *testing.T) {
	res := newCodec().Decode("1. e4 e5 2. Nf3 Nc6", rules.StartingFEN)

	assert.Empty(t, res.Skipped)
	assert.Equal(t, 5, res.Tree.Len())
	assert.Equal(t, movetree.RootID, res.RootID)

	line, err := res.Tree.MainLineDescent(res.RootID)
	require.NoError(t, err)
	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6"}, sans(t, res.Tree, line))
	assert.Equal(t, line[len(line)-1], res.LeafID)
	assert.Equal(t, []string{"m1", "m2", "m3", "m4"}, line)

	require.NoError(t, res.Tree.Validate())
}

func TestDecodeSkipsIllegalToken(t *testing.T) {
	res := newCodec().Decode("e4 e5 Qh5", rules.StartingFEN)

	// Qh5 is legal here, so nothing is skipped
	assert.Empty(t, res.Skipped)
	assert.Equal(t, 4, res.Tree.Len())

	res = newCodec().Decode("e4 Qh5 e5", rules.StartingFEN)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 1, res.Skipped[0].Index)
	assert.Equal(t, "Qh5", res.Skipped[0].Token)
	assert.ErrorIs(t, res.Skipped[0].Err, movetree.ErrIllegalMove)
	assert.Equal(t, 3, res.Tree.Len())

	line, err := res.Tree.MainLineDescent(res.RootID)
	require.NoError(t, err)
	assert.Equal(t, []string{"e4", "e5"}, sans(t, res.Tree, line))
}

func TestDecodeTrailingIllegalToken(t *testing.T) {
	// white cannot play Qh5 before the e-pawn moves
	res := newCodec().Decode("Nf3 Nf6 Qh5", rules.StartingFEN)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkippedToken{Index: 2, Token: "Qh5", Err: res.Skipped[0].Err}, res.Skipped[0])
	assert.Equal(t, 3, res.Tree.Len())
}

func TestDecodeKeepsStrayNumberText(t *testing.T) {
	res := newCodec().Decode("1. e4 e5 Nf3.5. Nc6", rules.StartingFEN)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "Nf3.5.", res.Skipped[0].Token)
	assert.Equal(t, "Nc6", res.Skipped[1].Token)

	line, err := res.Tree.MainLineDescent(res.RootID)
	require.NoError(t, err)
	assert.Equal(t, []string{"e4", "e5"}, sans(t, res.Tree, line))
}

func TestDecodeEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "*", "1-0"} {
		t.Run(in, func(t *testing.T) {
			res := newCodec().Decode(in, rules.StartingFEN)
			assert.Equal(t, 1, res.Tree.Len())
			assert.Equal(t, res.RootID, res.LeafID)
			assert.Empty(t, res.Skipped)

			out, err := Encode(res.Tree, res.RootID)
			require.NoError(t, err)
			assert.Equal(t, "", out)
		})
	}
}

func TestDecodeAllGarbage(t *testing.T) {
	res := newCodec().Decode("foo bar baz", rules.StartingFEN)
	assert.Len(t, res.Skipped, 3)
	assert.Equal(t, 1, res.Tree.Len())
}

func TestDecodeFromCustomPosition(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	res := newCodec().Decode("3. Bb5 a6 4. Ba4", fen)

	assert.Empty(t, res.Skipped)
	out, err := Encode(res.Tree, res.RootID)
	require.NoError(t, err)
	assert.Equal(t, "Bb5 a6 Ba4", out)
}

func TestRoundTrip(t *testing.T) {
	tests := []string{
		"e4 e5 Nf3 Nc6 Bb5 a6",
		"d4 Nf6 c4 e6 Nc3 Bb4",
		"e4 c5 Nf3 d6 d4 cxd4 Nxd4 Nf6 Nc3 a6",
		"e4 e5 Nf3 Nc6 Bc4 Bc5 O-O Nf6",
		"f3 e5 g4 Qh4#",
	}

	c := newCodec()
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			res := c.Decode(in, rules.StartingFEN)
			require.Empty(t, res.Skipped)

			out, err := Encode(res.Tree, res.RootID)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestEncodeFollowsFirstChild(t *testing.T) {
	res := newCodec().Decode("e4 e5 Nf3", rules.StartingFEN)
	tree := res.Tree

	e4 := tree.Root().ChildrenIDs[0]
	_, err := tree.AppendSAN(e4, "c5")
	require.NoError(t, err)

	out, err := Encode(tree, tree.RootID())
	require.NoError(t, err)
	assert.Equal(t, "e4 e5 Nf3", out)

	fromE4, err := Encode(tree, e4)
	require.NoError(t, err)
	assert.Equal(t, "e5 Nf3", fromE4)

	_, err = Encode(tree, "missing")
	assert.ErrorIs(t, err, movetree.ErrNodeNotFound)
}

func TestEncodePath(t *testing.T) {
	res := newCodec().Decode("e4 e5 Nf3 Nc6", rules.StartingFEN)
	tree := res.Tree

	e4 := tree.Root().ChildrenIDs[0]
	c5, err := tree.AppendSAN(e4, "c5")
	require.NoError(t, err)

	out, err := EncodePath(tree, c5)
	require.NoError(t, err)
	assert.Equal(t, "e4 c5", out)

	out, err = EncodePath(tree, tree.RootID())
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestRender(t *testing.T) {
	res := newCodec().Decode("e4 e5 Nf3", rules.StartingFEN)
	tree := res.Tree

	e4 := tree.Root().ChildrenIDs[0]
	c5, err := tree.AppendSAN(e4, "c5")
	require.NoError(t, err)
	_, err = tree.AppendSAN(c5, "Nf3")
	require.NoError(t, err)

	out, err := Render(tree, tree.RootID())
	require.NoError(t, err)
	assert.Equal(t, "1. e4 e5 (1... c5 2. Nf3) 2. Nf3", out)

	// rendered text decodes back to the main line
	again := newCodec().Decode(out, rules.StartingFEN)
	require.Empty(t, again.Skipped)
	mainLine, err := Encode(again.Tree, again.RootID)
	require.NoError(t, err)
	assert.Equal(t, "e4 e5 Nf3", mainLine)
}

func TestRenderBlackAfterVariation(t *testing.T) {
	res := newCodec().Decode("e4 e5 Nf3 Nc6", rules.StartingFEN)
	tree := res.Tree

	e4 := tree.Root().ChildrenIDs[0]
	replies, err := tree.Children(e4)
	require.NoError(t, err)
	e5 := replies[0]

	_, err = tree.AppendSAN(e5, "Nc3")
	require.NoError(t, err)

	out, err := Render(tree, tree.RootID())
	require.NoError(t, err)
	assert.Equal(t, "1. e4 e5 2. Nf3 (2. Nc3) 2... Nc6", out)
}

func TestRenderAnnotations(t *testing.T) {
	res := newCodec().Decode("e4 e5", rules.StartingFEN)
	tree := res.Tree
	e4 := tree.Root().ChildrenIDs[0]

	require.NoError(t, tree.Annotate(e4, movetree.Annotation{Comment: "best by test", NAGs: []int{1}}))

	out, err := Render(tree, tree.RootID())
	require.NoError(t, err)
	assert.Equal(t, "1. e4 $1 {best by test} 1... e5", out)

	// annotations never reach the plain encoding
	plain, err := Encode(tree, tree.RootID())
	require.NoError(t, err)
	assert.Equal(t, "e4 e5", plain)
}

func TestRenderEmpty(t *testing.T) {
	res := newCodec().Decode("", rules.StartingFEN)
	out, err := Render(res.Tree, res.RootID)
	require.NoError(t, err)
	assert.Equal(t, "", out)

	_, err = Render(res.Tree, "missing")
	assert.ErrorIs(t, err, movetree.ErrNodeNotFound)
}

func TestFormatPath(t *testing.T) {
	res := newCodec().Decode("e4 e5 Nf3", rules.StartingFEN)

	out, err := FormatPath(res.Tree, res.LeafID)
	require.NoError(t, err)
	assert.Equal(t, "1. e4 e5 2. Nf3", out)

	out, err = FormatPath(res.Tree, res.RootID)
	require.NoError(t, err)
	assert.Equal(t, "", out)

	black := newCodec().Decode("e5 Nf3", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	require.Empty(t, black.Skipped)
	out, err = FormatPath(black.Tree, black.LeafID)
	require.NoError(t, err)
	assert.Equal(t, "1... e5 2. Nf3", out)
}
