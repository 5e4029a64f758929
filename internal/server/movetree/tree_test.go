package movetree_test

import (
	"strings"
	"testing"

	"chesslines/internal/server/movetree"
	"chesslines/internal/server/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T) *movetree.Tree {
	t.Helper()
	return movetree.New(rules.StartingFEN, rules.New(), movetree.WithIDGenerator(movetree.SequentialIDs("m")))
}

func mustParse(t *testing.T, uci string) movetree.Candidate {
	t.Helper()
	c, err := movetree.ParseCandidate(uci)
	require.NoError(t, err)
	return c
}

func play(t *testing.T, tree *movetree.Tree, parent string, ucis ...string) string {
	t.Helper()
	id := parent
	for _, u := range ucis {
		var err error
		id, err = tree.AppendMove(id, mustParse(t, u))
		require.NoError(t, err)
	}
	return id
}

func TestNew(t *testing.T) {
	tree := newTree(t)

	root := tree.Root()
	assert.Equal(t, movetree.RootID, root.ID)
	assert.Equal(t, rules.StartingFEN, root.FEN)
	assert.Empty(t, root.SAN)
	assert.Empty(t, root.UCI)
	assert.True(t, root.IsRoot())
	assert.Empty(t, root.ChildrenIDs)
	assert.Equal(t, 1, tree.Len())
	require.NoError(t, tree.Validate())
}

func TestAppendMove(t *testing.T) {
	tree := newTree(t)

	id, err := tree.AppendMove(tree.RootID(), mustParse(t, "e2e4"))
	require.NoError(t, err)
	assert.Equal(t, "m1", id)

	n, err := tree.Node(id)
	require.NoError(t, err)
	assert.Equal(t, "e4", n.SAN)
	assert.Equal(t, "e2e4", n.UCI)
	assert.Equal(t, movetree.RootID, n.ParentID)
	assert.Equal(t, "b", rules.SideToMove(n.FEN))

	root := tree.Root()
	assert.Equal(t, []string{id}, root.ChildrenIDs)
	require.NoError(t, tree.Validate())
}

func TestAppendMoveIdempotent(t *testing.T) {
	tree := newTree(t)

	first, err := tree.AppendMove(tree.RootID(), mustParse(t, "e2e4"))
	require.NoError(t, err)
	sizeBefore := tree.Len()

	second, err := tree.AppendMove(tree.RootID(), mustParse(t, "e2e4"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, sizeBefore, tree.Len())

	// same move in SAN form hits the same child
	third, err := tree.AppendSAN(tree.RootID(), "e4")
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Len(t, tree.Root().ChildrenIDs, 1)
}

func TestAppendMoveIllegal(t *testing.T) {
	tree := newTree(t)

	_, err := tree.AppendMove(tree.RootID(), mustParse(t, "e2e5"))
	require.Error(t, err)
	assert.ErrorIs(t, err, movetree.ErrIllegalMove)

	var ime *movetree.IllegalMoveError
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, rules.StartingFEN, ime.FEN)

	assert.Equal(t, 1, tree.Len())
	assert.Empty(t, tree.Root().ChildrenIDs)
}

func TestAppendMoveUnknownParent(t *testing.T) {
	tree := newTree(t)

	_, err := tree.AppendMove("nope", mustParse(t, "e2e4"))
	assert.ErrorIs(t, err, movetree.ErrNodeNotFound)

	var nf *movetree.NodeNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nope", nf.ID)
	assert.Equal(t, 1, tree.Len())
}

func TestVariationOrder(t *testing.T) {
	tree := newTree(t)
	e4 := play(t, tree, tree.RootID(), "e2e4")

	e5 := play(t, tree, e4, "e7e5")
	d5 := play(t, tree, e4, "d7d5")

	children, err := tree.Children(e4)
	require.NoError(t, err)
	assert.Equal(t, []string{e5, d5}, children)

	line, err := tree.MainLineDescent(tree.RootID())
	require.NoError(t, err)
	assert.Equal(t, []string{e4, e5}, line)

	siblings, err := tree.SiblingVariations(e5)
	require.NoError(t, err)
	assert.Equal(t, []string{d5}, siblings)

	siblings, err = tree.SiblingVariations(d5)
	require.NoError(t, err)
	assert.Equal(t, []string{e5}, siblings)

	require.NoError(t, tree.Validate())
}

func TestSiblingVariationsRoot(t *testing.T) {
	tree := newTree(t)
	play(t, tree, tree.RootID(), "e2e4")

	siblings, err := tree.SiblingVariations(tree.RootID())
	require.NoError(t, err)
	assert.Empty(t, siblings)

	_, err = tree.SiblingVariations("missing")
	assert.ErrorIs(t, err, movetree.ErrNodeNotFound)
}

func TestSiblingVariationsSelfExcluded(t *testing.T) {
	tree := newTree(t)
	a := play(t, tree, tree.RootID(), "e2e4")
	b := play(t, tree, tree.RootID(), "d2d4")
	c := play(t, tree, tree.RootID(), "c2c4")

	siblings, err := tree.SiblingVariations(b)
	require.NoError(t, err)
	assert.Equal(t, []string{a, c}, siblings)
	assert.NotContains(t, siblings, b)
}

func TestPathToRoot(t *testing.T) {
	tree := newTree(t)
	leaf := play(t, tree, tree.RootID(), "e2e4", "e7e5", "g1f3", "b8c6")

	path, err := tree.PathToRoot(leaf)
	require.NoError(t, err)
	require.Len(t, path, 5)
	assert.Equal(t, movetree.RootID, path[0].ID)
	assert.Equal(t, leaf, path[len(path)-1].ID)

	var sans []string
	for _, n := range path[1:] {
		sans = append(sans, n.SAN)
	}
	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6"}, sans)

	ply, err := tree.Ply(leaf)
	require.NoError(t, err)
	assert.Equal(t, 4, ply)
	assert.Equal(t, ply+1, len(path))

	rootPath, err := tree.PathToRoot(tree.RootID())
	require.NoError(t, err)
	assert.Len(t, rootPath, 1)

	_, err = tree.PathToRoot("missing")
	assert.ErrorIs(t, err, movetree.ErrNodeNotFound)
}

func TestMainLineDescent(t *testing.T) {
	tree := newTree(t)
	e4 := play(t, tree, tree.RootID(), "e2e4")
	e5 := play(t, tree, e4, "e7e5")
	nf3 := play(t, tree, e5, "g1f3")
	play(t, tree, e4, "c7c5", "g1f3")

	line, err := tree.MainLineDescent(tree.RootID())
	require.NoError(t, err)
	assert.Equal(t, []string{e4, e5, nf3}, line)

	leafLine, err := tree.MainLineDescent(nf3)
	require.NoError(t, err)
	assert.Empty(t, leafLine)

	_, err = tree.MainLineDescent("missing")
	assert.ErrorIs(t, err, movetree.ErrNodeNotFound)
}

func TestStraightRun(t *testing.T) {
	tree := newTree(t)
	e4 := play(t, tree, tree.RootID(), "e2e4")
	play(t, tree, e4, "e7e5", "g1f3")
	play(t, tree, e4, "c7c5")

	run, err := tree.StraightRun(tree.RootID())
	require.NoError(t, err)
	assert.Equal(t, []string{e4}, run)

	full, err := tree.MainLineDescent(tree.RootID())
	require.NoError(t, err)
	assert.Len(t, full, 3)
}

func TestAnnotate(t *testing.T) {
	tree := newTree(t)
	e4 := play(t, tree, tree.RootID(), "e2e4")

	nags := []int{1}
	require.NoError(t, tree.Annotate(e4, movetree.Annotation{
		Comment:       "best by test",
		VariationName: "King's Pawn",
		NAGs:          nags,
	}))
	nags[0] = 4

	n, err := tree.Node(e4)
	require.NoError(t, err)
	assert.Equal(t, "best by test", n.Comment)
	assert.Equal(t, "King's Pawn", n.VariationName)
	assert.Equal(t, []int{1}, n.NAGs)

	assert.ErrorIs(t, tree.Annotate("missing", movetree.Annotation{}), movetree.ErrNodeNotFound)
}

func TestNodeCopiesAreDetached(t *testing.T) {
	tree := newTree(t)
	e4 := play(t, tree, tree.RootID(), "e2e4")

	root := tree.Root()
	root.ChildrenIDs[0] = "tampered"

	children, err := tree.Children(tree.RootID())
	require.NoError(t, err)
	assert.Equal(t, []string{e4}, children)
}

func TestNodesPreOrder(t *testing.T) {
	tree := newTree(t)
	e4 := play(t, tree, tree.RootID(), "e2e4")
	e5 := play(t, tree, e4, "e7e5")
	c5 := play(t, tree, e4, "c7c5")
	d4 := play(t, tree, tree.RootID(), "d2d4")

	var ids []string
	for _, n := range tree.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{movetree.RootID, e4, e5, c5, d4}, ids)
}

func TestDefaultIDsAreUnique(t *testing.T) {
	tree := movetree.New(rules.StartingFEN, rules.New())
	a, err := tree.AppendSAN(tree.RootID(), "e4")
	require.NoError(t, err)
	b, err := tree.AppendSAN(tree.RootID(), "d4")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestParseCandidate(t *testing.T) {
	tests := []struct {
		in      string
		want    movetree.Candidate
		wantErr bool
	}{
		{"e2e4", movetree.Candidate{From: "e2", To: "e4"}, false},
		{"E7E8Q", movetree.Candidate{From: "e7", To: "e8", Promotion: "q"}, false},
		{" g1f3 ", movetree.Candidate{From: "g1", To: "f3"}, false},
		{"e2e", movetree.Candidate{}, true},
		{"e2e9", movetree.Candidate{}, true},
		{"e7e8k", movetree.Candidate{}, true},
		{"i2e4", movetree.Candidate{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := movetree.ParseCandidate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.ToLower(strings.TrimSpace(tt.in)), got.UCI())
		})
	}
}
