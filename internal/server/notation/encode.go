package notation

import (
	"fmt"
	"strings"

	"chesslines/internal/server/movetree"
	"chesslines/internal/server/rules"
)

// Encode writes the main line below fromID as space separated SAN.
// Comments, NAGs and variations are not written.
func Encode(tree *movetree.Tree, fromID string) (string, error) {
	ids, err := tree.MainLineDescent(fromID)
	if err != nil {
		return "", err
	}

	sans := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := tree.Node(id)
		if err != nil {
			return "", err
		}
		sans = append(sans, n.SAN)
	}
	return strings.Join(sans, " "), nil
}

// EncodePath writes the moves from the root down to id
func EncodePath(tree *movetree.Tree, id string) (string, error) {
	path, err := tree.PathToRoot(id)
	if err != nil {
		return "", err
	}

	sans := make([]string, 0, len(path))
	for _, n := range path[1:] {
		sans = append(sans, n.SAN)
	}
	return strings.Join(sans, " "), nil
}

// Render writes the tree below fromID as numbered move text with
// variations in parentheses, comments in braces and NAGs as $n
func Render(tree *movetree.Tree, fromID string) (string, error) {
	if !tree.Has(fromID) {
		return "", &movetree.NodeNotFoundError{ID: fromID}
	}
	r := &renderer{tree: tree}
	r.line(fromID, true)
	return r.sb.String(), nil
}

type renderer struct {
	tree *movetree.Tree
	sb   strings.Builder
}

func (r *renderer) line(parentID string, needNumber bool) {
	parent, _ := r.tree.Node(parentID)
	for len(parent.ChildrenIDs) > 0 {
		main, _ := r.tree.Node(parent.ChildrenIDs[0])
		needNumber = r.move(parent, main, needNumber)

		for _, altID := range parent.ChildrenIDs[1:] {
			alt, _ := r.tree.Node(altID)
			r.sb.WriteString(" (")
			if alt.VariationName != "" {
				r.sb.WriteString(fmt.Sprintf("{%s} ", alt.VariationName))
			}
			r.move(parent, alt, true)
			r.line(altID, r.hasNote(alt))
			r.sb.WriteString(")")
			needNumber = true
		}
		parent = main
	}
}

// move writes one move and reports whether the next black move needs its number
func (r *renderer) move(parent, n movetree.Node, needNumber bool) bool {
	if r.sb.Len() > 0 && !strings.HasSuffix(r.sb.String(), "(") && !strings.HasSuffix(r.sb.String(), " ") {
		r.sb.WriteByte(' ')
	}

	num := rules.FullMove(parent.FEN)
	if rules.SideToMove(parent.FEN) == "w" {
		r.sb.WriteString(fmt.Sprintf("%d. ", num))
	} else if needNumber {
		r.sb.WriteString(fmt.Sprintf("%d... ", num))
	}
	r.sb.WriteString(n.SAN)

	for _, nag := range n.NAGs {
		r.sb.WriteString(fmt.Sprintf(" $%d", nag))
	}
	if n.Comment != "" {
		r.sb.WriteString(fmt.Sprintf(" {%s}", n.Comment))
	}
	return r.hasNote(n)
}

func (r *renderer) hasNote(n movetree.Node) bool {
	return n.Comment != ""
}

// FormatPath writes the moves from the root down to id with move numbers,
// e.g. "1. e4 e5 2. Nf3"
func FormatPath(tree *movetree.Tree, id string) (string, error) {
	path, err := tree.PathToRoot(id)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(path))
	for i := 1; i < len(path); i++ {
		parent := path[i-1]
		num := rules.FullMove(parent.FEN)
		switch {
		case rules.SideToMove(parent.FEN) == "w":
			parts = append(parts, fmt.Sprintf("%d. %s", num, path[i].SAN))
		case i == 1:
			parts = append(parts, fmt.Sprintf("%d... %s", num, path[i].SAN))
		default:
			parts = append(parts, path[i].SAN)
		}
	}
	return strings.Join(parts, " "), nil
}
