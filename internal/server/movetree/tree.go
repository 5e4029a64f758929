// Package movetree holds a chess line with its variations as a flat arena of
// nodes addressed by id. Legality and positions come from an Oracle; the tree
// only stores what the oracle returns.
package movetree

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// RootID is the id given to the root of every tree
const RootID = "root"

// Node is one position in the tree together with the move that reached it.
// The root carries the starting position and empty SAN/UCI/ParentID.
type Node struct {
	ID            string   `json:"id"`
	FEN           string   `json:"fen"`
	SAN           string   `json:"san"`
	UCI           string   `json:"uci"`
	ParentID      string   `json:"parentId"`
	ChildrenIDs   []string `json:"childrenIds"` // index 0 is the main line
	Comment       string   `json:"comment,omitempty"`
	VariationName string   `json:"variationName,omitempty"`
	NAGs          []int    `json:"nags,omitempty"`
}

// IsRoot reports whether n is the tree root
func (n Node) IsRoot() bool { return n.ParentID == "" }

// Annotation is the optional metadata attached to a node
type Annotation struct {
	Comment       string
	VariationName string
	NAGs          []int
}

// Tree is a move tree. It is not safe for concurrent mutation; callers
// serialize writers.
type Tree struct {
	nodes  map[string]*Node
	rootID string
	oracle Oracle
	newID  func() string
}

// Option configures a Tree
type Option func(*Tree)

// WithIDGenerator replaces the default uuid ids for appended nodes
func WithIDGenerator(gen func() string) Option {
	return func(t *Tree) { t.newID = gen }
}

// SequentialIDs returns a generator producing prefix1, prefix2, ...
func SequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

// New creates a tree holding only a root at startingFEN
func New(startingFEN string, oracle Oracle, opts ...Option) *Tree {
	t := &Tree{
		nodes:  make(map[string]*Node),
		rootID: RootID,
		oracle: oracle,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(t)
	}
	t.nodes[RootID] = &Node{
		ID:          RootID,
		FEN:         startingFEN,
		ChildrenIDs: []string{},
	}
	return t
}

// RootID returns the id of the root node
func (t *Tree) RootID() string { return t.rootID }

// Root returns a copy of the root node
func (t *Tree) Root() Node { return t.nodes[t.rootID].clone() }

// Len returns the number of nodes, root included
func (t *Tree) Len() int { return len(t.nodes) }

// Has reports whether id resolves to a node
func (t *Tree) Has(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Node returns a copy of the node with the given id
func (t *Tree) Node(id string) (Node, error) {
	n, err := t.get(id)
	if err != nil {
		return Node{}, err
	}
	return n.clone(), nil
}

// Children returns the ordered child ids of a node
func (t *Tree) Children(id string) ([]string, error) {
	n, err := t.get(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(n.ChildrenIDs), nil
}

// IsLeaf reports whether the node has no children
func (t *Tree) IsLeaf(id string) (bool, error) {
	n, err := t.get(id)
	if err != nil {
		return false, err
	}
	return len(n.ChildrenIDs) == 0, nil
}

// AppendMove plays m from the position at parentID. If a child with the
// same SAN already exists its id is returned and nothing changes; otherwise
// a new child is created at the end of the parent's children.
func (t *Tree) AppendMove(parentID string, m Candidate) (string, error) {
	parent, err := t.get(parentID)
	if err != nil {
		return "", err
	}

	res, err := t.oracle.Apply(parent.FEN, m)
	if err != nil {
		return "", illegal(parent.FEN, m.UCI(), err)
	}
	return t.attach(parent, res), nil
}

// AppendSAN is AppendMove for a move already written in SAN
func (t *Tree) AppendSAN(parentID, san string) (string, error) {
	parent, err := t.get(parentID)
	if err != nil {
		return "", err
	}

	res, err := t.oracle.ApplySAN(parent.FEN, san)
	if err != nil {
		return "", illegal(parent.FEN, san, err)
	}
	return t.attach(parent, res), nil
}

func illegal(fen, move string, err error) error {
	var ime *IllegalMoveError
	if errors.As(err, &ime) {
		return ime
	}
	return &IllegalMoveError{FEN: fen, Move: move, Err: err}
}

// attach links res under parent, reusing an existing child with the same SAN
func (t *Tree) attach(parent *Node, res Result) string {
	for _, cid := range parent.ChildrenIDs {
		if t.nodes[cid].SAN == res.SAN {
			return cid
		}
	}

	id := t.newID()
	for t.Has(id) {
		id = t.newID()
	}
	t.nodes[id] = &Node{
		ID:          id,
		FEN:         res.FEN,
		SAN:         res.SAN,
		UCI:         res.UCI,
		ParentID:    parent.ID,
		ChildrenIDs: []string{},
	}
	parent.ChildrenIDs = append(parent.ChildrenIDs, id)
	return id
}

// PathToRoot returns the nodes from the root down to id, both ends included
func (t *Tree) PathToRoot(id string) ([]Node, error) {
	n, err := t.get(id)
	if err != nil {
		return nil, err
	}

	var path []Node
	for {
		path = append(path, n.clone())
		if n.ParentID == "" {
			break
		}
		n = t.nodes[n.ParentID]
	}
	slices.Reverse(path)
	return path, nil
}

// Ply returns the number of moves between the root and id
func (t *Tree) Ply(id string) (int, error) {
	path, err := t.PathToRoot(id)
	if err != nil {
		return 0, err
	}
	return len(path) - 1, nil
}

// SiblingVariations returns the ids of the other children of id's parent,
// in recording order. The root has no siblings.
func (t *Tree) SiblingVariations(id string) ([]string, error) {
	n, err := t.get(id)
	if err != nil {
		return nil, err
	}
	if n.ParentID == "" {
		return []string{}, nil
	}

	siblings := []string{}
	for _, cid := range t.nodes[n.ParentID].ChildrenIDs {
		if cid != id {
			siblings = append(siblings, cid)
		}
	}
	return siblings, nil
}

// MainLineDescent follows the first child from startID until a leaf and
// returns the visited ids, startID excluded.
func (t *Tree) MainLineDescent(startID string) ([]string, error) {
	n, err := t.get(startID)
	if err != nil {
		return nil, err
	}

	line := []string{}
	for len(n.ChildrenIDs) > 0 {
		n = t.nodes[n.ChildrenIDs[0]]
		line = append(line, n.ID)
	}
	return line, nil
}

// StraightRun follows the first child from startID and stops after the
// first node that has more than one child, or at a leaf. startID is excluded.
func (t *Tree) StraightRun(startID string) ([]string, error) {
	n, err := t.get(startID)
	if err != nil {
		return nil, err
	}

	run := []string{}
	for len(n.ChildrenIDs) > 0 {
		n = t.nodes[n.ChildrenIDs[0]]
		run = append(run, n.ID)
		if len(n.ChildrenIDs) > 1 {
			break
		}
	}
	return run, nil
}

// Annotate replaces the comment, variation name and NAGs of a node
func (t *Tree) Annotate(id string, a Annotation) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	n.Comment = a.Comment
	n.VariationName = a.VariationName
	n.NAGs = slices.Clone(a.NAGs)
	return nil
}

// Nodes returns every node in pre-order, main line first at each branch
func (t *Tree) Nodes() []Node {
	out := make([]Node, 0, len(t.nodes))
	stack := []string{t.rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes[id]
		out = append(out, n.clone())
		for i := len(n.ChildrenIDs) - 1; i >= 0; i-- {
			stack = append(stack, n.ChildrenIDs[i])
		}
	}
	return out
}

// Validate checks the structural invariants of the tree and re-derives every
// position through the oracle.
func (t *Tree) Validate() error {
	root, ok := t.nodes[t.rootID]
	if !ok {
		return &NodeNotFoundError{ID: t.rootID}
	}
	if root.ParentID != "" {
		return fmt.Errorf("root %q has parent %q", root.ID, root.ParentID)
	}

	seen := make(map[string]bool, len(t.nodes))
	stack := []string{t.rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			return fmt.Errorf("node %q reached twice", id)
		}
		seen[id] = true

		n := t.nodes[id]
		sans := make(map[string]bool, len(n.ChildrenIDs))
		for _, cid := range n.ChildrenIDs {
			c, ok := t.nodes[cid]
			if !ok {
				return &NodeNotFoundError{ID: cid}
			}
			if c.ParentID != id {
				return fmt.Errorf("child %q of %q points to parent %q", cid, id, c.ParentID)
			}
			if sans[c.SAN] {
				return fmt.Errorf("duplicate move %q under %q", c.SAN, id)
			}
			sans[c.SAN] = true

			res, err := t.oracle.ApplySAN(n.FEN, c.SAN)
			if err != nil {
				return illegal(n.FEN, c.SAN, err)
			}
			if res.FEN != c.FEN {
				return fmt.Errorf("node %q position %q differs from %q", cid, c.FEN, res.FEN)
			}
			stack = append(stack, cid)
		}
	}

	if len(seen) != len(t.nodes) {
		return fmt.Errorf("%d nodes unreachable from root", len(t.nodes)-len(seen))
	}
	return nil
}

func (t *Tree) get(id string) (*Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, &NodeNotFoundError{ID: id}
	}
	return n, nil
}

func (n *Node) clone() Node {
	c := *n
	c.ChildrenIDs = slices.Clone(n.ChildrenIDs)
	c.NAGs = slices.Clone(n.NAGs)
	if c.ChildrenIDs == nil {
		c.ChildrenIDs = []string{}
	}
	return c
}
