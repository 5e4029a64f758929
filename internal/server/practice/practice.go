// Package practice drills a user through the main line of a move tree. The
// user plays one side; the other side's moves are played automatically from
// the tree.
package practice

import (
	"errors"

	"chesslines/internal/server/core"
	"chesslines/internal/server/movetree"
	"chesslines/internal/server/notation"
	"chesslines/internal/server/rules"
)

var (
	ErrEmptyLine   = errors.New("line has no moves")
	ErrNotYourTurn = errors.New("not your turn")
	ErrCompleted   = errors.New("practice already completed")
)

// Step is one move played during the drill
type Step struct {
	NodeID  string     `json:"nodeId"`
	SAN     string     `json:"san"`
	Color   core.Color `json:"color"`
	Skipped bool       `json:"skipped,omitempty"`
}

// Feedback is the verdict on a user move
type Feedback struct {
	Correct  bool
	Played   string
	Expected string
	Reply    string
}

// Session tracks one drill over a tree. Not safe for concurrent use.
type Session struct {
	tree     *movetree.Tree
	oracle   movetree.Oracle
	color    core.Color
	current  string
	history  []Step
	total    int
	mistakes int
	hints    int
	skips    int
	state    core.State
}

// New starts a drill with the user playing color. When the opponent moves
// first their opening move is played immediately.
func New(tree *movetree.Tree, oracle movetree.Oracle, color core.Color) (*Session, error) {
	mainLine, err := tree.MainLineDescent(tree.RootID())
	if err != nil {
		return nil, err
	}
	if len(mainLine) == 0 {
		return nil, ErrEmptyLine
	}

	s := &Session{
		tree:    tree,
		oracle:  oracle,
		color:   color,
		current: tree.RootID(),
		total:   len(mainLine),
		state:   core.StateAwaitingMove,
	}
	s.opponentMove()
	return s, nil
}

// Play checks a user move against the expected main line move. A correct
// move advances the drill and triggers the opponent reply; a wrong move
// counts as a mistake and leaves the position unchanged.
func (s *Session) Play(m movetree.Candidate) (Feedback, error) {
	node, expected, err := s.userTurn()
	if err != nil {
		return Feedback{}, err
	}

	res, err := s.oracle.Apply(node.FEN, m)
	if err != nil {
		var ime *movetree.IllegalMoveError
		if errors.As(err, &ime) {
			return Feedback{}, ime
		}
		return Feedback{}, &movetree.IllegalMoveError{FEN: node.FEN, Move: m.UCI(), Err: err}
	}

	fb := Feedback{Played: res.SAN, Expected: expected.SAN}
	if res.SAN != expected.SAN {
		s.mistakes++
		return fb, nil
	}

	fb.Correct = true
	s.advance(expected, false)
	fb.Reply = s.opponentMove()
	return fb, nil
}

// Hint returns the expected move without playing it
func (s *Session) Hint() (string, error) {
	_, expected, err := s.userTurn()
	if err != nil {
		return "", err
	}
	s.hints++
	return expected.SAN, nil
}

// Skip plays the expected move on the user's behalf
func (s *Session) Skip() (Feedback, error) {
	_, expected, err := s.userTurn()
	if err != nil {
		return Feedback{}, err
	}

	s.skips++
	s.advance(expected, true)
	fb := Feedback{Correct: true, Played: expected.SAN, Expected: expected.SAN}
	fb.Reply = s.opponentMove()
	return fb, nil
}

func (s *Session) userTurn() (movetree.Node, movetree.Node, error) {
	if s.state == core.StateCompleted {
		return movetree.Node{}, movetree.Node{}, ErrCompleted
	}
	node, err := s.tree.Node(s.current)
	if err != nil {
		return movetree.Node{}, movetree.Node{}, err
	}
	if rules.SideToMove(node.FEN) != s.color.String() {
		return movetree.Node{}, movetree.Node{}, ErrNotYourTurn
	}
	expected, err := s.tree.Node(node.ChildrenIDs[0])
	if err != nil {
		return movetree.Node{}, movetree.Node{}, err
	}
	return node, expected, nil
}

// opponentMove plays the main line reply when it is the opponent's turn and
// returns its SAN
func (s *Session) opponentMove() string {
	if s.state == core.StateCompleted {
		return ""
	}
	node, err := s.tree.Node(s.current)
	if err != nil || rules.SideToMove(node.FEN) == s.color.String() {
		return ""
	}
	reply, err := s.tree.Node(node.ChildrenIDs[0])
	if err != nil {
		return ""
	}
	s.advance(reply, false)
	return reply.SAN
}

func (s *Session) advance(n movetree.Node, skipped bool) {
	s.current = n.ID
	s.history = append(s.history, Step{
		NodeID:  n.ID,
		SAN:     n.SAN,
		Color:   core.Color(rules.SideToMove(s.parentFEN(n))[0]),
		Skipped: skipped,
	})
	if len(n.ChildrenIDs) == 0 {
		s.state = core.StateCompleted
	}
}

func (s *Session) parentFEN(n movetree.Node) string {
	parent, err := s.tree.Node(n.ParentID)
	if err != nil {
		return ""
	}
	return parent.FEN
}

func (s *Session) Color() core.Color { return s.color }

func (s *Session) State() core.State { return s.state }

func (s *Session) Completed() bool { return s.state == core.StateCompleted }

func (s *Session) Mistakes() int { return s.mistakes }

func (s *Session) Hints() int { return s.hints }

func (s *Session) Skips() int { return s.skips }

// History returns the moves played so far, both sides
func (s *Session) History() []Step {
	out := make([]Step, len(s.history))
	copy(out, s.history)
	return out
}

// Position returns the current node
func (s *Session) Position() movetree.Node {
	n, _ := s.tree.Node(s.current)
	return n
}

// Moves returns the played moves as numbered text
func (s *Session) Moves() string {
	out, _ := notation.FormatPath(s.tree, s.current)
	return out
}

// Progress is the share of the main line played, in percent
func (s *Session) Progress() int {
	if s.total == 0 {
		return 100
	}
	p := len(s.history) * 100 / s.total
	if p > 100 {
		p = 100
	}
	return p
}
