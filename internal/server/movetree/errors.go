package movetree

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove  = errors.New("illegal move")
	ErrNodeNotFound = errors.New("node not found")
)

// IllegalMoveError reports a move the rules oracle rejected from a position.
// The tree is left unchanged when it is returned.
type IllegalMoveError struct {
	FEN  string
	Move string
	Err  error
}

func (e *IllegalMoveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("illegal move %q from %q: %v", e.Move, e.FEN, e.Err)
	}
	return fmt.Sprintf("illegal move %q from %q", e.Move, e.FEN)
}

func (e *IllegalMoveError) Is(target error) bool { return target == ErrIllegalMove }

func (e *IllegalMoveError) Unwrap() error { return e.Err }

// NodeNotFoundError reports an id that does not resolve in the tree
type NodeNotFoundError struct {
	ID string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node not found: %q", e.ID)
}

func (e *NodeNotFoundError) Is(target error) bool { return target == ErrNodeNotFound }
