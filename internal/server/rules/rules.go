// Package rules adapts github.com/corentings/chess to the movetree oracle.
package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"chesslines/internal/server/movetree"

	chess "github.com/corentings/chess/v2"
)

const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var ErrInvalidFEN = errors.New("invalid FEN")

// Chess is a stateless rules oracle
type Chess struct{}

// New returns the oracle
func New() *Chess {
	return &Chess{}
}

// Apply plays a coordinate move from fen. A missing promotion piece on a
// promoting move defaults to a queen; a promotion on a non-promoting move is
// ignored.
func (c *Chess) Apply(fen string, m movetree.Candidate) (movetree.Result, error) {
	pos, err := position(fen)
	if err != nil {
		return movetree.Result{}, err
	}

	want := chess.Queen
	if m.Promotion != "" {
		if want, err = promotionPiece(m.Promotion); err != nil {
			return movetree.Result{}, &movetree.IllegalMoveError{FEN: fen, Move: m.UCI(), Err: err}
		}
	}

	for _, mv := range pos.ValidMoves() {
		if mv.S1().String() != m.From || mv.S2().String() != m.To {
			continue
		}
		if mv.Promo() != chess.NoPieceType && mv.Promo() != want {
			continue
		}
		return result(pos, &mv), nil
	}
	return movetree.Result{}, &movetree.IllegalMoveError{FEN: fen, Move: m.UCI()}
}

// ApplySAN plays a SAN move from fen. Check marks, annotation glyphs and
// zero-style castling are accepted.
func (c *Chess) ApplySAN(fen, san string) (movetree.Result, error) {
	pos, err := position(fen)
	if err != nil {
		return movetree.Result{}, err
	}

	want := normalizeSAN(san)
	if want == "" {
		return movetree.Result{}, &movetree.IllegalMoveError{FEN: fen, Move: san, Err: errors.New("empty move")}
	}

	for _, mv := range pos.ValidMoves() {
		if normalizeSAN(chess.AlgebraicNotation{}.Encode(pos, &mv)) == want {
			return result(pos, &mv), nil
		}
	}
	return movetree.Result{}, &movetree.IllegalMoveError{FEN: fen, Move: san}
}

// LegalMoves lists the SAN of every legal move from fen
func LegalMoves(fen string) ([]string, error) {
	pos, err := position(fen)
	if err != nil {
		return nil, err
	}
	moves := pos.ValidMoves()
	out := make([]string, 0, len(moves))
	for _, mv := range moves {
		out = append(out, chess.AlgebraicNotation{}.Encode(pos, &mv))
	}
	return out, nil
}

// ValidateFEN parses fen and returns its canonical form
func ValidateFEN(fen string) (string, error) {
	pos, err := position(fen)
	if err != nil {
		return "", err
	}
	return pos.String(), nil
}

// SideToMove returns "w" or "b"
func SideToMove(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > 1 && fields[1] == "b" {
		return "b"
	}
	return "w"
}

// FullMove returns the fullmove counter of fen, 1 when absent
func FullMove(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) < 6 {
		return 1
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Board renders fen as an ASCII diagram, rank 8 at the top
func Board(fen string) (string, error) {
	canonical, err := ValidateFEN(fen)
	if err != nil {
		return "", err
	}
	placement := strings.Fields(canonical)[0]

	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for r, rank := range strings.Split(placement, "/") {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for _, ch := range rank {
			if ch >= '1' && ch <= '8' {
				sb.WriteString(strings.Repeat(". ", int(ch-'0')))
				continue
			}
			sb.WriteString(fmt.Sprintf("%c ", ch))
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h")
	return sb.String(), nil
}

func position(fen string) (*chess.Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return chess.NewGame(opt).Position(), nil
}

func result(pos *chess.Position, mv *chess.Move) movetree.Result {
	return movetree.Result{
		SAN: chess.AlgebraicNotation{}.Encode(pos, mv),
		UCI: chess.UCINotation{}.Encode(pos, mv),
		FEN: pos.Update(mv).String(),
	}
}

func promotionPiece(s string) (chess.PieceType, error) {
	switch strings.ToLower(s) {
	case "q":
		return chess.Queen, nil
	case "r":
		return chess.Rook, nil
	case "b":
		return chess.Bishop, nil
	case "n":
		return chess.Knight, nil
	default:
		return chess.NoPieceType, fmt.Errorf("bad promotion piece %q", s)
	}
}

// normalizeSAN drops check marks and annotation glyphs so that
// "Nf3+", "Nf3!?" and "Nf3" compare equal
func normalizeSAN(san string) string {
	san = strings.TrimSpace(san)
	san = strings.TrimRight(san, "+#!?")
	switch san {
	case "0-0":
		return "O-O"
	case "0-0-0":
		return "O-O-O"
	}
	return san
}
