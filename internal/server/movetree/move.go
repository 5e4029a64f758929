package movetree

import (
	"fmt"
	"strings"
)

// Candidate is a move proposed by a user, given as coordinates
type Candidate struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"` // q, r, b or n
}

// UCI returns the coordinate form, e.g. e7e8q
func (c Candidate) UCI() string {
	return c.From + c.To + c.Promotion
}

// ParseCandidate parses a coordinate move such as e2e4 or e7e8q
func ParseCandidate(uci string) (Candidate, error) {
	uci = strings.ToLower(strings.TrimSpace(uci))
	if len(uci) != 4 && len(uci) != 5 {
		return Candidate{}, fmt.Errorf("invalid move format %q: expected 4 or 5 characters", uci)
	}
	if !isSquare(uci[0:2]) || !isSquare(uci[2:4]) {
		return Candidate{}, fmt.Errorf("invalid move format %q: bad square", uci)
	}
	c := Candidate{From: uci[0:2], To: uci[2:4]}
	if len(uci) == 5 {
		if !strings.ContainsRune("qrbn", rune(uci[4])) {
			return Candidate{}, fmt.Errorf("invalid promotion piece %q", uci[4:])
		}
		c.Promotion = uci[4:]
	}
	return c, nil
}

func isSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

// Result is what the rules oracle reports for an accepted move
type Result struct {
	SAN string
	UCI string
	FEN string
}

// Oracle validates moves and computes resulting positions.
// Implementations must be pure: the same input always yields the same result.
type Oracle interface {
	Apply(fen string, m Candidate) (Result, error)
	ApplySAN(fen, san string) (Result, error)
}
