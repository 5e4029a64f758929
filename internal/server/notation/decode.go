// Package notation converts between move trees and linear move text.
package notation

import (
	"regexp"
	"strings"

	"chesslines/internal/server/movetree"

	"github.com/rs/zerolog"
)

var (
	moveNumberRe = regexp.MustCompile(`^\d+\.+`)
	commentRe    = regexp.MustCompile(`\{[^}]*\}`)
	nagRe        = regexp.MustCompile(`^\$\d+$`)
)

var resultMarkers = map[string]bool{
	"1-0":     true,
	"0-1":     true,
	"1/2-1/2": true,
	"*":       true,
}

// SkippedToken is a token that could not be played during decode
type SkippedToken struct {
	Index int    `json:"index"`
	Token string `json:"token"`
	Err   error  `json:"-"`
}

// DecodeResult is a linear tree built from move text plus the tokens dropped on the way
type DecodeResult struct {
	Tree    *movetree.Tree
	RootID  string
	LeafID  string
	Skipped []SkippedToken
}

// Codec decodes move text against a rules oracle
type Codec struct {
	oracle movetree.Oracle
	log    zerolog.Logger
}

func NewCodec(oracle movetree.Oracle, log zerolog.Logger) *Codec {
	return &Codec{
		oracle: oracle,
		log:    log.With().Str("component", "notation").Logger(),
	}
}

// Decode builds a straight chain from movetext starting at startingFEN.
// Tokens the oracle rejects are skipped and replay continues from the last
// accepted move. Decode never fails; an unusable text yields a bare root.
func (c *Codec) Decode(movetext, startingFEN string) *DecodeResult {
	tree := movetree.New(startingFEN, c.oracle, movetree.WithIDGenerator(movetree.SequentialIDs("m")))
	res := &DecodeResult{
		Tree:    tree,
		RootID:  tree.RootID(),
		LeafID:  tree.RootID(),
		Skipped: []SkippedToken{},
	}

	for i, tok := range Tokens(movetext) {
		id, err := tree.AppendSAN(res.LeafID, tok)
		if err != nil {
			c.log.Warn().Int("index", i).Str("token", tok).Err(err).Msg("skipping unplayable token")
			res.Skipped = append(res.Skipped, SkippedToken{Index: i, Token: tok, Err: err})
			continue
		}
		res.LeafID = id
	}
	return res
}

// Tokens returns the move tokens of movetext with move numbers, result
// markers, comments, NAGs and parenthesized variations removed
func Tokens(movetext string) []string {
	movetext = commentRe.ReplaceAllString(movetext, " ")
	movetext = stripVariations(movetext)

	var out []string
	for _, tok := range strings.Fields(movetext) {
		if resultMarkers[tok] || nagRe.MatchString(tok) {
			continue
		}
		tok = moveNumberRe.ReplaceAllString(tok, "")
		if tok == "" || resultMarkers[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func stripVariations(s string) string {
	var sb strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
			sb.WriteRune(' ')
		case r == ')':
			if depth > 0 {
				depth--
			}
			sb.WriteRune(' ')
		case depth == 0:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
