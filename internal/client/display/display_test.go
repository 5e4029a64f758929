package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderBoardPlain(t *testing.T) {
	DisableColors()

	board := "  a b c d e f g h\n8 r n b q k b n r  8\n1 R N B Q K B N R  1\n  a b c d e f g h"
	var buf bytes.Buffer
	RenderBoard(&buf, board)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "8 r n b q k b n r  8", lines[1])
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", Indent([]byte(`{"a":1}`)))
	assert.Equal(t, "not json", Indent([]byte("not json")))
}

func TestColorForTurn(t *testing.T) {
	DisableColors()
	assert.Equal(t, "White", ColorForTurn("w"))
	assert.Equal(t, "Black", ColorForTurn("black"))
}
