package commands

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"chesslines/internal/client/api"
	"chesslines/internal/client/display"
	"chesslines/internal/client/session"
	serverhttp "chesslines/internal/server/http"
	"chesslines/internal/server/rules"
	"chesslines/internal/server/service"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRegistry wires a registry to an in-memory server
func newTestRegistry(t *testing.T) (*Registry, *session.Session, *bytes.Buffer) {
	t.Helper()
	display.DisableColors()

	svc := service.New(service.NewMemoryStore(), rules.New(), zerolog.Nop())
	srv := httptest.NewServer(adaptor.FiberApp(serverhttp.NewFiberApp(svc, true)))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	client := api.New(srv.URL)
	client.SetOutput(io.Discard)
	s := &session.Session{APIBaseURL: srv.URL, Client: client, Out: &out}
	return NewRegistry(s), s, &out
}

func run(t *testing.T, r *Registry, out *bytes.Buffer, input string) string {
	t.Helper()
	out.Reset()
	require.NoError(t, r.Execute(input))
	return out.String()
}

func TestRecordingCommands(t *testing.T) {
	r, s, out := newTestRegistry(t)

	got := run(t, r, out, "add Italian Game | 1. e4 e5 2. Nf3 Nc6 3. Bc4")
	assert.Contains(t, got, "Italian Game")
	assert.Contains(t, got, "e4 e5 Nf3 Nc6 Bc4")
	require.NotEmpty(t, s.CurrentLine)

	got = run(t, r, out, "lines")
	assert.Contains(t, got, "*  1. Italian Game")

	run(t, r, out, "use 1")
	assert.Equal(t, "Italian Game", s.CurrentTitle)

	got = run(t, r, out, "record")
	require.NotEmpty(t, s.CurrentRecording)
	assert.Contains(t, got, "At: 1. e4 e5 2. Nf3 Nc6 3. Bc4")

	run(t, r, out, "back")
	got = run(t, r, out, "move f1b5")
	assert.Contains(t, got, "At: 1. e4 e5 2. Nf3 Nc6 3. Bb5")
	assert.Contains(t, got, "Alternatives: Bc4")
	assert.True(t, s.Tree.Dirty)

	got = run(t, r, out, "comment Ruy Lopez")
	assert.Contains(t, got, "3. Bc4 (3. Bb5 {Ruy Lopez})")

	got = run(t, r, out, "save")
	assert.Contains(t, got, "e4 e5 Nf3 Nc6 Bc4")
	assert.False(t, s.Tree.Dirty)

	got = run(t, r, out, "tree")
	assert.Contains(t, got, "Bb5")

	run(t, r, out, "close")
	assert.Empty(t, s.CurrentRecording)
}

func TestPracticeCommands(t *testing.T) {
	r, s, out := newTestRegistry(t)

	run(t, r, out, "add Scandinavian | e4 d5 exd5 Qxd5")

	got := run(t, r, out, "practice b")
	require.NotEmpty(t, s.CurrentPractice)
	assert.Contains(t, got, "Moves: 1. e4")

	got = run(t, r, out, "move e7e5")
	assert.Contains(t, got, "e5 is not the line move")

	got = run(t, r, out, "hint")
	assert.Contains(t, got, "Hint: d5")

	got = run(t, r, out, "m d7d5")
	assert.Contains(t, got, "Correct: d5  reply exd5")

	got = run(t, r, out, "board")
	assert.Contains(t, got, "a b c d e f g h")

	got = run(t, r, out, "skip")
	assert.Contains(t, got, "Line complete")

	got = run(t, r, out, "status")
	assert.Contains(t, got, "Progress: 100%  mistakes 1  hints 1  skips 1")

	run(t, r, out, "close")
	assert.Empty(t, s.CurrentPractice)
}

func TestClassroomCommands(t *testing.T) {
	r, s, out := newTestRegistry(t)

	got := run(t, r, out, "mkroom Open Games | e4 e5 for white | e4, white | public")
	assert.Contains(t, got, "Open Games")
	assert.Contains(t, got, "Visibility: public")
	assert.Contains(t, got, "Tags: e4, white")

	got = run(t, r, out, "rooms public")
	assert.Contains(t, got, "1. Open Games")
	require.Len(t, s.LastRooms, 1)

	got = run(t, r, out, "addto 1 Scotch | e4 e5 Nf3 Nc6 d4")
	assert.Contains(t, got, "e4 e5 Nf3 Nc6 d4")
	scotch := s.CurrentLine

	run(t, r, out, "add Italian | e4 e5 Nf3 Nc6 Bc4")
	got = run(t, r, out, "file 1")
	assert.Contains(t, got, "Lines: 2")

	got = run(t, r, out, "room 1")
	assert.Contains(t, got, "1. Scotch")
	assert.Contains(t, got, "2. Italian")
	run(t, r, out, "use 1")
	assert.Equal(t, scotch, s.CurrentLine)

	got = run(t, r, out, "unfile 1")
	assert.Contains(t, got, "Lines: 1")

	got = run(t, r, out, "publish 1 private")
	assert.Contains(t, got, "Visibility: private")
	assert.Contains(t, run(t, r, out, "rooms public"), "No classrooms")

	assert.Contains(t, run(t, r, out, "room 3"), "no classroom 3")

	run(t, r, out, "rooms")
	assert.Contains(t, run(t, r, out, "droproom 1"), "Deleted classroom")
	assert.Contains(t, run(t, r, out, "show"), "Scotch")
}

func TestRegistryBasics(t *testing.T) {
	r, _, out := newTestRegistry(t)

	assert.Contains(t, run(t, r, out, "frobnicate"), "Unknown command: frobnicate")
	assert.Contains(t, run(t, r, out, "help"), "Practice Commands")
	assert.Contains(t, run(t, r, out, "help m"), "Usage: move <uci-move>")
	assert.Contains(t, run(t, r, out, "move e2e4"), "nothing open")
	assert.Contains(t, run(t, r, out, "show"), "no line selected")

	assert.ErrorIs(t, r.Execute("exit"), ErrExit)
}
