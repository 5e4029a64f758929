// Package session holds the interactive client state between commands
package session

import (
	"io"
	"os"

	"chesslines/internal/client/api"
)

type Session struct {
	APIBaseURL string
	Client     *api.Client
	Verbose    bool
	Out        io.Writer

	CurrentLine      string
	CurrentTitle     string
	CurrentRecording string
	CurrentPractice  string
	PlayerColor      string

	// ids of the last listing, for selecting lines by number
	LastList []string
	// ids of the last classroom listing
	LastRooms []string
	// tree of the open recording, refreshed after each command
	Tree *api.TreeResponse
	// state of the open practice session
	Practice *api.PracticeResponse
}

// New creates a session talking to baseURL and writing to stdout
func New(baseURL string) *Session {
	c := api.New(baseURL)
	c.SetOutput(os.Stdout)
	return &Session{
		APIBaseURL: baseURL,
		Client:     c,
		Out:        os.Stdout,
	}
}

func (s *Session) GetAPIBaseURL() string { return s.APIBaseURL }

func (s *Session) SetAPIBaseURL(url string) {
	s.APIBaseURL = url
	s.Client.SetBaseURL(url)
}

func (s *Session) IsVerbose() bool { return s.Verbose }

func (s *Session) Output() io.Writer { return s.Out }

// SelectLine makes lineID the current line and drops sessions on the old one
func (s *Session) SelectLine(lineID, title string) {
	if s.CurrentLine != lineID {
		s.ClearRecording()
		s.ClearPractice()
	}
	s.CurrentLine = lineID
	s.CurrentTitle = title
}

func (s *Session) ClearLine() {
	s.SelectLine("", "")
}

func (s *Session) SetRecording(tree *api.TreeResponse) {
	s.CurrentRecording = tree.SessionID
	s.Tree = tree
}

func (s *Session) ClearRecording() {
	s.CurrentRecording = ""
	s.Tree = nil
}

func (s *Session) SetPractice(p *api.PracticeResponse) {
	s.CurrentPractice = p.SessionID
	s.PlayerColor = p.Color
	s.Practice = p
}

func (s *Session) ClearPractice() {
	s.CurrentPractice = ""
	s.PlayerColor = ""
	s.Practice = nil
}
