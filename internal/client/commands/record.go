package commands

import (
	"fmt"
	"strconv"
	"strings"

	"chesslines/internal/client/api"
	"chesslines/internal/client/display"
	"chesslines/internal/client/session"
)

func (r *Registry) registerRecordCommands() {
	r.Register(&Command{
		Name:        "record",
		ShortName:   "r",
		Description: "Open the current line for editing",
		Usage:       "record",
		Handler:     recordHandler,
	})
	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Play a move in the open recording or practice",
		Usage:       "move <uci-move>",
		Handler:     moveHandler,
	})
	r.Register(&Command{
		Name:        "goto",
		ShortName:   "g",
		Description: "Move the recording cursor to a node",
		Usage:       "goto <nodeId|root>",
		Handler:     gotoHandler,
	})
	r.Register(&Command{
		Name:        "back",
		ShortName:   "b",
		Description: "Move the recording cursor one move back",
		Usage:       "back",
		Handler:     backHandler,
	})
	r.Register(&Command{
		Name:        "comment",
		ShortName:   "c",
		Description: "Comment the move at the cursor",
		Usage:       "comment <text>",
		Handler:     commentHandler,
	})
	r.Register(&Command{
		Name:        "name",
		Description: "Name the variation starting at the cursor",
		Usage:       "name <text>",
		Handler:     nameHandler,
	})
	r.Register(&Command{
		Name:        "nag",
		Description: "Set NAG codes on the move at the cursor",
		Usage:       "nag <n> [n...]",
		Handler:     nagHandler,
	})
	r.Register(&Command{
		Name:        "save",
		ShortName:   "w",
		Description: "Save the recording main line to the line",
		Usage:       "save",
		Handler:     saveHandler,
	})
	r.Register(&Command{
		Name:        "board",
		ShortName:   "h",
		Description: "Show the board of the open recording or practice",
		Usage:       "board",
		Handler:     boardHandler,
	})
	r.Register(&Command{
		Name:        "close",
		ShortName:   "q",
		Description: "Close the open recording or practice",
		Usage:       "close",
		Handler:     closeHandler,
	})
	r.addGroup("Recording Commands", "record", "move", "goto", "back", "comment", "name", "nag", "save", "board", "close")
}

func recordHandler(s *session.Session, args []string) error {
	id, err := currentLine(s)
	if err != nil {
		return err
	}
	if s.CurrentPractice != "" {
		return fmt.Errorf("close the practice session first")
	}
	if s.CurrentRecording != "" {
		_ = s.Client.CloseRecording(s.CurrentRecording)
	}

	tree, err := s.Client.OpenRecording(id)
	if err != nil {
		return err
	}
	s.SetRecording(tree)
	printTree(s, tree)
	return nil
}

func moveHandler(s *session.Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: move <uci-move>")
	}
	move := strings.ToLower(args[0])

	switch {
	case s.CurrentPractice != "":
		p, err := s.Client.PracticeMove(s.CurrentPractice, move)
		if err != nil {
			return err
		}
		s.SetPractice(p)
		printPractice(s, p)
		return nil
	case s.CurrentRecording != "":
		tree, err := s.Client.RecordMove(s.CurrentRecording, move)
		if err != nil {
			return err
		}
		s.SetRecording(tree)
		printCursor(s, tree)
		return nil
	}
	return fmt.Errorf("nothing open, use 'record' or 'practice'")
}

func gotoHandler(s *session.Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: goto <nodeId|root>")
	}
	return navigate(s, args[0])
}

func backHandler(s *session.Session, args []string) error {
	if err := requireRecording(s); err != nil {
		return err
	}
	for _, n := range s.Tree.Nodes {
		if n.ID == s.Tree.CursorID {
			if n.ParentID == nil {
				return fmt.Errorf("already at the start")
			}
			return navigate(s, *n.ParentID)
		}
	}
	return fmt.Errorf("cursor not found, try 'tree'")
}

func navigate(s *session.Session, nodeID string) error {
	if err := requireRecording(s); err != nil {
		return err
	}
	tree, err := s.Client.Navigate(s.CurrentRecording, nodeID)
	if err != nil {
		return err
	}
	s.SetRecording(tree)
	printCursor(s, tree)
	return nil
}

func commentHandler(s *session.Session, args []string) error {
	return annotate(s, func(a *api.AnnotateRequest) error {
		a.Comment = strings.Join(args, " ")
		return nil
	})
}

func nameHandler(s *session.Session, args []string) error {
	return annotate(s, func(a *api.AnnotateRequest) error {
		a.VariationName = strings.Join(args, " ")
		return nil
	})
}

func nagHandler(s *session.Session, args []string) error {
	return annotate(s, func(a *api.AnnotateRequest) error {
		a.NAGs = a.NAGs[:0]
		for _, arg := range args {
			n, err := strconv.Atoi(strings.TrimPrefix(arg, "$"))
			if err != nil {
				return fmt.Errorf("invalid NAG %q", arg)
			}
			a.NAGs = append(a.NAGs, n)
		}
		return nil
	})
}

// annotate keeps the other annotation fields of the cursor node
func annotate(s *session.Session, set func(*api.AnnotateRequest) error) error {
	if err := requireRecording(s); err != nil {
		return err
	}

	req := &api.AnnotateRequest{NodeID: s.Tree.CursorID}
	for _, n := range s.Tree.Nodes {
		if n.ID == s.Tree.CursorID {
			req.Comment = n.Comment
			req.VariationName = n.VariationName
			req.NAGs = append([]int(nil), n.NAGs...)
		}
	}
	if err := set(req); err != nil {
		return err
	}

	tree, err := s.Client.Annotate(s.CurrentRecording, req)
	if err != nil {
		return err
	}
	s.SetRecording(tree)
	fmt.Fprintf(s.Output(), "%s%s%s\n", display.Cyan, tree.Rendered, display.Reset)
	return nil
}

func saveHandler(s *session.Session, args []string) error {
	if err := requireRecording(s); err != nil {
		return err
	}
	line, err := s.Client.SaveRecording(s.CurrentRecording)
	if err != nil {
		return err
	}
	if tree, err := s.Client.GetRecording(s.CurrentRecording); err == nil {
		s.SetRecording(tree)
	}
	printLine(s, line)
	return nil
}

func boardHandler(s *session.Session, args []string) error {
	var board *api.BoardResponse
	var err error
	switch {
	case s.CurrentPractice != "":
		board, err = s.Client.PracticeBoard(s.CurrentPractice)
	case s.CurrentRecording != "":
		board, err = s.Client.RecordingBoard(s.CurrentRecording)
	default:
		return fmt.Errorf("nothing open, use 'record' or 'practice'")
	}
	if err != nil {
		return err
	}
	display.RenderBoard(s.Output(), board.Board)
	fmt.Fprintf(s.Output(), "FEN: %s\n", board.FEN)
	if s.CurrentPractice == "" && len(board.LegalMoves) > 0 {
		fmt.Fprintf(s.Output(), "Legal: %s\n", strings.Join(board.LegalMoves, " "))
	}
	return nil
}

func closeHandler(s *session.Session, args []string) error {
	switch {
	case s.CurrentPractice != "":
		err := s.Client.ClosePractice(s.CurrentPractice)
		s.ClearPractice()
		return err
	case s.CurrentRecording != "":
		if s.Tree != nil && s.Tree.Dirty {
			fmt.Fprintf(s.Output(), "%sUnsaved moves discarded%s\n", display.Yellow, display.Reset)
		}
		err := s.Client.CloseRecording(s.CurrentRecording)
		s.ClearRecording()
		return err
	}
	return fmt.Errorf("nothing open")
}

func requireRecording(s *session.Session) error {
	if s.CurrentRecording == "" || s.Tree == nil {
		return fmt.Errorf("no recording open, use 'record'")
	}
	return nil
}

func printCursor(s *session.Session, tree *api.TreeResponse) {
	out := s.Output()
	fmt.Fprintf(out, "At: %s\n", orNone(tree.Path))
	if len(tree.Variations) > 0 {
		sans := make([]string, 0, len(tree.Variations))
		for _, id := range tree.Variations {
			for _, n := range tree.Nodes {
				if n.ID == id {
					sans = append(sans, n.SAN+" "+display.Magenta+id+display.Reset)
				}
			}
		}
		fmt.Fprintf(out, "Alternatives: %s\n", strings.Join(sans, ", "))
	}
	if tree.Ahead != "" {
		fmt.Fprintf(out, "Ahead: %s\n", tree.Ahead)
	}
}
