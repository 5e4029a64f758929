package commands

import (
	"fmt"
	"strconv"
	"strings"

	"chesslines/internal/client/api"
	"chesslines/internal/client/display"
	"chesslines/internal/client/session"
)

func (r *Registry) registerLineCommands() {
	r.Register(&Command{
		Name:        "lines",
		ShortName:   "l",
		Description: "List lines",
		Usage:       "lines [filter]",
		Handler:     listLinesHandler,
	})
	r.Register(&Command{
		Name:        "add",
		ShortName:   "a",
		Description: "Create a line from move text",
		Usage:       "add <title> | <moves> [| <fen>]",
		Handler:     addLineHandler,
	})
	r.Register(&Command{
		Name:        "use",
		ShortName:   "u",
		Description: "Select a line by number from the last listing or by id",
		Usage:       "use <n|lineId>",
		Handler:     useLineHandler,
	})
	r.Register(&Command{
		Name:        "show",
		ShortName:   "s",
		Description: "Show the current line",
		Usage:       "show",
		Handler:     showLineHandler,
	})
	r.Register(&Command{
		Name:        "rename",
		Description: "Rename the current line",
		Usage:       "rename <title>",
		Handler:     renameLineHandler,
	})
	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Description: "Delete the current line",
		Usage:       "delete",
		Handler:     deleteLineHandler,
	})
	r.Register(&Command{
		Name:        "tree",
		ShortName:   "t",
		Description: "Show the move tree of the current line or recording",
		Usage:       "tree",
		Handler:     treeHandler,
	})
	r.addGroup("Line Commands", "lines", "add", "use", "show", "rename", "delete", "tree")
}

func listLinesHandler(s *session.Session, args []string) error {
	resp, err := s.Client.ListLines(strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := s.Output()
	s.LastList = s.LastList[:0]
	if resp.Total == 0 {
		fmt.Fprintln(out, "No lines")
		return nil
	}
	for i, l := range resp.Lines {
		s.LastList = append(s.LastList, l.LineID)
		marker := " "
		if l.LineID == s.CurrentLine {
			marker = "*"
		}
		fmt.Fprintf(out, "%s%3d. %s%-30s%s %3d plies  %s\n", marker, i+1, display.Cyan, l.Title, display.Reset, l.Moves, l.PGN)
	}
	return nil
}

func addLineHandler(s *session.Session, args []string) error {
	parts := strings.Split(strings.Join(args, " "), "|")
	title := strings.TrimSpace(parts[0])
	if title == "" {
		return fmt.Errorf("usage: add <title> | <moves> [| <fen>]")
	}

	req := &api.CreateLineRequest{Title: title}
	if len(parts) > 1 {
		req.PGN = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		req.FEN = strings.TrimSpace(parts[2])
	}

	line, err := s.Client.CreateLine(req)
	if err != nil {
		return err
	}
	s.SelectLine(line.LineID, line.Title)
	printLine(s, line)
	return nil
}

func useLineHandler(s *session.Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: use <n|lineId>")
	}

	id := args[0]
	if n, err := strconv.Atoi(id); err == nil {
		if n < 1 || n > len(s.LastList) {
			return fmt.Errorf("no line %d in the last listing", n)
		}
		id = s.LastList[n-1]
	}

	line, err := s.Client.GetLine(id)
	if err != nil {
		return err
	}
	s.SelectLine(line.LineID, line.Title)
	printLine(s, line)
	return nil
}

func showLineHandler(s *session.Session, args []string) error {
	id, err := currentLine(s)
	if err != nil {
		return err
	}
	line, err := s.Client.GetLine(id)
	if err != nil {
		return err
	}
	printLine(s, line)
	return nil
}

func renameLineHandler(s *session.Session, args []string) error {
	id, err := currentLine(s)
	if err != nil {
		return err
	}
	title := strings.Join(args, " ")
	if title == "" {
		return fmt.Errorf("usage: rename <title>")
	}

	line, err := s.Client.UpdateLine(id, &api.UpdateLineRequest{Title: &title})
	if err != nil {
		return err
	}
	s.CurrentTitle = line.Title
	printLine(s, line)
	return nil
}

func deleteLineHandler(s *session.Session, args []string) error {
	id, err := currentLine(s)
	if err != nil {
		return err
	}
	if err := s.Client.DeleteLine(id); err != nil {
		return err
	}
	fmt.Fprintf(s.Output(), "%sDeleted %s%s\n", display.Cyan, s.CurrentTitle, display.Reset)
	s.ClearLine()
	return nil
}

func treeHandler(s *session.Session, args []string) error {
	var tree *api.TreeResponse
	var err error
	if s.CurrentRecording != "" {
		tree, err = s.Client.GetRecording(s.CurrentRecording)
	} else {
		var id string
		if id, err = currentLine(s); err != nil {
			return err
		}
		tree, err = s.Client.GetLineTree(id)
	}
	if err != nil {
		return err
	}
	if s.CurrentRecording != "" {
		s.SetRecording(tree)
	}
	printTree(s, tree)
	return nil
}

func currentLine(s *session.Session) (string, error) {
	if s.CurrentLine == "" {
		return "", fmt.Errorf("no line selected, use 'lines' and 'use <n>'")
	}
	return s.CurrentLine, nil
}

func printLine(s *session.Session, l *api.LineResponse) {
	out := s.Output()
	fmt.Fprintf(out, "%s%s%s  (%s)\n", display.Cyan, l.Title, display.Reset, l.LineID)
	fmt.Fprintf(out, "  Moves: %s\n", orNone(l.PGN))
	fmt.Fprintf(out, "  Plies: %d\n", l.Moves)
	fmt.Fprintf(out, "  Start: %s\n", l.FEN)
	for _, sk := range l.Skipped {
		fmt.Fprintf(out, "  %sSkipped %q at %d: %s%s\n", display.Yellow, sk.Token, sk.Index, sk.Reason, display.Reset)
	}
}

// printTree lists nodes indented by depth, variations after the main move
func printTree(s *session.Session, tree *api.TreeResponse) {
	out := s.Output()
	fmt.Fprintf(out, "%s%s%s\n", display.Cyan, orNone(tree.Rendered), display.Reset)

	byID := make(map[string]api.NodeResponse, len(tree.Nodes))
	for _, n := range tree.Nodes {
		byID[n.ID] = n
	}

	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		n := byID[id]
		for i, cid := range n.ChildrenIDs {
			d := depth
			if i > 0 {
				d++
			}
			child := byID[cid]
			cursor := " "
			if cid == tree.CursorID {
				cursor = display.Green + ">" + display.Reset
			}
			fmt.Fprintf(out, "%s %s%-6s %s%s\n", cursor, strings.Repeat("  ", d), child.SAN, display.Magenta+cid+display.Reset, noteOf(child))
			if i > 0 {
				walk(cid, d)
			}
		}
		if len(n.ChildrenIDs) > 0 {
			walk(n.ChildrenIDs[0], depth)
		}
	}
	walk(tree.RootID, 0)

	if tree.Path != "" {
		fmt.Fprintf(out, "At: %s\n", tree.Path)
	}
}

func noteOf(n api.NodeResponse) string {
	var parts []string
	if n.VariationName != "" {
		parts = append(parts, "["+n.VariationName+"]")
	}
	for _, nag := range n.NAGs {
		parts = append(parts, fmt.Sprintf("$%d", nag))
	}
	if n.Comment != "" {
		parts = append(parts, "{"+n.Comment+"}")
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + strings.Join(parts, " ")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
