package commands

import (
	"fmt"
	"strconv"
	"strings"

	"chesslines/internal/client/api"
	"chesslines/internal/client/display"
	"chesslines/internal/client/session"
)

func (r *Registry) registerClassroomCommands() {
	r.Register(&Command{
		Name:        "rooms",
		ShortName:   "cr",
		Description: "List classrooms",
		Usage:       "rooms [public|private]",
		Handler:     listRoomsHandler,
	})
	r.Register(&Command{
		Name:        "room",
		Description: "Show a classroom and its lines; 'use <n>' then picks one of them",
		Usage:       "room <n|classroomId>",
		Handler:     showRoomHandler,
	})
	r.Register(&Command{
		Name:        "mkroom",
		Description: "Create a classroom",
		Usage:       "mkroom <title> [| <description> [| <tag,tag> [| public|private]]]",
		Handler:     makeRoomHandler,
	})
	r.Register(&Command{
		Name:        "publish",
		Description: "Change who can see a classroom",
		Usage:       "publish <n|classroomId> public|private",
		Handler:     publishRoomHandler,
	})
	r.Register(&Command{
		Name:        "droproom",
		Description: "Delete a classroom, keeping its lines",
		Usage:       "droproom <n|classroomId>",
		Handler:     dropRoomHandler,
	})
	r.Register(&Command{
		Name:        "addto",
		Description: "Create a line inside a classroom",
		Usage:       "addto <n|classroomId> <title> | <moves> [| <fen>]",
		Handler:     addToRoomHandler,
	})
	r.Register(&Command{
		Name:        "file",
		Description: "Add the current line to a classroom",
		Usage:       "file <n|classroomId>",
		Handler:     fileLineHandler,
	})
	r.Register(&Command{
		Name:        "unfile",
		Description: "Remove the current line from a classroom",
		Usage:       "unfile <n|classroomId>",
		Handler:     unfileLineHandler,
	})
	r.addGroup("Classroom Commands", "rooms", "room", "mkroom", "publish", "droproom", "addto", "file", "unfile")
}

func listRoomsHandler(s *session.Session, args []string) error {
	visibility := ""
	if len(args) > 0 {
		visibility = args[0]
	}
	resp, err := s.Client.ListClassrooms(visibility)
	if err != nil {
		return err
	}

	out := s.Output()
	s.LastRooms = s.LastRooms[:0]
	if resp.Total == 0 {
		fmt.Fprintln(out, "No classrooms")
		return nil
	}
	for i, c := range resp.Classrooms {
		s.LastRooms = append(s.LastRooms, c.ClassroomID)
		fmt.Fprintf(out, "%3d. %s%-30s%s %-7s %3d lines  %s\n",
			i+1, display.Cyan, c.Title, display.Reset, c.Visibility, c.LineCount, strings.Join(c.Tags, ", "))
	}
	return nil
}

func showRoomHandler(s *session.Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: room <n|classroomId>")
	}
	id, err := roomID(s, args[0])
	if err != nil {
		return err
	}
	room, err := s.Client.GetClassroom(id)
	if err != nil {
		return err
	}

	printRoom(s, room)
	out := s.Output()
	s.LastList = s.LastList[:0]
	for i, l := range room.Lines {
		s.LastList = append(s.LastList, l.LineID)
		fmt.Fprintf(out, "  %3d. %s%-30s%s %3d plies  %s\n", i+1, display.Cyan, l.Title, display.Reset, l.Moves, l.PGN)
	}
	return nil
}

func makeRoomHandler(s *session.Session, args []string) error {
	parts := strings.Split(strings.Join(args, " "), "|")
	title := strings.TrimSpace(parts[0])
	if title == "" {
		return fmt.Errorf("usage: mkroom <title> [| <description> [| <tag,tag> [| public|private]]]")
	}

	req := &api.CreateClassroomRequest{Title: title}
	if len(parts) > 1 {
		req.Description = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		req.Tags = strings.Split(parts[2], ",")
	}
	if len(parts) > 3 {
		req.Visibility = strings.ToLower(strings.TrimSpace(parts[3]))
	}

	room, err := s.Client.CreateClassroom(req)
	if err != nil {
		return err
	}
	printRoom(s, room)
	return nil
}

func publishRoomHandler(s *session.Session, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: publish <n|classroomId> public|private")
	}
	id, err := roomID(s, args[0])
	if err != nil {
		return err
	}
	visibility := strings.ToLower(args[1])

	room, err := s.Client.UpdateClassroom(id, &api.UpdateClassroomRequest{Visibility: &visibility})
	if err != nil {
		return err
	}
	printRoom(s, room)
	return nil
}

func dropRoomHandler(s *session.Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: droproom <n|classroomId>")
	}
	id, err := roomID(s, args[0])
	if err != nil {
		return err
	}
	if err := s.Client.DeleteClassroom(id); err != nil {
		return err
	}
	fmt.Fprintf(s.Output(), "%sDeleted classroom %s%s\n", display.Cyan, id, display.Reset)
	return nil
}

func addToRoomHandler(s *session.Session, args []string) error {
	usage := fmt.Errorf("usage: addto <n|classroomId> <title> | <moves> [| <fen>]")
	if len(args) < 2 {
		return usage
	}
	id, err := roomID(s, args[0])
	if err != nil {
		return err
	}

	parts := strings.Split(strings.Join(args[1:], " "), "|")
	title := strings.TrimSpace(parts[0])
	if title == "" {
		return usage
	}
	req := &api.CreateLineRequest{Title: title}
	if len(parts) > 1 {
		req.PGN = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		req.FEN = strings.TrimSpace(parts[2])
	}

	line, err := s.Client.CreateClassroomLine(id, req)
	if err != nil {
		return err
	}
	s.SelectLine(line.LineID, line.Title)
	printLine(s, line)
	return nil
}

func fileLineHandler(s *session.Session, args []string) error {
	return changeFiling(s, args, "file", s.Client.AddClassroomLine)
}

func unfileLineHandler(s *session.Session, args []string) error {
	return changeFiling(s, args, "unfile", s.Client.RemoveClassroomLine)
}

func changeFiling(s *session.Session, args []string, name string, change func(classroomID, lineID string) (*api.ClassroomResponse, error)) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s <n|classroomId>", name)
	}
	lineID, err := currentLine(s)
	if err != nil {
		return err
	}
	id, err := roomID(s, args[0])
	if err != nil {
		return err
	}

	room, err := change(id, lineID)
	if err != nil {
		return err
	}
	printRoom(s, room)
	return nil
}

// roomID resolves a number from the last 'rooms' listing or passes an id through
func roomID(s *session.Session, arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg, nil
	}
	if n < 1 || n > len(s.LastRooms) {
		return "", fmt.Errorf("no classroom %d in the last listing", n)
	}
	return s.LastRooms[n-1], nil
}

func printRoom(s *session.Session, c *api.ClassroomResponse) {
	out := s.Output()
	fmt.Fprintf(out, "%s%s%s  (%s)\n", display.Cyan, c.Title, display.Reset, c.ClassroomID)
	if c.Description != "" {
		fmt.Fprintf(out, "  %s\n", c.Description)
	}
	fmt.Fprintf(out, "  Visibility: %s\n", c.Visibility)
	fmt.Fprintf(out, "  Tags: %s\n", orNone(strings.Join(c.Tags, ", ")))
	fmt.Fprintf(out, "  Lines: %d\n", c.LineCount)
}
