package commands

import (
	"fmt"
	"strings"

	"chesslines/internal/client/api"
	"chesslines/internal/client/display"
	"chesslines/internal/client/session"
)

func (r *Registry) registerPracticeCommands() {
	r.Register(&Command{
		Name:        "practice",
		ShortName:   "p",
		Description: "Drill the current line playing one side",
		Usage:       "practice [w|b]",
		Handler:     practiceHandler,
	})
	r.Register(&Command{
		Name:        "hint",
		ShortName:   "i",
		Description: "Reveal the expected move",
		Usage:       "hint",
		Handler:     hintHandler,
	})
	r.Register(&Command{
		Name:        "skip",
		ShortName:   "k",
		Description: "Play the expected move for you",
		Usage:       "skip",
		Handler:     skipHandler,
	})
	r.Register(&Command{
		Name:        "status",
		ShortName:   "st",
		Description: "Show practice progress",
		Usage:       "status",
		Handler:     statusHandler,
	})
	r.addGroup("Practice Commands", "practice", "move", "hint", "skip", "status", "board", "close")
}

func practiceHandler(s *session.Session, args []string) error {
	id, err := currentLine(s)
	if err != nil {
		return err
	}
	if s.CurrentRecording != "" {
		return fmt.Errorf("close the recording first")
	}

	color := "w"
	if len(args) > 0 {
		color = strings.ToLower(args[0][:1])
	}
	if color != "w" && color != "b" {
		return fmt.Errorf("usage: practice [w|b]")
	}

	if s.CurrentPractice != "" {
		_ = s.Client.ClosePractice(s.CurrentPractice)
	}
	p, err := s.Client.StartPractice(id, color)
	if err != nil {
		return err
	}
	s.SetPractice(p)
	fmt.Fprintf(s.Output(), "Practicing %s%s%s as %s\n", display.Cyan, s.CurrentTitle, display.Reset, display.ColorForTurn(color))
	printPractice(s, p)
	return nil
}

func hintHandler(s *session.Session, args []string) error {
	if err := requirePractice(s); err != nil {
		return err
	}
	p, err := s.Client.PracticeHint(s.CurrentPractice)
	if err != nil {
		return err
	}
	s.SetPractice(p)
	fmt.Fprintf(s.Output(), "Hint: %s%s%s\n", display.Yellow, p.Hint, display.Reset)
	return nil
}

func skipHandler(s *session.Session, args []string) error {
	if err := requirePractice(s); err != nil {
		return err
	}
	p, err := s.Client.PracticeSkip(s.CurrentPractice)
	if err != nil {
		return err
	}
	s.SetPractice(p)
	printPractice(s, p)
	return nil
}

func statusHandler(s *session.Session, args []string) error {
	if err := requirePractice(s); err != nil {
		return err
	}
	p, err := s.Client.GetPractice(s.CurrentPractice)
	if err != nil {
		return err
	}
	s.SetPractice(p)
	printPractice(s, p)
	return nil
}

func requirePractice(s *session.Session) error {
	if s.CurrentPractice == "" {
		return fmt.Errorf("no practice open, use 'practice'")
	}
	return nil
}

func printPractice(s *session.Session, p *api.PracticeResponse) {
	out := s.Output()
	if fb := p.Feedback; fb != nil {
		if fb.Correct {
			fmt.Fprintf(out, "%sCorrect: %s%s", display.Green, fb.Played, display.Reset)
			if fb.Reply != "" {
				fmt.Fprintf(out, "  reply %s", fb.Reply)
			}
			fmt.Fprintln(out)
		} else {
			fmt.Fprintf(out, "%s%s is not the line move, try again%s\n", display.Red, fb.Played, display.Reset)
		}
	}

	fmt.Fprintf(out, "Moves: %s\n", orNone(p.Moves))
	fmt.Fprintf(out, "Progress: %d%%  mistakes %d  hints %d  skips %d\n", p.Progress, p.Mistakes, p.Hints, p.Skips)
	if p.State == "completed" {
		fmt.Fprintf(out, "%sLine complete%s\n", display.Green, display.Reset)
		return
	}
	fmt.Fprintf(out, "To move: %s\n", display.ColorForTurn(p.Turn))
}
