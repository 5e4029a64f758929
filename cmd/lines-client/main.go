// Package main implements an interactive client for the opening lines API
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"chesslines/internal/client/commands"
	"chesslines/internal/client/display"
	"chesslines/internal/client/session"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func main() {
	var apiURL string

	rootCmd := &cobra.Command{
		Use:           "lines-client",
		Short:         "Interactive client for the opening lines API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(strings.TrimRight(apiURL, "/"))
		},
	}
	rootCmd.Flags().StringVar(&apiURL, "api", "http://localhost:8080", "API base URL")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
}

func run(apiURL string) error {
	s := session.New(apiURL)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("lines"),
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Printf("%sOpening Lines Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" {
			break
		}

		s.Verbose = strings.HasSuffix(line, " -v")
		line = strings.TrimSuffix(line, " -v")

		if errors.Is(registry.Execute(line), commands.ErrExit) {
			break
		}
	}

	closeOpen(s)
	fmt.Printf("%sGoodbye!%s\n", display.Cyan, display.Reset)
	return nil
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lines_history"
	}
	return filepath.Join(home, ".lines_history")
}

// closeOpen releases server-side sessions so they do not wait for expiry
func closeOpen(s *session.Session) {
	if s.CurrentRecording != "" {
		_ = s.Client.CloseRecording(s.CurrentRecording)
	}
	if s.CurrentPractice != "" {
		_ = s.Client.ClosePractice(s.CurrentPractice)
	}
}

func buildPrompt(s *session.Session) string {
	prompt := "lines"

	if s.CurrentTitle != "" {
		title := s.CurrentTitle
		if len(title) > 24 {
			title = title[:21] + "..."
		}
		prompt += display.Yellow + " [" + display.Reset + display.White + title + display.Reset + display.Yellow + "]"
	}

	switch {
	case s.Practice != nil:
		prompt += fmt.Sprintf(" practice %d%% %s", s.Practice.Progress, display.ColorForTurn(s.Practice.Turn))
	case s.Tree != nil:
		mode := "rec"
		if s.Tree.Dirty {
			mode = "rec*"
		}
		prompt += " " + display.Magenta + mode + display.Reset
	}

	return display.Prompt(prompt)
}
