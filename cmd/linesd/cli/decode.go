package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"chesslines/internal/server/notation"
	"chesslines/internal/server/rules"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// DecodeCommand returns the "decode" command, which replays move text
// offline and reports what a stored line would contain
func DecodeCommand() *cobra.Command {
	var fen, file string

	cmd := &cobra.Command{
		Use:   "decode [movetext...]",
		Short: "Replay move text and print the playable line",
		Long: `Decode replays SAN move text from the starting position (or --fen) and
prints the normalized line, the final position and any skipped tokens.
Move text is read from the arguments, from --file, or from stdin when
neither is given.

Example:
  linesd decode 1. e4 e5 2. Nf3 Nc6
  linesd decode --file italian.pgn`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readMovetext(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}
			return decode(cmd.OutOrStdout(), text, fen)
		},
	}
	cmd.Flags().StringVar(&fen, "fen", rules.StartingFEN, "Starting position")
	cmd.Flags().StringVar(&file, "file", "", "Read move text from a file")
	return cmd
}

func readMovetext(stdin io.Reader, file string, args []string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read move text: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read move text: %w", err)
		}
		return string(data), nil
	}
}

func decode(out io.Writer, text, fen string) error {
	canonical, err := rules.ValidateFEN(fen)
	if err != nil {
		return err
	}

	codec := notation.NewCodec(rules.New(), zerolog.Nop())
	res := codec.Decode(text, canonical)

	line, err := notation.FormatPath(res.Tree, res.LeafID)
	if err != nil {
		return err
	}
	leaf, err := res.Tree.Node(res.LeafID)
	if err != nil {
		return err
	}
	ply, _ := res.Tree.Ply(res.LeafID)

	fmt.Fprintf(out, "Line:    %s\n", line)
	fmt.Fprintf(out, "Plies:   %d\n", ply)
	fmt.Fprintf(out, "Final:   %s\n", leaf.FEN)
	for _, s := range res.Skipped {
		fmt.Fprintf(out, "Skipped: %q at token %d: %v\n", s.Token, s.Index, s.Err)
	}

	board, err := rules.Board(leaf.FEN)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n", board)
	return nil
}
