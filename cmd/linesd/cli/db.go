// Package cli holds the offline subcommands of linesd
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"chesslines/internal/server/storage"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// DBCommand returns the "db" command group for managing the SQLite file
func DBCommand() *cobra.Command {
	var path string

	db := &cobra.Command{
		Use:   "db",
		Short: "Manage the lines database",
	}
	db.PersistentFlags().StringVar(&path, "path", "", "Database file path (required)")
	_ = db.MarkPersistentFlagRequired("path")

	db.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewStore(path, false, zerolog.Nop())
			if err != nil {
				return fmt.Errorf("failed to create store: %w", err)
			}
			defer store.Close()

			if err := store.InitDB(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database initialized at: %s\n", path)
			return nil
		},
	})

	db.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Delete the database file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewStore(path, false, zerolog.Nop())
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			if err := store.DeleteDB(); err != nil {
				return fmt.Errorf("failed to delete database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database deleted: %s\n", path)
			return nil
		},
	})

	var filter, lineID string
	query := &cobra.Command{
		Use:   "query",
		Short: "List stored lines, or practice results with --results",
		Long: `Query prints stored lines whose title contains --filter. With --results it
prints practice results instead, optionally limited to one --line-id.

Example:
  linesd db query --path lines.db
  linesd db query --path lines.db --filter sicilian
  linesd db query --path lines.db --results --line-id <id>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewStore(path, false, zerolog.Nop())
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer store.Close()

			results, _ := cmd.Flags().GetBool("results")
			if results {
				return printResults(cmd.OutOrStdout(), store, lineID)
			}
			return printLines(cmd.OutOrStdout(), store, filter)
		},
	}
	query.Flags().StringVar(&filter, "filter", "", "Title substring to match (optional, * for all)")
	query.Flags().StringVar(&lineID, "line-id", "", "Line ID to filter results (optional, * for all)")
	query.Flags().Bool("results", false, "Show practice results instead of lines")
	db.AddCommand(query)

	return db
}

func printLines(out io.Writer, store *storage.Store, filter string) error {
	lines, err := store.ListLines(filter)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(lines) == 0 {
		fmt.Fprintln(out, "No lines found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Line ID\tTitle\tMoves\tUpdated")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, l := range lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			short(l.LineID),
			l.Title,
			truncate(l.PGN, 40),
			l.UpdatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d line(s)\n", len(lines))
	return nil
}

func printResults(out io.Writer, store *storage.Store, lineID string) error {
	results, err := store.QueryPracticeResults(lineID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "No practice results found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Line ID\tColor\tMoves\tMistakes\tHints\tSkips\tDone\tFinished")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%v\t%s\n",
			short(r.LineID),
			r.PlayerColor,
			r.MovesPlayed,
			r.Mistakes,
			r.Hints,
			r.Skips,
			r.Completed,
			r.FinishedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d result(s)\n", len(results))
	return nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
