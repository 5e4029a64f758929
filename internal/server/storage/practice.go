package storage

import (
	"database/sql"
	"fmt"
)

// RecordPracticeResult asynchronously records the outcome of a drill
func (s *Store) RecordPracticeResult(record PracticeRecord) {
	if record.FinishedAt.IsZero() {
		record.FinishedAt = now()
	}

	s.enqueue("practice result", func(tx *sql.Tx) error {
		query := `INSERT INTO practice_results (
			line_id, session_id, player_color, moves_played,
			mistakes, hints, skips, completed, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.LineID, record.SessionID, record.PlayerColor, record.MovesPlayed,
			record.Mistakes, record.Hints, record.Skips, record.Completed, record.FinishedAt.UTC(),
		)
		return err
	})
}

// QueryPracticeResults lists drill results, newest first. An empty or "*"
// lineID returns results for every line.
func (s *Store) QueryPracticeResults(lineID string) ([]PracticeRecord, error) {
	query := `SELECT
		result_id, line_id, session_id, player_color, moves_played,
		mistakes, hints, skips, completed, finished_at
	FROM practice_results WHERE 1=1`

	var args []interface{}
	if lineID != "" && lineID != "*" {
		query += " AND line_id = ?"
		args = append(args, lineID)
	}
	query += " ORDER BY finished_at DESC, result_id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	results := []PracticeRecord{}
	for rows.Next() {
		var r PracticeRecord
		if err := rows.Scan(
			&r.ResultID, &r.LineID, &r.SessionID, &r.PlayerColor, &r.MovesPlayed,
			&r.Mistakes, &r.Hints, &r.Skips, &r.Completed, &r.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return results, nil
}
