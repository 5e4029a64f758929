package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const lineColumns = `line_id, title, pgn, fen, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CreateLine inserts a line, rejecting a title or move text already in use
func (s *Store) CreateLine(record LineRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertLine(tx, record); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateClassroomLine inserts a line and files it under a classroom in one transaction
func (s *Store) CreateClassroomLine(classroomID string, record LineRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := classroomExists(tx, classroomID); err != nil {
		return err
	}
	if err := insertLine(tx, record); err != nil {
		return err
	}
	if err := linkLine(tx, classroomID, record.LineID); err != nil {
		return err
	}
	return tx.Commit()
}

func insertLine(tx *sql.Tx, record LineRecord) error {
	if err := checkUnique(tx, record); err != nil {
		return err
	}

	query := `INSERT INTO lines (` + lineColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.Exec(query,
		record.LineID, record.Title, record.PGN, record.FEN,
		record.CreatedAt.UTC(), record.UpdatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert line: %w", err)
	}
	return nil
}

// GetLine fetches one line by id
func (s *Store) GetLine(lineID string) (*LineRecord, error) {
	query := `SELECT ` + lineColumns + ` FROM lines WHERE line_id = ?`

	var r LineRecord
	err := s.db.QueryRow(query, lineID).Scan(
		&r.LineID, &r.Title, &r.PGN, &r.FEN, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &r, nil
}

// ListLines returns lines, most recently updated first. An empty or "*"
// filter matches every title; otherwise titles containing filter match.
func (s *Store) ListLines(filter string) ([]LineRecord, error) {
	query := `SELECT ` + lineColumns + ` FROM lines WHERE 1=1`

	var args []interface{}
	if filter != "" && filter != "*" {
		query += ` AND title LIKE ? ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(filter)+"%")
	}
	query += " ORDER BY updated_at DESC, title ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return scanLines(rows)
}

func scanLines(rows *sql.Rows) ([]LineRecord, error) {
	defer rows.Close()

	lines := []LineRecord{}
	for rows.Next() {
		var r LineRecord
		if err := rows.Scan(&r.LineID, &r.Title, &r.PGN, &r.FEN, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		lines = append(lines, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return lines, nil
}

// UpdateLine overwrites title, pgn and fen of an existing line
func (s *Store) UpdateLine(record LineRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkUnique(tx, record); err != nil {
		return err
	}

	query := `UPDATE lines SET title = ?, pgn = ?, fen = ?, updated_at = ? WHERE line_id = ?`
	result, err := tx.Exec(query, record.Title, record.PGN, record.FEN, record.UpdatedAt.UTC(), record.LineID)
	if err != nil {
		return fmt.Errorf("failed to update line: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrLineNotFound
	}

	return tx.Commit()
}

// DeleteLine removes a line, its classroom links and its practice results
func (s *Store) DeleteLine(lineID string) error {
	result, err := s.db.Exec(`DELETE FROM lines WHERE line_id = ?`, lineID)
	if err != nil {
		return fmt.Errorf("failed to delete line: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLineNotFound
	}
	return nil
}

// CountLines returns the number of stored lines
func (s *Store) CountLines() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM lines`).Scan(&n)
	return n, err
}

// checkUnique rejects a title used by another line, and non-empty move text
// another line already plays from the same position
func checkUnique(tx *sql.Tx, record LineRecord) error {
	var count int
	err := tx.QueryRow(
		`SELECT COUNT(*) FROM lines WHERE title = ? COLLATE NOCASE AND line_id != ?`,
		record.Title, record.LineID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check title: %w", err)
	}
	if count > 0 {
		return ErrDuplicateLine
	}

	if record.PGN == "" {
		return nil
	}
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM lines WHERE pgn = ? AND fen = ? AND line_id != ?`,
		record.PGN, record.FEN, record.LineID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check moves: %w", err)
	}
	if count > 0 {
		return ErrDuplicatePGN
	}
	return nil
}

// now is replaced in tests
var now = func() time.Time { return time.Now().UTC() }
