package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const classroomColumns = `c.classroom_id, c.title, c.description, c.tags, c.visibility, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM classroom_lines cl WHERE cl.classroom_id = c.classroom_id)`

// CreateClassroom inserts a classroom
func (s *Store) CreateClassroom(record ClassroomRecord) error {
	query := `INSERT INTO classrooms (
		classroom_id, title, description, tags, visibility, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		record.ClassroomID, record.Title, record.Description, joinTags(record.Tags),
		record.Visibility, record.CreatedAt.UTC(), record.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert classroom: %w", err)
	}
	return nil
}

// GetClassroom fetches one classroom with its line count
func (s *Store) GetClassroom(classroomID string) (*ClassroomRecord, error) {
	query := `SELECT ` + classroomColumns + ` FROM classrooms c WHERE c.classroom_id = ?`

	r, err := scanClassroom(s.db.QueryRow(query, classroomID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClassroomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return r, nil
}

// ListClassrooms returns classrooms, newest first. An empty or "*"
// visibility returns every classroom.
func (s *Store) ListClassrooms(visibility string) ([]ClassroomRecord, error) {
	query := `SELECT ` + classroomColumns + ` FROM classrooms c WHERE 1=1`

	var args []interface{}
	if visibility != "" && visibility != "*" {
		query += " AND c.visibility = ?"
		args = append(args, visibility)
	}
	query += " ORDER BY c.created_at DESC, c.title ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	classrooms := []ClassroomRecord{}
	for rows.Next() {
		r, err := scanClassroom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		classrooms = append(classrooms, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return classrooms, nil
}

// UpdateClassroom overwrites title, description, tags and visibility
func (s *Store) UpdateClassroom(record ClassroomRecord) error {
	query := `UPDATE classrooms SET title = ?, description = ?, tags = ?, visibility = ?, updated_at = ?
		WHERE classroom_id = ?`

	result, err := s.db.Exec(query,
		record.Title, record.Description, joinTags(record.Tags), record.Visibility,
		record.UpdatedAt.UTC(), record.ClassroomID,
	)
	if err != nil {
		return fmt.Errorf("failed to update classroom: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrClassroomNotFound
	}
	return nil
}

// DeleteClassroom removes a classroom. Its lines are kept.
func (s *Store) DeleteClassroom(classroomID string) error {
	result, err := s.db.Exec(`DELETE FROM classrooms WHERE classroom_id = ?`, classroomID)
	if err != nil {
		return fmt.Errorf("failed to delete classroom: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClassroomNotFound
	}
	return nil
}

// ClassroomLines returns the lines filed under a classroom in the order they were added
func (s *Store) ClassroomLines(classroomID string) ([]LineRecord, error) {
	if err := classroomExists(s.db, classroomID); err != nil {
		return nil, err
	}

	query := `SELECT l.line_id, l.title, l.pgn, l.fen, l.created_at, l.updated_at
		FROM lines l JOIN classroom_lines cl ON cl.line_id = l.line_id
		WHERE cl.classroom_id = ?
		ORDER BY cl.added_at ASC, l.title ASC`

	rows, err := s.db.Query(query, classroomID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return scanLines(rows)
}

// AddClassroomLine files an existing line under a classroom. Adding a line
// twice is not an error.
func (s *Store) AddClassroomLine(classroomID, lineID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := classroomExists(tx, classroomID); err != nil {
		return err
	}
	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM lines WHERE line_id = ?`, lineID).Scan(&count); err != nil {
		return fmt.Errorf("failed to check line: %w", err)
	}
	if count == 0 {
		return ErrLineNotFound
	}
	if err := linkLine(tx, classroomID, lineID); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveClassroomLine takes a line out of a classroom without deleting it
func (s *Store) RemoveClassroomLine(classroomID, lineID string) error {
	if err := classroomExists(s.db, classroomID); err != nil {
		return err
	}

	result, err := s.db.Exec(`DELETE FROM classroom_lines WHERE classroom_id = ? AND line_id = ?`, classroomID, lineID)
	if err != nil {
		return fmt.Errorf("failed to remove line: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrLineNotFound
	}
	return nil
}

type queryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

func classroomExists(q queryRower, classroomID string) error {
	var count int
	if err := q.QueryRow(`SELECT COUNT(*) FROM classrooms WHERE classroom_id = ?`, classroomID).Scan(&count); err != nil {
		return fmt.Errorf("failed to check classroom: %w", err)
	}
	if count == 0 {
		return ErrClassroomNotFound
	}
	return nil
}

func linkLine(tx *sql.Tx, classroomID, lineID string) error {
	_, err := tx.Exec(
		`INSERT OR IGNORE INTO classroom_lines (classroom_id, line_id, added_at) VALUES (?, ?, ?)`,
		classroomID, lineID, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to link line: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClassroom(row rowScanner) (*ClassroomRecord, error) {
	var r ClassroomRecord
	var tags string
	if err := row.Scan(
		&r.ClassroomID, &r.Title, &r.Description, &tags, &r.Visibility,
		&r.CreatedAt, &r.UpdatedAt, &r.LineCount,
	); err != nil {
		return nil, err
	}
	r.Tags = splitTags(tags)
	return &r, nil
}

// Tags are stored comma separated; callers keep commas out of tag values
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
