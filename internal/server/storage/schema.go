package storage

import "time"

// LineRecord represents a row in the lines table
type LineRecord struct {
	LineID    string    `db:"line_id"`
	Title     string    `db:"title"`
	PGN       string    `db:"pgn"`
	FEN       string    `db:"fen"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ClassroomRecord represents a row in the classrooms table. LineCount is
// filled on reads.
type ClassroomRecord struct {
	ClassroomID string    `db:"classroom_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Tags        []string  `db:"tags"`
	Visibility  string    `db:"visibility"`
	LineCount   int       `db:"-"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Classroom visibility values
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// PracticeRecord represents a finished or abandoned drill
type PracticeRecord struct {
	ResultID    int64     `db:"result_id"`
	LineID      string    `db:"line_id"`
	SessionID   string    `db:"session_id"`
	PlayerColor string    `db:"player_color"`
	MovesPlayed int       `db:"moves_played"`
	Mistakes    int       `db:"mistakes"`
	Hints       int       `db:"hints"`
	Skips       int       `db:"skips"`
	Completed   bool      `db:"completed"`
	FinishedAt  time.Time `db:"finished_at"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS lines (
	line_id TEXT PRIMARY KEY,
	title TEXT UNIQUE NOT NULL COLLATE NOCASE,
	pgn TEXT NOT NULL DEFAULT '',
	fen TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_lines_updated_at ON lines(updated_at);
CREATE INDEX IF NOT EXISTS idx_lines_pgn ON lines(pgn);

CREATE TABLE IF NOT EXISTS classrooms (
	classroom_id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '',
	visibility TEXT NOT NULL DEFAULT 'private' CHECK(visibility IN ('public', 'private')),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_classrooms_visibility ON classrooms(visibility, created_at);

CREATE TABLE IF NOT EXISTS classroom_lines (
	classroom_id TEXT NOT NULL,
	line_id TEXT NOT NULL,
	added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (classroom_id, line_id),
	FOREIGN KEY (classroom_id) REFERENCES classrooms(classroom_id) ON DELETE CASCADE,
	FOREIGN KEY (line_id) REFERENCES lines(line_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_classroom_lines_line_id ON classroom_lines(line_id);

CREATE TABLE IF NOT EXISTS practice_results (
	result_id INTEGER PRIMARY KEY AUTOINCREMENT,
	line_id TEXT NOT NULL,
	session_id TEXT NOT NULL,
	player_color TEXT NOT NULL CHECK(player_color IN ('w', 'b')),
	moves_played INTEGER NOT NULL DEFAULT 0,
	mistakes INTEGER NOT NULL DEFAULT 0,
	hints INTEGER NOT NULL DEFAULT 0,
	skips INTEGER NOT NULL DEFAULT 0,
	completed INTEGER NOT NULL DEFAULT 0,
	finished_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (line_id) REFERENCES lines(line_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_practice_results_line_id ON practice_results(line_id);
`
