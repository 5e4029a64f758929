package service

import (
	"time"

	"chesslines/internal/server/notation"
	"chesslines/internal/server/rules"
	"chesslines/internal/server/storage"

	"github.com/google/uuid"
)

// Line is a stored opening line. FEN is the starting position the moves
// are played from; FinalFEN is the position after the last move.
type Line struct {
	ID        string
	Title     string
	PGN       string
	FEN       string
	FinalFEN  string
	Moves     int
	CreatedAt time.Time
	UpdatedAt time.Time
	Skipped   []notation.SkippedToken
}

// LineUpdate holds the fields to change; nil fields are kept
type LineUpdate struct {
	Title *string
	PGN   *string
	FEN   *string
}

// CreateLine stores a new line. The move text is replayed and re-encoded so
// only playable moves are kept; dropped tokens are reported on the result.
func (s *Service) CreateLine(title, pgn, fen string) (*Line, error) {
	return s.createLine(title, pgn, fen, s.store.CreateLine)
}

// CreateClassroomLine stores a new line filed under a classroom
func (s *Service) CreateClassroomLine(classroomID, title, pgn, fen string) (*Line, error) {
	return s.createLine(title, pgn, fen, func(r storage.LineRecord) error {
		return s.store.CreateClassroomLine(classroomID, r)
	})
}

func (s *Service) createLine(title, pgn, fen string, insert func(storage.LineRecord) error) (*Line, error) {
	line, err := s.normalize(pgn, fen)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := storage.LineRecord{
		LineID:    uuid.New().String(),
		Title:     title,
		PGN:       line.PGN,
		FEN:       line.FEN,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := insert(record); err != nil {
		return nil, err
	}

	s.log.Info().Str("lineId", record.LineID).Int("moves", line.Moves).Msg("line created")
	return s.toLine(record, line), nil
}

// GetLine returns a stored line
func (s *Service) GetLine(lineID string) (*Line, error) {
	record, err := s.store.GetLine(lineID)
	if err != nil {
		return nil, err
	}
	res := s.codec.Decode(record.PGN, record.FEN)
	return s.toLine(*record, s.summarize(res)), nil
}

// ListLines returns lines whose title contains filter, newest first
func (s *Service) ListLines(filter string) ([]*Line, error) {
	records, err := s.store.ListLines(filter)
	if err != nil {
		return nil, err
	}

	lines := make([]*Line, 0, len(records))
	for _, r := range records {
		res := s.codec.Decode(r.PGN, r.FEN)
		lines = append(lines, s.toLine(r, s.summarize(res)))
	}
	return lines, nil
}

// UpdateLine changes title, move text or starting position of a line
func (s *Service) UpdateLine(lineID string, upd LineUpdate) (*Line, error) {
	record, err := s.store.GetLine(lineID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		record.Title = *upd.Title
	}
	pgn, fen := record.PGN, record.FEN
	if upd.PGN != nil {
		pgn = *upd.PGN
	}
	if upd.FEN != nil {
		fen = *upd.FEN
	}

	line, err := s.normalize(pgn, fen)
	if err != nil {
		return nil, err
	}
	record.PGN = line.PGN
	record.FEN = line.FEN
	record.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateLine(*record); err != nil {
		return nil, err
	}
	return s.toLine(*record, line), nil
}

// DeleteLine removes a line. Open sessions on it keep working until closed.
func (s *Service) DeleteLine(lineID string) error {
	if err := s.store.DeleteLine(lineID); err != nil {
		return err
	}
	s.log.Info().Str("lineId", lineID).Msg("line deleted")
	return nil
}

// normalize validates fen and reduces pgn to its playable main line
func (s *Service) normalize(pgn, fen string) (*Line, error) {
	if fen == "" {
		fen = rules.StartingFEN
	}
	canonical, err := rules.ValidateFEN(fen)
	if err != nil {
		return nil, err
	}

	res := s.codec.Decode(pgn, canonical)
	line := s.summarize(res)
	if line.PGN, err = notation.Encode(res.Tree, res.RootID); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *Service) summarize(res *notation.DecodeResult) *Line {
	line := &Line{
		FEN:     res.Tree.Root().FEN,
		Skipped: res.Skipped,
	}
	if leaf, err := res.Tree.Node(res.LeafID); err == nil {
		line.FinalFEN = leaf.FEN
	}
	if ply, err := res.Tree.Ply(res.LeafID); err == nil {
		line.Moves = ply
	}
	return line
}

func (s *Service) toLine(r storage.LineRecord, summary *Line) *Line {
	return &Line{
		ID:        r.LineID,
		Title:     r.Title,
		PGN:       r.PGN,
		FEN:       r.FEN,
		FinalFEN:  summary.FinalFEN,
		Moves:     summary.Moves,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Skipped:   summary.Skipped,
	}
}
