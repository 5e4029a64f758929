package service

import (
	"sync"
	"time"

	"chesslines/internal/server/core"
	"chesslines/internal/server/movetree"
	"chesslines/internal/server/practice"
	"chesslines/internal/server/rules"
	"chesslines/internal/server/storage"

	"github.com/google/uuid"
)

type drill struct {
	mu         sync.Mutex
	lineID     string
	session    *practice.Session
	lastActive time.Time
	recorded   bool
}

func (d *drill) idleSince() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastActive
}

// PracticeView is a snapshot of a practice session
type PracticeView struct {
	SessionID string
	LineID    string
	Color     core.Color
	State     core.State
	FEN       string
	Turn      string
	Moves     string
	History   []practice.Step
	Progress  int
	Mistakes  int
	Hints     int
	Skips     int
	Feedback  *practice.Feedback
	Hint      string
}

// StartPractice opens a drill over the main line of a stored line
func (s *Service) StartPractice(lineID string, color core.Color) (*PracticeView, error) {
	record, err := s.store.GetLine(lineID)
	if err != nil {
		return nil, err
	}
	res := s.codec.Decode(record.PGN, record.FEN)

	session, err := practice.New(res.Tree, s.oracle, color)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sessionSlotAvailable() {
		return nil, ErrResourceLimit
	}

	id := uuid.New().String()
	d := &drill{lineID: lineID, session: session, lastActive: time.Now()}
	s.practices[id] = d

	s.log.Debug().Str("sessionId", id).Str("lineId", lineID).Str("color", color.String()).Msg("practice started")

	d.mu.Lock()
	defer d.mu.Unlock()
	s.recordLocked(id, d)
	return d.view(id), nil
}

// GetPractice returns the state of a practice session
func (s *Service) GetPractice(sessionID string) (*PracticeView, error) {
	return s.withDrill(sessionID, func(*drill, *PracticeView) error { return nil })
}

// PracticeMove submits the user's move
func (s *Service) PracticeMove(sessionID, uci string) (*PracticeView, error) {
	m, err := movetree.ParseCandidate(uci)
	if err != nil {
		return nil, &movetree.IllegalMoveError{Move: uci, Err: err}
	}

	return s.withDrill(sessionID, func(d *drill, v *PracticeView) error {
		fb, err := d.session.Play(m)
		if err != nil {
			return err
		}
		v.Feedback = &fb
		return nil
	})
}

// PracticeHint reveals the expected move
func (s *Service) PracticeHint(sessionID string) (*PracticeView, error) {
	return s.withDrill(sessionID, func(d *drill, v *PracticeView) error {
		san, err := d.session.Hint()
		if err != nil {
			return err
		}
		v.Hint = san
		return nil
	})
}

// PracticeSkip plays the expected move for the user
func (s *Service) PracticeSkip(sessionID string) (*PracticeView, error) {
	return s.withDrill(sessionID, func(d *drill, v *PracticeView) error {
		fb, err := d.session.Skip()
		if err != nil {
			return err
		}
		v.Feedback = &fb
		return nil
	})
}

// PracticeBoard returns the current position of a drill
func (s *Service) PracticeBoard(sessionID string) (*Board, error) {
	v, err := s.GetPractice(sessionID)
	if err != nil {
		return nil, err
	}
	return boardAt(v.FEN)
}

// ClosePractice ends a drill, storing its result
func (s *Service) ClosePractice(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.practices[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	s.finishDrill(sessionID, d)
	delete(s.practices, sessionID)
	return nil
}

func (s *Service) withDrill(sessionID string, fn func(*drill, *PracticeView) error) (*PracticeView, error) {
	s.mu.RLock()
	d, ok := s.practices[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastActive = time.Now()

	v := &PracticeView{}
	if err := fn(d, v); err != nil {
		return nil, err
	}
	s.recordLocked(sessionID, d)

	out := d.view(sessionID)
	out.Feedback = v.Feedback
	out.Hint = v.Hint
	return out, nil
}

// finishDrill records the drill result once, completed or not
func (s *Service) finishDrill(sessionID string, d *drill) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s.record(sessionID, d)
}

// recordLocked stores the result of a completed drill; d.mu must be held
func (s *Service) recordLocked(sessionID string, d *drill) {
	if d.session.Completed() {
		s.record(sessionID, d)
	}
}

func (s *Service) record(sessionID string, d *drill) {
	if d.recorded {
		return
	}
	d.recorded = true

	played := 0
	for _, step := range d.session.History() {
		if step.Color == d.session.Color() {
			played++
		}
	}

	s.store.RecordPracticeResult(storage.PracticeRecord{
		LineID:      d.lineID,
		SessionID:   sessionID,
		PlayerColor: d.session.Color().String(),
		MovesPlayed: played,
		Mistakes:    d.session.Mistakes(),
		Hints:       d.session.Hints(),
		Skips:       d.session.Skips(),
		Completed:   d.session.Completed(),
		FinishedAt:  time.Now().UTC(),
	})

	s.log.Info().
		Str("sessionId", sessionID).
		Str("lineId", d.lineID).
		Bool("completed", d.session.Completed()).
		Int("mistakes", d.session.Mistakes()).
		Msg("practice finished")
}

// view must be called with d.mu held
func (d *drill) view(sessionID string) *PracticeView {
	pos := d.session.Position()
	return &PracticeView{
		SessionID: sessionID,
		LineID:    d.lineID,
		Color:     d.session.Color(),
		State:     d.session.State(),
		FEN:       pos.FEN,
		Turn:      turnOf(pos.FEN),
		Moves:     d.session.Moves(),
		History:   d.session.History(),
		Progress:  d.session.Progress(),
		Mistakes:  d.session.Mistakes(),
		Hints:     d.session.Hints(),
		Skips:     d.session.Skips(),
	}
}

func turnOf(fen string) string {
	if rules.SideToMove(fen) == "b" {
		return "black"
	}
	return "white"
}
