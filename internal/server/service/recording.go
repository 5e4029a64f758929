package service

import (
	"strings"
	"sync"
	"time"

	"chesslines/internal/server/movetree"
	"chesslines/internal/server/notation"

	"github.com/google/uuid"
)

// recording is an editable tree loaded from a line. The cursor is the node
// new moves are appended to.
type recording struct {
	mu         sync.Mutex
	lineID     string
	tree       *movetree.Tree
	cursor     string
	skipped    []notation.SkippedToken
	dirty      bool
	generation int // bumped on every new node
	lastActive time.Time
}

func (r *recording) idleSince() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// TreeView is a consistent snapshot of a tree for callers outside the service
type TreeView struct {
	SessionID  string
	LineID     string
	RootID     string
	CursorID   string
	Nodes      []movetree.Node
	MainLine   string
	Path       string
	Rendered   string
	Variations []string
	Ahead      string // main line moves after the cursor, up to the next branch
	Skipped    []notation.SkippedToken
	Dirty      bool
}

// LineTree decodes a stored line without opening a session
func (s *Service) LineTree(lineID string) (*TreeView, error) {
	record, err := s.store.GetLine(lineID)
	if err != nil {
		return nil, err
	}
	res := s.codec.Decode(record.PGN, record.FEN)
	r := &recording{lineID: lineID, tree: res.Tree, cursor: res.LeafID, skipped: res.Skipped}
	return r.view(""), nil
}

// OpenRecording loads a line into a new editable session with the cursor
// on the last main line move
func (s *Service) OpenRecording(lineID string) (*TreeView, error) {
	record, err := s.store.GetLine(lineID)
	if err != nil {
		return nil, err
	}
	res := s.codec.Decode(record.PGN, record.FEN)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sessionSlotAvailable() {
		return nil, ErrResourceLimit
	}

	id := uuid.New().String()
	r := &recording{
		lineID:     lineID,
		tree:       res.Tree,
		cursor:     res.LeafID,
		skipped:    res.Skipped,
		lastActive: time.Now(),
	}
	s.recordings[id] = r

	s.log.Debug().Str("sessionId", id).Str("lineId", lineID).Msg("recording opened")
	return r.view(id), nil
}

// GetRecording returns the current state of a recording
func (s *Service) GetRecording(sessionID string) (*TreeView, error) {
	return s.withRecording(sessionID, func(r *recording) error { return nil })
}

// RecordMove plays a UCI move from the cursor. Replaying an existing move
// moves the cursor onto it; a new move becomes the last variation.
func (s *Service) RecordMove(sessionID, uci string) (*TreeView, error) {
	m, err := movetree.ParseCandidate(uci)
	if err != nil {
		return nil, &movetree.IllegalMoveError{Move: uci, Err: err}
	}

	return s.withRecording(sessionID, func(r *recording) error {
		before := r.tree.Len()
		id, err := r.tree.AppendMove(r.cursor, m)
		if err != nil {
			return err
		}
		r.cursor = id
		if r.tree.Len() != before {
			r.dirty = true
			r.generation++
		}
		return nil
	})
}

// Navigate moves the cursor to any node of the tree
func (s *Service) Navigate(sessionID, nodeID string) (*TreeView, error) {
	return s.withRecording(sessionID, func(r *recording) error {
		if !r.tree.Has(nodeID) {
			return &movetree.NodeNotFoundError{ID: nodeID}
		}
		r.cursor = nodeID
		return nil
	})
}

// Annotate sets comment, variation name and NAGs of a node. Annotations
// live in the session only; saved lines keep the bare main line.
func (s *Service) Annotate(sessionID, nodeID string, a movetree.Annotation) (*TreeView, error) {
	return s.withRecording(sessionID, func(r *recording) error {
		return r.tree.Annotate(nodeID, a)
	})
}

// RecordingBoard returns the position at the cursor
func (s *Service) RecordingBoard(sessionID string) (*Board, error) {
	var board *Board
	_, err := s.withRecording(sessionID, func(r *recording) error {
		n, err := r.tree.Node(r.cursor)
		if err != nil {
			return err
		}
		board, err = boardAt(n.FEN)
		return err
	})
	if err != nil {
		return nil, err
	}
	return board, nil
}

// SaveRecording writes the main line of the session back to its line. The
// session stays dirty if moves were recorded while the line was written.
func (s *Service) SaveRecording(sessionID string) (*Line, error) {
	var (
		rec        *recording
		pgn        string
		generation int
		variations int
	)
	_, err := s.withRecording(sessionID, func(r *recording) error {
		var err error
		if pgn, err = notation.Encode(r.tree, r.tree.RootID()); err != nil {
			return err
		}
		mainLine, err := r.tree.MainLineDescent(r.tree.RootID())
		if err != nil {
			return err
		}
		variations = r.tree.Len() - 1 - len(mainLine)
		rec, generation = r, r.generation
		return nil
	})
	if err != nil {
		return nil, err
	}

	line, err := s.UpdateLine(rec.lineID, LineUpdate{PGN: &pgn})
	if err != nil {
		return nil, err
	}
	rec.markSaved(generation)

	if variations > 0 {
		s.log.Info().Str("sessionId", sessionID).Int("droppedNodes", variations).Msg("saved main line only")
	}
	return line, nil
}

// markSaved clears dirty unless the tree grew after generation was read
func (r *recording) markSaved(generation int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation == generation {
		r.dirty = false
	}
}

// CloseRecording discards a session without saving
func (s *Service) CloseRecording(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recordings[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.recordings, sessionID)
	return nil
}

func (s *Service) withRecording(sessionID string, fn func(*recording) error) (*TreeView, error) {
	s.mu.RLock()
	r, ok := s.recordings[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = time.Now()
	if err := fn(r); err != nil {
		return nil, err
	}
	return r.view(sessionID), nil
}

// view must be called with r.mu held
func (r *recording) view(sessionID string) *TreeView {
	v := &TreeView{
		SessionID: sessionID,
		LineID:    r.lineID,
		RootID:    r.tree.RootID(),
		CursorID:  r.cursor,
		Nodes:     r.tree.Nodes(),
		Skipped:   r.skipped,
		Dirty:     r.dirty,
	}
	v.MainLine, _ = notation.Encode(r.tree, v.RootID)
	v.Path, _ = notation.FormatPath(r.tree, r.cursor)
	v.Rendered, _ = notation.Render(r.tree, v.RootID)
	v.Variations, _ = r.tree.SiblingVariations(r.cursor)
	if run, err := r.tree.StraightRun(r.cursor); err == nil {
		sans := make([]string, 0, len(run))
		for _, id := range run {
			n, _ := r.tree.Node(id)
			sans = append(sans, n.SAN)
		}
		v.Ahead = strings.Join(sans, " ")
	}
	return v
}
