package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chesslines/internal/server/movetree"
	"chesslines/internal/server/notation"
	"chesslines/internal/server/rules"
	"chesslines/internal/server/storage"

	"github.com/rs/zerolog"
)

const (
	MaxSessions        = 1000
	DefaultSessionTTL  = 2 * time.Hour
	CleanupJobInterval = 10 * time.Minute
)

var (
	ErrLineNotFound      = storage.ErrLineNotFound
	ErrDuplicateLine     = storage.ErrDuplicateLine
	ErrDuplicatePGN      = storage.ErrDuplicatePGN
	ErrClassroomNotFound = storage.ErrClassroomNotFound
	ErrInvalidFEN        = rules.ErrInvalidFEN
	ErrInvalidVisibility = errors.New("visibility must be public or private")
	ErrSessionNotFound   = errors.New("session not found")
	ErrResourceLimit     = errors.New("too many active sessions")
)

// Board is a position with its diagram and the moves playable from it
type Board struct {
	FEN        string
	Diagram    string
	LegalMoves []string
}

func boardAt(fen string) (*Board, error) {
	diagram, err := rules.Board(fen)
	if err != nil {
		return nil, err
	}
	moves, err := rules.LegalMoves(fen)
	if err != nil {
		return nil, err
	}
	return &Board{FEN: fen, Diagram: diagram, LegalMoves: moves}, nil
}

// Service coordinates stored lines, recording sessions and practice sessions
type Service struct {
	store      LineStore
	codec      *notation.Codec
	oracle     movetree.Oracle
	log        zerolog.Logger
	sessionTTL time.Duration

	mu         sync.RWMutex
	recordings map[string]*recording
	practices  map[string]*drill
}

// New creates a service over store. Pass NewMemoryStore() to run without persistence.
func New(store LineStore, oracle movetree.Oracle, log zerolog.Logger) *Service {
	return &Service{
		store:      store,
		codec:      notation.NewCodec(oracle, log),
		oracle:     oracle,
		log:        log.With().Str("component", "service").Logger(),
		sessionTTL: DefaultSessionTTL,
		recordings: make(map[string]*recording),
		practices:  make(map[string]*drill),
	}
}

// SetSessionTTL sets how long an idle session survives cleanup
func (s *Service) SetSessionTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionTTL = ttl
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if _, ok := s.store.(*memoryStore); ok {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// LineCount returns the number of stored lines
func (s *Service) LineCount() (int, error) {
	return s.store.CountLines()
}

// SessionCounts returns the number of open recording and practice sessions
func (s *Service) SessionCounts() (recordings, practices int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recordings), len(s.practices)
}

func (s *Service) sessionSlotAvailable() bool {
	return len(s.recordings)+len(s.practices) < MaxSessions
}

// Shutdown drops open sessions and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	s.mu.Lock()
	for id, d := range s.practices {
		s.finishDrill(id, d)
	}
	s.recordings = make(map[string]*recording)
	s.practices = make(map[string]*drill)
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.store.Close() }()

	select {
	case err := <-done:
		if err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	case <-time.After(timeout):
		errs = append(errs, errors.New("storage: close timed out"))
	}

	return errors.Join(errs...)
}

// RunCleanupJob periodically evicts idle sessions until ctx is done
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired(time.Now())
		}
	}
}

func (s *Service) cleanupExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recs, drills int
	for id, r := range s.recordings {
		if now.Sub(r.idleSince()) > s.sessionTTL {
			delete(s.recordings, id)
			recs++
		}
	}
	for id, d := range s.practices {
		if now.Sub(d.idleSince()) > s.sessionTTL {
			s.finishDrill(id, d)
			delete(s.practices, id)
			drills++
		}
	}

	if recs > 0 || drills > 0 {
		s.log.Info().Int("recordings", recs).Int("practices", drills).Msg("evicted idle sessions")
	}
}
