package service

import (
	"slices"
	"strings"
	"sync"

	"chesslines/internal/server/storage"
)

// LineStore is the persistence the service needs. *storage.Store satisfies it.
type LineStore interface {
	CreateLine(storage.LineRecord) error
	GetLine(lineID string) (*storage.LineRecord, error)
	ListLines(filter string) ([]storage.LineRecord, error)
	UpdateLine(storage.LineRecord) error
	DeleteLine(lineID string) error
	CountLines() (int, error)

	CreateClassroom(storage.ClassroomRecord) error
	GetClassroom(classroomID string) (*storage.ClassroomRecord, error)
	ListClassrooms(visibility string) ([]storage.ClassroomRecord, error)
	UpdateClassroom(storage.ClassroomRecord) error
	DeleteClassroom(classroomID string) error
	ClassroomLines(classroomID string) ([]storage.LineRecord, error)
	CreateClassroomLine(classroomID string, record storage.LineRecord) error
	AddClassroomLine(classroomID, lineID string) error
	RemoveClassroomLine(classroomID, lineID string) error

	RecordPracticeResult(storage.PracticeRecord)
	IsHealthy() bool
	Close() error
}

var _ LineStore = (*storage.Store)(nil)

// memoryStore keeps lines and classrooms in process memory; practice results are discarded
type memoryStore struct {
	mu         sync.RWMutex
	lines      map[string]storage.LineRecord
	classrooms map[string]storage.ClassroomRecord
	links      map[string][]string // line ids in the order they were added
}

// NewMemoryStore returns a LineStore that lives only as long as the process
func NewMemoryStore() LineStore {
	return &memoryStore{
		lines:      make(map[string]storage.LineRecord),
		classrooms: make(map[string]storage.ClassroomRecord),
		links:      make(map[string][]string),
	}
}

func (m *memoryStore) CreateLine(r storage.LineRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkUnique(r); err != nil {
		return err
	}
	m.lines[r.LineID] = r
	return nil
}

func (m *memoryStore) GetLine(lineID string) (*storage.LineRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.lines[lineID]
	if !ok {
		return nil, storage.ErrLineNotFound
	}
	return &r, nil
}

func (m *memoryStore) ListLines(filter string) ([]storage.LineRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []storage.LineRecord{}
	for _, r := range m.lines {
		if filter == "" || filter == "*" || strings.Contains(strings.ToLower(r.Title), strings.ToLower(filter)) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b storage.LineRecord) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
	return out, nil
}

func (m *memoryStore) UpdateLine(r storage.LineRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.lines[r.LineID]
	if !ok {
		return storage.ErrLineNotFound
	}
	if err := m.checkUnique(r); err != nil {
		return err
	}
	r.CreatedAt = old.CreatedAt
	m.lines[r.LineID] = r
	return nil
}

func (m *memoryStore) DeleteLine(lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lines[lineID]; !ok {
		return storage.ErrLineNotFound
	}
	delete(m.lines, lineID)
	for id, links := range m.links {
		m.links[id] = slices.DeleteFunc(links, func(l string) bool { return l == lineID })
	}
	return nil
}

func (m *memoryStore) CountLines() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lines), nil
}

func (m *memoryStore) CreateClassroom(r storage.ClassroomRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.Tags = slices.Clone(r.Tags)
	m.classrooms[r.ClassroomID] = r
	return nil
}

func (m *memoryStore) GetClassroom(classroomID string) (*storage.ClassroomRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.classrooms[classroomID]
	if !ok {
		return nil, storage.ErrClassroomNotFound
	}
	return m.withCount(r), nil
}

func (m *memoryStore) ListClassrooms(visibility string) ([]storage.ClassroomRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []storage.ClassroomRecord{}
	for _, r := range m.classrooms {
		if visibility == "" || visibility == "*" || r.Visibility == visibility {
			out = append(out, *m.withCount(r))
		}
	}
	slices.SortFunc(out, func(a, b storage.ClassroomRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
	return out, nil
}

func (m *memoryStore) UpdateClassroom(r storage.ClassroomRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.classrooms[r.ClassroomID]
	if !ok {
		return storage.ErrClassroomNotFound
	}
	r.CreatedAt = old.CreatedAt
	r.Tags = slices.Clone(r.Tags)
	m.classrooms[r.ClassroomID] = r
	return nil
}

func (m *memoryStore) DeleteClassroom(classroomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classrooms[classroomID]; !ok {
		return storage.ErrClassroomNotFound
	}
	delete(m.classrooms, classroomID)
	delete(m.links, classroomID)
	return nil
}

func (m *memoryStore) ClassroomLines(classroomID string) ([]storage.LineRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.classrooms[classroomID]; !ok {
		return nil, storage.ErrClassroomNotFound
	}
	out := make([]storage.LineRecord, 0, len(m.links[classroomID]))
	for _, id := range m.links[classroomID] {
		out = append(out, m.lines[id])
	}
	return out, nil
}

func (m *memoryStore) CreateClassroomLine(classroomID string, r storage.LineRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classrooms[classroomID]; !ok {
		return storage.ErrClassroomNotFound
	}
	if err := m.checkUnique(r); err != nil {
		return err
	}
	m.lines[r.LineID] = r
	m.link(classroomID, r.LineID)
	return nil
}

func (m *memoryStore) AddClassroomLine(classroomID, lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classrooms[classroomID]; !ok {
		return storage.ErrClassroomNotFound
	}
	if _, ok := m.lines[lineID]; !ok {
		return storage.ErrLineNotFound
	}
	m.link(classroomID, lineID)
	return nil
}

func (m *memoryStore) RemoveClassroomLine(classroomID, lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classrooms[classroomID]; !ok {
		return storage.ErrClassroomNotFound
	}
	links := m.links[classroomID]
	i := slices.Index(links, lineID)
	if i < 0 {
		return storage.ErrLineNotFound
	}
	m.links[classroomID] = slices.Delete(links, i, i+1)
	return nil
}

func (m *memoryStore) RecordPracticeResult(storage.PracticeRecord) {}

func (m *memoryStore) IsHealthy() bool { return true }

func (m *memoryStore) Close() error { return nil }

// link must be called with mu held
func (m *memoryStore) link(classroomID, lineID string) {
	if !slices.Contains(m.links[classroomID], lineID) {
		m.links[classroomID] = append(m.links[classroomID], lineID)
	}
}

// withCount must be called with mu held
func (m *memoryStore) withCount(r storage.ClassroomRecord) *storage.ClassroomRecord {
	r.Tags = slices.Clone(r.Tags)
	if r.Tags == nil {
		r.Tags = []string{}
	}
	r.LineCount = len(m.links[r.ClassroomID])
	return &r
}

// checkUnique must be called with mu held
func (m *memoryStore) checkUnique(r storage.LineRecord) error {
	for id, other := range m.lines {
		if id != r.LineID && strings.EqualFold(other.Title, r.Title) {
			return storage.ErrDuplicateLine
		}
	}
	if r.PGN == "" {
		return nil
	}
	for id, other := range m.lines {
		if id != r.LineID && other.PGN == r.PGN && other.FEN == r.FEN {
			return storage.ErrDuplicatePGN
		}
	}
	return nil
}
