package service

import (
	"strings"
	"time"

	"chesslines/internal/server/storage"

	"github.com/google/uuid"
)

// Classroom groups lines under a title. Lines is only filled by GetClassroom.
type Classroom struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	Visibility  string
	LineCount   int
	Lines       []*Line
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClassroomUpdate holds the fields to change; nil fields are kept. A non-nil
// empty Tags clears the tags.
type ClassroomUpdate struct {
	Title       *string
	Description *string
	Tags        []string
	Visibility  *string
}

// CreateClassroom stores a new classroom. Tags may be given one per entry or
// comma separated; an empty visibility means private.
func (s *Service) CreateClassroom(title, description string, tags []string, visibility string) (*Classroom, error) {
	visibility, err := normalizeVisibility(visibility)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := storage.ClassroomRecord{
		ClassroomID: uuid.New().String(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Tags:        normalizeTags(tags),
		Visibility:  visibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateClassroom(record); err != nil {
		return nil, err
	}

	s.log.Info().Str("classroomId", record.ClassroomID).Str("visibility", visibility).Msg("classroom created")
	return toClassroom(record), nil
}

// GetClassroom returns a classroom with its lines
func (s *Service) GetClassroom(classroomID string) (*Classroom, error) {
	record, err := s.store.GetClassroom(classroomID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ClassroomLines(classroomID)
	if err != nil {
		return nil, err
	}

	c := toClassroom(*record)
	c.Lines = make([]*Line, 0, len(records))
	for _, r := range records {
		res := s.codec.Decode(r.PGN, r.FEN)
		c.Lines = append(c.Lines, s.toLine(r, s.summarize(res)))
	}
	c.LineCount = len(c.Lines)
	return c, nil
}

// ListClassrooms returns classrooms newest first. An empty visibility lists all of them.
func (s *Service) ListClassrooms(visibility string) ([]*Classroom, error) {
	if visibility != "" {
		v, err := normalizeVisibility(visibility)
		if err != nil {
			return nil, err
		}
		visibility = v
	}
	records, err := s.store.ListClassrooms(visibility)
	if err != nil {
		return nil, err
	}

	out := make([]*Classroom, 0, len(records))
	for _, r := range records {
		out = append(out, toClassroom(r))
	}
	return out, nil
}

// UpdateClassroom changes title, description, tags or visibility
func (s *Service) UpdateClassroom(classroomID string, upd ClassroomUpdate) (*Classroom, error) {
	record, err := s.store.GetClassroom(classroomID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		record.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Description != nil {
		record.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Tags != nil {
		record.Tags = normalizeTags(upd.Tags)
	}
	if upd.Visibility != nil {
		if record.Visibility, err = normalizeVisibility(*upd.Visibility); err != nil {
			return nil, err
		}
	}
	record.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateClassroom(*record); err != nil {
		return nil, err
	}
	return toClassroom(*record), nil
}

// DeleteClassroom removes a classroom; its lines stay in the library
func (s *Service) DeleteClassroom(classroomID string) error {
	if err := s.store.DeleteClassroom(classroomID); err != nil {
		return err
	}
	s.log.Info().Str("classroomId", classroomID).Msg("classroom deleted")
	return nil
}

// AddLineToClassroom files an existing line under a classroom
func (s *Service) AddLineToClassroom(classroomID, lineID string) (*Classroom, error) {
	if err := s.store.AddClassroomLine(classroomID, lineID); err != nil {
		return nil, err
	}
	return s.GetClassroom(classroomID)
}

// RemoveLineFromClassroom takes a line out of a classroom without deleting it
func (s *Service) RemoveLineFromClassroom(classroomID, lineID string) (*Classroom, error) {
	if err := s.store.RemoveClassroomLine(classroomID, lineID); err != nil {
		return nil, err
	}
	return s.GetClassroom(classroomID)
}

func normalizeVisibility(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", storage.VisibilityPrivate:
		return storage.VisibilityPrivate, nil
	case storage.VisibilityPublic:
		return storage.VisibilityPublic, nil
	}
	return "", ErrInvalidVisibility
}

// normalizeTags splits comma separated entries, trims them and drops empty
// and repeated tags
func normalizeTags(tags []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, entry := range tags {
		for _, t := range strings.Split(entry, ",") {
			t = strings.TrimSpace(t)
			key := strings.ToLower(t)
			if t == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, t)
		}
	}
	return out
}

func toClassroom(r storage.ClassroomRecord) *Classroom {
	return &Classroom{
		ID:          r.ClassroomID,
		Title:       r.Title,
		Description: r.Description,
		Tags:        r.Tags,
		Visibility:  r.Visibility,
		LineCount:   r.LineCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
