package core

import "time"

// Request types

type CreateLineRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
	PGN   string `json:"pgn,omitempty" validate:"omitempty,max=10000"`
	FEN   string `json:"fen,omitempty" validate:"omitempty,max=100"`
}

// UpdateLineRequest changes only the fields that are present
type UpdateLineRequest struct {
	Title *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	PGN   *string `json:"pgn,omitempty" validate:"omitempty,max=10000"`
	FEN   *string `json:"fen,omitempty" validate:"omitempty,max=100"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=5"` // UCI, e.g. e2e4 or e7e8q
}

type NavigateRequest struct {
	NodeID string `json:"nodeId" validate:"required,max=64"`
}

type AnnotateRequest struct {
	NodeID        string `json:"nodeId" validate:"required,max=64"`
	Comment       string `json:"comment,omitempty" validate:"omitempty,max=2000"`
	VariationName string `json:"variationName,omitempty" validate:"omitempty,max=200"`
	NAGs          []int  `json:"nags,omitempty" validate:"omitempty,max=8,dive,min=0,max=255"`
}

type PracticeRequest struct {
	Color string `json:"color" validate:"required,oneof=w b"`
}

type CreateClassroomRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=40"`
	Visibility  string   `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
}

// UpdateClassroomRequest changes only the fields that are present; an empty
// tags array clears the tags
type UpdateClassroomRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=40"`
	Visibility  *string  `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
}

// Response types

type SkippedToken struct {
	Index  int    `json:"index"`
	Token  string `json:"token"`
	Reason string `json:"reason"`
}

type LineResponse struct {
	LineID    string         `json:"lineId"`
	Title     string         `json:"title"`
	PGN       string         `json:"pgn"`
	FEN       string         `json:"fen"`
	FinalFEN  string         `json:"finalFen"`
	Moves     int            `json:"moves"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Skipped   []SkippedToken `json:"skipped,omitempty"`
}

type LineListResponse struct {
	Lines []LineResponse `json:"lines"`
	Total int            `json:"total"`
}

type ClassroomResponse struct {
	ClassroomID string         `json:"classroomId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags"`
	Visibility  string         `json:"visibility"`
	LineCount   int            `json:"lineCount"`
	Lines       []LineResponse `json:"lines,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type ClassroomListResponse struct {
	Classrooms []ClassroomResponse `json:"classrooms"`
	Total      int                 `json:"total"`
}

type NodeResponse struct {
	ID            string   `json:"id"`
	FEN           string   `json:"fen"`
	SAN           string   `json:"san,omitempty"`
	UCI           string   `json:"uci,omitempty"`
	ParentID      *string  `json:"parentId"` // null for the root
	ChildrenIDs   []string `json:"childrenIds"`
	Comment       string   `json:"comment,omitempty"`
	VariationName string   `json:"variationName,omitempty"`
	NAGs          []int    `json:"nags,omitempty"`
}

type TreeResponse struct {
	SessionID  string         `json:"sessionId,omitempty"`
	LineID     string         `json:"lineId"`
	RootID     string         `json:"rootId"`
	CursorID   string         `json:"cursorId,omitempty"`
	Nodes      []NodeResponse `json:"nodes"`
	MainLine   string         `json:"mainLine"`
	Path       string         `json:"path"`
	Rendered   string         `json:"rendered"`
	Variations []string       `json:"variations"` // siblings of the cursor
	Ahead      string         `json:"ahead,omitempty"`
	Skipped    []SkippedToken `json:"skipped,omitempty"`
	Dirty      bool           `json:"dirty,omitempty"` // unsaved moves in the session
}

type FeedbackResponse struct {
	Correct  bool   `json:"correct"`
	Played   string `json:"played"`
	Expected string `json:"expected"`
	Reply    string `json:"reply,omitempty"` // opponent move played after a correct answer
}

type PracticeResponse struct {
	SessionID string            `json:"sessionId"`
	LineID    string            `json:"lineId"`
	Color     string            `json:"color"`
	State     string            `json:"state"`
	FEN       string            `json:"fen"`
	Turn      string            `json:"turn"`
	Moves     string            `json:"moves"`
	Progress  int               `json:"progress"` // percent of the main line played
	Mistakes  int               `json:"mistakes"`
	Hints     int               `json:"hints"`
	Skips     int               `json:"skips"`
	Feedback  *FeedbackResponse `json:"feedback,omitempty"`
	Hint      string            `json:"hint,omitempty"`
}

type BoardResponse struct {
	FEN        string   `json:"fen"`
	Board      string   `json:"board"` // ASCII representation
	LegalMoves []string `json:"legalMoves"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
