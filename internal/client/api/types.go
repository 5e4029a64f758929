package api

import "chesslines/internal/server/core"

// Wire types are shared with the server
type (
	CreateLineRequest = core.CreateLineRequest
	UpdateLineRequest = core.UpdateLineRequest
	MoveRequest       = core.MoveRequest
	NavigateRequest   = core.NavigateRequest
	AnnotateRequest   = core.AnnotateRequest
	PracticeRequest   = core.PracticeRequest

	CreateClassroomRequest = core.CreateClassroomRequest
	UpdateClassroomRequest = core.UpdateClassroomRequest

	LineResponse     = core.LineResponse
	LineListResponse = core.LineListResponse

	ClassroomResponse     = core.ClassroomResponse
	ClassroomListResponse = core.ClassroomListResponse

	NodeResponse     = core.NodeResponse
	TreeResponse     = core.TreeResponse
	PracticeResponse = core.PracticeResponse
	BoardResponse    = core.BoardResponse
	ErrorResponse    = core.ErrorResponse
)

type HealthResponse struct {
	Status     string `json:"status"`
	Time       int64  `json:"time"`
	Storage    string `json:"storage,omitempty"`
	Lines      *int   `json:"lines,omitempty"` // absent when the count failed
	Recordings int    `json:"recordings"`
	Practices  int    `json:"practices"`
}
