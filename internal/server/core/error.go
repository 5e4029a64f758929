package core

// Error codes
const (
	ErrLineNotFound      = "LINE_NOT_FOUND"
	ErrSessionNotFound   = "SESSION_NOT_FOUND"
	ErrClassroomNotFound = "CLASSROOM_NOT_FOUND"
	ErrNodeNotFound      = "NODE_NOT_FOUND"
	ErrInvalidMove       = "INVALID_MOVE"
	ErrNotYourTurn       = "NOT_YOUR_TURN"
	ErrPracticeComplete  = "PRACTICE_COMPLETE"
	ErrEmptyLine         = "EMPTY_LINE"
	ErrDuplicateLine     = "DUPLICATE_LINE"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInvalidFEN        = "INVALID_FEN"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrResourceLimit     = "RESOURCE_LIMIT"
)
