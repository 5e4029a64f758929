package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"chesslines/internal/server/core"
	"chesslines/internal/server/movetree"
	"chesslines/internal/server/practice"
	"chesslines/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the service
type HTTPHandler struct {
	svc *service.Service
}

func NewHTTPHandler(svc *service.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func NewFiberApp(svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	// Lines
	api.Get("/lines", h.ListLines)
	api.Post("/lines", h.CreateLine)
	api.Get("/lines/:lineId", validID("lineId"), h.GetLine)
	api.Put("/lines/:lineId", validID("lineId"), h.UpdateLine)
	api.Delete("/lines/:lineId", validID("lineId"), h.DeleteLine)
	api.Get("/lines/:lineId/tree", validID("lineId"), h.GetLineTree)

	// Classrooms
	api.Get("/classrooms", h.ListClassrooms)
	api.Post("/classrooms", h.CreateClassroom)
	api.Get("/classrooms/:classroomId", validID("classroomId"), h.GetClassroom)
	api.Put("/classrooms/:classroomId", validID("classroomId"), h.UpdateClassroom)
	api.Delete("/classrooms/:classroomId", validID("classroomId"), h.DeleteClassroom)
	api.Post("/classrooms/:classroomId/lines", validID("classroomId"), h.CreateClassroomLine)
	api.Put("/classrooms/:classroomId/lines/:lineId", validID("classroomId"), validID("lineId"), h.AddClassroomLine)
	api.Delete("/classrooms/:classroomId/lines/:lineId", validID("classroomId"), validID("lineId"), h.RemoveClassroomLine)

	// Recording sessions
	api.Post("/lines/:lineId/recordings", validID("lineId"), h.OpenRecording)
	api.Get("/recordings/:sessionId", validID("sessionId"), h.GetRecording)
	api.Delete("/recordings/:sessionId", validID("sessionId"), h.CloseRecording)
	api.Post("/recordings/:sessionId/moves", validID("sessionId"), h.RecordMove)
	api.Put("/recordings/:sessionId/cursor", validID("sessionId"), h.Navigate)
	api.Put("/recordings/:sessionId/annotations", validID("sessionId"), h.Annotate)
	api.Post("/recordings/:sessionId/save", validID("sessionId"), h.SaveRecording)
	api.Get("/recordings/:sessionId/board", validID("sessionId"), h.GetRecordingBoard)

	// Practice sessions
	api.Post("/lines/:lineId/practice", validID("lineId"), h.StartPractice)
	api.Get("/practice/:sessionId", validID("sessionId"), h.GetPractice)
	api.Delete("/practice/:sessionId", validID("sessionId"), h.ClosePractice)
	api.Post("/practice/:sessionId/moves", validID("sessionId"), h.PracticeMove)
	api.Post("/practice/:sessionId/hint", validID("sessionId"), h.PracticeHint)
	api.Post("/practice/:sessionId/skip", validID("sessionId"), h.PracticeSkip)
	api.Get("/practice/:sessionId/board", validID("sessionId"), h.GetPracticeBoard)

	return app
}

// contentTypeValidator ensures POST and PUT requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get("Content-Type")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// validID rejects path ids that are not UUIDs
func validID(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !isValidUUID(c.Params(param)) {
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Error:   fmt.Sprintf("invalid %s format", param),
				Code:    core.ErrInvalidRequest,
				Details: fmt.Sprintf("%s must be a valid UUID", param),
			})
		}
		return c.Next()
	}
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// errorResponse maps service errors to a status and error code
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	resp := core.ErrorResponse{Error: err.Error(), Code: core.ErrInternalError}

	switch {
	case errors.Is(err, service.ErrLineNotFound):
		status, resp.Code = fiber.StatusNotFound, core.ErrLineNotFound
	case errors.Is(err, service.ErrClassroomNotFound):
		status, resp.Code = fiber.StatusNotFound, core.ErrClassroomNotFound
	case errors.Is(err, service.ErrSessionNotFound):
		status, resp.Code = fiber.StatusNotFound, core.ErrSessionNotFound
	case errors.Is(err, movetree.ErrNodeNotFound):
		status, resp.Code = fiber.StatusNotFound, core.ErrNodeNotFound
	case errors.Is(err, movetree.ErrIllegalMove):
		status, resp.Code = fiber.StatusBadRequest, core.ErrInvalidMove
	case errors.Is(err, service.ErrInvalidFEN):
		status, resp.Code = fiber.StatusBadRequest, core.ErrInvalidFEN
	case errors.Is(err, service.ErrDuplicateLine), errors.Is(err, service.ErrDuplicatePGN):
		status, resp.Code = fiber.StatusConflict, core.ErrDuplicateLine
	case errors.Is(err, service.ErrInvalidVisibility):
		status, resp.Code = fiber.StatusBadRequest, core.ErrInvalidRequest
	case errors.Is(err, practice.ErrNotYourTurn):
		status, resp.Code = fiber.StatusConflict, core.ErrNotYourTurn
	case errors.Is(err, practice.ErrCompleted):
		status, resp.Code = fiber.StatusConflict, core.ErrPracticeComplete
	case errors.Is(err, practice.ErrEmptyLine):
		status, resp.Code = fiber.StatusUnprocessableEntity, core.ErrEmptyLine
	case errors.Is(err, service.ErrResourceLimit):
		status, resp.Code = fiber.StatusServiceUnavailable, core.ErrResourceLimit
	default:
		resp.Error = "internal server error"
		resp.Details = err.Error()
	}

	return c.Status(status).JSON(resp)
}

// validatedBody returns the request body parsed by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (*T, error) {
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.ErrInternalError,
		})
	}
	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.ErrInternalError,
		})
	}
	return body, nil
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	recordings, practices := h.svc.SessionCounts()
	resp := fiber.Map{
		"status":     "healthy",
		"time":       time.Now().Unix(),
		"storage":    h.svc.GetStorageHealth(),
		"recordings": recordings,
		"practices":  practices,
	}
	if lines, err := h.svc.LineCount(); err == nil {
		resp["lines"] = lines
	}
	return c.JSON(resp)
}

// ListLines returns stored lines, optionally filtered by title with ?q=
func (h *HTTPHandler) ListLines(c *fiber.Ctx) error {
	lines, err := h.svc.ListLines(c.Query("q"))
	if err != nil {
		return errorResponse(c, err)
	}

	resp := core.LineListResponse{Lines: make([]core.LineResponse, 0, len(lines)), Total: len(lines)}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, lineResponse(l))
	}
	return c.JSON(resp)
}

// CreateLine stores a new line from move text
func (h *HTTPHandler) CreateLine(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateLineRequest](c)
	if req == nil {
		return err
	}

	line, err := h.svc.CreateLine(req.Title, req.PGN, req.FEN)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lineResponse(line))
}

func (h *HTTPHandler) GetLine(c *fiber.Ctx) error {
	line, err := h.svc.GetLine(c.Params("lineId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(lineResponse(line))
}

// UpdateLine changes the fields present in the body
func (h *HTTPHandler) UpdateLine(c *fiber.Ctx) error {
	req, err := validatedBody[core.UpdateLineRequest](c)
	if req == nil {
		return err
	}

	line, err := h.svc.UpdateLine(c.Params("lineId"), service.LineUpdate{
		Title: req.Title,
		PGN:   req.PGN,
		FEN:   req.FEN,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(lineResponse(line))
}

func (h *HTTPHandler) DeleteLine(c *fiber.Ctx) error {
	if err := h.svc.DeleteLine(c.Params("lineId")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetLineTree returns the decoded tree of a line without opening a session
func (h *HTTPHandler) GetLineTree(c *fiber.Ctx) error {
	view, err := h.svc.LineTree(c.Params("lineId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(treeResponse(view))
}

// ListClassrooms returns classrooms, optionally only ?visibility=public or private
func (h *HTTPHandler) ListClassrooms(c *fiber.Ctx) error {
	classrooms, err := h.svc.ListClassrooms(c.Query("visibility"))
	if err != nil {
		return errorResponse(c, err)
	}

	resp := core.ClassroomListResponse{
		Classrooms: make([]core.ClassroomResponse, 0, len(classrooms)),
		Total:      len(classrooms),
	}
	for _, cr := range classrooms {
		resp.Classrooms = append(resp.Classrooms, classroomResponse(cr))
	}
	return c.JSON(resp)
}

func (h *HTTPHandler) CreateClassroom(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateClassroomRequest](c)
	if req == nil {
		return err
	}

	classroom, err := h.svc.CreateClassroom(req.Title, req.Description, req.Tags, req.Visibility)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(classroomResponse(classroom))
}

// GetClassroom returns a classroom with its lines
func (h *HTTPHandler) GetClassroom(c *fiber.Ctx) error {
	classroom, err := h.svc.GetClassroom(c.Params("classroomId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(classroomResponse(classroom))
}

func (h *HTTPHandler) UpdateClassroom(c *fiber.Ctx) error {
	req, err := validatedBody[core.UpdateClassroomRequest](c)
	if req == nil {
		return err
	}

	classroom, err := h.svc.UpdateClassroom(c.Params("classroomId"), service.ClassroomUpdate{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Visibility:  req.Visibility,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(classroomResponse(classroom))
}

func (h *HTTPHandler) DeleteClassroom(c *fiber.Ctx) error {
	if err := h.svc.DeleteClassroom(c.Params("classroomId")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateClassroomLine stores a new line directly under a classroom
func (h *HTTPHandler) CreateClassroomLine(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateLineRequest](c)
	if req == nil {
		return err
	}

	line, err := h.svc.CreateClassroomLine(c.Params("classroomId"), req.Title, req.PGN, req.FEN)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lineResponse(line))
}

// AddClassroomLine files an existing line under a classroom
func (h *HTTPHandler) AddClassroomLine(c *fiber.Ctx) error {
	classroom, err := h.svc.AddLineToClassroom(c.Params("classroomId"), c.Params("lineId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(classroomResponse(classroom))
}

func (h *HTTPHandler) RemoveClassroomLine(c *fiber.Ctx) error {
	classroom, err := h.svc.RemoveLineFromClassroom(c.Params("classroomId"), c.Params("lineId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(classroomResponse(classroom))
}

// OpenRecording starts an editing session on a line
func (h *HTTPHandler) OpenRecording(c *fiber.Ctx) error {
	view, err := h.svc.OpenRecording(c.Params("lineId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(treeResponse(view))
}

func (h *HTTPHandler) GetRecording(c *fiber.Ctx) error {
	view, err := h.svc.GetRecording(c.Params("sessionId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(treeResponse(view))
}

func (h *HTTPHandler) CloseRecording(c *fiber.Ctx) error {
	if err := h.svc.CloseRecording(c.Params("sessionId")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RecordMove appends a move at the cursor
func (h *HTTPHandler) RecordMove(c *fiber.Ctx) error {
	req, err := validatedBody[core.MoveRequest](c)
	if req == nil {
		return err
	}

	view, err := h.svc.RecordMove(c.Params("sessionId"), req.Move)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(treeResponse(view))
}

// Navigate moves the cursor to another node
func (h *HTTPHandler) Navigate(c *fiber.Ctx) error {
	req, err := validatedBody[core.NavigateRequest](c)
	if req == nil {
		return err
	}

	view, err := h.svc.Navigate(c.Params("sessionId"), req.NodeID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(treeResponse(view))
}

func (h *HTTPHandler) Annotate(c *fiber.Ctx) error {
	req, err := validatedBody[core.AnnotateRequest](c)
	if req == nil {
		return err
	}

	view, err := h.svc.Annotate(c.Params("sessionId"), req.NodeID, movetree.Annotation{
		Comment:       req.Comment,
		VariationName: req.VariationName,
		NAGs:          req.NAGs,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(treeResponse(view))
}

// SaveRecording writes the session main line back to the line
func (h *HTTPHandler) SaveRecording(c *fiber.Ctx) error {
	line, err := h.svc.SaveRecording(c.Params("sessionId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(lineResponse(line))
}

func (h *HTTPHandler) GetRecordingBoard(c *fiber.Ctx) error {
	board, err := h.svc.RecordingBoard(c.Params("sessionId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(boardResponse(board))
}

// StartPractice opens a drill on the main line of a line
func (h *HTTPHandler) StartPractice(c *fiber.Ctx) error {
	req, err := validatedBody[core.PracticeRequest](c)
	if req == nil {
		return err
	}
	color, _ := core.ParseColor(req.Color)

	view, err := h.svc.StartPractice(c.Params("lineId"), color)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(practiceResponse(view))
}

func (h *HTTPHandler) GetPractice(c *fiber.Ctx) error {
	view, err := h.svc.GetPractice(c.Params("sessionId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(practiceResponse(view))
}

func (h *HTTPHandler) ClosePractice(c *fiber.Ctx) error {
	if err := h.svc.ClosePractice(c.Params("sessionId")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PracticeMove submits the user's move; a wrong move is not an error
func (h *HTTPHandler) PracticeMove(c *fiber.Ctx) error {
	req, err := validatedBody[core.MoveRequest](c)
	if req == nil {
		return err
	}

	view, err := h.svc.PracticeMove(c.Params("sessionId"), req.Move)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(practiceResponse(view))
}

func (h *HTTPHandler) PracticeHint(c *fiber.Ctx) error {
	view, err := h.svc.PracticeHint(c.Params("sessionId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(practiceResponse(view))
}

func (h *HTTPHandler) PracticeSkip(c *fiber.Ctx) error {
	view, err := h.svc.PracticeSkip(c.Params("sessionId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(practiceResponse(view))
}

func (h *HTTPHandler) GetPracticeBoard(c *fiber.Ctx) error {
	board, err := h.svc.PracticeBoard(c.Params("sessionId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(boardResponse(board))
}
