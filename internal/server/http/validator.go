package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"chesslines/internal/server/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

// validationMiddleware parses and validates JSON bodies, storing the result
// in locals for the handler
func validationMiddleware(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodGet || method == fiber.MethodDelete || method == fiber.MethodOptions {
		return c.Next()
	}

	requestType := requestFor(method, c.Path())
	if requestType == nil {
		return c.Next()
	}

	if err := c.BodyParser(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.ErrInvalidRequest,
			Details: err.Error(),
		})
	}

	if errs := validate.Struct(requestType); errs != nil {
		details := errs.Error()
		var verrs validator.ValidationErrors
		if errors.As(errs, &verrs) {
			details = describe(verrs)
		}
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: details,
		})
	}

	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)

	return c.Next()
}

// requestFor picks the body type by route shape; nil means no body expected
func requestFor(method, path string) any {
	path = strings.TrimSuffix(path, "/")
	segments := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")

	switch {
	case method == fiber.MethodPost && path == "/api/v1/lines":
		return &core.CreateLineRequest{}
	case method == fiber.MethodPut && len(segments) == 2 && segments[0] == "lines":
		return &core.UpdateLineRequest{}
	case method == fiber.MethodPost && path == "/api/v1/classrooms":
		return &core.CreateClassroomRequest{}
	case method == fiber.MethodPut && len(segments) == 2 && segments[0] == "classrooms":
		return &core.UpdateClassroomRequest{}
	case method == fiber.MethodPost && len(segments) == 3 && segments[0] == "classrooms" && segments[2] == "lines":
		return &core.CreateLineRequest{}
	case method == fiber.MethodPost && strings.HasSuffix(path, "/moves"):
		return &core.MoveRequest{}
	case method == fiber.MethodPut && strings.HasSuffix(path, "/cursor"):
		return &core.NavigateRequest{}
	case method == fiber.MethodPut && strings.HasSuffix(path, "/annotations"):
		return &core.AnnotateRequest{}
	case method == fiber.MethodPost && len(segments) == 3 && segments[0] == "lines" && segments[2] == "practice":
		return &core.PracticeRequest{}
	}
	return nil
}

func describe(errs validator.ValidationErrors) string {
	var details strings.Builder
	for _, err := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch err.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", err.Field()))
		case "oneof":
			details.WriteString(fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param()))
		case "min":
			if err.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at least %s", err.Field(), err.Param()))
			}
		case "max":
			if err.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at most %s", err.Field(), err.Param()))
			}
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag()))
		}
	}
	return details.String()
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
