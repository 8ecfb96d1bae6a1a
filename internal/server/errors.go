package server

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/alexanderramin/roadmapper/internal/extract"
	"github.com/alexanderramin/roadmapper/internal/intelligence"
	"github.com/alexanderramin/roadmapper/internal/llm"
)

const (
	msgMissingRoadmap  = "Current roadmap is missing from the request."
	msgUnsupportedFile = "Unsupported file. Please upload a PDF or DOCX."
	msgExtractFailed   = "Could not extract text from the uploaded resume."
	msgInvalidBody     = "Request body must be a JSON object."
	msgUnreadable      = "The AI model returned a roadmap that could not be read."
	msgInternal        = "An unexpected error occurred."
)

// requestError is a client error whose message is safe to return as-is.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(message string) error {
	return &requestError{status: http.StatusBadRequest, message: message}
}

// statusFor maps an error to its HTTP status and the message put in the
// response body.
func statusFor(err error) (int, string) {
	var reqErr *requestError
	var fiberErr *fiber.Error
	var compErr *llm.CompletionError

	switch {
	case errors.As(err, &reqErr):
		return reqErr.status, reqErr.message
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.Is(err, intelligence.ErrInvalidPrompt):
		var ve *intelligence.ValidationError
		if errors.As(err, &ve) {
			return http.StatusBadRequest, ve.Message
		}
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, intelligence.ErrMissingRoadmap):
		return http.StatusBadRequest, msgMissingRoadmap
	case errors.Is(err, extract.ErrUnsupportedFile):
		return http.StatusBadRequest, msgUnsupportedFile
	case errors.Is(err, extract.ErrExtraction):
		return http.StatusInternalServerError, msgExtractFailed
	case errors.As(err, &compErr):
		return http.StatusInternalServerError, compErr.Error()
	case errors.Is(err, llm.ErrInvalidOutput):
		return http.StatusInternalServerError, msgUnreadable
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// handleError is the fiber error handler. Every failure is rendered as
// {"error": message}.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", c.Path(),
			"status", status,
			"request_id", requestID(c),
			"error", err,
		)
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}
