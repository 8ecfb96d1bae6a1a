package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/alexanderramin/roadmapper/internal/extract"
	"github.com/alexanderramin/roadmapper/internal/intelligence"
	"github.com/alexanderramin/roadmapper/internal/llm"
	"github.com/alexanderramin/roadmapper/internal/roadmap"
)

// roadmapResponse is the body of every successful roadmap operation.
type roadmapResponse struct {
	Roadmap    any    `json:"roadmap"`
	Message    string `json:"message"`
	IsComplete bool   `json:"is_complete"`
}

type refineRequest struct {
	ChatMessage    string          `json:"chat_message"`
	CurrentRoadmap json.RawMessage `json:"current_roadmap"`
}

type continueRequest struct {
	CurrentRoadmap json.RawMessage `json:"current_roadmap"`
}

// requestContext carries the request id into the service layer so
// completion traces can be correlated with the HTTP request.
func requestContext(c *fiber.Ctx) context.Context {
	return llm.ContextWithRequestID(c.UserContext(), requestID(c))
}

func (s *Server) generateRoadmap(c *fiber.Ctx) error {
	goal := c.FormValue("prompt")
	if ok, msg := intelligence.ValidatePrompt(goal); !ok {
		return badRequest(msg)
	}

	resumeText, err := s.resumeText(c, "resume")
	if err != nil {
		return err
	}

	res, err := s.service.Generate(requestContext(c), goal, resumeText)
	if err != nil {
		return err
	}
	s.recordRoadmap("generate", res.Phases)
	return c.Status(http.StatusOK).JSON(roadmapResponse{
		Roadmap:    res.Graph,
		Message:    res.Message,
		IsComplete: res.IsComplete,
	})
}

func (s *Server) refineRoadmap(c *fiber.Ctx) error {
	var req refineRequest
	if err := parseJSONBody(c, &req); err != nil {
		return err
	}
	if ok, msg := intelligence.ValidatePrompt(req.ChatMessage); !ok {
		return badRequest(msg)
	}
	current, err := decodeCurrentRoadmap(req.CurrentRoadmap)
	if err != nil {
		return err
	}

	res, err := s.service.Refine(requestContext(c), req.ChatMessage, current)
	if err != nil {
		return err
	}
	s.recordRoadmap("refine", res.Phases)
	return c.Status(http.StatusOK).JSON(roadmapResponse{
		Roadmap:    res.Graph,
		Message:    res.Message,
		IsComplete: res.IsComplete,
	})
}

func (s *Server) continueRoadmap(c *fiber.Ctx) error {
	var req continueRequest
	if err := parseJSONBody(c, &req); err != nil {
		return err
	}
	current, err := decodeCurrentRoadmap(req.CurrentRoadmap)
	if err != nil {
		return err
	}

	res, err := s.service.Continue(requestContext(c), current)
	if err != nil {
		return err
	}
	s.recordRoadmap("continue", res.Phases)

	var body any = res.Graph
	if res.Unchanged {
		// Echo the client's own JSON so fields the graph type does not
		// model survive the round trip.
		body = req.CurrentRoadmap
	}
	return c.Status(http.StatusOK).JSON(roadmapResponse{
		Roadmap:    body,
		Message:    res.Message,
		IsComplete: res.IsComplete,
	})
}

// uploadResume returns the known skills mentioned in an uploaded resume.
func (s *Server) uploadResume(c *fiber.Ctx) error {
	text, err := s.resumeText(c, "file")
	if err != nil {
		return err
	}
	if text == "" {
		return badRequest("No file uploaded.")
	}
	return c.JSON(fiber.Map{"skills": extract.FindSkills(text)})
}

func (s *Server) healthz(c *fiber.Ctx) error {
	available := s.health == nil || s.health.Available(c.UserContext())
	status := http.StatusOK
	state := "ok"
	if !available {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{"status": state, "backend_available": available})
}

// resumeText extracts the text of the optional upload in field. A missing
// file or an empty filename yields "".
func (s *Server) resumeText(c *fiber.Ctx, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil || fh.Filename == "" {
		return "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, format, err := extract.File(fh.Filename, f, fh.Size)
	if s.metrics != nil && format != "" {
		s.metrics.RecordExtraction(string(format), err == nil)
	}
	if err != nil {
		s.logger.Warn("resume extraction failed", "filename", fh.Filename, "error", err)
		return "", err
	}
	return text, nil
}

func (s *Server) recordRoadmap(op string, phases int) {
	if s.metrics != nil {
		s.metrics.RecordRoadmap(op, phases)
	}
}

func parseJSONBody(c *fiber.Ctx, v any) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 || body[0] != '{' {
		return badRequest(msgInvalidBody)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return badRequest(msgInvalidBody)
	}
	return nil
}

// decodeCurrentRoadmap checks and decodes the client's graph. Absent,
// null and empty values all count as missing.
func decodeCurrentRoadmap(raw json.RawMessage) (*roadmap.Graph, error) {
	if isEmptyJSON(raw) {
		return nil, badRequest(msgMissingRoadmap)
	}
	if err := validateGraphJSON(raw); err != nil {
		return nil, badRequest(err.Error())
	}
	var g roadmap.Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, badRequest("current_roadmap could not be decoded: " + err.Error())
	}
	return &g, nil
}

// isEmptyJSON reports whether raw is absent or one of null, false, 0, "",
// {} or [].
func isEmptyJSON(raw json.RawMessage) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
