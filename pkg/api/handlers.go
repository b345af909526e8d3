package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/generate"
	"github.com/matzehuels/archdiagram/pkg/nodetype"
	"github.com/matzehuels/archdiagram/pkg/pipeline"
)

type rootResponse struct {
	Message string `json:"message"`
	Docs    string `json:"docs"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Message: "Welcome to the Diagram Generator API",
		Docs:    "/api/v1/node-types",
		Version: s.cfg.Version,
		Status:  "operational",
	})
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	generator := "up"
	if s.runner.Generator == nil {
		generator = "unconfigured"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  map[string]string{"api": "up", "generator": generator},
	})
}

// NodeType describes one entry of the node type registry.
type NodeType struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Provider string `json:"provider"`
}

// NodeTypesResponse is the body of GET /api/v1/node-types.
type NodeTypesResponse struct {
	Types []NodeType `json:"types"`
}

func (s *Server) handleNodeTypes(w http.ResponseWriter, r *http.Request) {
	kinds := nodetype.Kinds()
	resp := NodeTypesResponse{Types: make([]NodeType, len(kinds))}
	for i, k := range kinds {
		resp.Types[i] = NodeType{Name: k.String(), Category: k.Category(), Provider: string(k.Provider())}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GenerateRequest is the body of POST /api/v1/generate-diagram.
type GenerateRequest struct {
	Description string `json:"description"`
}

func (s *Server) handleGenerateDiagram(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errs.ValidateDescription(req.Description); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.runner.Generator == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Detail: "Diagram generation is not configured",
			Code:   string(errs.ErrCodeNotConfigured),
		})
		return
	}

	s.logger.Info("received diagram generation request", "description_length", len(req.Description))
	s.withRequestDir(w, r, func(dir string) (*pipeline.Result, error) {
		return s.runner.Execute(r.Context(), req.Description, pipeline.Options{
			OutputDir: dir,
			Logger:    s.logger,
		})
	})
}

func (s *Server) handleRenderDiagram(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := decodeBody(w, r, &raw); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withRequestDir(w, r, func(dir string) (*pipeline.Result, error) {
		return s.runner.RenderSchema(r.Context(), raw, pipeline.Options{
			OutputDir: dir,
			Logger:    s.logger,
		})
	})
}

// withRequestDir runs fn with a fresh output directory, sends the resulting
// PNG and removes the directory afterwards.
func (s *Server) withRequestDir(w http.ResponseWriter, r *http.Request, fn func(dir string) (*pipeline.Result, error)) {
	dir := filepath.Join(s.cfg.TempDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "create request directory"))
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("failed to remove request directory", "path", dir, "error", err)
		}
	}()

	result, err := fn(dir)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("generated diagram",
		"path", result.Path,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.Total())

	data, err := os.ReadFile(result.Path)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "read rendered diagram"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": filepath.Base(result.Path),
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, bytes.NewReader(data))
}

// AssistantRequest is the body of POST /api/v1/assistant.
type AssistantRequest struct {
	Message string                `json:"message"`
	Context generate.Conversation `json:"context,omitempty"`
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req AssistantRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "Message cannot be empty"))
		return
	}
	if s.assistant == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Detail: "Assistant is not configured",
			Code:   string(errs.ErrCodeNotConfigured),
		})
		return
	}

	reply, err := s.assistant.Reply(r.Context(), req.Context, req.Message)
	if err != nil {
		s.writeAssistantError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) writeAssistantError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	detail := "An unexpected error occurred: " + errs.UserMessage(err)
	switch {
	case errs.IsClientError(err):
		status, detail = http.StatusBadRequest, errs.UserMessage(err)
	case errs.Is(err, errs.ErrCodeGeneration):
		status, detail = http.StatusBadGateway, "Unable to get a response from the assistant: "+errs.UserMessage(err)
	}
	s.logger.Error("assistant request failed", "status", status, "error", err)
	writeJSON(w, status, errorBody{Detail: detail, Code: string(codeOrInternal(err))})
}

func codeOrInternal(err error) errs.Code {
	if code := errs.GetCode(err); code != "" {
		return code
	}
	return errs.ErrCodeInternal
}

// decodeBody decodes a bounded JSON request body into v. Numbers are kept
// as json.Number so raw schemas survive untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body")
	}
	if dec.More() {
		return errs.New(errs.ErrCodeInvalidInput, "invalid request body: %s", "trailing data after JSON value")
	}
	return nil
}
