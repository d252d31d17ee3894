package httpapi

import (
	"net/http"
	"strings"

	"github.com/orato-app/orato/internal/questions"
)

type generateQuestionsRequest struct {
	Document string `json:"document"`
}

type generateQuestionsResponse struct {
	Questions []string `json:"questions"`
}

func (s *Server) generateQuestions(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "question generation not configured"})
		return
	}
	var req generateQuestionsRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Document) == "" {
		badRequest(w, "document is required")
		return
	}

	qs, err := s.generator.Generate(r.Context(), req.Document)
	if err != nil {
		writeError(w, r, wrapProviderErr(err))
		return
	}
	writeJSON(w, http.StatusOK, generateQuestionsResponse{Questions: qs})
}

type generateScriptRequest struct {
	Topic        string `json:"topic"`
	Context      string `json:"context,omitempty"`
	Requirements string `json:"requirements,omitempty"`
}

type scriptResponse struct {
	Script string `json:"script"`
}

func (s *Server) generateScript(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "script generation not configured"})
		return
	}
	var req generateScriptRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		badRequest(w, "topic is required")
		return
	}

	script, err := s.generator.GenerateScript(r.Context(), questions.ScriptRequest{
		Topic:        req.Topic,
		Context:      req.Context,
		Requirements: req.Requirements,
	})
	if err != nil {
		writeError(w, r, wrapProviderErr(err))
		return
	}
	writeJSON(w, http.StatusOK, scriptResponse{Script: script})
}

type reviewScriptRequest struct {
	Script string `json:"script"`
	Intent string `json:"intent,omitempty"`
}

type reviewResponse struct {
	Review string `json:"review"`
}

func (s *Server) reviewScript(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "script review not configured"})
		return
	}
	var req reviewScriptRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	review, err := s.generator.ReviewScript(r.Context(), req.Script, req.Intent)
	if err != nil {
		writeError(w, r, wrapProviderErr(err))
		return
	}
	writeJSON(w, http.StatusOK, reviewResponse{Review: review})
}
