package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orato-app/orato/internal/evaluate"
	"github.com/orato-app/orato/internal/observe"
	"github.com/orato-app/orato/internal/report"
	"github.com/orato-app/orato/internal/session"
	"github.com/orato-app/orato/internal/store"
)

type createSessionRequest struct {
	Mode string `json:"mode"`

	// Questions is the fixed question list. When empty, interview sessions
	// generate questions from Document and presentation sessions get a
	// single slot labelled with Topic.
	Questions []string `json:"questions,omitempty"`
	Document  string   `json:"document,omitempty"`

	// Reference is the script to recite against; attempts may override it
	// per recording.
	Reference string `json:"reference,omitempty"`
	Topic     string `json:"topic,omitempty"`
}

type sessionResponse struct {
	ID             string      `json:"id"`
	Mode           report.Mode `json:"mode"`
	Questions      []string    `json:"questions"`
	QuestionNumber int         `json:"question_number"`
	Question       string      `json:"question"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	mode := report.Mode(req.Mode)
	if !mode.IsValid() {
		badRequest(w, fmt.Sprintf("unknown mode %q", req.Mode))
		return
	}

	qs := req.Questions
	if len(qs) == 0 {
		switch {
		case mode == report.ModeInterview && req.Document != "":
			if s.generator == nil {
				writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "question generation not configured"})
				return
			}
			generated, err := s.generator.Generate(r.Context(), req.Document)
			if err != nil {
				writeJSON(w, http.StatusBadGateway, errorResponse{Error: "question generation: " + err.Error()})
				return
			}
			qs = generated
		case mode == report.ModePresentation:
			qs = []string{req.Topic}
		default:
			badRequest(w, "questions or document is required")
			return
		}
	}

	sess, err := s.sessions.Create(mode, qs, req.Reference)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	number, question, _ := sess.Current()
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:             sess.ID,
		Mode:           sess.Mode,
		Questions:      sess.Questions(),
		QuestionNumber: number,
		Question:       question,
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(id); err != nil {
		writeError(w, r, err)
		return
	}
	s.sessions.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

type questionResponse struct {
	QuestionNumber int    `json:"question_number"`
	Question       string `json:"question"`
	Done           bool   `json:"done"`
}

func (s *Server) currentQuestion(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	number, question, ok := sess.Current()
	writeJSON(w, http.StatusOK, questionResponse{
		QuestionNumber: number,
		Question:       question,
		Done:           !ok,
	})
}

// questionAudio reads the pending question aloud. Synthesis failure is not
// fatal to the interview: the client falls back to displaying the question
// as text, signalled by an empty 204 response.
func (s *Server) questionAudio(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if s.speech == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "speech synthesis not configured"})
		return
	}
	_, question, ok := sess.Current()
	if !ok {
		writeError(w, r, session.ErrExhausted)
		return
	}

	data, err := s.speech.Synthesize(r.Context(), question)
	if err != nil {
		observe.Logger(r.Context()).Warn("question synthesis failed", "session", sess.ID, "error", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", s.speech.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type similarAnswer struct {
	Question   string  `json:"question"`
	Transcript string  `json:"transcript"`
	Distance   float64 `json:"distance"`
}

type attemptResponse struct {
	Evaluation *report.Evaluation `json:"evaluation"`
	Similar    []similarAnswer    `json:"similar,omitempty"`

	Done               bool   `json:"done"`
	NextQuestionNumber int    `json:"next_question_number,omitempty"`
	NextQuestion       string `json:"next_question,omitempty"`
}

func (s *Server) submitAttempt(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	number, question, ok := sess.Current()
	if !ok {
		writeError(w, r, session.ErrExhausted)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		badRequest(w, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		badRequest(w, "audio file is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "reading audio: "+err.Error())
		return
	}

	reference := r.FormValue("reference_text")
	if reference == "" {
		reference = sess.Reference
	}

	out, err := s.evaluator.Evaluate(r.Context(), evaluate.Request{
		Audio:          data,
		ContentType:    header.Header.Get("Content-Type"),
		Mode:           sess.Mode,
		SessionID:      sess.ID,
		QuestionNumber: number,
		Question:       question,
		Reference:      reference,
		Language:       r.FormValue("language"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := sess.Advance(out.Evaluation); err != nil {
		writeError(w, r, err)
		return
	}

	if sess.Done() {
		s.persistReport(r, sess)
	}

	resp := attemptResponse{
		Evaluation: out.Evaluation,
		Done:       sess.Done(),
	}
	for _, m := range out.Similar {
		resp.Similar = append(resp.Similar, similarAnswer{
			Question:   m.Answer.Question,
			Transcript: m.Answer.Transcript,
			Distance:   m.Distance,
		})
	}
	if number, next, more := sess.Current(); more {
		resp.NextQuestionNumber = number
		resp.NextQuestion = next
	}
	writeJSON(w, http.StatusOK, resp)
}

// persistReport saves a finished session to the report store. Failure is
// logged and the session stays exportable from memory.
func (s *Server) persistReport(r *http.Request, sess *session.Session) {
	if s.reports == nil {
		return
	}
	records := sess.Records()
	rep := store.Report{
		SessionID: sess.ID,
		Mode:      sess.Mode,
		CreatedAt: sess.CreatedAt,
		Records:   make([]report.ExportRecord, 0, len(records)),
	}
	for _, rec := range records {
		rep.Records = append(rep.Records, rec.Export())
	}
	if err := s.reports.SaveReport(r.Context(), rep); err != nil {
		observe.Logger(r.Context()).Warn("report persistence failed", "session", sess.ID, "error", err)
	}
}

func (s *Server) sessionReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := s.sessions.Get(id)
	if err == nil {
		data, err := sess.ExportJSON()
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeReport(w, id, data)
		return
	}

	// Fall back to the durable store for sessions evicted from memory.
	if s.reports != nil {
		rep, err := s.reports.GetReport(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		data, err := report.MarshalExport(rep.Records)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeReport(w, id, data)
		return
	}

	writeError(w, r, err)
}

func writeReport(w http.ResponseWriter, id string, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "orato-report-"+id+".json"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
