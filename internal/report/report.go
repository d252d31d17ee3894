// Package report defines the evaluation report record and its export
// format. A report is created once per recorded answer, appended to the
// session's ordered record log, and never mutated afterwards.
//
// The export format is the one external file contract Orato honours
// exactly: field names and types round-trip losslessly through
// [ExportJSON] and [ParseExport].
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/orato-app/orato/pkg/analysis"
)

// Mode selects how an answer is evaluated.
type Mode string

const (
	// ModePresentation scores recitation fidelity against a reference script.
	ModePresentation Mode = "presentation"

	// ModeInterview scores the answer against the interviewer rubric.
	ModeInterview Mode = "interview"
)

// IsValid reports whether m is a recognised evaluation mode.
func (m Mode) IsValid() bool {
	return m == ModePresentation || m == ModeInterview
}

// RubricScores holds the four interviewer sub-scores. Each value is an
// integer in [0, 10] — the aggregator guarantees this regardless of what
// the scoring backend returned.
type RubricScores struct {
	Logic       int `json:"logic"`
	Sincerity   int `json:"sincerity"`
	Confidence  int `json:"confidence"`
	Suitability int `json:"suitability"`
}

// Evaluation is the terminal aggregate of one recorded answer.
type Evaluation struct {
	// ID uniquely identifies the report.
	ID string `json:"id"`

	// CreatedAt is when the evaluation completed.
	CreatedAt time.Time `json:"created_at"`

	// Mode is the evaluation mode this report was produced under.
	Mode Mode `json:"mode"`

	// QuestionNumber is the 1-based position in the session's question
	// list, 0 for free presentation practice.
	QuestionNumber int `json:"question_number"`

	// Question is the question or prompt text the answer responds to.
	Question string `json:"question"`

	// Transcript is the speech-to-text result. May be empty.
	Transcript string `json:"transcript"`

	// NoSpeech marks a recording in which the transcription backend heard
	// nothing usable.
	NoSpeech bool `json:"no_speech,omitempty"`

	// TempoBPM is the speaking-pace proxy from the acoustic analysis.
	TempoBPM float64 `json:"tempo_bpm"`

	// Silence is the silence profile of the recording.
	Silence analysis.Profile `json:"silence"`

	// Similarity is the 0–100 recitation-fidelity score against the
	// reference text, nil when no reference was supplied.
	Similarity *float64 `json:"similarity,omitempty"`

	// Rubric holds the validated interviewer sub-scores (interview mode).
	Rubric RubricScores `json:"rubric"`

	// Feedback is the interviewer's free-text comment, "" when absent.
	Feedback string `json:"feedback"`

	// Warnings records recoverable oddities observed during aggregation,
	// e.g. clamped rubric fields.
	Warnings []string `json:"warnings,omitempty"`
}

// ExportRecord is one entry of the downloadable session report. This is the
// wire contract: do not rename fields.
type ExportRecord struct {
	QuestionNumber int    `json:"question_number"`
	Question       string `json:"question"`
	Transcript     string `json:"transcript"`
	Logic          int    `json:"logic"`
	Sincerity      int    `json:"sincerity"`
	Confidence     int    `json:"confidence"`
	Suitability    int    `json:"suitability"`
	Feedback       string `json:"feedback"`
}

// Export converts an evaluation to its export record.
func (e *Evaluation) Export() ExportRecord {
	return ExportRecord{
		QuestionNumber: e.QuestionNumber,
		Question:       e.Question,
		Transcript:     e.Transcript,
		Logic:          e.Rubric.Logic,
		Sincerity:      e.Rubric.Sincerity,
		Confidence:     e.Rubric.Confidence,
		Suitability:    e.Rubric.Suitability,
		Feedback:       e.Feedback,
	}
}

// ExportJSON serializes evaluations as the ordered, indented JSON array
// users download. Non-ASCII text (Korean transcripts, for one) is emitted
// verbatim, not escaped.
func ExportJSON(evals []*Evaluation) ([]byte, error) {
	records := make([]ExportRecord, 0, len(evals))
	for _, e := range evals {
		records = append(records, e.Export())
	}
	return MarshalExport(records)
}

// MarshalExport serializes already-exported records in the same downloadable
// format as [ExportJSON].
func MarshalExport(records []ExportRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("report: export: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseExport parses a previously exported report back into records.
// Together with [ExportJSON] this must round-trip field for field.
func ParseExport(data []byte) ([]ExportRecord, error) {
	var records []ExportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("report: parse export: %w", err)
	}
	return records, nil
}
