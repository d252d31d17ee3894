// Package rubric scores an interview answer against a fixed four-axis
// rubric (logic, sincerity, confidence, suitability) using an LLM judge.
package rubric

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/orato-app/orato/internal/report"
	"github.com/orato-app/orato/pkg/provider/llm"
)

// MinScore and MaxScore bound every rubric axis. Model output outside
// this range is treated as absent and replaced with MinScore.
const (
	MinScore = 0
	MaxScore = 10
)

const promptTemplate = "너는 학생부 종합전형 면접관이다.\n" +
	"다음 질문과 답변을 보고, 논리성, 진정성, 자신감, 지원전공 적합성을 0~10점으로 평가하고, " +
	"짧은 피드백을 JSON 형식으로 출력해라.\n\n" +
	"[질문]\n%s\n\n" +
	"[답변(STT 결과)]\n%s\n\n" +
	`출력 형식 예시: {"logic": 7, "sincerity": 8, "confidence": 6, "suitability": 7, "feedback": "한 줄 이상의 코멘트"}`

// MalformedResponseError reports a model response that could not be
// interpreted as a rubric at all (not valid JSON, or not an object).
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("rubric: malformed model response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Score is the outcome of one rubric evaluation. Warnings record every
// field the model omitted or mis-typed; the corresponding axis defaults
// to MinScore so one bad field never sinks the whole evaluation.
type Score struct {
	Rubric   report.RubricScores
	Feedback string
	Warnings []string
}

// Scorer asks an LLM to grade a transcript against a question.
type Scorer struct {
	provider llm.Provider
}

func NewScorer(p llm.Provider) *Scorer {
	return &Scorer{provider: p}
}

// Score grades transcript as an answer to question. The model is asked
// for a JSON object; individual missing or out-of-range axes degrade to
// MinScore with a warning, while an unparseable response fails with a
// *MalformedResponseError.
func (s *Scorer) Score(ctx context.Context, question, transcript string) (*Score, error) {
	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "user", Content: fmt.Sprintf(promptTemplate, question, transcript)},
		},
		JSONResponse: true,
	})
	if err != nil {
		return nil, fmt.Errorf("rubric: completion failed: %w", err)
	}
	return parseRubric(resp.Content)
}

func parseRubric(raw string) (*Score, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &fields); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Err: err}
	}

	out := &Score{}
	out.Rubric.Logic = takeAxis(fields, "logic", &out.Warnings)
	out.Rubric.Sincerity = takeAxis(fields, "sincerity", &out.Warnings)
	out.Rubric.Confidence = takeAxis(fields, "confidence", &out.Warnings)
	out.Rubric.Suitability = takeAxis(fields, "suitability", &out.Warnings)

	if msg, ok := fields["feedback"]; ok {
		if err := json.Unmarshal(msg, &out.Feedback); err != nil {
			out.Warnings = append(out.Warnings, `field "feedback" is not a string; dropped`)
		}
	} else {
		out.Warnings = append(out.Warnings, `field "feedback" missing from model response`)
	}
	return out, nil
}

// takeAxis extracts one 0-10 axis. Anything missing, non-numeric or out
// of range counts as MinScore and appends an explanatory warning.
func takeAxis(fields map[string]json.RawMessage, name string, warnings *[]string) int {
	msg, ok := fields[name]
	if !ok {
		*warnings = append(*warnings, fmt.Sprintf("field %q missing from model response", name))
		return MinScore
	}
	var f float64
	if err := json.Unmarshal(msg, &f); err != nil {
		*warnings = append(*warnings, fmt.Sprintf("field %q is not a number", name))
		return MinScore
	}
	v := int(math.Round(f))
	if v < MinScore || v > MaxScore {
		*warnings = append(*warnings, fmt.Sprintf("field %q value %v outside 0-10", name, f))
		return MinScore
	}
	return v
}
