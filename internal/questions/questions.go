// Package questions turns a student-record document into interview
// questions and handles the presentation-track script workflows (draft a
// script from a topic, review an existing script).
package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/antzucaro/matchr"

	"github.com/orato-app/orato/internal/resilience"
	"github.com/orato-app/orato/pkg/provider/llm"
)

// maxDocumentRunes caps how much of the uploaded document is sent to the
// model. Only the leading runes survive; anything past the cap is dropped.
const maxDocumentRunes = 15000

// dedupeThreshold is the Jaro-Winkler similarity above which two generated
// questions are treated as duplicates.
const dedupeThreshold = 0.90

// ErrNoQuestions is returned when the model output contains no usable
// question lines.
var ErrNoQuestions = errors.New("questions: model produced no questions")

const generatePrompt = "다음 생기부 내용을 바탕으로, 학생부 종합전형 면접에서 나올 법한 예상 질문 10개를 " +
	"한국어로 만들어줘. 각 질문은 한 줄에 하나씩 써줘.\n\n" +
	"[생기부 내용]\n%s"

// Generator produces interview questions and presentation scripts through
// an LLM backend. Every completion call runs under the generator's retry
// policy.
type Generator struct {
	provider llm.Provider
	retry    resilience.RetryConfig
}

// Option customises a [Generator].
type Option func(*Generator)

// WithRetry overrides the completion retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(g *Generator) { g.retry = cfg }
}

func NewGenerator(p llm.Provider, opts ...Option) *Generator {
	g := &Generator{
		provider: p,
		retry:    resilience.RetryConfig{Attempts: 2, Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// complete runs one completion call under the retry policy.
func (g *Generator) complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	var resp *llm.CompletionResponse
	err := resilience.Retry(ctx, g.retry, func(ctx context.Context) error {
		var cerr error
		resp, cerr = g.provider.Complete(ctx, req)
		return cerr
	})
	return resp, err
}

// Generate asks the model for interview questions grounded in document (the
// extracted text of a student record). Only output lines containing a
// question mark survive; leading bullet markers are stripped and
// near-duplicate questions are collapsed.
func (g *Generator) Generate(ctx context.Context, document string) ([]string, error) {
	doc := []rune(document)
	if len(doc) > maxDocumentRunes {
		doc = doc[:maxDocumentRunes]
	}

	resp, err := g.complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "user", Content: fmt.Sprintf(generatePrompt, string(doc))},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("questions: completion failed: %w", err)
	}

	qs := ParseQuestions(resp.Content)
	if len(qs) == 0 {
		return nil, ErrNoQuestions
	}
	return qs, nil
}

// ParseQuestions extracts question lines from raw model output. A line
// counts as a question when it contains "?" (either ASCII or fullwidth)
// after bullet and numbering prefixes are stripped. Lines that are
// near-duplicates of an earlier question are dropped.
func ParseQuestions(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		q := stripPrefix(strings.TrimSpace(line))
		if q == "" || !strings.ContainsAny(q, "?？") {
			continue
		}
		if isDuplicate(q, out) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// stripPrefix removes bullet markers and list numbering ("- ", "• ",
// "3. ", "3) ") from the front of a line.
func stripPrefix(line string) string {
	s := strings.TrimSpace(strings.TrimLeft(line, "-•* "))
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

func isDuplicate(q string, seen []string) bool {
	for _, s := range seen {
		if matchr.JaroWinkler(q, s, true) >= dedupeThreshold {
			return true
		}
	}
	return false
}
