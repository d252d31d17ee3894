package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/orato-app/orato/pkg/provider/llm"
)

// ErrEmptyScript is returned by ReviewScript when there is nothing to
// review.
var ErrEmptyScript = errors.New("questions: script is empty")

const scriptPrompt = "주제: %s\n" +
	"상황: %s\n" +
	"요구사항: %s\n" +
	"위 정보를 바탕으로, 두괄식 구조의 발표 대본을 한국어로 작성해줘. " +
	"서론-본론-결론이 명확히 드러나고, 말로 읽었을 때 자연스러운 문장이어야 한다."

const reviewPrompt = "다음 발표 대본을 평가해줘.\n\n" +
	"[대본]\n%s\n\n" +
	"[발표자가 전달하고 싶은 의도]\n%s\n\n" +
	"- 논리 구조(두괄식인지, 전개가 자연스러운지)\n" +
	"- 핵심 메시지 전달력(청중이 무엇을 기억할지)\n" +
	"- 청중 이해도(전문용어, 난이도 조절)\n" +
	"- 구체적인 개선점(문장 예시 포함)\n" +
	"을 중심으로, 한국어로 친절하게 피드백해줘."

// ScriptRequest describes the presentation the user wants a script for.
// Topic is required; Context and Requirements are free-form hints.
type ScriptRequest struct {
	Topic        string
	Context      string
	Requirements string
}

// GenerateScript drafts a conclusion-first presentation script from the
// request.
func (g *Generator) GenerateScript(ctx context.Context, req ScriptRequest) (string, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return "", errors.New("questions: topic is required")
	}
	resp, err := g.complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "user", Content: fmt.Sprintf(scriptPrompt, req.Topic, req.Context, req.Requirements)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("questions: script generation failed: %w", err)
	}
	return resp.Content, nil
}

// ReviewScript critiques an existing script against the speaker's intended
// message, returning free-form feedback text.
func (g *Generator) ReviewScript(ctx context.Context, script, intent string) (string, error) {
	if strings.TrimSpace(script) == "" {
		return "", ErrEmptyScript
	}
	resp, err := g.complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "user", Content: fmt.Sprintf(reviewPrompt, script, intent)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("questions: script review failed: %w", err)
	}
	return resp.Content, nil
}
