package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/orato-app/orato/pkg/provider/stt"
	sttmock "github.com/orato-app/orato/pkg/provider/stt/mock"
)

func TestSTTFallbackPrimarySuccess(t *testing.T) {
	t.Parallel()

	primary := &sttmock.Provider{Text: "hello"}
	secondary := &sttmock.Provider{Text: "fallback"}

	fb := NewSTTFallback(primary, "primary", BreakerConfig{MaxFailures: 3})
	fb.AddFallback("secondary", secondary)

	res, err := fb.Transcribe(context.Background(), stt.Request{Audio: []byte{1}, ContentType: "audio/wav"})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if res.Text != "hello" {
		t.Errorf("text = %q, want hello", res.Text)
	}
	if secondary.CallCount() != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.CallCount())
	}
}

func TestSTTFallbackFailover(t *testing.T) {
	t.Parallel()

	primary := &sttmock.Provider{Err: errors.New("primary down")}
	secondary := &sttmock.Provider{Text: "fallback"}

	fb := NewSTTFallback(primary, "primary", BreakerConfig{MaxFailures: 3})
	fb.AddFallback("secondary", secondary)

	res, err := fb.Transcribe(context.Background(), stt.Request{Audio: []byte{1}})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if res.Text != "fallback" {
		t.Errorf("text = %q, want fallback", res.Text)
	}
	if primary.CallCount() != 1 {
		t.Errorf("primary called %d times, want 1", primary.CallCount())
	}
}

func TestSTTFallbackAllFail(t *testing.T) {
	t.Parallel()

	primary := &sttmock.Provider{Err: errors.New("down")}
	fb := NewSTTFallback(primary, "primary", BreakerConfig{MaxFailures: 3})

	_, err := fb.Transcribe(context.Background(), stt.Request{})
	if !errors.Is(err, ErrAllFailed) {
		t.Errorf("err = %v, want ErrAllFailed", err)
	}
}
