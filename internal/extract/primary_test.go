package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MrWong99/rxtract/pkg/provider/llm"
	"github.com/MrWong99/rxtract/pkg/provider/llm/mock"
)

func TestPrimaryExtract_Success(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: validRecordJSON},
	}
	p := NewPrimary(provider)

	rec, strategy, err := p.Extract(context.Background(), "patient has fever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy != StrategyDirect {
		t.Errorf("strategy = %q, want %q", strategy, StrategyDirect)
	}
	if rec.PatientName != "John Doe" {
		t.Errorf("patient = %q, want John Doe", rec.PatientName)
	}

	if got := len(provider.CompleteCalls); got != 1 {
		t.Fatalf("provider calls = %d, want 1", got)
	}
	req := provider.CompleteCalls[0].Req
	if req.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", req.Temperature)
	}
	if req.MaxTokens != defaultMaxTokens {
		t.Errorf("max tokens = %d, want %d", req.MaxTokens, defaultMaxTokens)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
	if !strings.Contains(req.Messages[0].Content, "patient has fever") {
		t.Error("prompt does not contain the transcript")
	}
}

func TestPrimaryExtract_RetryAfterBadOutput(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponses: []*llm.CompletionResponse{
			{Content: "I cannot produce JSON right now."},
			{Content: validRecordJSON},
		},
	}
	p := NewPrimary(provider)

	rec, strategy, err := p.Extract(context.Background(), "patient has fever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy != StrategyDirect || rec.PatientName != "John Doe" {
		t.Errorf("retry result = (%q, %+v)", strategy, rec)
	}

	if got := len(provider.CompleteCalls); got != 2 {
		t.Fatalf("provider calls = %d, want 2", got)
	}
	second := provider.CompleteCalls[1].Req.Messages[0].Content
	if !strings.HasSuffix(second, retryInstruction) {
		t.Error("retry prompt should end with the completion instruction")
	}
}

func TestPrimaryExtract_TransportError(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{CompleteErr: errors.New("connection reset")}
	p := NewPrimary(provider)

	_, _, err := p.Extract(context.Background(), "patient has fever")
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindTransport {
		t.Fatalf("err = %v, want KindTransport", err)
	}
	if got := len(provider.CompleteCalls); got != 1 {
		t.Errorf("provider calls = %d, want 1 (no retry on transport failure)", got)
	}
}

func TestPrimaryExtract_ParseFailureAfterRetry(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "still not json"},
	}
	p := NewPrimary(provider)

	_, _, err := p.Extract(context.Background(), "patient has fever")
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindParse {
		t.Fatalf("err = %v, want KindParse", err)
	}
	if got := len(provider.CompleteCalls); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}
}

func TestPrimaryExtract_NilResponse(t *testing.T) {
	t.Parallel()

	p := NewPrimary(&mock.Provider{})

	_, _, err := p.Extract(context.Background(), "patient has fever")
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindTransport {
		t.Fatalf("err = %v, want KindTransport for nil response", err)
	}
}

func TestPrimaryWithMaxTokens(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: validRecordJSON},
	}
	p := NewPrimary(provider, WithMaxTokens(512))

	if _, _, err := p.Extract(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := provider.CompleteCalls[0].Req.MaxTokens; got != 512 {
		t.Errorf("max tokens = %d, want 512", got)
	}
}
