package site

import (
	"context"
	"net/http"
	"testing"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiboostly/leadpilot/internal/model"
	"github.com/aiboostly/leadpilot/internal/resilience"
	"github.com/aiboostly/leadpilot/pkg/anthropic"
)

// fakeLLM returns scripted responses, erroring for the first failN calls.
type fakeLLM struct {
	failN   int
	failErr error
	resp    *anthropic.MessageResponse
	calls   int
	lastReq anthropic.MessageRequest
}

func (f *fakeLLM) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	f.lastReq = req
	if f.calls <= f.failN {
		return nil, f.failErr
	}
	return f.resp, nil
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

func overloadedErr() error {
	req, _ := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil)
	return &sdk.Error{StatusCode: 529, Request: req}
}

func fastRetry() resilience.RetryConfig {
	cfg := OverloadRetryConfig()
	cfg.InitialBackoff = time.Millisecond
	return cfg
}

func testRecord() model.BusinessRecord {
	return model.BusinessRecord{
		model.ColBusiness: "Kapsalon Anne",
		model.ColCity:     "Utrecht",
		model.ColCategory: "Kapper",
	}
}

func TestGenerateReturnsHTML(t *testing.T) {
	llm := &fakeLLM{resp: textResponse("<!DOCTYPE html><html><body>hi</body></html>")}
	g := NewGenerator(llm, "test-model", 1000, WithRetryConfig(fastRetry()))

	html, err := g.Generate(context.Background(), testRecord(), "scraped tekst", "")
	require.NoError(t, err)
	assert.Equal(t, "<!DOCTYPE html><html><body>hi</body></html>", html)

	assert.True(t, llm.lastReq.EnableWebSearch)
	assert.Equal(t, int64(maxWebSearches), llm.lastReq.MaxWebSearches)
	assert.Contains(t, llm.lastReq.Messages[0].Content, "Kapsalon Anne")
	assert.Contains(t, llm.lastReq.Messages[0].Content, "scraped tekst")
}

func TestGenerateUnwrapsFencedOutput(t *testing.T) {
	llm := &fakeLLM{resp: textResponse("```html\n<!DOCTYPE html><html></html>\n```")}
	g := NewGenerator(llm, "test-model", 1000, WithRetryConfig(fastRetry()))

	html, err := g.Generate(context.Background(), testRecord(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "<!DOCTYPE html><html></html>", html)
}

func TestGenerateRetriesOverload(t *testing.T) {
	llm := &fakeLLM{
		failN:   2,
		failErr: overloadedErr(),
		resp:    textResponse("<html></html>"),
	}
	g := NewGenerator(llm, "test-model", 1000, WithRetryConfig(fastRetry()))

	html, err := g.Generate(context.Background(), testRecord(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", html)
	assert.Equal(t, 3, llm.calls)
}

func TestGenerateOverloadExhaustsAttempts(t *testing.T) {
	llm := &fakeLLM{
		failN:   10,
		failErr: overloadedErr(),
		resp:    textResponse("<html></html>"),
	}
	g := NewGenerator(llm, "test-model", 1000, WithRetryConfig(fastRetry()))

	_, err := g.Generate(context.Background(), testRecord(), "", "")
	require.Error(t, err)
	assert.Equal(t, 3, llm.calls)
}

func TestGenerateNonHTMLOutputFails(t *testing.T) {
	llm := &fakeLLM{resp: textResponse("Hier is je website! Veel plezier ermee.")}
	g := NewGenerator(llm, "test-model", 1000, WithRetryConfig(fastRetry()))

	_, err := g.Generate(context.Background(), testRecord(), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doesn't look like HTML")
	assert.Equal(t, 1, llm.calls)
}

func TestGenerateNoTextBlockFails(t *testing.T) {
	llm := &fakeLLM{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "server_tool_use"}},
	}}
	g := NewGenerator(llm, "test-model", 1000, WithRetryConfig(fastRetry()))

	_, err := g.Generate(context.Background(), testRecord(), "", "")
	require.Error(t, err)
}

func TestExtractHTML(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain doctype", in: "<!DOCTYPE html><html></html>", want: "<!DOCTYPE html><html></html>"},
		{name: "lowercase doctype", in: "<!doctype html><html></html>", want: "<!doctype html><html></html>"},
		{name: "html tag only", in: "<html><body></body></html>", want: "<html><body></body></html>"},
		{name: "html fence", in: "```html\n<html></html>\n```", want: "<html></html>"},
		{name: "bare fence", in: "```\n<html></html>\n```", want: "<html></html>"},
		{name: "surrounding whitespace", in: "\n\n  <html></html>  \n", want: "<html></html>"},
		{name: "prose", in: "Sure, here is the website:", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractHTML(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildUserPromptDefaults(t *testing.T) {
	prompt := buildUserPrompt(model.BusinessRecord{}, "", "")
	assert.Contains(t, prompt, "Niet beschikbaar")
	assert.Contains(t, prompt, `"dit bedrijf`)
}
