package anthropic

import (
	"net/http"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sdkError(status int) *sdk.Error {
	req, _ := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil)
	return &sdk.Error{StatusCode: status, Request: req}
}

func TestPrimaryText(t *testing.T) {
	tests := []struct {
		name    string
		content []ContentBlock
		want    string
		wantErr bool
	}{
		{
			name:    "single text block",
			content: []ContentBlock{{Type: "text", Text: "<html></html>"}},
			want:    "<html></html>",
		},
		{
			name: "tool use before final text",
			content: []ContentBlock{
				{Type: "text", Text: "Ik zoek eerst wat informatie op."},
				{Type: "server_tool_use"},
				{Type: "web_search_tool_result"},
				{Type: "text", Text: "<!doctype html><html></html>"},
			},
			want: "<!doctype html><html></html>",
		},
		{
			name: "skips trailing empty text block",
			content: []ContentBlock{
				{Type: "text", Text: "resultaat"},
				{Type: "text", Text: ""},
			},
			want: "resultaat",
		},
		{
			name:    "no content",
			content: nil,
			wantErr: true,
		},
		{
			name: "only tool blocks",
			content: []ContentBlock{
				{Type: "server_tool_use"},
				{Type: "web_search_tool_result"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &MessageResponse{Content: tt.content}
			got, err := resp.PrimaryText()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsOverloaded(t *testing.T) {
	assert.False(t, IsOverloaded(nil))
	assert.False(t, IsOverloaded(eris.New("some other error")))
	assert.False(t, IsOverloaded(sdkError(429)))
	assert.True(t, IsOverloaded(sdkError(529)))
	assert.True(t, IsOverloaded(eris.Wrap(sdkError(529), "anthropic: create message")))
}

func TestToSDKMessages(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "bouw een website"},
		{Role: "assistant", Content: "prima"},
	})
	require.Len(t, msgs, 2)
	assert.Equal(t, sdk.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, sdk.MessageParamRoleAssistant, msgs[1].Role)
}
