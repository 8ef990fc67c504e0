package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luvfam/familing/config"
)

func testGenerator(endpoint string) Generator {
	return NewGenerator(config.AppConfig{
		GenAIEndpoint:   endpoint,
		GenAIAPIKey:     "test-key",
		GenAIModel:      "test-model",
		GenAICandidates: 3,
		GenAITimeoutSec: 2,
	})
}

func chatBody(contents ...string) map[string]any {
	choices := make([]map[string]any, 0, len(contents))
	for _, c := range contents {
		choices = append(choices, map[string]any{
			"message": map[string]any{"role": "assistant", "content": c},
		})
	}
	return map[string]any{"choices": choices}
}

func TestGenerate_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(chatBody("오늘 가장 웃긴 일은?", "요즘 가장 기대되는 일은?"))
	}))
	defer server.Close()

	texts, err := testGenerator(server.URL).Generate(context.Background(), "질문을 만들어 주세요")
	require.NoError(t, err)
	assert.Equal(t, []string{"오늘 가장 웃긴 일은?", "요즘 가장 기대되는 일은?"}, texts)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, 3, gotReq.N)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "질문을 만들어 주세요", gotReq.Messages[0].Content)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatBody())
	}))
	defer server.Close()

	_, err := testGenerator(server.URL).Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerate_BlankContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatBody("질문 하나?", "   "))
	}))
	defer server.Close()

	_, err := testGenerator(server.URL).Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerate_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := testGenerator(server.URL).Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream on fire", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testGenerator(server.URL).Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrGenHTTP)
	assert.Contains(t, err.Error(), "502")
}

func TestGenerate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	gen := NewGenerator(config.AppConfig{
		GenAIEndpoint:   server.URL,
		GenAIModel:      "test-model",
		GenAICandidates: 1,
		GenAITimeoutSec: 1,
	})

	start := time.Now()
	_, err := gen.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrGenTimeout)
	assert.Less(t, time.Since(start), 3*time.Second)
}
